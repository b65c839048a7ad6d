package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/autolevel/meshlevel"
)

func writeFile(t *testing.T, name, data string) string {
	name = filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(name, []byte(data), 0644))
	return name
}

func run(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	defer RootCmd.SetArgs(nil)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestAdjustCmd(t *testing.T) {
	gc := writeFile(t, "board.nc", "G0 Z1.0\nG1 X2.0 Y3.0 Z-1.0\nM5")
	pts := writeFile(t, "points.csv", "0,0,0\n10,0,1\n0,10,2\n10,10,3\n")

	out, err := run(t, "adjust", "-g", gc, "-p", pts)
	require.NoError(t, err)
	assert.Equal(t, "G0 Z1.000000\nG1 X2.0 Y3.0 Z-0.200000\nM5\n", out)

	far := writeFile(t, "far.nc", "G0 X50.0 Y3.0")
	_, err = run(t, "adjust", "-g", far, "-p", pts)
	assert.ErrorIs(t, err, meshlevel.ErrOutOfBounds)

	bad := writeFile(t, "bad.csv", "0,0\n")
	_, err = run(t, "adjust", "-g", gc, "-p", bad)
	assert.Error(t, err)
}

func TestExtentCmd(t *testing.T) {
	gc := writeFile(t, "board.nc", "G0 X-1.5 Y2.0\nG1 Z-0.5 F100\nG1 X30.25 Y4.0")

	out, err := run(t, "extent", "-g", gc)
	require.NoError(t, err)
	assert.Equal(t, "x: -1.500000 - 30.250000\ny: 0.000000 - 4.000000\nz: -0.500000 - 0.000000\n", out)

	_, err = run(t, "extent", "-g", filepath.Join(t.TempDir(), "missing.nc"))
	assert.Error(t, err)
}
