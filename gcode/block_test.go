package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlock_String(t *testing.T) {
	b := Block{{W: 'G', Arg: 38.2}, {W: 'Z', Arg: -0.5}, {W: 'F', Arg: 50}}
	assert.Equal(t, "G38.2Z-0.5F50", b.String())

	b = Block{{W: 'G', Arg: 53}, {W: 'G', Arg: 1}, {W: 'Z', Arg: -12.3456}, {W: 'F', Arg: 1}}
	assert.Equal(t, "G53G1Z-12.346F1", b.String())

	assert.Equal(t, "Z0", Block{{W: 'Z', Arg: -0.0001}}.String())
}

func TestBlock_Validate(t *testing.T) {
	assert.NoError(t, Block{{W: 'G', Arg: 53}, {W: 'G', Arg: 0}, {W: 'Z', Arg: 1}}.Validate())
	assert.NoError(t, Block{{W: 'G', Arg: 92}, {W: 'Z', Arg: 0}}.Validate())

	assert.Error(t, Block{}.Validate())
	assert.Error(t, Block{{W: 'G', Arg: 0}, {W: 'G', Arg: 1}}.Validate(), "same modal group")
	assert.Error(t, Block{{W: 'G', Arg: 0}, {W: 'X', Arg: 1}, {W: 'X', Arg: 2}}.Validate(), "repeated word")
	assert.Error(t, Block{{W: '$', Arg: 0}}.Validate())
}

func TestBlock_Arg(t *testing.T) {
	b := Block{{W: 'G', Arg: 0}, {W: 'X', Arg: 10}}

	ok, x := b.Arg('X')
	assert.True(t, ok)
	assert.Equal(t, 10.0, x)

	ok, _ = b.Arg('Y')
	assert.False(t, ok)
}
