package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mastercactapus/autolevel/internal/env"
	"github.com/mastercactapus/autolevel/machine"
	"github.com/mastercactapus/autolevel/machine/grbl"
	"github.com/mastercactapus/autolevel/machine/grbl/grbltest"
)

func TestProbeSurface(t *testing.T) {
	conf = &env.Config{SafeZ: 1, PollInterval: time.Millisecond, IdleTimeout: time.Second}
	logger = zaptest.NewLogger(t)
	grid = machine.GridOptions{XMax: 10, XStep: 10, YMax: 10, YStep: 10, ZMin: -0.5, FeedRate: 50}
	originZMin, originFeedRate = -10, 50

	c := grbltest.New()
	c.Surface = func(x, y float64) float64 { return 0.05*x - 2 }
	s, err := grbl.NewSender(c, grbl.Config{Log: logger, PollInterval: conf.PollInterval})
	require.NoError(t, err)

	points, err := probeSurface(context.Background(), s, nil)
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.InDelta(t, 0, points[0].Z, 1e-9)
	assert.InDelta(t, 0, points[1].Z, 1e-9)
	assert.InDelta(t, 0.5, points[2].Z, 1e-9)
	assert.InDelta(t, 10, points[2].X, 1e-9)
	assert.InDelta(t, 0.5, points[3].Z, 1e-9)

	assert.Equal(t, []string{"G0Z1", "G0X0Y0"}, c.Commands[len(c.Commands)-2:])
}

func TestProbeSurface_NoContact(t *testing.T) {
	conf = &env.Config{SafeZ: 1, PollInterval: time.Millisecond}
	logger = zaptest.NewLogger(t)

	s, err := grbl.NewSender(grbltest.New(), grbl.Config{Log: logger})
	require.NoError(t, err)

	_, err = probeSurface(context.Background(), s, nil)
	assert.ErrorIs(t, err, machine.ErrProbeFailed)
}
