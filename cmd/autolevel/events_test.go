package main

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mastercactapus/autolevel/coord"
)

// subscribe streams the data lines of an event stream until it ends.
func subscribe(url string) <-chan string {
	lines := make(chan string, 100)
	go func() {
		defer close(lines)
		resp, err := http.Get(url)
		if err != nil {
			return
		}
		defer resp.Body.Close()
		scan := bufio.NewScanner(resp.Body)
		for scan.Scan() {
			if strings.HasPrefix(scan.Text(), "data:") {
				lines <- strings.TrimSpace(strings.TrimPrefix(scan.Text(), "data:"))
			}
		}
	}()
	return lines
}

// waitPoint sends p until the subscriber receives it. Clients
// register asynchronously, so earlier sends may be dropped.
func waitPoint(t *testing.T, e *events, lines <-chan string, p coord.Point) string {
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case l, ok := <-lines:
			require.True(t, ok, "stream closed early")
			return l
		case <-tick.C:
			e.Point(p)
			e.Status("probing", 1, 4)
		case <-timeout:
			require.FailNow(t, "no event received")
		}
	}
}

// The event dispatcher logs from its own goroutine after Close
// returns, so these tests don't log through t.

func TestEvents(t *testing.T) {
	e := newEvents(zap.NewNop())
	require.NoError(t, e.listen("127.0.0.1:0"))

	lines := subscribe("http://"+e.addr+pointsChannel)
	l := waitPoint(t, e, lines, coord.Point{X: 1, Y: 2, Z: 0.5})
	assert.JSONEq(t, `{"X":1,"Y":2,"Z":0.5}`, l)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	start := time.Now()
	assert.NoError(t, e.Close(ctx), "client still connected")
	assert.Less(t, int64(time.Since(start)), int64(time.Second))

	// the stream ends once closed
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-timeout:
			require.FailNow(t, "stream still open")
		}
	}
}

func TestEvents_CloseIdle(t *testing.T) {
	e := newEvents(zap.NewNop())
	require.NoError(t, e.listen("127.0.0.1:0"))
	assert.NoError(t, e.Close(context.Background()))
}

func TestEvents_Nil(t *testing.T) {
	var e *events
	e.Point(coord.Point{})
	e.Status("done", 0, 0)
	assert.NoError(t, e.Close(context.Background()))
}

func TestEvents_UnknownChannel(t *testing.T) {
	e := newEvents(zap.NewNop())
	defer e.Close(context.Background())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest("GET", "/events/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
