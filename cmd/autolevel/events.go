package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mastercactapus/autolevel/coord"
)

const (
	pointsChannel = "/events/points"
	statusChannel = "/events/status"
)

// events publishes probe progress as server-sent events. A nil *events
// discards everything.
type events struct {
	http.Handler
	sse *sse.Server
	srv *http.Server
	log *zap.Logger

	// addr is the listening address, set by listen.
	addr string
}

type pointEvent struct {
	X, Y, Z float64
}

type statusEvent struct {
	State string
	Done  int
	Total int
}

func newEvents(log *zap.Logger) *events {
	r := mux.NewRouter()
	e := &events{
		Handler: r,
		sse: sse.NewServer(&sse.Options{
			Logger: zap.NewStdLog(log.Named("sse")),
		}),
		log: log,
	}
	r.Handle(pointsChannel, e.sse).Methods("GET")
	r.Handle(statusChannel, e.sse).Methods("GET")

	return e
}

// listen starts serving events on addr in the background.
func (e *events) listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	e.srv = &http.Server{Handler: e}
	go func() {
		if err := e.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.log.Error("events server", zap.Error(err))
		}
	}()
	e.addr = ln.Addr().String()
	e.log.Info("serving events", zap.String("addr", e.addr))

	return nil
}

func (e *events) send(channel string, v interface{}) {
	if e == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		e.log.Error("marshal event", zap.Error(err))
		return
	}
	e.sse.SendMessage(channel, sse.SimpleMessage(string(data)))
}

func (e *events) Point(p coord.Point) {
	e.send(pointsChannel, pointEvent{X: p.X, Y: p.Y, Z: p.Z})
}

func (e *events) Status(state string, done, total int) {
	e.send(statusChannel, statusEvent{State: state, Done: done, Total: total})
}

// Close disconnects all clients, then stops the server and the
// event dispatcher.
func (e *events) Close(ctx context.Context) error {
	if e == nil {
		return nil
	}

	// Shutdown can't close channels that still have clients, they are
	// closed from here first so connected handlers return.
	for _, ch := range []string{pointsChannel, statusChannel} {
		e.sse.CloseChannel(ch)
	}

	var err error
	if e.srv != nil {
		err = e.srv.Shutdown(ctx)
	}
	e.sse.Shutdown()

	return err
}
