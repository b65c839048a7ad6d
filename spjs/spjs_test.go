package spjs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/mastercactapus/autolevel/machine/grbl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testPort = "/dev/ttyUSB0"

// serve starts a websocket server that calls handle for every text message.
func serve(t *testing.T, handle func(ws *websocket.Conn, msg string)) string {
	var up websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ws, err := up.Upgrade(w, req, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			handle(ws, string(data))
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func sendFrame(ws *websocket.Conn, port, data string) {
	ws.WriteJSON(DataFrame{Port: port, Data: data})
}

// grblServer replies like a bridge with a Grbl controller attached.
func grblServer(t *testing.T) string {
	return serve(t, func(ws *websocket.Conn, msg string) {
		switch {
		case msg == fmt.Sprintf("open %s 115200 grbl", testPort):
			ws.WriteMessage(websocket.TextMessage, []byte(msg))
			sendFrame(ws, "/dev/ttyS0", "noise\r\n")
			sendFrame(ws, testPort, "\r\nGrbl 1.1h ['$' for help]\r\n")
		case strings.HasPrefix(msg, "sendjson "):
			var j JSON
			if err := json.Unmarshal([]byte(strings.TrimPrefix(msg, "sendjson ")), &j); err != nil {
				t.Error(err)
				return
			}
			for _, d := range j.Data {
				ws.WriteJSON(CmdStatus{Cmd: "Queued", Type: []string{"Buf"}, Data: []string{d.Data}, ID: d.ID})
				if d.Data == "?" {
					sendFrame(ws, testPort, "<Idle|MPos:1.000,2.000,-3.000|FS:0,0|WCO:1.000,1.000,-4.000>\r\n")
					continue
				}
				// split replies are reassembled
				sendFrame(ws, testPort, "o")
				sendFrame(ws, testPort, "k\r\n")
			}
		}
	})
}

func TestPort_Grbl(t *testing.T) {
	p, err := Open(context.Background(), Config{URL: grblServer(t), Port: testPort, Log: zaptest.NewLogger(t)})
	require.NoError(t, err)

	s, err := grbl.NewSender(p, grbl.Config{Log: zaptest.NewLogger(t)})
	require.NoError(t, err)
	assert.Equal(t, "Grbl 1.1h ['$' for help]", s.Version())

	resp, err := s.SendCommand("G0 X1")
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())

	stat, err := s.RequestStatus()
	require.NoError(t, err)
	assert.True(t, stat.IsIdle())
	assert.Equal(t, 0.0, s.Position().X)
	assert.Equal(t, 1.0, s.Position().Y)
	assert.Equal(t, 1.0, s.Position().Z)

	assert.NoError(t, s.Close())
}

func TestPort_Error(t *testing.T) {
	url := serve(t, func(ws *websocket.Conn, msg string) {
		if strings.HasPrefix(msg, "open ") {
			ws.WriteJSON(ErrorMessage{Error: "We could not find the serial port " + testPort})
		}
	})

	p, err := Open(context.Background(), Config{URL: url, Port: testPort})
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Read(make([]byte, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not find")
}

func TestPort_WipedQueue(t *testing.T) {
	url := serve(t, func(ws *websocket.Conn, msg string) {
		if strings.HasPrefix(msg, "sendjson ") {
			ws.WriteJSON(CmdStatus{Cmd: "WipedQueue"})
		}
	})

	p, err := Open(context.Background(), Config{URL: url, Port: testPort})
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Write([]byte("G0 X1\n"))
	require.NoError(t, err)
	_, err = p.Read(make([]byte, 10))
	assert.ErrorIs(t, err, ErrWipedQueue)
}

func TestOpen(t *testing.T) {
	_, err := Open(context.Background(), Config{URL: "ws://127.0.0.1:1/ws"})
	assert.Error(t, err, "port name required")

	_, err = Open(context.Background(), Config{URL: "ws://127.0.0.1:1/ws", Port: testPort})
	assert.Error(t, err)
}

func TestParseMessage(t *testing.T) {
	val, err := parseMessage([]byte(`{"P":"COM3","D":"ok\n"}`))
	require.NoError(t, err)
	assert.Equal(t, &DataFrame{Port: "COM3", Data: "ok\n"}, val)

	val, err = parseMessage([]byte(`{"Cmd":"Complete","Id":"cmd_1","P":"COM3","D":["G0 X1\n"],"Type":["Buf"]}`))
	require.NoError(t, err)
	assert.Equal(t, "Complete", val.(*CmdStatus).Cmd)

	val, err = parseMessage([]byte(`{"SerialPorts":[{"Name":"COM3","IsOpen":true}]}`))
	require.NoError(t, err)
	assert.True(t, val.(*SerialPortList).SerialPorts[0].IsOpen)

	_, err = parseMessage([]byte(`{"Version":"1.96"}`))
	assert.Error(t, err)
}
