package spjs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrWipedQueue is returned when the server discards queued commands.
var ErrWipedQueue = errors.New("spjs: queue wiped")

// DefaultBaud is used when Config.Baud is unset.
const DefaultBaud = 115200

var lastID int64

func nextID() string {
	id := atomic.AddInt64(&lastID, 1)
	return "cmd_" + strconv.FormatInt(id, 36)
}

type DataFrame struct {
	Port string `json:"P"`
	Data string `json:"D"`
}
type CmdStatus struct {
	Cmd        string
	QueueCount int `json:"QCnt"`
	Type       []string
	Data       []string `json:"D"`
	ID         string   `json:"Id"`
}

type ErrorMessage struct {
	Error string
}
type SerialPortList struct {
	SerialPorts []SerialPort
}
type SerialPort struct {
	Name     string
	Friendly string
	IsOpen   bool
	Baud     int
}

type JSON struct {
	Port string `json:"P"`
	Data []Data
}
type Data struct {
	Data string `json:"D"`
	ID   string `json:"Id"`
}

func parseMessage(data []byte) (val interface{}, err error) {
	var msg map[string]json.RawMessage
	err = json.Unmarshal(data, &msg)
	if err != nil {
		return nil, err
	}

	check := func(fieldName string, v interface{}) bool {
		if msg[fieldName] == nil {
			return false
		}
		val = v
		err = json.Unmarshal(data, val)
		return true
	}
	if check("Error", &ErrorMessage{}) {
		return
	}
	if check("SerialPorts", &SerialPortList{}) {
		return
	}
	if check("Type", &CmdStatus{}) {
		return
	}
	if check("D", &DataFrame{}) {
		return
	}

	return nil, errors.New("unknown message: " + string(data))
}

// Config configures a port opened through a Serial Port JSON Server.
type Config struct {
	// URL of the server websocket, e.g. ws://cnc-bridge:8989/ws
	URL string

	// Port is the serial port name on the server.
	Port string
	Baud int

	Log *zap.Logger
}

// Port is a serial port opened through a Serial Port JSON Server
// websocket. Reads return data frames for the port, writes are sent
// with sendjson.
//
// Only one goroutine may read and one may write at a time.
type Port struct {
	ws   *websocket.Conn
	name string
	log  *zap.Logger
	buf  bytes.Buffer
}

// Open connects to the server and opens the named port with the grbl
// buffer algorithm.
func Open(ctx context.Context, cfg Config) (*Port, error) {
	if cfg.Port == "" {
		return nil, errors.New("spjs: port name required")
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("spjs: connect %s: %w", cfg.URL, err)
	}
	p := &Port{
		ws:   ws,
		name: cfg.Port,
		log:  cfg.Log.With(zap.String("spjs", cfg.URL), zap.String("port", cfg.Port)),
	}

	err = ws.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf("open %s %d grbl", cfg.Port, cfg.Baud)))
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("spjs: open port: %w", err), ws.Close())
	}
	p.log.Info("connected")

	return p, nil
}

func (p *Port) Read(b []byte) (int, error) {
	for p.buf.Len() == 0 {
		_, data, err := p.ws.ReadMessage()
		if err != nil {
			return 0, err
		}
		if !bytes.HasPrefix(data, []byte("{")) {
			// ignore echo messages
			continue
		}
		val, err := parseMessage(data)
		if err != nil {
			p.log.Warn("parse message", zap.Error(err))
			continue
		}

		switch msg := val.(type) {
		case *DataFrame:
			if msg.Port != p.name {
				continue
			}
			p.buf.WriteString(msg.Data)
		case *ErrorMessage:
			return 0, fmt.Errorf("spjs: %s", msg.Error)
		case *CmdStatus:
			if msg.Cmd == "WipedQueue" {
				return 0, ErrWipedQueue
			}
			p.log.Debug("command status", zap.String("cmd", msg.Cmd), zap.String("id", msg.ID))
		case *SerialPortList:
			for _, port := range msg.SerialPorts {
				if port.Name == p.name && !port.IsOpen {
					p.log.Warn("port closed on server")
				}
			}
		}
	}

	return p.buf.Read(b)
}

func (p *Port) Write(b []byte) (int, error) {
	data, err := json.Marshal(JSON{
		Port: p.name,
		Data: []Data{{Data: string(b), ID: nextID()}},
	})
	if err != nil {
		return 0, err
	}

	err = p.ws.WriteMessage(websocket.TextMessage, append([]byte("sendjson "), data...))
	if err != nil {
		return 0, err
	}

	return len(b), nil
}

// Close closes the port on the server, then the websocket.
func (p *Port) Close() error {
	err := p.ws.WriteMessage(websocket.TextMessage, []byte("close "+p.name))
	err = multierr.Append(err, p.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	return multierr.Append(err, p.ws.Close())
}
