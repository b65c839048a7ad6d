package grbl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mastercactapus/autolevel/coord"
	"github.com/mastercactapus/autolevel/gcode"
)

// DefaultPollInterval is the delay between status requests in WaitUntilIdle.
const DefaultPollInterval = 200 * time.Millisecond

const (
	bannerPrefix     = "Grbl"
	supportedVersion = "Grbl 1.1"
)

// Config configures a Sender.
type Config struct {
	// Log receives every line sent and received at debug level.
	Log *zap.Logger

	// PollInterval is the delay between status requests while waiting for idle.
	PollInterval time.Duration
}

// Sender runs the Grbl line protocol over a byte stream.
//
// Only one command may be in flight at a time, and any messages
// received before a response must be read with ReadMessages before
// the next command is sent. A Sender is not safe for concurrent use.
type Sender struct {
	rw   io.ReadWriter
	w    *bufio.Writer
	scan *bufio.Scanner
	log  *zap.Logger

	pollInterval time.Duration

	version  string
	messages []string

	mpos coord.Point
	wco  coord.Point
}

// NewSender takes ownership of rw and waits for the Grbl startup banner.
//
// ErrUnsupportedVersion is returned if the controller is not running Grbl 1.1.
func NewSender(rw io.ReadWriter, cfg Config) (*Sender, error) {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	s := &Sender{
		rw:           rw,
		w:            bufio.NewWriter(rw),
		scan:         bufio.NewScanner(rw),
		log:          cfg.Log,
		pollInterval: cfg.PollInterval,
	}

	lines, err := s.readUntil(func(line string) bool { return strings.HasPrefix(line, bannerPrefix) })
	if err != nil {
		return nil, fmt.Errorf("wait for banner: %w", err)
	}
	banner := lines[len(lines)-1]
	if !strings.HasPrefix(banner, supportedVersion) {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedVersion, banner)
	}
	s.version = banner
	s.log.Info("connected", zap.String("version", banner))

	return s, nil
}

// Version returns the banner line reported by the controller.
func (s *Sender) Version() string { return s.version }

// Close closes the underlying transport if it implements io.Closer.
// Any blocked read will return an error.
func (s *Sender) Close() error {
	if closer, ok := s.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Sender) readLine() (string, error) {
	for s.scan.Scan() {
		line := strings.TrimSpace(s.scan.Text())
		if line == "" {
			continue
		}
		s.log.Debug("recv", zap.String("line", line))
		return line, nil
	}
	if err := s.scan.Err(); err != nil {
		return "", err
	}
	return "", io.ErrUnexpectedEOF
}

// readUntil returns every line read, the last one being the first
// line that matched.
func (s *Sender) readUntil(match func(string) bool) ([]string, error) {
	var lines []string
	for {
		line, err := s.readLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		if match(line) {
			return lines, nil
		}
	}
}

func (s *Sender) write(data string) error {
	_, err := s.w.WriteString(data)
	if err != nil {
		return err
	}
	return s.w.Flush()
}

// SendCommand sends a single line and waits for `ok` or `error:<code>`.
//
// Lines received before the response are kept and must be read with
// ReadMessages before the next command, otherwise ErrPendingMessages
// is returned. An `error:<code>` response is returned as a *ControllerError.
func (s *Sender) SendCommand(cmd string) (Response, error) {
	if len(s.messages) > 0 {
		return Response{}, ErrPendingMessages
	}

	s.log.Debug("send", zap.String("line", cmd))
	err := s.write(cmd + "\n")
	if err != nil {
		return Response{}, fmt.Errorf("send '%s': %w", cmd, err)
	}

	lines, err := s.readUntil(func(line string) bool { return ClassifyResponse(line).Kind != NotAResponse })
	if err != nil {
		return Response{}, fmt.Errorf("read response to '%s': %w", cmd, err)
	}
	s.messages = lines[:len(lines)-1]

	resp := ClassifyResponse(lines[len(lines)-1])
	if resp.IsError() {
		return resp, &ControllerError{Code: resp.Code, Command: cmd}
	}
	return resp, nil
}

// SendBlock validates and sends a Block.
func (s *Sender) SendBlock(b gcode.Block) (Response, error) {
	err := b.Validate()
	if err != nil {
		return Response{}, err
	}
	return s.SendCommand(b.String())
}

// ReadMessages returns and clears all pending messages.
func (s *Sender) ReadMessages() []string {
	msgs := s.messages
	s.messages = nil
	return msgs
}

// RequestStatus sends the realtime status query (`?`) and waits for the report.
//
// Any lines received before the report are added to the pending messages.
func (s *Sender) RequestStatus() (*Status, error) {
	err := s.write("?")
	if err != nil {
		return nil, fmt.Errorf("request status: %w", err)
	}

	lines, err := s.readUntil(IsStatus)
	if err != nil {
		return nil, fmt.Errorf("read status: %w", err)
	}
	s.messages = append(s.messages, lines[:len(lines)-1]...)

	stat, err := ParseStatus(lines[len(lines)-1])
	if err != nil {
		return nil, err
	}
	err = s.update(stat)
	if err != nil {
		return nil, err
	}

	return stat, nil
}

// update records positions from stat. Grbl only includes WCO
// periodically, so the last known offset is kept when it's missing.
func (s *Sender) update(stat *Status) error {
	wco, ok, err := stat.WCO()
	if err != nil {
		return err
	}
	if ok {
		s.wco = wco
	}

	mpos, ok, err := stat.MPos()
	if err != nil {
		return err
	}
	if ok {
		s.mpos = mpos
		return nil
	}

	// $10 may be set to report WPos instead
	wpos, ok, err := stat.WPos()
	if err != nil {
		return err
	}
	if ok {
		s.mpos = wpos.Add(s.wco)
	}
	return nil
}

// WaitUntilIdle polls the controller status until it reports Idle.
//
// It returns ctx.Err() if ctx is done between polls. A read that is
// already blocked is only interrupted by closing the Sender.
func (s *Sender) WaitUntilIdle(ctx context.Context) error {
	t := time.NewTicker(s.pollInterval)
	defer t.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		stat, err := s.RequestStatus()
		if err != nil {
			return err
		}
		if stat.IsIdle() {
			return nil
		}

		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}
}

// MPos returns the machine position from the last status report.
func (s *Sender) MPos() coord.Point { return s.mpos }

// WCO returns the last known work coordinate offset.
func (s *Sender) WCO() coord.Point { return s.wco }

// Position returns the current work position (MPos - WCO).
func (s *Sender) Position() coord.Point { return s.mpos.Sub(s.wco) }
