// Package grbltest provides a simulated Grbl 1.1 controller for tests.
package grbltest

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mastercactapus/autolevel/coord"
)

// DefaultBanner is sent by New when no banner is given.
const DefaultBanner = "Grbl 1.1h ['$' for help]"

// Controller is an in-memory io.ReadWriteCloser that answers like a Grbl
// controller. Replies are queued synchronously during Write.
//
// Motion is instantaneous, but the status report shows Run for RunPolls
// reports after every motion command.
type Controller struct {
	// Surface returns the machine Z where the probe makes contact at x,y.
	// If nil, the probe never makes contact.
	Surface func(x, y float64) float64

	// Overshoot is how far the probe travels past the contact point.
	Overshoot float64

	RunPolls int

	// Errors makes a command fail with the given code.
	Errors map[string]uint

	// Messages are sent before the response to a command.
	Messages map[string][]string

	// OmitWCO leaves WCO out of every status report.
	OmitWCO bool

	MPos, WCO coord.Point

	// Commands lists every line received, in order (`?` is not included).
	Commands []string

	out      bytes.Buffer
	running  int
	sendWCO  bool
	closed   bool
	incoming []byte
}

// New creates a Controller that will send the banner lines on first read.
func New(banner ...string) *Controller {
	if len(banner) == 0 {
		banner = []string{"", DefaultBanner}
	}
	c := &Controller{sendWCO: true}
	for _, l := range banner {
		c.out.WriteString(l + "\r\n")
	}
	return c
}

// Read returns queued output, or io.EOF when nothing is left.
func (c *Controller) Read(p []byte) (int, error) {
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	if c.out.Len() == 0 {
		return 0, io.EOF
	}
	return c.out.Read(p)
}

func (c *Controller) Close() error {
	c.closed = true
	return nil
}

// Write handles realtime `?` bytes and newline terminated commands.
func (c *Controller) Write(p []byte) (int, error) {
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	for _, b := range p {
		switch b {
		case '?':
			c.status()
		case '\n':
			line := strings.TrimSpace(string(c.incoming))
			c.incoming = c.incoming[:0]
			c.command(line)
		default:
			c.incoming = append(c.incoming, b)
		}
	}
	return len(p), nil
}

func (c *Controller) println(format string, args ...interface{}) {
	fmt.Fprintf(&c.out, format+"\r\n", args...)
}

func (c *Controller) status() {
	state := "Idle"
	if c.running > 0 {
		state = "Run"
		c.running--
	}
	s := fmt.Sprintf("<%s|MPos:%.3f,%.3f,%.3f|FS:0,0", state, c.MPos.X, c.MPos.Y, c.MPos.Z)
	if c.sendWCO && !c.OmitWCO {
		s += fmt.Sprintf("|WCO:%.3f,%.3f,%.3f", c.WCO.X, c.WCO.Y, c.WCO.Z)
		c.sendWCO = false
	}
	c.println("%s>", s)
}

type words struct {
	g    []float64
	args map[byte]float64
}

func parseWords(line string) (w words, err error) {
	w.args = make(map[byte]float64)
	s := strings.ToUpper(strings.Replace(line, " ", "", -1))
	for len(s) > 0 {
		letter := s[0]
		n := 1
		for n < len(s) && (s[n] == '.' || s[n] == '-' || (s[n] >= '0' && s[n] <= '9')) {
			n++
		}
		val, err := strconv.ParseFloat(s[1:n], 64)
		if err != nil {
			return w, err
		}
		if letter == 'G' {
			w.g = append(w.g, val)
		} else {
			w.args[letter] = val
		}
		s = s[n:]
	}
	return w, nil
}

func (w words) hasG(val float64) bool {
	for _, g := range w.g {
		if g == val {
			return true
		}
	}
	return false
}

// target applies axis words to the current machine position.
func (c *Controller) target(w words) coord.Point {
	p := c.MPos
	off := c.WCO
	if w.hasG(53) {
		off = coord.Point{}
	}
	if v, ok := w.args['X']; ok {
		p.X = v + off.X
	}
	if v, ok := w.args['Y']; ok {
		p.Y = v + off.Y
	}
	if v, ok := w.args['Z']; ok {
		p.Z = v + off.Z
	}
	return p
}

func (c *Controller) command(line string) {
	if line == "" {
		return
	}
	c.Commands = append(c.Commands, line)

	for _, m := range c.Messages[line] {
		c.println("%s", m)
	}
	if code, ok := c.Errors[line]; ok {
		c.println("error:%d", code)
		return
	}

	w, err := parseWords(line)
	if err != nil {
		c.println("error:2")
		return
	}

	switch {
	case w.hasG(38.2):
		c.probe(c.target(w))
	case w.hasG(92):
		for axis, v := range w.args {
			switch axis {
			case 'X':
				c.WCO.X = c.MPos.X - v
			case 'Y':
				c.WCO.Y = c.MPos.Y - v
			case 'Z':
				c.WCO.Z = c.MPos.Z - v
			}
		}
		c.sendWCO = true
	case w.hasG(0), w.hasG(1):
		c.MPos = c.target(w)
		c.running = c.RunPolls
	default:
		c.println("error:20")
		return
	}

	c.println("ok")
}

func (c *Controller) probe(target coord.Point) {
	c.running = c.RunPolls
	if c.Surface != nil {
		contact := c.Surface(c.MPos.X, c.MPos.Y)
		if contact <= c.MPos.Z && contact >= target.Z {
			c.MPos.Z = contact - c.Overshoot
			if c.MPos.Z < target.Z {
				c.MPos.Z = target.Z
			}
			c.println("[PRB:%.3f,%.3f,%.3f:1]", c.MPos.X, c.MPos.Y, contact)
			return
		}
	}

	c.MPos.Z = target.Z
	c.println("[PRB:%.3f,%.3f,%.3f:0]", c.MPos.X, c.MPos.Y, c.MPos.Z)
}
