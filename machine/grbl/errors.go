package grbl

import (
	"errors"
	"strconv"
)

var (
	// ErrParse is returned for malformed status or response lines.
	ErrParse = errors.New("grbl: parse")

	// ErrPendingMessages is returned from SendCommand when messages from a
	// previous exchange have not been read with ReadMessages.
	ErrPendingMessages = errors.New("grbl: pending messages must be read before sending")

	// ErrUnsupportedVersion is returned from NewSender when the banner is not Grbl 1.1.
	ErrUnsupportedVersion = errors.New("grbl: unsupported version")

	// ErrController matches any ControllerError with errors.Is.
	ErrController = errors.New("grbl: controller error")
)

// ControllerError is returned when Grbl responds with `error:<code>`.
// The command is assumed not to have run.
type ControllerError struct {
	Code    uint
	Command string
}

func (e *ControllerError) Error() string {
	return "grbl: error:" + strconv.FormatUint(uint64(e.Code), 10) + " in response to '" + e.Command + "'"
}

func (e *ControllerError) Is(target error) bool { return target == ErrController }
