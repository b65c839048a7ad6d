package grbl

import (
	"strconv"
	"strings"
)

type ResponseKind int

const (
	NotAResponse ResponseKind = iota
	ResponseOK
	ResponseError
)

// Response is the final line of a command exchange.
type Response struct {
	Kind ResponseKind
	Code uint
}

func (r Response) IsSuccess() bool { return r.Kind == ResponseOK }
func (r Response) IsError() bool   { return r.Kind == ResponseError }

func (r Response) String() string {
	switch r.Kind {
	case ResponseOK:
		return "ok"
	case ResponseError:
		return "error:" + strconv.FormatUint(uint64(r.Code), 10)
	}
	return "not a response"
}

// ClassifyResponse checks if line is `ok` or `error:<code>`.
func ClassifyResponse(line string) Response {
	if line == "ok" {
		return Response{Kind: ResponseOK}
	}
	if !strings.HasPrefix(line, "error:") {
		return Response{}
	}

	s := line[len("error:"):]
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 {
		return Response{}
	}
	code, err := strconv.ParseUint(s[:n], 10, 32)
	if err != nil {
		return Response{}
	}

	return Response{Kind: ResponseError, Code: uint(code)}
}
