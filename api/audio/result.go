package audio

import (
	"errors"
	"fmt"
)

// Result is the negative wire code handed across the engine boundary.
// ResultOK is never carried by an Error.
type Result int32

const (
	ResultOK Result = 0

	resultErrorBase Result = -900

	ResultDisconnected    Result = resultErrorBase + 1
	ResultIllegalArgument Result = resultErrorBase + 2
	ResultInternal        Result = resultErrorBase + 4
	ResultInvalidState    Result = resultErrorBase + 5
	ResultUnavailable     Result = resultErrorBase + 11
	ResultNoFreeHandles   Result = resultErrorBase + 12
	ResultNoMemory        Result = resultErrorBase + 13
	ResultNull            Result = resultErrorBase + 14
	ResultTimeout         Result = resultErrorBase + 15
	ResultWouldBlock      Result = resultErrorBase + 16
	ResultInvalidFormat   Result = resultErrorBase + 17
	ResultOutOfRange      Result = resultErrorBase + 18
	ResultNoService       Result = resultErrorBase + 19
	ResultInvalidRate     Result = resultErrorBase + 20
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultDisconnected:
		return "disconnected"
	case ResultIllegalArgument:
		return "illegal_argument"
	case ResultInternal:
		return "internal"
	case ResultInvalidState:
		return "invalid_state"
	case ResultUnavailable:
		return "unavailable"
	case ResultNoFreeHandles:
		return "no_free_handles"
	case ResultNoMemory:
		return "no_memory"
	case ResultNull:
		return "null"
	case ResultTimeout:
		return "timeout"
	case ResultWouldBlock:
		return "would_block"
	case ResultInvalidFormat:
		return "invalid_format"
	case ResultOutOfRange:
		return "out_of_range"
	case ResultNoService:
		return "no_service"
	case ResultInvalidRate:
		return "invalid_rate"
	default:
		return fmt.Sprintf("result(%d)", int32(r))
	}
}

// Error attaches a Result code to a human-readable failure description.
type Error struct {
	Code Result
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is makes errors.Is match two *Error values by code.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// Errorf builds an *Error with the given code and formatted message.
func Errorf(code Result, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the Result carried by err. Non-engine errors map to
// ResultInternal; nil maps to ResultOK.
func CodeOf(err error) Result {
	if err == nil {
		return ResultOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ResultInternal
}
