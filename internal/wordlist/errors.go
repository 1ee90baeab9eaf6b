package wordlist

import (
	"errors"
	"fmt"
)

// ErrMalformedDate is matched by every MalformedDateError
var ErrMalformedDate = errors.New("malformed date")

// MalformedDateError reports a date that cannot be split into year, month and day
type MalformedDateError struct {
	Date   string
	Reason string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q: %s", e.Date, e.Reason)
}

// Is lets errors.Is(err, ErrMalformedDate) match
func (e *MalformedDateError) Is(target error) bool {
	return target == ErrMalformedDate
}

// SinkWriteError reports a failure to open, append to, flush or close a sink
type SinkWriteError struct {
	Op  string
	Err error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Op, e.Err)
}

func (e *SinkWriteError) Unwrap() error {
	return e.Err
}

func sinkError(op string, err error) error {
	var swe *SinkWriteError
	if errors.As(err, &swe) {
		return err
	}
	return &SinkWriteError{Op: op, Err: err}
}
