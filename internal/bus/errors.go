package bus

import (
	"errors"
	"fmt"
)

// ErrUnmodeled is matched by every UnmodeledError.
var ErrUnmodeled = errors.New("bus: access to unmodeled device")

// UnmodeledError records an access to a region with no backing device.
type UnmodeledError struct {
	Addr   uint16
	Region Region
	Write  bool
}

func (e *UnmodeledError) Error() string {
	op := "load"
	if e.Write {
		op = "store"
	}
	return fmt.Sprintf("bus: %s at %04X: region %s has no device", op, e.Addr, e.Region)
}

func (e *UnmodeledError) Unwrap() error { return ErrUnmodeled }
