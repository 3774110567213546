package cpu

import (
	"errors"
	"fmt"
)

// ErrUnimplemented is matched by every DecodeError.
var ErrUnimplemented = errors.New("cpu: unimplemented opcode")

// DecodeError reports an opcode with no table entry and where it was fetched.
type DecodeError struct {
	Opcode   byte
	Addr     uint16
	Extended bool
}

func (e *DecodeError) Error() string {
	if e.Extended {
		return fmt.Sprintf("cpu: unimplemented opcode CB %02X at %04X", e.Opcode, e.Addr)
	}
	return fmt.Sprintf("cpu: unimplemented opcode %02X at %04X", e.Opcode, e.Addr)
}

func (e *DecodeError) Unwrap() error { return ErrUnimplemented }
