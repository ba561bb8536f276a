package io

import (
	"fmt"
	"io"
)

// Tape writes each byte sent to it as a decimal line.
type Tape struct {
	Output io.Writer

	Sent int // Number of values written.
}

var _ Channel = (*Tape)(nil)

// Send writes a value to the output stream.
func (tc *Tape) Send(value uint8) (err error) {
	if tc.Output == nil {
		err = ErrTapeMissing
		return
	}

	_, err = fmt.Fprintf(tc.Output, "%d\n", value)
	if err != nil {
		return
	}

	tc.Sent++
	return
}
