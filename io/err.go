package io

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrTapeMissing = errors.New(f("tape output missing"))

	// Rom errors
	ErrRomSize = errors.New(f("program too large for memory"))
)

// ErrRomSyntax reports a line of a program image that is not a byte.
type ErrRomSyntax struct {
	LineNo int
	Line   string
}

func (err *ErrRomSyntax) Error() string {
	return f("line %d '%v' is not an 8 bit binary value", err.LineNo, err.Line)
}

// ErrRomCapacity reports how far a program image exceeds memory.
type ErrRomCapacity struct {
	Size     int
	Capacity int
}

func (err *ErrRomCapacity) Error() string {
	return f("program is %d bytes, memory holds %d", err.Size, err.Capacity)
}

func (err *ErrRomCapacity) Unwrap() error {
	return ErrRomSize
}
