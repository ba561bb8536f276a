package cpu

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrUnsupportedOpcode       = errors.New(f("unsupported opcode"))
	ErrUnsupportedAluOperation = errors.New(f("unsupported alu operation"))
	ErrAddressRange            = errors.New(f("address out of range"))
	ErrRegisterInvalid         = errors.New(f("register invalid"))
	ErrStackEmpty              = errors.New(f("stack empty"))
	ErrStackFull               = errors.New(f("stack full"))
	ErrChannelMissing          = errors.New(f("output channel missing"))
	ErrProgramSize             = errors.New(f("program exceeds memory"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
)

// ErrOpcode reports the opcode and program counter of a failed instruction.
type ErrOpcode struct {
	Pc   int
	Code Code
}

func (eo ErrOpcode) Error() string {
	return f("opcode 0b%08b (%v) at pc 0x%02x", uint8(eo.Code), eo.Code.String(), eo.Pc)
}

// Is matches any ErrOpcode, and ErrUnsupportedOpcode for opcodes
// outside of the instruction set.
func (eo ErrOpcode) Is(err error) (ok bool) {
	if err == ErrUnsupportedOpcode {
		return !eo.Code.Known()
	}
	_, ok = err.(ErrOpcode)
	return
}

// ErrAluOperation is an ALU operation tag the ALU does not implement.
type ErrAluOperation AluOp

func (ea ErrAluOperation) Error() string {
	return f("unsupported alu operation %d", int(ea))
}

func (ea ErrAluOperation) Is(err error) bool {
	return err == ErrUnsupportedAluOperation
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrRegister string

func (er ErrRegister) Error() string {
	return f("'%v' is not a register", string(er))
}

func (er ErrRegister) Is(err error) bool {
	return err == ErrRegisterInvalid
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
