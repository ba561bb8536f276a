package cpu

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

// Code is a single LS-8 opcode byte.
type Code uint8

// Opcode bit layout.
const (
	CODE_OPERAND_SHIFT = 6    // Operand count lives in the top two bits.
	CODE_SETS_PC       = 0x10 // Instruction assigns the PC itself.
	CODE_ALU           = 0x20 // Instruction is an ALU operation.
)

// Supported opcodes.
const (
	CODE_HLT  = Code(0b00000001)
	CODE_RET  = Code(0b00010001)
	CODE_PUSH = Code(0b01000101)
	CODE_POP  = Code(0b01000110)
	CODE_PRN  = Code(0b01000111)
	CODE_CALL = Code(0b01010000)
	CODE_LDI  = Code(0b10000010)
	CODE_ADD  = Code(0b10100000)
	CODE_MUL  = Code(0b10100010)
)

var _code_name = map[Code]string{
	CODE_HLT:  "HLT",
	CODE_RET:  "RET",
	CODE_PUSH: "PUSH",
	CODE_POP:  "POP",
	CODE_PRN:  "PRN",
	CODE_CALL: "CALL",
	CODE_LDI:  "LDI",
	CODE_ADD:  "ADD",
	CODE_MUL:  "MUL",
}

var _code_mnemonic = func() map[string]Code {
	mnemonic := make(map[string]Code, len(_code_name))
	for code, name := range _code_name {
		mnemonic[name] = code
	}
	return mnemonic
}()

// Operands returns the number of operand bytes following the opcode.
func (code Code) Operands() int {
	return int(code >> CODE_OPERAND_SHIFT)
}

// Size returns the length of the instruction in bytes.
func (code Code) Size() int {
	return code.Operands() + 1
}

// SetsPc returns true if the instruction handler assigns the PC.
func (code Code) SetsPc() bool {
	return (code & CODE_SETS_PC) != 0
}

// IsAlu returns true if the instruction is an ALU operation.
func (code Code) IsAlu() bool {
	return (code & CODE_ALU) != 0
}

// Known returns true if the opcode is part of the instruction set.
func (code Code) Known() bool {
	_, ok := _code_name[code]
	return ok
}

// String returns the mnemonic, or the binary value for unknown opcodes.
func (code Code) String() string {
	name, ok := _code_name[code]
	if !ok {
		return fmt.Sprintf("0b%08b", uint8(code))
	}
	return name
}

// LookupCode finds the opcode for a mnemonic, ignoring case.
func LookupCode(mnemonic string) (code Code, ok bool) {
	code, ok = _code_mnemonic[strings.ToUpper(mnemonic)]
	return
}

// Codes iterates over all supported opcodes by mnemonic.
func Codes() iter.Seq2[string, Code] {
	return maps.All(_code_mnemonic)
}
