package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo    int
	Pc        int
	Words     []string
	Data      []uint8
	LinkLabel string
}

// Program is an assembled LS-8 program.
type Program struct {
	Opcodes []Opcode
}

// Debug locates the opcode containing a memory address.
type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode that generated the byte at pc. The Opcode is nil
// if no opcode covers that address.
func (prog *Program) Debug(pc int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if pc >= op.Pc && pc < op.Pc+len(op.Data) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  pc - op.Pc,
			}
			break
		}
	}

	return
}

// Bytes iterates over every address and byte generated by the program.
func (prog *Program) Bytes() iter.Seq2[int, uint8] {
	return func(yield func(pc int, value uint8) bool) {
		for _, op := range prog.Opcodes {
			for n, value := range op.Data {
				if !yield(op.Pc+n, value) {
					return
				}
			}
		}
	}
}

// Binary returns the memory image of the program.
func (prog *Program) Binary() (image []uint8) {
	for pc, value := range prog.Bytes() {
		for len(image) <= pc {
			image = append(image, 0)
		}
		image[pc] = value
	}

	return
}
