// Package cpu implements the LS-8 microprocessor and its assembler.
//
// The CPU has 256 bytes of memory, eight 8-bit registers (r0-r7, with r7
// used as the stack pointer), an ALU, and a downward growing stack that
// begins at 0xf4.
//
// Every opcode byte describes its own length and flow control: the upper two
// bits are the number of operand bytes that follow it, and bit 4 is set when
// the instruction assigns the program counter itself. The fetch loop uses
// only those bits to advance, so handlers never adjust the PC for ordinary
// instructions.
//
// The assembler accepts LS-8 mnemonics, labels, equates, and compile-time
// expression evaluation, and produces a Program that can be loaded into
// memory.
package cpu
