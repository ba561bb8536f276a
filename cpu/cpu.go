package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
)

// Channel is the output channel written by PRN.
type Channel io.Channel

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":    fmt.Sprintf("%d", MEMORY_SIZE),
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	"SP_INIT":        fmt.Sprintf("0x%x", SP_INIT),
}

// Cpu is the simulation context for the LS-8 processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Pc       int          // Address of the instruction being executed.
	Ir       Code         // Instruction register.
	Register RegisterFile // Register bank, r7 is the stack pointer.
	Memory   Memory       // Main memory.
	Running  bool         // Cleared by HLT, or by any fault.

	Ticks int // Instructions executed.

	Output Channel // Destination of PRN.

	dispatch map[Code]func() error
}

// NewCpu creates a new CPU in the reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	cpu.dispatch = map[Code]func() error{
		CODE_LDI:  cpu.opLdi,
		CODE_PRN:  cpu.opPrn,
		CODE_HLT:  cpu.opHlt,
		CODE_ADD:  cpu.opAdd,
		CODE_MUL:  cpu.opMul,
		CODE_PUSH: cpu.opPush,
		CODE_POP:  cpu.opPop,
		CODE_CALL: cpu.opCall,
		CODE_RET:  cpu.opRet,
	}

	cpu.Reset()

	return
}

// Defines for the cpu, including all opcode mnemonics.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	codes := func(yield func(string, string) bool) {
		for name, code := range Codes() {
			if !yield(name, fmt.Sprintf("0b%08b", uint8(code))) {
				return
			}
		}
	}
	return internal.Concat2(maps.All(_cpu_defines), codes)
}

// Reset the CPU state.
// - Clears memory and registers.
// - Presets the stack pointer.
// - Zeros the PC, IR and tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	cpu.Register.Reset()
	cpu.Pc = 0
	cpu.Ir = 0
	cpu.Ticks = 0
	cpu.Running = false
}

// RamRead reads a byte of memory.
func (cpu *Cpu) RamRead(addr int) (uint8, error) {
	return cpu.Memory.Read(addr)
}

// RamWrite writes a byte of memory.
func (cpu *Cpu) RamWrite(addr int, value uint8) error {
	return cpu.Memory.Write(addr, value)
}

// RegRead reads a register.
func (cpu *Cpu) RegRead(index uint8) (uint8, error) {
	return cpu.Register.Read(index)
}

// RegWrite writes a register.
func (cpu *Cpu) RegWrite(index uint8, value uint8) error {
	return cpu.Register.Write(index, value)
}

// Trace returns a single line summary of the CPU state:
// PC, the next three bytes of memory, and all registers in hexadecimal.
func (cpu *Cpu) Trace() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "TRACE: %02X | %02X %02X %02X |",
		cpu.Pc,
		cpu.Memory.Peek(cpu.Pc),
		cpu.Memory.Peek(cpu.Pc+1),
		cpu.Memory.Peek(cpu.Pc+2),
	)

	for _, val := range cpu.Register {
		fmt.Fprintf(&sb, " %02X", val)
	}

	return sb.String()
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"pc", "ir",
		"r0", "r1", "r2", "r3", "r4", "r5", "r6", "sp",
		"stack", "ticks",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "pc":
			strval = fmt.Sprintf("%02X", cpu.Pc)
		case "ir":
			strval = fmt.Sprintf("%08b %v", uint8(cpu.Ir), cpu.Ir)
		case "r0", "r1", "r2", "r3", "r4", "r5", "r6":
			strval = fmt.Sprintf("%02X", cpu.Register[reg[1]-'0'])
		case "sp":
			strval = fmt.Sprintf("%02X", cpu.Register[REG_SP])
		case "stack":
			val, ok := cpu.Peek()
			if ok {
				strval = fmt.Sprintf("%02X", val)
			} else {
				strval = "--"
			}
		case "ticks":
			strval = fmt.Sprintf("%d", cpu.Ticks)
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// Run executes instructions until HLT, or until an instruction faults.
func (cpu *Cpu) Run() (err error) {
	cpu.Running = true

	for cpu.Running {
		err = cpu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Tick fetches and executes a single instruction.
func (cpu *Cpu) Tick() (err error) {
	value, err := cpu.Memory.Read(cpu.Pc)
	if err != nil {
		cpu.Running = false
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: %v", cpu.Trace())
	}

	err = cpu.Execute(Code(value))
	return
}

// Execute executes a single decoded instruction located at the PC.
//
// Unless the opcode has the CODE_SETS_PC bit, the PC then advances past the
// opcode and its operands.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			cpu.Running = false
		}
	}()

	cpu.Ir = code

	handler, ok := cpu.dispatch[code]
	if !ok {
		err = ErrOpcode{Pc: cpu.Pc, Code: code}
		return
	}

	err = handler()
	if err != nil {
		err = errors.Join(ErrOpcode{Pc: cpu.Pc, Code: code}, err)
		return
	}

	if !code.SetsPc() {
		cpu.Pc += code.Size()
	}

	cpu.Ticks++

	return
}

// operand reads the n'th operand byte of the current instruction.
func (cpu *Cpu) operand(n int) (value uint8, err error) {
	value, err = cpu.Memory.Read(cpu.Pc + n)
	return
}

// operands reads both operand bytes of the current instruction.
func (cpu *Cpu) operands() (a, b uint8, err error) {
	a, err = cpu.operand(1)
	if err != nil {
		return
	}
	b, err = cpu.operand(2)
	return
}

func (cpu *Cpu) opLdi() (err error) {
	reg, value, err := cpu.operands()
	if err != nil {
		return
	}

	err = cpu.Register.Write(reg, value)
	return
}

func (cpu *Cpu) opPrn() (err error) {
	reg, err := cpu.operand(1)
	if err != nil {
		return
	}

	value, err := cpu.Register.Read(reg)
	if err != nil {
		return
	}

	if cpu.Output == nil {
		err = ErrChannelMissing
		return
	}

	err = cpu.Output.Send(value)
	return
}

func (cpu *Cpu) opHlt() (err error) {
	if cpu.Verbose {
		log.Printf("cpu: halt at 0x%02x", cpu.Pc)
	}

	cpu.Running = false
	return
}

func (cpu *Cpu) opAdd() (err error) {
	a, b, err := cpu.operands()
	if err != nil {
		return
	}

	err = cpu.Alu(ALU_OP_ADD, a, b)
	return
}

func (cpu *Cpu) opMul() (err error) {
	a, b, err := cpu.operands()
	if err != nil {
		return
	}

	err = cpu.Alu(ALU_OP_MUL, a, b)
	return
}

func (cpu *Cpu) opPush() (err error) {
	reg, err := cpu.operand(1)
	if err != nil {
		return
	}

	value, err := cpu.Register.Read(reg)
	if err != nil {
		return
	}

	err = cpu.Push(value)
	return
}

func (cpu *Cpu) opPop() (err error) {
	reg, err := cpu.operand(1)
	if err != nil {
		return
	}

	if int(reg) >= REGISTER_COUNT {
		err = ErrRegisterInvalid
		return
	}

	value, err := cpu.Pop()
	if err != nil {
		return
	}

	err = cpu.Register.Write(reg, value)
	return
}

func (cpu *Cpu) opCall() (err error) {
	reg, err := cpu.operand(1)
	if err != nil {
		return
	}

	target, err := cpu.Register.Read(reg)
	if err != nil {
		return
	}

	// Return to the instruction following CALL and its operand.
	next_pc := cpu.Pc + CODE_CALL.Size()
	if next_pc >= MEMORY_SIZE {
		err = ErrAddressRange
		return
	}

	err = cpu.Push(uint8(next_pc))
	if err != nil {
		return
	}

	cpu.Pc = int(target)
	return
}

func (cpu *Cpu) opRet() (err error) {
	next_pc, err := cpu.Pop()
	if err != nil {
		return
	}

	cpu.Pc = int(next_pc)
	return
}
