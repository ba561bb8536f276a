// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/io"
)

var _emulator_defines = map[string]string{
	"STACK_BASE": fmt.Sprintf("0x%x", cpu.SP_INIT),
}

// Emulator state. CPU + program image + output tape.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Assembled program listing, if any.

	Rom  io.Rom  // Program image loaded on reset.
	Tape io.Tape // PRN output.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu: cpu.NewCpu(),
	}

	emu.Cpu.Output = &emu.Tape

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines), emu.Cpu.Defines())
}

// Assembler returns an assembler that knows the emulator defines.
func (emu *Emulator) Assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	return
}

// Reset the CPU, and load the program image into memory.
// If a Program is set, its binary replaces the Rom image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	if emu.Program != nil {
		emu.Rom.Data = emu.Program.Binary()
	}

	emu.Cpu.Reset()

	err = emu.Cpu.Memory.Load(emu.Rom.Data)
	if err != nil {
		return
	}

	emu.Cpu.Running = true

	if emu.Verbose {
		log.Printf("emulator: loaded %d bytes", len(emu.Rom.Data))
	}

	return
}

// LineNo returns the source line number for the executing opcode, or 0 if
// there is no program listing.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction. done is set once the CPU halts.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	if !emu.Cpu.Running {
		done = true
		return
	}

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = !emu.Cpu.Running
	return
}

// Run ticks until the CPU halts. A limit above zero bounds the number of
// instructions executed, returning ErrTickLimit when reached.
func (emu *Emulator) Run(limit int) (err error) {
	for ticks := 0; limit <= 0 || ticks < limit; ticks++ {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}

	err = ErrTickLimit
	return
}
