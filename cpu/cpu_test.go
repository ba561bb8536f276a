package cpu

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/ls8/io"
)

// newLoadedCpu creates a CPU with an image loaded and PRN sent to a buffer.
func newLoadedCpu(t *testing.T, image ...uint8) (cpu *Cpu, output *bytes.Buffer) {
	cpu = NewCpu()
	output = &bytes.Buffer{}
	cpu.Output = &io.Tape{Output: output}

	err := cpu.Memory.Load(image)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestCpu(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	assert.False(cpu.Verbose)
	assert.False(cpu.Running)
	assert.Equal(0, cpu.Pc)
	assert.Equal(uint8(SP_INIT), cpu.Register[REG_SP])
	assert.Equal(9, len(cpu.dispatch))

	defines := map[string]string{}
	for key, value := range cpu.Defines() {
		defines[key] = value
	}
	assert.Equal("256", defines["MEMORY_SIZE"])
	assert.Equal("0xf4", defines["SP_INIT"])
	assert.Equal("0b10000010", defines["LDI"])
	assert.Equal("0b00000001", defines["HLT"])
}

func TestCpuAccessors(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()

	assert.NoError(cpu.RamWrite(0x10, 0x55))
	val, err := cpu.RamRead(0x10)
	assert.NoError(err)
	assert.Equal(uint8(0x55), val)
	_, err = cpu.RamRead(MEMORY_SIZE)
	assert.ErrorIs(err, ErrAddressRange)

	assert.NoError(cpu.RegWrite(2, 0x22))
	val, err = cpu.RegRead(2)
	assert.NoError(err)
	assert.Equal(uint8(0x22), val)
	assert.ErrorIs(cpu.RegWrite(8, 0), ErrRegisterInvalid)
}

func TestCpuAdvance(t *testing.T) {
	assert := assert.New(t)

	const pc = 0x20

	for _, code := range Codes() {
		if code.SetsPc() {
			continue
		}

		cpu, _ := newLoadedCpu(t)
		cpu.Memory.Data[pc] = uint8(code)
		cpu.Memory.Data[pc+1] = 0
		cpu.Memory.Data[pc+2] = 1
		cpu.Pc = pc
		cpu.Running = true

		err := cpu.Execute(code)
		assert.NoError(err, code.String())
		assert.Equal(pc+code.Operands()+1, cpu.Pc, code.String())
		assert.Equal(code, cpu.Ir, code.String())
		assert.Equal(1, cpu.Ticks, code.String())
	}
}

func TestCpuTickHalt(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newLoadedCpu(t, uint8(CODE_HLT))
	cpu.Running = true

	assert.NoError(cpu.Tick())
	assert.False(cpu.Running)
	assert.Equal(1, cpu.Pc)
	assert.Equal(CODE_HLT, cpu.Ir)
}

func TestCpuRun(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		image  []uint8
		output string
	}){
		{"print", []uint8{
			0b10000010, 0b00000000, 0b00001000, // LDI R0,8
			0b01000111, 0b00000000, // PRN R0
			0b00000001, // HLT
		}, "8\n"},
		{"mult", []uint8{
			0b10000010, 0b00000000, 0b00001000, // LDI R0,8
			0b10000010, 0b00000001, 0b00001001, // LDI R1,9
			0b10100010, 0b00000000, 0b00000001, // MUL R0,R1
			0b01000111, 0b00000000, // PRN R0
			0b00000001, // HLT
		}, "72\n"},
		{"add", []uint8{
			0x82, 0x00, 200, // LDI R0,200
			0x82, 0x01, 100, // LDI R1,100
			0xa0, 0x00, 0x01, // ADD R0,R1
			0x47, 0x00, // PRN R0
			0x01, // HLT
		}, "44\n"},
		{"call", []uint8{
			0x82, 0x00, 42, // 0: LDI R0,42
			0x82, 0x02, 99, // 3: LDI R2,99
			0x82, 0x01, 14, // 6: LDI R1,14
			0x50, 0x01, // 9: CALL R1
			0x47, 0x00, // 11: PRN R0
			0x01,       // 13: HLT
			0x47, 0x02, // 14: PRN R2
			0x11, // 16: RET
		}, "99\n42\n"},
		{"stack", []uint8{
			0x82, 0x00, 1, // LDI R0,1
			0x82, 0x01, 2, // LDI R1,2
			0x45, 0x00, // PUSH R0
			0x45, 0x01, // PUSH R1
			0x46, 0x00, // POP R0
			0x46, 0x01, // POP R1
			0x47, 0x00, // PRN R0
			0x47, 0x01, // PRN R1
			0x01, // HLT
		}, "2\n1\n"},
	}

	for _, entry := range table {
		cpu, output := newLoadedCpu(t, entry.image...)

		err := cpu.Run()
		assert.NoError(err, entry.name)
		assert.False(cpu.Running, entry.name)
		assert.Equal(entry.output, output.String(), entry.name)
		assert.Equal(uint8(SP_INIT), cpu.Register[REG_SP], entry.name)
	}
}

func TestCpuCallRet(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newLoadedCpu(t)
	cpu.Memory.Data[0x30] = uint8(CODE_CALL)
	cpu.Memory.Data[0x31] = 3
	cpu.Memory.Data[0x80] = uint8(CODE_RET)
	cpu.Register[3] = 0x80
	cpu.Register[4] = 0x44
	cpu.Pc = 0x30

	before := cpu.Memory.Data

	assert.NoError(cpu.Tick())
	assert.Equal(0x80, cpu.Pc)
	assert.Equal(uint8(SP_INIT-1), cpu.Register[REG_SP])
	val, ok := cpu.Peek()
	assert.True(ok)
	assert.Equal(uint8(0x32), val)

	assert.NoError(cpu.Tick())
	assert.Equal(0x32, cpu.Pc)
	assert.Equal(uint8(SP_INIT), cpu.Register[REG_SP])
	assert.Equal(uint8(0x80), cpu.Register[3])
	assert.Equal(uint8(0x44), cpu.Register[4])

	// Only the stack region changed.
	after := cpu.Memory.Data
	assert.Equal(before[:SP_INIT-1], after[:SP_INIT-1])
	assert.Equal(before[SP_INIT:], after[SP_INIT:])
}

func TestCpuPushPop(t *testing.T) {
	assert := assert.New(t)

	for _, value := range []uint8{0, 1, 0x7f, 0xff} {
		cpu, _ := newLoadedCpu(t,
			uint8(CODE_PUSH), 5,
			uint8(CODE_LDI), 5, 0xaa,
			uint8(CODE_POP), 5,
			uint8(CODE_HLT),
		)
		cpu.Register[5] = value

		assert.NoError(cpu.Run())
		assert.Equal(value, cpu.Register[5])
		assert.Equal(uint8(SP_INIT), cpu.Register[REG_SP])
	}
}

func TestCpuUnsupportedOpcode(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newLoadedCpu(t,
		uint8(CODE_LDI), 0, 3,
		0b11111111,
		uint8(CODE_PRN), 0,
		uint8(CODE_HLT),
	)

	err := cpu.Run()
	assert.ErrorIs(err, ErrUnsupportedOpcode)
	assert.False(cpu.Running)
	assert.Equal("", output.String())

	var eo ErrOpcode
	assert.True(errors.As(err, &eo))
	assert.Equal(3, eo.Pc)
	assert.Equal(Code(0xff), eo.Code)
	assert.True(strings.Contains(err.Error(), "0b11111111"), err.Error())

	// The PC is left on the faulting instruction.
	assert.Equal(3, cpu.Pc)
}

func TestCpuFaults(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		image []uint8
		sp    uint8
		err   error
	}){
		{"ldi_register", []uint8{uint8(CODE_LDI), 8, 1}, SP_INIT, ErrRegisterInvalid},
		{"prn_register", []uint8{uint8(CODE_PRN), 9}, SP_INIT, ErrRegisterInvalid},
		{"pop_register", []uint8{uint8(CODE_POP), 9}, SP_INIT, ErrRegisterInvalid},
		{"pop_empty", []uint8{uint8(CODE_POP), 0}, 0xff, ErrStackEmpty},
		{"push_full", []uint8{uint8(CODE_PUSH), 0}, 0, ErrStackFull},
		{"call_full", []uint8{uint8(CODE_CALL), 0}, 0, ErrStackFull},
		{"ret_empty", []uint8{uint8(CODE_RET)}, 0xff, ErrStackEmpty},
		{"run_off_end", nil, SP_INIT, ErrUnsupportedOpcode},
	}

	for _, entry := range table {
		cpu, _ := newLoadedCpu(t, entry.image...)
		cpu.Register[REG_SP] = entry.sp

		err := cpu.Run()
		assert.ErrorIs(err, entry.err, entry.name)
		assert.False(cpu.Running, entry.name)
		assert.Equal(0, cpu.Pc, entry.name)

		var eo ErrOpcode
		assert.True(errors.As(err, &eo), entry.name)
	}
}

func TestCpuOperandRange(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newLoadedCpu(t)
	cpu.Memory.Data[MEMORY_SIZE-1] = uint8(CODE_PRN)
	cpu.Pc = MEMORY_SIZE - 1

	err := cpu.Tick()
	assert.ErrorIs(err, ErrAddressRange)

	cpu.Pc = MEMORY_SIZE
	cpu.Running = true
	err = cpu.Tick()
	assert.ErrorIs(err, ErrAddressRange)
	assert.False(cpu.Running)
}

func TestCpuMissingOutput(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu()
	assert.NoError(cpu.Memory.Load([]uint8{uint8(CODE_PRN), 0}))

	assert.ErrorIs(cpu.Tick(), ErrChannelMissing)
}

func TestCpuTrace(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newLoadedCpu(t, 0x82, 0x00, 0x08)
	cpu.Register[1] = 0xab

	assert.Equal("TRACE: 00 | 82 00 08 | 00 AB 00 00 00 00 00 F4", cpu.Trace())

	cpu.Pc = MEMORY_SIZE - 1
	assert.Equal("TRACE: FF | 00 00 00 | 00 AB 00 00 00 00 00 F4", cpu.Trace())

	text := cpu.String()
	assert.True(strings.Contains(text, "   sp: F4\n"), text)
	assert.True(strings.Contains(text, "   r1: AB\n"), text)
}
