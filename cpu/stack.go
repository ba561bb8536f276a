package cpu

// Push decrements the stack pointer and stores a byte at the new top.
func (cpu *Cpu) Push(value uint8) (err error) {
	sp := cpu.Register[REG_SP]
	if sp == 0 {
		err = ErrStackFull
		return
	}

	sp--
	err = cpu.Memory.Write(int(sp), value)
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp
	return
}

// Pop reads the byte at the top of the stack and increments the stack
// pointer.
func (cpu *Cpu) Pop() (value uint8, err error) {
	sp := cpu.Register[REG_SP]
	if int(sp) >= MEMORY_SIZE-1 {
		err = ErrStackEmpty
		return
	}

	value, err = cpu.Memory.Read(int(sp))
	if err != nil {
		return
	}

	cpu.Register[REG_SP] = sp + 1
	return
}

// Peek returns the byte at the top of the stack.
func (cpu *Cpu) Peek() (value uint8, ok bool) {
	sp := cpu.Register[REG_SP]
	if int(sp) >= MEMORY_SIZE-1 {
		return
	}

	return cpu.Memory.Data[sp], true
}
