package cpu

const (
	MEMORY_SIZE = 256 // Bytes of addressable memory.
)

// Memory is the flat byte addressable store of the CPU.
type Memory struct {
	Data [MEMORY_SIZE]uint8
}

// Read a byte from memory.
func (mem *Memory) Read(addr int) (value uint8, err error) {
	if addr < 0 || addr >= len(mem.Data) {
		err = ErrAddressRange
		return
	}

	value = mem.Data[addr]
	return
}

// Write a byte to memory.
func (mem *Memory) Write(addr int, value uint8) (err error) {
	if addr < 0 || addr >= len(mem.Data) {
		err = ErrAddressRange
		return
	}

	mem.Data[addr] = value
	return
}

// Peek reads a byte, returning 0 for addresses outside of memory.
func (mem *Memory) Peek(addr int) (value uint8) {
	value, _ = mem.Read(addr)
	return
}

// Load copies a program image into memory, starting at address 0.
func (mem *Memory) Load(image []uint8) (err error) {
	if len(image) > len(mem.Data) {
		err = ErrProgramSize
		return
	}

	copy(mem.Data[:], image)
	return
}

// Reset zeros all of memory.
func (mem *Memory) Reset() {
	clear(mem.Data[:])
}
