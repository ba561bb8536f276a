package cpu

const (
	REGISTER_COUNT = 8    // General purpose registers.
	REG_SP         = 7    // Register holding the stack pointer.
	SP_INIT        = 0xf4 // Stack pointer after reset.
)

// RegisterFile is the general purpose register bank.
type RegisterFile [REGISTER_COUNT]uint8

// Read a register.
func (rf *RegisterFile) Read(index uint8) (value uint8, err error) {
	if int(index) >= len(rf) {
		err = ErrRegisterInvalid
		return
	}

	value = rf[index]
	return
}

// Write a register.
func (rf *RegisterFile) Write(index uint8, value uint8) (err error) {
	if int(index) >= len(rf) {
		err = ErrRegisterInvalid
		return
	}

	rf[index] = value
	return
}

// Reset zeros the registers and presets the stack pointer.
func (rf *RegisterFile) Reset() {
	clear(rf[:])
	rf[REG_SP] = SP_INIT
}
