package cpu

// AluOp is an ALU operation type.
type AluOp int

const (
	ALU_OP_ADD = AluOp(0) // add
	ALU_OP_MUL = AluOp(1) // mul
)

// doAlu combines two register values. Results wrap modulo 256.
func doAlu(op AluOp, a, b uint8) (output uint8, err error) {
	switch op {
	case ALU_OP_ADD:
		output = a + b
	case ALU_OP_MUL:
		output = a * b
	default:
		err = ErrAluOperation(op)
	}

	return
}

// Alu applies an operation to registers a and b, storing the result in a.
func (cpu *Cpu) Alu(op AluOp, reg_a, reg_b uint8) (err error) {
	a, err := cpu.Register.Read(reg_a)
	if err != nil {
		return
	}
	b, err := cpu.Register.Read(reg_b)
	if err != nil {
		return
	}

	output, err := doAlu(op, a, b)
	if err != nil {
		return
	}

	err = cpu.Register.Write(reg_a, output)
	return
}
