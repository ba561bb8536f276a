package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass assembler for LS-8 mnemonics.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to memory addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = map[string]uint8{
	"r0": 0,
	"r1": 1,
	"r2": 2,
	"r3": 3,
	"r4": 4,
	"r5": 5,
	"r6": 6,
	"r7": 7,
	"sp": REG_SP,
}

var labelRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var exprRe = regexp.MustCompile(`\$\([^\$]*\)`)

// valueOf returns the byte value of a numeric word.
// Negative values down to -128 are stored in two's complement.
func (asm *Assembler) valueOf(word string) (value uint8, err error) {
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 < -0x80 || v64 > 0xff {
		err = fmt.Errorf("%w: %v", ErrValueRange, word)
		return
	}

	value = uint8(v64)
	return
}

// register returns the register index named by word.
func (asm *Assembler) register(word string) (reg uint8, err error) {
	reg, ok := regMap[strings.ToLower(word)]
	if !ok {
		err = ErrRegister(word)
	}
	return
}

// parenEval evaluates a $(...) expression.
func (asm *Assembler) parenEval(expr string) (value uint8, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, _err := strconv.ParseInt(str, 0, 32)
		if _err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, pc := range asm.Label {
		pred[key] = starlark.MakeInt(pc)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < -0x80 || st_int64 > 0xff {
		err = ErrParseExpression(expr)
		return
	}
	value = uint8(st_int64)
	return
}

// parseLine expands expressions and equates, records labels, and returns
// the remaining words of the line.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = exprRe.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	line = strings.ReplaceAll(line, ",", " ")
	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if strings.EqualFold(words[0], ".equ") {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !labelRe.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentPc()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// Substitute equates in the operands.
	for n, word := range words[1:] {
		equate, ok := asm.Equate[word]
		if ok {
			words[1+n] = equate
		}
	}

	return
}

// currentPc gets the address of the next generated byte.
func (asm *Assembler) currentPc() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Pc + len(last.Data)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	line = ""

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		lineno = op.LineNo
		label := op.LinkLabel
		pc, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		if pc >= MEMORY_SIZE {
			err = fmt.Errorf("%w: %v", ErrValueRange, label)
			return
		}
		op.Data[len(op.Data)-1] = uint8(pc)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	if asm.currentPc() > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}

	return
}

// immediate encodes an immediate operand, deferring unresolved labels to
// the link step.
func (asm *Assembler) immediate(word string, op *Opcode) (value uint8, err error) {
	value, err = asm.valueOf(word)
	if err == nil {
		return
	}

	if !labelRe.MatchString(word) {
		return
	}

	pc, ok := asm.Label[word]
	if ok {
		value, err = asm.valueOf(fmt.Sprintf("%d", pc))
		return
	}

	op.LinkLabel = word
	value, err = 0, nil
	return
}

// parseWords generates the bytes for a line of words.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	if len(words) == 0 {
		return
	}

	op := Opcode{
		LineNo: lineno,
		Pc:     asm.currentPc(),
		Words:  words,
	}

	args := words[1:]

	if strings.EqualFold(words[0], ".db") {
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var value uint8
			value, err = asm.valueOf(arg)
			if err != nil {
				return
			}
			op.Data = append(op.Data, value)
		}
		asm.Opcode = append(asm.Opcode, op)
		return
	}

	code, ok := LookupCode(words[0])
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	if len(args) < code.Operands() {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > code.Operands() {
		err = ErrOpcodeExtraArgs
		return
	}

	op.Data = append(op.Data, uint8(code))
	for n, arg := range args {
		var value uint8
		// LDI takes a register and an immediate, everything else
		// takes registers.
		if code == CODE_LDI && n == 1 {
			value, err = asm.immediate(arg, &op)
		} else {
			value, err = asm.register(arg)
		}
		if err != nil {
			return
		}
		op.Data = append(op.Data, value)
	}

	asm.Opcode = append(asm.Opcode, op)
	return
}
