package vm

import "strconv"

// Disassemble renders the instruction stored at address as
// "mnemonic op1 op2 ...", or "" if the opcode there is unrecognized.
// It is pure with respect to the machine state it reads: it never
// advances PC or mutates anything.
func (m *Machine) Disassemble(address Word) string {
	opcode := Opcode(m.memory[address])
	arity, ok := arities[opcode]
	if !ok {
		return ""
	}

	text := opcode.String()
	hideIdx := hideValueArgIndex(opcode)

	for i := 0; i < arity; i++ {
		operandAddr := int(address) + 1 + i
		if operandAddr >= MemorySize {
			break
		}
		text += " " + m.formatOperand(m.memory[operandAddr], i == hideIdx)
	}

	return text
}

// formatOperand renders one operand word: a bare decimal literal, or
// an angle-bracketed register marker optionally followed by its
// current value. hideValue suppresses the value for IN's destination
// register, the one operand the reference debugger renders without
// its contents (every other destination operand still shows its
// pre-instruction value, same as a read operand).
func (m *Machine) formatOperand(x Word, hideValue bool) string {
	if !isRegisterEncoding(x) {
		return strconv.Itoa(int(x))
	}

	idx := registerIndex(x)
	if hideValue {
		return "<" + strconv.Itoa(idx) + ">"
	}
	return "<" + strconv.Itoa(idx) + ":" + strconv.Itoa(int(m.registers[idx])) + ">"
}
