package vm

import "github.com/pkg/errors"

// Step executes exactly one instruction at the current PC: it fetches
// the opcode word, decodes arity, reads that many operand words,
// performs the effect and either advances PC past the instruction or
// sets it explicitly. Any non-nil error aborts the run loop.
//
// halted is true after HALT, or after RET with an empty stack (treated
// as a clean halt, matching the reference implementation's observed
// behavior rather than propagating ErrEmptyStack).
func (m *Machine) Step() (halted bool, err error) {
	pc := m.pc
	opcode := Opcode(m.memory[pc])

	arity, ok := opcode.Arity()
	if !ok {
		return false, errors.Wrapf(ErrUnknownOpcode, "opcode %d at pc=%d", opcode, pc)
	}
	if int(pc)+arity >= MemorySize {
		return false, errors.Wrapf(ErrOutOfBounds, "instruction at pc=%d runs past end of memory", pc)
	}

	operand := func(i int) Word {
		return m.memory[int(pc)+1+i]
	}

	switch opcode {
	case Halt:
		return true, nil

	case Set:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		m.registers[d] = m.valueOf(operand(1))
		m.pc += 3

	case Push:
		m.Push(m.valueOf(operand(0)))
		m.pc += 2

	case Pop:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		v, err := m.Pop()
		if err != nil {
			return false, err
		}
		m.registers[d] = v
		m.pc += 2

	case Eq:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		b, c := m.valueOf(operand(1)), m.valueOf(operand(2))
		m.registers[d] = boolWord(b == c)
		m.pc += 4

	case Gt:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		b, c := m.valueOf(operand(1)), m.valueOf(operand(2))
		m.registers[d] = boolWord(b > c)
		m.pc += 4

	case Jmp:
		m.pc = m.valueOf(operand(0))

	case Jt:
		// A zero condition advances PC by 3 and must not read memory at
		// the jump target, so the target operand is only resolved
		// inside the taken branch.
		if m.valueOf(operand(0)) != 0 {
			m.pc = m.valueOf(operand(1))
		} else {
			m.pc += 3
		}

	case Jf:
		if m.valueOf(operand(0)) == 0 {
			m.pc = m.valueOf(operand(1))
		} else {
			m.pc += 3
		}

	case Add:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		b, c := m.valueOf(operand(1)), m.valueOf(operand(2))
		m.registers[d] = Word((uint32(b) + uint32(c)) % ModuloSpace)
		m.pc += 4

	case Mult:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		b, c := m.valueOf(operand(1)), m.valueOf(operand(2))
		m.registers[d] = Word((uint32(b) * uint32(c)) % ModuloSpace)
		m.pc += 4

	case Mod:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		b, c := m.valueOf(operand(1)), m.valueOf(operand(2))
		if c == 0 {
			return false, errors.Wrapf(ErrDivByZero, "mod at pc=%d", pc)
		}
		m.registers[d] = b % c
		m.pc += 4

	case And:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		b, c := m.valueOf(operand(1)), m.valueOf(operand(2))
		m.registers[d] = b & c
		m.pc += 4

	case Or:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		b, c := m.valueOf(operand(1)), m.valueOf(operand(2))
		m.registers[d] = b | c
		m.pc += 4

	case Not:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		b := m.valueOf(operand(1))
		m.registers[d] = (^b) & 0x7FFF
		m.pc += 3

	case Rmem:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		addr := m.valueOf(operand(1))
		v, err := m.MemoryAt(int(addr))
		if err != nil {
			return false, err
		}
		m.registers[d] = v
		m.pc += 3

	case Wmem:
		addr := m.valueOf(operand(0))
		v := m.valueOf(operand(1))
		if int(addr) >= MemorySize {
			return false, errors.Wrapf(ErrOutOfBounds, "address %d at pc=%d", addr, pc)
		}
		m.memory[addr] = v
		m.pc += 3

	case Call:
		target := m.valueOf(operand(0))
		m.Push(m.pc + 2)
		m.pc = target

	case Ret:
		addr, err := m.Pop()
		if err != nil {
			// Returning into an empty stack is treated as a clean halt.
			return true, nil
		}
		m.pc = addr

	case Out:
		if m.prompt != nil {
			m.prompt.Write([]byte{byte(m.valueOf(operand(0)) & 0xFF)})
		}
		m.pc += 2

	case In:
		d, err := m.destinationIndex(operand(0))
		if err != nil {
			return false, err
		}
		b, consumed, err := m.readByte()
		if err != nil {
			return false, err
		}
		if !consumed {
			// A debug command was intercepted; this IN instruction
			// does not advance PC and will re-run next tick.
			return false, nil
		}
		m.registers[d] = Word(b)
		m.pc += 2

	case Noop:
		m.pc += 1

	default:
		return false, errors.Wrapf(ErrUnknownOpcode, "opcode %d at pc=%d", opcode, pc)
	}

	return false, nil
}

// boolWord converts a Go bool to the machine's 0/1 Word encoding.
func boolWord(b bool) Word {
	if b {
		return 1
	}
	return 0
}

// Run drives Step in a loop until it halts or returns an error. It is
// a thin convenience wrapper around RunUntilHalt for callers (and
// tests) that have no external interrupt source.
func (m *Machine) Run() error {
	return m.RunUntilHalt(nil)
}
