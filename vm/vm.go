// Package vm implements the Synacor-style 15-bit virtual machine: its
// state, loader/snapshotter, instruction executor, I/O buffering,
// disassembler and debugger surface.
package vm

import "github.com/pkg/errors"

// Machine holds the complete state of one VM instance: memory,
// registers, stack and program counter, plus the I/O buffering state
// used by the IN opcode. It is owned exclusively by its executor;
// debugger commands (debug.go) mutate it synchronously between
// instructions, never concurrently.
type Machine struct {
	memory    [MemorySize]Word
	registers [NumRegisters]Word
	stack     []Word
	pc        Word

	input  inputBuffer
	prompt Prompter

	debugEnabled bool
}

// EnableDebugger turns on interception of "!"-prefixed input lines by
// the debugger surface. Off by default; the CLI's `--debug` flag turns
// it on.
func (m *Machine) EnableDebugger() { m.debugEnabled = true }

// New constructs a Machine with zeroed memory/registers, an empty
// stack and PC at 0. Load and LoadFile build an already populated
// Machine from a plain image or a snapshot.
func New() *Machine {
	return &Machine{}
}

// PC returns the current program counter.
func (m *Machine) PC() Word { return m.pc }

// SetPC sets the program counter directly. The loader and the executor
// assign the pc field themselves rather than going through this method.
func (m *Machine) SetPC(pc Word) { m.pc = pc }

// Register returns the value held in register i (0..7).
func (m *Machine) Register(i int) Word { return m.registers[i] }

// SetRegister stores v into register i (0..7).
func (m *Machine) SetRegister(i int, v Word) { m.registers[i] = v }

// Registers returns a copy of all 8 registers in index order.
func (m *Machine) Registers() [NumRegisters]Word { return m.registers }

// Memory returns the word stored at address. address must be < MemorySize;
// callers that accept addresses from program data should use MemoryAt
// instead, which validates the bound.
func (m *Machine) Memory(address Word) Word { return m.memory[address] }

// SetMemory stores v at address.
func (m *Machine) SetMemory(address Word, v Word) { m.memory[address] = v }

// MemoryAt reads memory[address] after validating that address is in
// range, wrapping ErrOutOfBounds with the offending address and the
// current PC otherwise. Used by RMEM, whose address operand is an
// arbitrary resolved Word and so is not guaranteed to be in bounds.
func (m *Machine) MemoryAt(address int) (Word, error) {
	if address < 0 || address >= MemorySize {
		return 0, errors.Wrapf(ErrOutOfBounds, "address %d at pc=%d", address, m.pc)
	}
	return m.memory[address], nil
}

// Stack returns the stack contents, bottom to top (index 0 is the
// bottom of the stack, the last element is the top).
func (m *Machine) Stack() []Word { return m.stack }

// Push appends v to the top of the stack.
func (m *Machine) Push(v Word) { m.stack = append(m.stack, v) }

// Pop removes and returns the top of the stack. Returns ErrEmptyStack
// (wrapped with the current PC) if the stack is empty. The popped
// value is returned literally — valueOf is not reapplied to it.
func (m *Machine) Pop() (Word, error) {
	if len(m.stack) == 0 {
		return 0, errors.Wrapf(ErrEmptyStack, "at pc=%d", m.pc)
	}
	top := len(m.stack) - 1
	v := m.stack[top]
	m.stack = m.stack[:top]
	return v, nil
}

// valueOf resolves an encoded operand word to its value: a literal
// passes through unchanged, a register encoding resolves to the
// register's current contents. This is the one operand-resolution
// rule used throughout the executor.
func (m *Machine) valueOf(x Word) Word {
	if isRegisterEncoding(x) {
		return m.registers[registerIndex(x)]
	}
	return x
}

// destinationIndex validates that x encodes a register (a write
// destination may never be a literal) and returns its 0..7 index.
func (m *Machine) destinationIndex(x Word) (int, error) {
	if !isRegisterEncoding(x) {
		return 0, errors.Wrapf(ErrInvalidDestination, "operand %d at pc=%d", x, m.pc)
	}
	return registerIndex(x), nil
}
