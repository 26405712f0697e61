package vm

import "github.com/pkg/errors"

// Load errors abort Load/LoadFile before the machine runs.
var (
	ErrTruncatedImage = errors.New("truncated image: incomplete word at end of file")
	ErrOutOfRange     = errors.New("word out of range (>= 32776)")
	ErrIoFailure      = errors.New("i/o failure reading image")
)

// Runtime errors abort the run loop. Each is wrapped where it is raised
// (in exec.go, or in the Machine accessors of vm.go that exec.go calls)
// with the program counter and, where there is one, the offending
// operand or address, via errors.Wrapf, so the cause remains matchable
// with errors.Is while the message still carries enough context for
// diagnosis.
var (
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrInvalidDestination = errors.New("invalid destination operand (not a register)")
	ErrOutOfBounds        = errors.New("memory address out of bounds")
	ErrEmptyStack         = errors.New("pop from empty stack")
	ErrDivByZero          = errors.New("division by zero")
)
