package vm

// Word is the machine's native value: an unsigned integer in [0, 32775].
// Values in [0, 32767] are literals; values in [32768, 32775] encode
// registers R0..R7 in operand position. Values >= 32776 never appear
// in a valid program and are rejected at load time.
type Word = uint16

const (
	// ModuloSpace is the size of the literal value space; arithmetic
	// results wrap modulo this.
	ModuloSpace = 32768

	// RegisterBase is the first encoded value that denotes a register.
	RegisterBase Word = 32768
	// RegisterLimit is one past the last encoded value that denotes a register.
	RegisterLimit Word = 32776

	// NumRegisters is the number of general-purpose registers R0..R7.
	NumRegisters = 8

	// MemorySize is the number of addressable words; every address in
	// [0, MemorySize) is always valid for read and write.
	MemorySize = 32768
)

// isRegisterEncoding reports whether x falls in the register encoding range.
func isRegisterEncoding(x Word) bool {
	return x >= RegisterBase && x < RegisterLimit
}

// registerIndex converts a register encoding to its 0..7 index.
// Callers must have already checked isRegisterEncoding(x).
func registerIndex(x Word) int {
	return int(x - RegisterBase)
}
