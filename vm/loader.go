package vm

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// dumpMagic is the four-byte prefix that identifies a snapshot file,
// as opposed to a plain binary image.
var dumpMagic = [4]byte{'D', 'U', 'M', 'P'}

// readWord reads one little-endian 16-bit word from r. The second
// return value is false at a clean end-of-stream (zero bytes read),
// distinguishing that case from a legitimate zero word. A single
// trailing byte is a truncated image and returns ErrTruncatedImage.
func readWord(r io.Reader) (Word, bool, error) {
	var buf [2]byte
	n, err := io.ReadFull(r, buf[:])
	switch {
	case n == 0 && (err == io.EOF || err == nil):
		return 0, false, nil
	case n == 1:
		return 0, false, errors.Wrap(ErrTruncatedImage, "reading word")
	case err != nil:
		return 0, false, errors.Wrap(ErrIoFailure, err.Error())
	}
	return binary.LittleEndian.Uint16(buf[:]), true, nil
}

// writeWord writes v to w as a little-endian 16-bit word.
func writeWord(w io.Writer, v Word) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// LoadFile opens path and loads it into a fresh Machine, detecting
// plain-image vs snapshot format from the leading four bytes.
func LoadFile(path string) (*Machine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(ErrIoFailure, err.Error())
	}
	defer f.Close()
	return Load(bufio.NewReader(f))
}

// Load reads a VM image from r, returning a populated Machine. If the
// stream begins with the ASCII bytes "DUMP" it is parsed as a
// snapshot; otherwise it is parsed as a plain little-endian word
// stream.
func Load(r io.Reader) (*Machine, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	prefix, err := br.Peek(len(dumpMagic))
	isSnapshot := err == nil && string(prefix) == string(dumpMagic[:])

	m := New()

	if isSnapshot {
		if _, err := io.CopyN(io.Discard, br, int64(len(dumpMagic))); err != nil {
			return nil, errors.Wrap(ErrIoFailure, err.Error())
		}
		if err := loadSnapshotBody(m, br); err != nil {
			return nil, err
		}
	}

	if err := loadMemory(m, br); err != nil {
		return nil, err
	}

	return m, nil
}

// loadSnapshotBody parses the register/stack/pc prefix of a snapshot,
// which follows the magic bytes and precedes the memory image.
func loadSnapshotBody(m *Machine, r io.Reader) error {
	for i := 0; i < NumRegisters; i++ {
		v, ok, err := readWord(r)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrap(ErrTruncatedImage, "reading registers")
		}
		m.registers[i] = v
	}

	stackLen, ok, err := readWord(r)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(ErrTruncatedImage, "reading stack length")
	}

	// Stack words are stored bottom-to-top, so pushing each in sequence
	// reproduces the original stack.
	m.stack = make([]Word, 0, stackLen)
	for i := Word(0); i < stackLen; i++ {
		v, ok, err := readWord(r)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrap(ErrTruncatedImage, "reading stack contents")
		}
		m.stack = append(m.stack, v)
	}

	pc, ok, err := readWord(r)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(ErrTruncatedImage, "reading program counter")
	}
	m.pc = pc

	return nil
}

// loadMemory reads the remaining little-endian words from r into
// memory starting at address 0, rejecting any word >= RegisterLimit.
// Every word beyond the loaded prefix stays at its zero-initialized
// value.
func loadMemory(m *Machine, r io.Reader) error {
	for addr := 0; addr < MemorySize; addr++ {
		v, ok, err := readWord(r)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if v >= RegisterLimit {
			return errors.Wrapf(ErrOutOfRange, "word %d at address %d", v, addr)
		}
		m.memory[addr] = v
	}
	return nil
}

// DumpFile writes a snapshot of m to path, creating or truncating it.
func (m *Machine) DumpFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(ErrIoFailure, err.Error())
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := m.Dump(w); err != nil {
		return err
	}
	return w.Flush()
}

// Dump writes a full snapshot to w: magic, registers, stack length +
// contents (bottom to top), program counter, then the full memory
// array.
func (m *Machine) Dump(w io.Writer) error {
	if _, err := w.Write(dumpMagic[:]); err != nil {
		return errors.Wrap(ErrIoFailure, err.Error())
	}

	for _, v := range m.registers {
		if err := writeWord(w, v); err != nil {
			return errors.Wrap(ErrIoFailure, err.Error())
		}
	}

	if err := writeWord(w, Word(len(m.stack))); err != nil {
		return errors.Wrap(ErrIoFailure, err.Error())
	}
	for _, v := range m.stack {
		if err := writeWord(w, v); err != nil {
			return errors.Wrap(ErrIoFailure, err.Error())
		}
	}

	if err := writeWord(w, m.pc); err != nil {
		return errors.Wrap(ErrIoFailure, err.Error())
	}

	for _, v := range m.memory {
		if err := writeWord(w, v); err != nil {
			return errors.Wrap(ErrIoFailure, err.Error())
		}
	}

	return nil
}
