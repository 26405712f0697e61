package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPlainImage(t *testing.T) {
	var buf bytes.Buffer
	for _, w := range []Word{19, 72, 19, 105, 19, 10, 0} {
		require.NoError(t, writeWord(&buf, w))
	}

	m, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, Word(19), m.Memory(0))
	assert.Equal(t, Word(0), m.PC())
}

func TestLoadRejectsOutOfRangeWord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeWord(&buf, 40000))

	_, err := Load(&buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestLoadRejectsTruncatedWord(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0x05)

	_, err := Load(&buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTruncatedImage)
}

func TestSnapshotRoundTrip(t *testing.T) {
	m, _ := loadWords(t, 19, 72, 0)
	m.SetRegister(0, 42)
	m.SetRegister(3, 9001)
	m.Push(11)
	m.Push(22)
	m.Push(33)
	m.SetPC(2)

	var buf bytes.Buffer
	require.NoError(t, m.Dump(&buf))

	restored, err := Load(&buf)
	require.NoError(t, err)

	assert.Equal(t, m.Registers(), restored.Registers())
	assert.Equal(t, m.Stack(), restored.Stack())
	assert.Equal(t, m.PC(), restored.PC())
	for addr := 0; addr < MemorySize; addr++ {
		if got, want := restored.Memory(Word(addr)), m.Memory(Word(addr)); got != want {
			t.Fatalf("memory[%d] = %d, want %d", addr, got, want)
		}
	}
}

func TestSnapshotStackOrderRoundTrips(t *testing.T) {
	m := New()
	m.Push(1)
	m.Push(2)
	m.Push(3)

	var buf bytes.Buffer
	require.NoError(t, m.Dump(&buf))

	restored, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, []Word{1, 2, 3}, restored.Stack())

	top, err := restored.Pop()
	require.NoError(t, err)
	assert.Equal(t, Word(3), top)
}
