package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Prompter supplies interactive input lines when the action list is
// exhausted, and receives the bytes the VM emits via OUT. A line-based
// wrapper over stdin/stdout satisfies this in main.go; tests supply a
// canned Prompter so scripted scenarios never touch a real terminal.
type Prompter interface {
	// ReadLine blocks for one line of input (without its trailing
	// newline) and echoes the "> " prompt to its own output before reading.
	ReadLine() (string, error)
	// Write emits program output bytes (OUT) or echoed action lines.
	io.Writer
}

// inputBuffer is the single-line input buffer backing IN: an ordered
// byte sequence, refilled a line at a time from the action list or the
// interactive prompt, consumed one byte per IN.
type inputBuffer struct {
	buf     string
	actions []string
}

// SetPrompter installs the interactive line source. Without one, an IN
// that finds the action list exhausted fails with an error.
func (m *Machine) SetPrompter(p Prompter) { m.prompt = p }

// LoadActionsFile reads path as a UTF-8 action script: one scripted
// input line per non-empty, non-comment line, appended to the action
// list. Lines are trimmed of surrounding whitespace; `#`-prefixed
// lines and blank lines are skipped.
func (m *Machine) LoadActionsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(ErrIoFailure, err.Error())
	}
	defer f.Close()
	return m.LoadActions(f)
}

// LoadActions parses r as an action script and appends its lines to
// the action list.
func (m *Machine) LoadActions(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.input.actions = append(m.input.actions, line)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(ErrIoFailure, err.Error())
	}
	return nil
}

// readByte implements the refill/consume protocol for the IN opcode.
// It returns the next input byte, or ok=false when a debug command was
// intercepted and consumed no program byte (the caller must not
// advance PC in that case; the same IN retries next tick).
func (m *Machine) readByte() (b byte, ok bool, err error) {
	if m.input.buf == "" {
		line, err := m.nextLine()
		if err != nil {
			return 0, false, err
		}
		m.input.buf = line + "\n"

		if m.debugEnabled && strings.HasPrefix(m.input.buf, "!") {
			if m.handleDebugCommand(strings.TrimSuffix(m.input.buf, "\n")) {
				m.input.buf = ""
				return 0, false, nil
			}
		}
	}

	b = m.input.buf[0]
	m.input.buf = m.input.buf[1:]
	return b, true, nil
}

// nextLine pops the next scripted action, echoing it as "> line" to
// the prompter's output, or falls back to reading one line from the
// interactive prompt.
func (m *Machine) nextLine() (string, error) {
	if len(m.input.actions) > 0 {
		line := m.input.actions[0]
		m.input.actions = m.input.actions[1:]
		if m.prompt != nil {
			fmt.Fprintf(m.prompt, "> %s\n", line)
		}
		return line, nil
	}

	if m.prompt == nil {
		return "", errors.New("no prompter configured and action list exhausted")
	}
	return m.prompt.ReadLine()
}
