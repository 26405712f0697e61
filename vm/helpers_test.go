package vm

import (
	"bytes"
	"io"
)

// fakePrompter is a canned Prompter for tests: ReadLine pops
// pre-scripted lines (simulating an interactive user), and Write
// accumulates emitted bytes so assertions can inspect OUT output.
type fakePrompter struct {
	lines  []string
	output bytes.Buffer
}

func newFakePrompter(lines ...string) *fakePrompter {
	return &fakePrompter{lines: lines}
}

func (p *fakePrompter) ReadLine() (string, error) {
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *fakePrompter) Write(b []byte) (int, error) {
	return p.output.Write(b)
}
