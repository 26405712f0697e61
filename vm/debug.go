package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// handleDebugCommand is invoked when the freshly refilled input buffer
// begins with "!". line is the buffer's content without its trailing
// newline. It always consumes the line as a command (the caller clears
// the buffer and does not advance PC); an unrecognized command name is
// swallowed silently rather than treated as program input.
func (m *Machine) handleDebugCommand(line string) bool {
	fields := strings.Fields(strings.TrimPrefix(line, "!"))
	if len(fields) == 0 {
		return true
	}

	cmd, args := fields[0], fields[1:]
	out := m.prompt

	switch cmd {
	case "dump":
		if len(args) != 1 {
			break
		}
		if err := m.DumpFile(args[0]); err != nil {
			if out != nil {
				fmt.Fprintf(out, "dump failed: %s\n", err)
			}
			break
		}
		if out != nil {
			fmt.Fprintf(out, "Dumped to %s\n", args[0])
		}
	case "reg":
		m.cmdReg(args)
	case "sta":
		m.cmdStack()
	case "mem":
		m.cmdMem(args)
	default:
		// Unrecognized command name: ignored.
	}

	return true
}

// cmdReg implements `!reg` (print all registers) and `!reg <i> <v>`
// (set R<i> to <v>).
func (m *Machine) cmdReg(args []string) {
	out := m.prompt
	if out == nil {
		return
	}

	if len(args) == 2 {
		i, err1 := strconv.Atoi(args[0])
		v, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil || i < 0 || i >= NumRegisters {
			return
		}
		m.registers[i] = Word(v)
		return
	}

	for i, v := range m.registers {
		fmt.Fprintf(out, "%d = %5d\n", i, v)
	}
}

// cmdStack implements `!sta`: print the stack contents top-to-bottom.
func (m *Machine) cmdStack() {
	out := m.prompt
	if out == nil {
		return
	}
	fmt.Fprintln(out, "Left (top)")
	for i := len(m.stack) - 1; i >= 0; i-- {
		fmt.Fprintf(out, "%d = %5d\n", len(m.stack)-1-i, m.stack[i])
	}
	fmt.Fprintln(out, "Right (bottom)")
}

// cmdMem implements `!mem [<addr>]`: print a window of ±10 words
// around addr (default PC), rendering each row via the disassembler
// and marking the PC-target row.
func (m *Machine) cmdMem(args []string) {
	out := m.prompt
	if out == nil {
		return
	}

	base := int(m.pc)
	if len(args) == 1 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			base = v
		}
	}

	const span = 10
	start := base - span
	if start < 0 {
		start = 0
	}
	end := base + span + 1
	if end > MemorySize {
		end = MemorySize
	}

	for addr := start; addr < end; addr++ {
		marker := " "
		if addr == base {
			marker = ">"
		}
		line := fmt.Sprintf("%s %5d = %5d", marker, addr, m.memory[addr])
		if text := m.Disassemble(Word(addr)); text != "" {
			line += " : " + text
		}
		fmt.Fprintln(out, line)
	}
}
