package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	vmpkg "synacorvm/vm"
)

// Exit codes: 0 for a clean halt, 1 when the image/actions file can't
// be loaded, 2 when the run loop itself aborts with an error.
const (
	exitOK      = 0
	exitLoad    = 1
	exitRuntime = 2
)

// stdPrompter adapts stdin/stdout to vm.Prompter: it prints "> " before
// reading a line, and forwards OUT bytes straight to stdout, flushing
// whenever a newline is written so output never waits behind a missing
// newline.
type stdPrompter struct {
	in  *bufio.Reader
	out *bufio.Writer
}

func newStdPrompter() *stdPrompter {
	return &stdPrompter{
		in:  bufio.NewReader(os.Stdin),
		out: bufio.NewWriter(os.Stdout),
	}
}

func (p *stdPrompter) ReadLine() (string, error) {
	fmt.Fprint(p.out, "> ")
	p.out.Flush()

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *stdPrompter) Write(b []byte) (int, error) {
	n, err := p.out.Write(b)
	if strings.Contains(string(b), "\n") {
		p.out.Flush()
	}
	return n, err
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var actionsPath string
	var debug bool
	var dumpOnExit string

	exitCode := exitOK

	cmd := &cobra.Command{
		Use:           "synacorvm <file>",
		Short:         "Run a Synacor-style binary image or snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			machine, err := vmpkg.LoadFile(args[0])
			if err != nil {
				exitCode = exitLoad
				return err
			}

			if actionsPath != "" {
				if err := machine.LoadActionsFile(actionsPath); err != nil {
					exitCode = exitLoad
					return err
				}
			}

			if debug {
				machine.EnableDebugger()
			}

			prompter := newStdPrompter()
			machine.SetPrompter(prompter)
			defer prompter.out.Flush()

			interrupted := installInterruptHandler()
			defer interrupted.stop()

			runErr := machine.RunUntilHalt(interrupted.triggered)

			if dumpOnExit != "" {
				if err := machine.DumpFile(dumpOnExit); err != nil {
					fmt.Fprintln(os.Stderr, "dump-on-exit failed:", err)
				}
			}

			if runErr != nil {
				exitCode = exitRuntime
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&actionsPath, "actions", "", "path to an automatic actions file to perform")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable the debugger surface for \"!\"-prefixed input lines")
	cmd.Flags().StringVar(&dumpOnExit, "dump-on-exit", "", "write a snapshot to this path whenever the run loop exits")

	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == exitOK {
			exitCode = exitLoad
		}
	}

	return exitCode
}

// interruptHandler turns an external interrupt signal (SIGINT) into a
// cleanly-polled flag the run loop checks between instructions,
// instead of killing the process mid-mutation.
type interruptHandler struct {
	ch   chan os.Signal
	done chan struct{}
	hit  chan struct{}
}

func installInterruptHandler() *interruptHandler {
	h := &interruptHandler{
		ch:   make(chan os.Signal, 1),
		done: make(chan struct{}),
		hit:  make(chan struct{}),
	}
	signal.Notify(h.ch, os.Interrupt)

	go func() {
		select {
		case <-h.ch:
			close(h.hit)
		case <-h.done:
		}
	}()

	return h
}

func (h *interruptHandler) triggered() bool {
	select {
	case <-h.hit:
		return true
	default:
		return false
	}
}

func (h *interruptHandler) stop() {
	signal.Stop(h.ch)
	close(h.done)
}
