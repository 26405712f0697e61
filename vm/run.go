package vm

import "github.com/pkg/errors"

// errSegFault is returned by Run/RunUntilHalt when the executor panics
// on an index out of range that the explicit bounds checks in exec.go
// failed to anticipate. It should not be reachable in practice — the
// bounds checks in Step cover every address the architecture can
// produce — but the recover below is kept as a last line of defense
// rather than trusting every internal invariant to hold.
var errSegFault = errors.New("segmentation fault")

// RunUntilHalt repeatedly calls Step until the program halts or an
// error aborts the loop. An external interrupt ends the loop cleanly,
// with no error and no further mutation of state, so the caller is
// free to snapshot.
func (m *Machine) RunUntilHalt(interrupted func() bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errSegFault
		}
	}()

	for {
		if interrupted != nil && interrupted() {
			return nil
		}

		halted, stepErr := m.Step()
		if stepErr != nil {
			return stepErr
		}
		if halted {
			return nil
		}
	}
}
