package expect

import (
	"errors"
	"fmt"
	"time"

	"github.com/mhersh/expect/internal/ptyio"
)

// ErrExitUnresolved is returned by Success when the exit status has never
// been resolved. Call ExitCode (or use Run) first.
var ErrExitUnresolved = errors.New("expect: exit status not yet resolved")

// ErrProcessNotFound is reported by Running and Exited once the child's
// process id no longer exists, for example after Kill and a reaping
// ExitCode call.
var ErrProcessNotFound = ptyio.ErrProcessNotFound

// ExitTimeoutError reports that the child outlived an ExitCode deadline.
// Output carries everything the session had read at that point, to aid
// debugging a hung interactive program.
type ExitTimeoutError struct {
	Timeout time.Duration
	Output  string
}

func (e *ExitTimeoutError) Error() string {
	return fmt.Sprintf("expect: exit-code: process still running after %v\noutput so far:\n%s", e.Timeout, e.Output)
}
