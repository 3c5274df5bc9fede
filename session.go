package expect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/mhersh/expect/internal/ptyio"
)

const (
	readChunkSize    = 4096
	closeWaitTimeout = time.Second
)

// Session drives a child process attached to a pseudo-terminal: it sends
// keystrokes, accumulates normalized output, and blocks with a deadline
// until expected text appears.
//
// A Session reads from the pty only inside Expect, ExpectBranch, and Run;
// there is no background reader. It is not safe for concurrent use;
// callers sharing one session must serialize externally.
type Session struct {
	ptm *os.File
	// fd is the raw master descriptor in non-blocking mode. The read and
	// ioctl paths use it exclusively; ptm.Fd() must never be called again,
	// as it would flip the descriptor back to blocking.
	fd    int
	cmd   *exec.Cmd
	buf   *buffer
	opts  options
	debug io.Writer
	eof   bool

	waitOnce sync.Once
	exitCh   chan struct{} // closed once the process has been reaped
	exitCode int

	closeOnce sync.Once
	closeErr  error
}

// Spawn starts command under a freshly allocated pseudo-terminal and
// returns a live session. The child's stdin, stdout, and stderr are all
// placed on the slave side, configured raw and non-echoing.
func Spawn(command string, userOpts ...Option) (*Session, error) {
	opts := defaultOptions()
	for _, o := range userOpts {
		o(&opts)
	}

	cmd := exec.Command(command, opts.args...)
	cmd.Env = append(os.Environ(), opts.env...)
	cmd.Env = append(cmd.Env,
		"TERM=xterm-256color",
		fmt.Sprintf("COLUMNS=%d", opts.cols),
		fmt.Sprintf("LINES=%d", opts.rows),
	)
	if opts.dir != "" {
		cmd.Dir = opts.dir
	}

	ptm, fd, err := ptyio.Start(cmd, uint16(opts.cols), uint16(opts.rows))
	if err != nil {
		return nil, fmt.Errorf("expect: spawn: %w", err)
	}

	return &Session{
		ptm:    ptm,
		fd:     fd,
		cmd:    cmd,
		buf:    &buffer{},
		opts:   opts,
		debug:  resolveDebugWriter(opts.debug),
		exitCh: make(chan struct{}),
	}, nil
}

// Run starts command and blocks until it exits, draining all output along
// the way. The returned session has its exit code already resolved, so
// Success and Output can be consulted immediately. The session default
// timeout (see WithTimeout) bounds the whole run.
func Run(command string, userOpts ...Option) (*Session, error) {
	s, err := Spawn(command, userOpts...)
	if err != nil {
		return nil, err
	}

	// One deadline bounds the whole run: draining output and waiting for
	// the exit status share it rather than each getting a full timeout.
	deadline := time.Now().Add(s.opts.timeout)
	for !s.eof {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := s.fill(remaining); err != nil {
			break
		}
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		remaining = time.Millisecond
	}
	if _, err := s.ExitCode(remaining); err != nil {
		return s, err
	}
	return s, nil
}

// fill waits up to timeout for the child to produce output, then folds
// everything currently available into the logical buffer. Reads continue
// until the descriptor would block, so one call drains the pty.
//
// Only EOF marks the session finished; a failed poll or read is returned
// to the caller and a later call may still succeed.
func (s *Session) fill(timeout time.Duration) error {
	ready, err := ptyio.WaitReadable(s.fd, timeout)
	if err != nil {
		return err
	}
	if !ready {
		return nil
	}

	chunk := make([]byte, readChunkSize)
	for {
		n, err := ptyio.ReadAvailable(s.fd, chunk)
		if n > 0 {
			before := s.buf.len()
			s.buf.feed(chunk[:n])
			s.debugAppend(before)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.eof = true
				return nil
			}
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

// debugAppend mirrors newly appended buffer content to the debug sink.
// In-place overwrites are not re-reported; this stream is diagnostic only.
func (s *Session) debugAppend(before int) {
	if s.debug == nil || s.buf.len() <= before {
		return
	}
	_, _ = io.WriteString(s.debug, s.buf.String()[before:])
}

// SendKeys writes text followed by a carriage return, simulating typed
// input confirmed with Enter.
func (s *Session) SendKeys(text string) error {
	return s.send(text + string(KeyReturn))
}

// SendReturn writes a carriage return alone.
func (s *Session) SendReturn() error {
	return s.send(string(KeyReturn))
}

// SendUpArrow writes the ANSI cursor-up sequence.
func (s *Session) SendUpArrow() error {
	return s.send(string(KeyUp))
}

// SendRightArrow writes the ANSI cursor-right sequence.
func (s *Session) SendRightArrow() error {
	return s.send(string(KeyRight))
}

// SendBackspace writes the erase-visual sequence a terminal backspace key
// produces (backspace, space, backspace).
func (s *Session) SendBackspace() error {
	return s.send(string(KeyBackspace))
}

// Press sends one or more raw key sequences without a trailing return.
func (s *Session) Press(keys ...Key) error {
	for _, k := range keys {
		if err := s.send(string(k)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) send(data string) error {
	if _, err := s.ptm.WriteString(data); err != nil {
		return fmt.Errorf("expect: send: %w", err)
	}
	return nil
}

// Resize changes the pseudo-terminal dimensions. The kernel delivers
// SIGWINCH to the child's process group.
func (s *Session) Resize(cols, rows int) error {
	if err := ptyio.Resize(s.fd, uint16(cols), uint16(rows)); err != nil {
		return fmt.Errorf("expect: resize: %w", err)
	}
	s.opts.cols = cols
	s.opts.rows = rows
	return nil
}

// Kill delivers an interrupt signal (SIGINT) to the child. The resulting
// termination is observed through ExitCode like any other exit.
func (s *Session) Kill() error {
	return ptyio.Interrupt(s.cmd.Process.Pid)
}

// ExitCode waits up to timeout for the child to exit and returns its exit
// code. The underlying wait happens at most once per session; after it
// completes, ExitCode returns the memoized value immediately. On timeout
// it returns an *ExitTimeoutError carrying the buffered output so far.
//
// A timeout <= 0 uses the session default.
func (s *Session) ExitCode(timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = s.opts.timeout
	}
	s.waitProcess()

	select {
	case <-s.exitCh:
		return s.exitCode, nil
	case <-time.After(timeout):
		return 0, &ExitTimeoutError{Timeout: timeout, Output: s.buf.String()}
	}
}

// waitProcess reaps the child in the background, exactly once. exitCode
// is written before exitCh closes, so readers that observe the close see
// the final value.
func (s *Session) waitProcess() {
	s.waitOnce.Do(func() {
		go func() {
			if err := s.cmd.Wait(); err != nil {
				var exitErr *exec.ExitError
				if errors.As(err, &exitErr) {
					s.exitCode = exitErr.ExitCode()
				} else {
					s.exitCode = -1
				}
			}
			close(s.exitCh)
		}()
	})
}

// Running reports whether the child process is still alive. Once the
// process has exited and been reaped it returns false along with
// ErrProcessNotFound.
func (s *Session) Running() (bool, error) {
	return ptyio.Alive(s.cmd.Process.Pid)
}

// Exited is the negation of Running.
func (s *Session) Exited() (bool, error) {
	alive, err := ptyio.Alive(s.cmd.Process.Pid)
	return !alive, err
}

// Success reports whether the child exited with status zero. Calling it
// before ExitCode has resolved the status is a caller error: it returns
// ErrExitUnresolved rather than blocking or resolving on its own.
func (s *Session) Success() (bool, error) {
	select {
	case <-s.exitCh:
		return s.exitCode == 0, nil
	default:
		return false, ErrExitUnresolved
	}
}

// Output returns everything read from the child so far, after terminal
// normalization, regardless of how much prior matches have consumed.
func (s *Session) Output() string {
	return s.buf.String()
}

// String returns the same view as Output; it is what diagnostics embed.
func (s *Session) String() string {
	return s.buf.String()
}

// Close releases the pty and, if the child is still running, kills and
// reaps it. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.ptm.Close(); err != nil {
			errs = append(errs, err)
		}
		if alive, _ := ptyio.Alive(s.cmd.Process.Pid); alive {
			_ = s.cmd.Process.Kill()
		}
		s.waitProcess()
		select {
		case <-s.exitCh:
		case <-time.After(closeWaitTimeout):
			errs = append(errs, errors.New("expect: close: timeout waiting for process to exit"))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

// resolveDebugWriter determines the debug sink by checking, in order:
// 1. WithDebugWriter option
// 2. EXPECT_DEBUG environment variable (stderr when truthy)
func resolveDebugWriter(configured io.Writer) io.Writer {
	if configured != nil {
		return configured
	}
	if isTruthy(os.Getenv("EXPECT_DEBUG")) {
		return os.Stderr
	}
	return nil
}

func isTruthy(v string) bool {
	return v == "1" || v == "true" || v == "yes"
}
