// Package ptyio provides low-level pseudo-terminal allocation, bounded
// reads, and process-control primitives. It is internal to the expect
// package.
package ptyio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// ErrProcessNotFound is reported by liveness checks once the process id
// no longer exists.
var ErrProcessNotFound = errors.New("ptyio: no such process")

// Start launches cmd with stdin, stdout, and stderr attached to the slave
// side of a freshly allocated pty of the given size. The slave is placed
// in raw, non-echoing mode before the child starts.
//
// It returns the master file together with its raw descriptor, already in
// non-blocking mode. All reads and ioctls must go through that descriptor:
// calling File.Fd again would deregister the file from the runtime poller
// and put the descriptor back into blocking mode, so bounded reads would
// silently become unbounded ones.
func Start(cmd *exec.Cmd, cols, rows uint16) (*os.File, int, error) {
	ptm, tty, err := pty.Open()
	if err != nil {
		return nil, 0, fmt.Errorf("ptyio: open pty: %w", err)
	}

	fail := func(err error) (*os.File, int, error) {
		ptm.Close()
		tty.Close()
		return nil, 0, err
	}

	// Taken exactly once; see the function comment.
	fd := int(ptm.Fd())

	if err := Resize(fd, cols, rows); err != nil {
		return fail(err)
	}

	if err := makeRaw(tty.Fd()); err != nil {
		return fail(err)
	}

	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
	}

	if err := cmd.Start(); err != nil {
		return fail(fmt.Errorf("ptyio: start %s: %w", cmd.Path, err))
	}

	// The child holds its own slave descriptor now; keeping ours open
	// would prevent the master from ever reporting EOF.
	tty.Close()

	if err := unix.SetNonblock(fd, true); err != nil {
		ptm.Close()
		return nil, 0, fmt.Errorf("ptyio: set non-blocking: %w", err)
	}

	return ptm, fd, nil
}

// Resize sets the terminal dimensions through the master descriptor. The
// kernel delivers SIGWINCH to the foreground process group.
func Resize(fd int, cols, rows uint16) error {
	ws := &unix.Winsize{Row: rows, Col: cols}
	if err := unix.IoctlSetWinsize(fd, unix.TIOCSWINSZ, ws); err != nil {
		return fmt.Errorf("ptyio: set pty size: %w", err)
	}
	return nil
}

// makeRaw configures the terminal on fd for raw, non-echoing operation:
// no canonical line editing, no echo, no CR/LF translation, no output
// post-processing.
func makeRaw(fd uintptr) error {
	attr, err := termios.Tcgetattr(fd)
	if err != nil {
		return fmt.Errorf("ptyio: tcgetattr: %w", err)
	}

	attr.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	attr.Oflag &^= unix.OPOST
	attr.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	attr.Cflag &^= unix.CSIZE | unix.PARENB
	attr.Cflag |= unix.CS8
	attr.Cc[unix.VMIN] = 1
	attr.Cc[unix.VTIME] = 0

	if err := termios.Tcsetattr(fd, termios.TCSANOW, attr); err != nil {
		return fmt.Errorf("ptyio: tcsetattr: %w", err)
	}
	return nil
}

// WaitReadable blocks until fd has data available or the timeout expires.
// It reports whether the descriptor became readable. A hangup on the
// slave side also counts as readable so the caller observes EOF promptly.
func WaitReadable(fd int, timeout time.Duration) (bool, error) {
	ms := int(timeout / time.Millisecond)
	if ms <= 0 {
		if timeout <= 0 {
			return false, nil
		}
		ms = 1
	}

	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, ms)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return false, fmt.Errorf("ptyio: poll: %w", err)
		}
		return n > 0, nil
	}
}

// ReadAvailable reads whatever is currently buffered on the non-blocking
// master fd. It returns (0, nil) when no data is ready and io.EOF once
// the slave side has been closed and fully drained.
func ReadAvailable(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if errors.Is(err, unix.EAGAIN) {
				return 0, nil
			}
			// Linux reports EIO on the master once every slave
			// descriptor is gone; that is EOF for our purposes.
			if errors.Is(err, unix.EIO) {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("ptyio: read: %w", err)
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

// Alive reports whether the process id still exists. Once the process has
// exited and been reaped it returns (false, ErrProcessNotFound).
func Alive(pid int) (bool, error) {
	if err := unix.Kill(pid, 0); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return false, ErrProcessNotFound
		}
		if errors.Is(err, unix.EPERM) {
			// The pid exists but belongs to someone else.
			return true, nil
		}
		return false, fmt.Errorf("ptyio: signal 0: %w", err)
	}
	return true, nil
}

// Interrupt delivers SIGINT to the process id.
func Interrupt(pid int) error {
	if err := unix.Kill(pid, unix.SIGINT); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return ErrProcessNotFound
		}
		return fmt.Errorf("ptyio: interrupt pid %d: %w", pid, err)
	}
	return nil
}
