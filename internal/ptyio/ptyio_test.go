package ptyio

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestStartReadWrite(t *testing.T) {
	cmd := exec.Command("cat")
	ptm, fd, err := Start(cmd, 80, 24)
	require.NoError(t, err)
	defer ptm.Close()

	pid := cmd.Process.Pid
	alive, err := Alive(pid)
	require.NoError(t, err)
	require.True(t, alive)

	_, err = ptm.WriteString("hi")
	require.NoError(t, err)

	// cat echoes the bytes back, possibly across multiple reads.
	var got string
	deadline := time.Now().Add(2 * time.Second)
	for got != "hi" && time.Now().Before(deadline) {
		ready, err := WaitReadable(fd, time.Until(deadline))
		require.NoError(t, err)
		require.True(t, ready)

		buf := make([]byte, 64)
		n, err := ReadAvailable(fd, buf)
		require.NoError(t, err)
		got += string(buf[:n])
	}
	require.Equal(t, "hi", got)

	// The descriptor must still be non-blocking after the reads above:
	// with nothing buffered, another read returns immediately with no data
	// instead of hanging.
	buf := make([]byte, 16)
	n, err := ReadAvailable(fd, buf)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, Interrupt(pid))
	_ = cmd.Wait()

	alive, err = Alive(pid)
	require.ErrorIs(t, err, ErrProcessNotFound)
	require.False(t, alive)
}

func TestResizeKeepsDescriptorNonblocking(t *testing.T) {
	cmd := exec.Command("cat")
	ptm, fd, err := Start(cmd, 80, 24)
	require.NoError(t, err)
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		ptm.Close()
	}()

	require.NoError(t, Resize(fd, 100, 30))

	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	require.NoError(t, err)
	require.Equal(t, uint16(100), ws.Col)
	require.Equal(t, uint16(30), ws.Row)

	// Resizing must not flip the descriptor back to blocking.
	buf := make([]byte, 16)
	n, err := ReadAvailable(fd, buf)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestWaitReadableTimeout(t *testing.T) {
	cmd := exec.Command("cat")
	ptm, fd, err := Start(cmd, 80, 24)
	require.NoError(t, err)
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		ptm.Close()
	}()

	start := time.Now()
	ready, err := WaitReadable(fd, 100*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ready)
	require.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestReadAvailableNoData(t *testing.T) {
	cmd := exec.Command("cat")
	ptm, fd, err := Start(cmd, 80, 24)
	require.NoError(t, err)
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		ptm.Close()
	}()

	buf := make([]byte, 16)
	n, err := ReadAvailable(fd, buf)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestInterruptMissingProcess(t *testing.T) {
	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid
	require.NoError(t, cmd.Wait())

	require.ErrorIs(t, Interrupt(pid), ErrProcessNotFound)
}
