package expect

import (
	"io"
	"time"
)

type options struct {
	args    []string
	env     []string
	dir     string
	cols    int
	rows    int
	timeout time.Duration
	debug   io.Writer
}

// Option configures a Session created by Spawn or Run.
type Option func(*options)

// WithArgs sets the arguments passed to the command.
func WithArgs(args ...string) Option {
	return func(o *options) {
		o.args = args
	}
}

// WithEnv appends environment variables to the process environment.
// Each entry should be in "KEY=VALUE" format.
func WithEnv(env ...string) Option {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

// WithDir sets the working directory for the command.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithSize sets the pseudo-terminal dimensions (columns x rows).
func WithSize(cols, rows int) Option {
	return func(o *options) {
		o.cols = cols
		o.rows = rows
	}
}

// WithTimeout sets the default deadline used by Expect, ExpectBranch,
// ExitCode, and Run when the caller passes a zero timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithDebugWriter streams the logical buffer to w as it grows. The same
// stream can be enabled without code changes by setting EXPECT_DEBUG=1,
// which sends it to stderr. Debug output never affects matching.
func WithDebugWriter(w io.Writer) Option {
	return func(o *options) {
		o.debug = w
	}
}

const (
	defaultCols    = 80
	defaultRows    = 24
	defaultTimeout = 5 * time.Second
)

func defaultOptions() options {
	return options{
		cols:    defaultCols,
		rows:    defaultRows,
		timeout: defaultTimeout,
	}
}
