// Package expect drives interactive command-line programs through a
// pseudo-terminal and asserts, in sequence, that expected text appears in
// their output within a deadline, the way a human tester watching a real
// terminal would.
//
// # Quick Start
//
//	session, err := expect.Spawn("./my-cli")
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	session.Expect(expect.Text("Name:"), 0)
//	session.SendKeys("Alice")
//	session.Expect(expect.Text("Saved"), 0)
//	code, err := session.ExitCode(0)
//
// # Output Normalization
//
// Raw pty output is folded into a logical buffer that mirrors what a
// terminal screen would display: ANSI escape sequences (CSI and OSC) are
// elided, carriage return and backspace move the write position within
// the current line, and printable bytes overwrite in place rather than
// truncating. Assertions therefore match the text a human would see, not
// the raw byte stream.
//
// # Matching
//
// [Session.Expect] searches the output left to right, starting after
// whatever earlier matches consumed, and blocks until the pattern appears
// or time runs out, waiting on the pty with a deadline rather than polling. A
// failed match is a normal ("", false) return, never an error.
//
// [Session.ExpectBranch] watches several literal keys at once and invokes
// the handler of whichever appears first in the output.
//
// # Process Control
//
// [Spawn] starts the child on the slave side of a raw, non-echoing pty.
// [Run] is the run-to-completion form: it drains output and resolves the
// exit code before returning. [Session.ExitCode] memoizes the exit status
// (the process is waited on at most once); on timeout it fails with an
// [ExitTimeoutError] embedding everything read so far. [Session.Kill]
// sends SIGINT.
//
// # Diagnostics
//
// Set EXPECT_DEBUG=1 (or use [WithDebugWriter]) to stream the growing
// logical buffer to stderr. [Session.MatchGolden] compares output against
// golden files under testdata; set EXPECT_UPDATE=1 to refresh them.
//
// # Requirements
//
//   - Go 1.24+
//   - Linux or macOS
//
// A session has no background reader: all pty reads happen inside Expect
// calls. Concurrent use of one session requires external serialization.
package expect
