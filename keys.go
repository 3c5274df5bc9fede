package expect

// Key is a raw byte sequence written to the pty master to simulate a key
// press, bypassing any line buffering in between.
type Key string

const (
	KeyReturn Key = "\r"
	KeyTab    Key = "\t"
	KeyEscape Key = "\x1b"
	KeySpace  Key = " "

	KeyUp    Key = "\x1b[A"
	KeyDown  Key = "\x1b[B"
	KeyRight Key = "\x1b[C"
	KeyLeft  Key = "\x1b[D"

	KeyHome   Key = "\x1b[H"
	KeyEnd    Key = "\x1b[F"
	KeyDelete Key = "\x1b[3~"

	// KeyBackspace is the erase-visual sequence a terminal backspace key
	// produces: move back, blank the cell, move back again.
	KeyBackspace Key = "\b \b"
)

// Ctrl returns the control character for Ctrl+<letter>.
func Ctrl(c byte) Key {
	return Key([]byte{c & 0x1f})
}

// Alt returns the escape-prefixed sequence for Alt+<char>.
func Alt(c byte) Key {
	return Key([]byte{0x1b, c})
}
