package expect

// Escape-sequence parse states. The state is carried across feeds so a
// sequence split between two reads is still elided correctly.
const (
	stateText = iota
	stateEsc
	stateCSI
	stateOSC
	stateOSCEsc
)

// buffer is the logical terminal buffer: the text a terminal would
// display given the raw bytes seen so far, restricted to linear cursor
// motion (backspace and carriage return, no vertical addressing).
//
// consumed marks how much of the buffer prior matches have claimed; it
// only ever grows.
type buffer struct {
	data      []byte
	lineStart int // index of the first byte of the current line
	cursor    int // write position within the current line
	consumed  int
	state     int
}

// feed applies a chunk of raw pty output to the buffer.
func (b *buffer) feed(p []byte) {
	for _, c := range p {
		switch b.state {
		case stateEsc:
			switch c {
			case '[':
				b.state = stateCSI
			case ']':
				b.state = stateOSC
			default:
				// Two-byte sequence (ESC c, ESC 7, ...): drop both.
				b.state = stateText
			}

		case stateCSI:
			// Parameter and intermediate bytes run until a final byte
			// in 0x40..0x7E.
			if c >= 0x40 && c <= 0x7e {
				b.state = stateText
			}

		case stateOSC:
			if c == 0x07 {
				b.state = stateText
			} else if c == 0x1b {
				b.state = stateOSCEsc
			}

		case stateOSCEsc:
			if c == '\\' { // ST terminator
				b.state = stateText
			} else {
				b.state = stateOSC
			}

		default:
			b.write(c)
		}
	}
}

// write handles a single byte outside any escape sequence. Backspace only
// moves the write position; it never deletes. A printable byte within the
// current line overwrites in place, preserving everything past it.
func (b *buffer) write(c byte) {
	switch {
	case c == 0x1b:
		b.state = stateEsc

	case c == '\n':
		b.data = append(b.data, '\n')
		b.lineStart = len(b.data)
		b.cursor = 0

	case c == '\r':
		b.cursor = 0

	case c == '\b':
		if b.cursor > 0 {
			b.cursor--
		}

	case c >= 0x20 || c == '\t':
		pos := b.lineStart + b.cursor
		if pos < len(b.data) {
			b.data[pos] = c
		} else {
			b.data = append(b.data, c)
		}
		b.cursor++
	}
	// Remaining C0 controls (BEL, NUL, ...) have no visible effect.
}

// String returns the entire logical buffer, including consumed text.
func (b *buffer) String() string {
	return string(b.data)
}

// unconsumed returns the suffix not yet claimed by a match.
func (b *buffer) unconsumed() string {
	return string(b.data[b.consumed:])
}

// advance claims n more bytes, measured from the current consumed offset.
func (b *buffer) advance(n int) {
	b.consumed += n
}

func (b *buffer) len() int {
	return len(b.data)
}
