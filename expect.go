package expect

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// A Pattern locates the earliest match within a stretch of output,
// returning the half-open byte range of the match.
type Pattern func(text string) (start, end int, ok bool)

// Text matches the given string as an exact substring.
func Text(s string) Pattern {
	return func(text string) (int, int, bool) {
		i := strings.Index(text, s)
		if i < 0 {
			return 0, 0, false
		}
		return i, i + len(s), true
	}
}

// Regexp matches the regular expression. The pattern is compiled once; an
// invalid pattern causes a panic.
func Regexp(pattern string) Pattern {
	re := regexp.MustCompile(pattern)
	return func(text string) (int, int, bool) {
		loc := re.FindStringIndex(text)
		if loc == nil {
			return 0, 0, false
		}
		return loc[0], loc[1], true
	}
}

// Expect blocks until p matches the output not yet claimed by earlier
// matches, or the deadline expires. On a match it returns the matched
// text and claims everything up to the end of the match, so sequential
// calls never re-match consumed output. On timeout it returns ("", false)
// and claims nothing; output read while waiting is kept either way.
//
// A timeout <= 0 uses the session default.
func (s *Session) Expect(p Pattern, timeout time.Duration) (string, bool) {
	if timeout <= 0 {
		timeout = s.opts.timeout
	}
	deadline := time.Now().Add(timeout)

	var fillErr error
	for {
		text := s.buf.unconsumed()
		if start, end, ok := p(text); ok {
			s.buf.advance(end)
			return text[start:end], true
		}

		// Once the pty has reported EOF no further bytes can arrive, so
		// the outcome is already decided. A failed poll or read likewise
		// ends this wait after one final match check over whatever was
		// read, but does not mark the session finished.
		if s.eof || fillErr != nil {
			return "", false
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", false
		}
		fillErr = s.fill(remaining)
	}
}

// A Branch pairs a literal key with a handler to invoke when that key is
// the first of its set to appear in the output.
type Branch struct {
	Key     string
	Handler func()
}

// ExpectBranch waits for whichever branch key appears earliest in the
// unconsumed output, invokes that branch's handler synchronously, and
// returns the key. All keys are compiled into a single alternation so one
// scan decides; the winner is the key occurring first in the text, not
// first in the list. Longer keys are tried before their prefixes, so a
// more specific alternative is never shadowed.
//
// On timeout it returns ("", false) and no handler runs.
func (s *Session) ExpectBranch(timeout time.Duration, branches ...Branch) (string, bool) {
	if len(branches) == 0 {
		return "", false
	}

	keys := make([]string, len(branches))
	for i, br := range branches {
		keys[i] = br.Key
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return len(keys[i]) > len(keys[j])
	})
	for i, k := range keys {
		keys[i] = regexp.QuoteMeta(k)
	}
	alternation := Regexp(strings.Join(keys, "|"))

	matched, ok := s.Expect(alternation, timeout)
	if !ok {
		return "", false
	}

	// The alternation only matches quoted literals, so the matched text
	// equals exactly one key.
	for _, br := range branches {
		if br.Key == matched {
			if br.Handler != nil {
				br.Handler()
			}
			break
		}
	}
	return matched, true
}
