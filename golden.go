package expect

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MatchGolden compares the session's output against a golden file under
// testdata, keyed by the test name and the given label.
//
// Set EXPECT_UPDATE=1 to create or refresh golden files.
func (s *Session) MatchGolden(t testing.TB, name string) {
	t.Helper()

	path := filepath.Join(goldenDir(t), sanitizeName(name)+".txt")
	content := normalizeForGolden(s.Output())

	if shouldUpdate() {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("expect: golden: mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("expect: golden: write %s: %v", path, err)
		}
		return
	}

	golden, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Fatalf("expect: golden: %s does not exist; run with EXPECT_UPDATE=1 to create it\n\nactual output:\n%s", path, content)
	}
	if err != nil {
		t.Fatalf("expect: golden: read %s: %v", path, err)
	}
	if string(golden) != content {
		t.Fatalf("expect: golden: mismatch for %q (%s); run with EXPECT_UPDATE=1 to update\n--- golden ---\n%s--- actual ---\n%s",
			name, path, golden, content)
	}
}

// goldenDir keys the golden directory by the full test name, plus a short
// hash so subtests that sanitize to the same string stay apart.
func goldenDir(t testing.TB) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(t.Name()))
	return filepath.Join("testdata", fmt.Sprintf("%s-%08x", sanitizeName(t.Name()), h.Sum32()))
}

// normalizeForGolden makes output stable for comparison: trailing spaces
// and trailing blank lines are dropped, and the result always ends in
// exactly one newline.
func normalizeForGolden(raw string) string {
	var b strings.Builder
	pendingBlanks := 0
	for rest := raw; rest != ""; {
		var line string
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i+1], rest[i+1:]
		} else {
			line, rest = rest, ""
		}
		line = strings.TrimRight(line, " \n")
		if line == "" {
			pendingBlanks++
			continue
		}
		for ; pendingBlanks > 0; pendingBlanks-- {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return "\n"
	}
	return b.String()
}

// sanitizeName maps a test or label name to something filesystem-safe.
func sanitizeName(name string) string {
	const maxLen = 60
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

func shouldUpdate() bool {
	return isTruthy(os.Getenv("EXPECT_UPDATE"))
}
