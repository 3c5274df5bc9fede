package expect

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchGoldenRoundTrip(t *testing.T) {
	s := &Session{buf: &buffer{}}
	s.buf.feed([]byte("line one\nline two   \n\n\n"))

	dir := goldenDir(t)
	t.Cleanup(func() { os.RemoveAll(dir) })

	t.Setenv("EXPECT_UPDATE", "1")
	s.MatchGolden(t, "output")

	t.Setenv("EXPECT_UPDATE", "")
	s.MatchGolden(t, "output")
}

func TestNormalizeForGolden(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing spaces trimmed", "a  \nb\n", "a\nb\n"},
		{"trailing blank lines removed", "a\n\n\n", "a\n"},
		{"single newline appended", "a", "a\n"},
		{"interior blanks kept", "a\n\nb", "a\n\nb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, normalizeForGolden(tt.in))
		})
	}
}

func TestSanitizeName(t *testing.T) {
	require.Equal(t, "TestFoo_bar_baz", sanitizeName("TestFoo/bar baz"))
}
