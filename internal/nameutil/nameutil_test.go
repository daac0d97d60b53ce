package nameutil

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want string
		changed  bool
	}{
		{"gray_and_inverted", "gray_and_inverted", false},
		{"  blur ", "blur", true},
		{"\ufeffthumb\u200b", "thumb", true},
		{"a \u200d b", "a  b", true},
		// control characters are left for Validate to reject
		{"bad\x00name", "bad\x00name", false},
	}
	for _, c := range cases {
		got, changed := Normalize(c.in)
		if got != c.want || changed != c.changed {
			t.Fatalf("Normalize(%q) = %q, %v; want %q, %v", c.in, got, changed, c.want, c.changed)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := []string{"blur", "gray and inverted", "サムネイル", strings.Repeat("x", MaxLen)}
	for _, n := range valid {
		if err := Validate(n); err != nil {
			t.Fatalf("Validate(%q): unexpected error %v", n, err)
		}
	}
	invalid := []string{
		"",
		"   ",
		" blur",
		"blur\t",
		"bad\x00name",
		"zero\u200bwidth",
		string([]byte{0xff, 0xfe}),
		strings.Repeat("x", MaxLen+1),
	}
	for _, n := range invalid {
		if err := Validate(n); err == nil {
			t.Fatalf("Validate(%q): expected error", n)
		}
	}
}

func TestNormalizedNamesValidate(t *testing.T) {
	for _, in := range []string{" blur ", "\u200bsepia\ufeff", "\tthumb\n"} {
		n, _ := Normalize(in)
		if err := Validate(n); err != nil {
			t.Fatalf("Validate(Normalize(%q)) = %v", in, err)
		}
	}
}
