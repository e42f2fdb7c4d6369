package utils

import "testing"

func TestSanitizeHeaderFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"  padded.txt  ", "padded.txt"},
		{"", "download"},
		{"   ", "download"},
		{"evil\r\nheader.txt", "evilheader.txt"},
		{`quo"ted.txt`, "quoted.txt"},
	}
	for _, c := range cases {
		if got := SanitizeHeaderFilename(c.in); got != c.want {
			t.Errorf("SanitizeHeaderFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
