package ui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"a long video name.mp4", 10, "a long ..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	got := truncateMiddle("http://localhost:5000/uploads/1700000000-clip.mp4", 21)
	if len([]rune(got)) != 21 {
		t.Fatalf("truncateMiddle length = %d, want 21 (%q)", len([]rune(got)), got)
	}
	if got[len(got)-8:] != "clip.mp4" {
		t.Fatalf("truncateMiddle = %q, want the file name kept", got)
	}
	if got := truncateMiddle("short", 10); got != "short" {
		t.Fatalf("truncateMiddle(short) = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("INFO", 5); got != "INFO " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("ERROR", 3); got != "ERROR" {
		t.Fatalf("padRight = %q", got)
	}
}
