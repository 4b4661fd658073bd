package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", lines, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		ok      bool
		level   string
		msg     string
		attrs   []Attr
		hasTime bool
	}{
		{
			name:    "plain attrs",
			input:   "time=2025-10-08T21:01:05.123Z level=INFO msg=ready count=3",
			ok:      true,
			level:   "INFO",
			msg:     "ready",
			attrs:   []Attr{{Key: "count", Value: "3"}},
			hasTime: true,
		},
		{
			name:    "quoted values",
			input:   `time=2025-10-08T21:01:05Z level=ERROR msg="upload failed" file="my clip.mp4" error="api POST /api/videos/upload returned status 500"`,
			ok:      true,
			level:   "ERROR",
			msg:     "upload failed",
			attrs:   []Attr{{Key: "file", Value: "my clip.mp4"}, {Key: "error", Value: "api POST /api/videos/upload returned status 500"}},
			hasTime: true,
		},
		{
			name:  "escaped quote",
			input: `level=WARN msg="said \"hi\"" video_id=a1`,
			ok:    true,
			level: "WARN",
			msg:   `said "hi"`,
			attrs: []Attr{{Key: "video_id", Value: "a1"}},
		},
		{
			name:  "not slog",
			input: "panic: runtime error",
		},
		{
			name:  "unterminated quote",
			input: `level=INFO msg="oops`,
		},
		{
			name:  "no message",
			input: "level=INFO count=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse() ok = %v, want %v", ok, tt.ok)
			}
			if got.Raw != tt.input {
				t.Fatalf("Raw = %q, want %q", got.Raw, tt.input)
			}
			if !ok {
				return
			}
			if got.Level != tt.level || got.Msg != tt.msg {
				t.Fatalf("level/msg = %q/%q, want %q/%q", got.Level, got.Msg, tt.level, tt.msg)
			}
			if !reflect.DeepEqual(got.Attrs, tt.attrs) {
				t.Fatalf("Attrs = %#v, want %#v", got.Attrs, tt.attrs)
			}
			if got.Time.IsZero() == tt.hasTime {
				t.Fatalf("Time = %v, hasTime %v", got.Time, tt.hasTime)
			}
		})
	}
}

func TestEntryAttr(t *testing.T) {
	e, ok := Parse("level=INFO msg=x request_id=abc")
	if !ok {
		t.Fatalf("Parse failed")
	}
	if v, ok := e.Attr("request_id"); !ok || v != "abc" {
		t.Fatalf("Attr(request_id) = %q, %v", v, ok)
	}
	if _, ok := e.Attr("missing"); ok {
		t.Fatalf("Attr(missing) ok = true")
	}
}
