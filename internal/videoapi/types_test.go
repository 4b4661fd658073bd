package videoapi

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestVideoRecord_UnmarshalVariants(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		wantID   string
		wantSize int64
	}{
		{"mongo id", `{"_id":"65a1","size":10}`, "65a1", 10},
		{"plain id", `{"id":"1","size":1048576}`, "1", 1048576},
		{"numeric id", `{"id":42}`, "42", 0},
		{"null size", `{"_id":"x","size":null}`, "x", 0},
		{"missing size", `{"_id":"x"}`, "x", 0},
		{"negative size", `{"_id":"x","size":-5}`, "x", 0},
		{"fractional size", `{"_id":"x","size":1536.9}`, "x", 1536},
		{"huge size", `{"_id":"x","size":1e30}`, "x", math.MaxInt64},
		{"null mongo id falls back", `{"_id":null,"id":"7"}`, "7", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v VideoRecord
			if err := json.Unmarshal([]byte(tc.in), &v); err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			if v.ID != tc.wantID || v.Size != tc.wantSize {
				t.Fatalf("record = %#v, want id=%q size=%d", v, tc.wantID, tc.wantSize)
			}
		})
	}
}

func TestVideoRecord_UnmarshalRejectsObjectID(t *testing.T) {
	var v VideoRecord
	if err := json.Unmarshal([]byte(`{"_id":{"$oid":"1"}}`), &v); err == nil {
		t.Fatalf("Unmarshal returned nil error, want error")
	}
}

func TestVideoRecord_DisplayName(t *testing.T) {
	if got := (VideoRecord{ID: "1", OriginalName: " a.mp4 ", Filename: "x"}).DisplayName(); got != "a.mp4" {
		t.Fatalf("DisplayName = %q, want a.mp4", got)
	}
	if got := (VideoRecord{ID: "1", Filename: "x.mp4"}).DisplayName(); got != "x.mp4" {
		t.Fatalf("DisplayName = %q, want x.mp4", got)
	}
	if got := (VideoRecord{ID: "1"}).DisplayName(); got != "1" {
		t.Fatalf("DisplayName = %q, want 1", got)
	}
}

func TestParsedUploadDate(t *testing.T) {
	v := VideoRecord{UploadDate: "2024-01-01T00:00:00Z"}
	got := v.ParsedUploadDate()
	if !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParsedUploadDate = %v", got)
	}
	v.UploadDate = "2024-01-01T00:00:00.123Z"
	if v.ParsedUploadDate().Nanosecond() != 123000000 {
		t.Fatalf("ParsedUploadDate nano = %v", v.ParsedUploadDate())
	}
	v.UploadDate = "2024-01-02 03:04:05"
	if v.ParsedUploadDate().Day() != 2 {
		t.Fatalf("ParsedUploadDate legacy = %v", v.ParsedUploadDate())
	}
	v.UploadDate = "yesterday"
	if !v.ParsedUploadDate().IsZero() {
		t.Fatalf("ParsedUploadDate garbage = %v, want zero", v.ParsedUploadDate())
	}
}
