package videoapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const legacyTimestampLayout = "2006-01-02 15:04:05"

// VideoRecord mirrors one entry of the video list endpoint.
type VideoRecord struct {
	ID           string `json:"_id"`
	OriginalName string `json:"originalName"`
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	UploadDate   string `json:"uploadDate"`
}

// UnmarshalJSON accepts both "_id" and "id" keys, string or numeric ids, and
// a missing or null size (decoded as zero).
func (v *VideoRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID      json.RawMessage `json:"_id"`
		ID           json.RawMessage `json:"id"`
		OriginalName string          `json:"originalName"`
		Filename     string          `json:"filename"`
		Size         *float64        `json:"size"`
		UploadDate   string          `json:"uploadDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	idRaw := raw.MongoID
	if len(idRaw) == 0 || bytes.Equal(idRaw, []byte("null")) {
		idRaw = raw.ID
	}
	id, err := decodeID(idRaw)
	if err != nil {
		return err
	}

	var size int64
	if raw.Size != nil {
		size = clampSize(*raw.Size)
	}

	*v = VideoRecord{
		ID:           id,
		OriginalName: raw.OriginalName,
		Filename:     raw.Filename,
		Size:         size,
		UploadDate:   raw.UploadDate,
	}
	return nil
}

// clampSize truncates fractional byte counts and pins out-of-range values
// to [0, MaxInt64].
func clampSize(f float64) int64 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	default:
		return int64(f)
	}
}

// DisplayName prefers the name the file was uploaded with.
func (v VideoRecord) DisplayName() string {
	if name := strings.TrimSpace(v.OriginalName); name != "" {
		return name
	}
	if name := strings.TrimSpace(v.Filename); name != "" {
		return name
	}
	return v.ID
}

// ParsedUploadDate returns the upload timestamp, or the zero time when the
// server sent something unparseable.
func (v VideoRecord) ParsedUploadDate() time.Time {
	return parseTime(v.UploadDate)
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("decode video id %s: unsupported type", string(raw))
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(legacyTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
