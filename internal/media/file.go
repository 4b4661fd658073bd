// Package media describes the binary payloads vidlift uploads: files picked
// from disk and recordings assembled from capture chunks.
package media

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// File is an immutable upload payload with a known size.
type File struct {
	name        string
	contentType string
	size        int64

	data []byte // in-memory payloads (recordings)
	path string // on-disk payloads (picked files)
}

// FromBytes builds an in-memory File. The data is copied so later mutation
// of the caller's slice cannot change the payload.
func FromBytes(name, contentType string, data []byte) File {
	dup := make([]byte, len(data))
	copy(dup, data)
	if strings.TrimSpace(contentType) == "" {
		contentType = defaultContentType
	}
	return File{
		name:        name,
		contentType: contentType,
		size:        int64(len(dup)),
		data:        dup,
	}
}

// Open describes a regular file on disk. The content type is sniffed from
// the file's leading bytes.
func Open(path string) (File, error) {
	resolved, err := expandPath(path)
	if err != nil {
		return File{}, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return File{}, fmt.Errorf("stat %s: %w", resolved, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", resolved)
	}

	contentType := defaultContentType
	if mt, err := mimetype.DetectFile(resolved); err == nil && mt != nil {
		contentType = mt.String()
	}

	return File{
		name:        filepath.Base(resolved),
		contentType: contentType,
		size:        info.Size(),
		path:        resolved,
	}, nil
}

// Name is the filename sent with the upload.
func (f File) Name() string { return f.name }

// ContentType is the media type sent with the upload.
func (f File) ContentType() string { return f.contentType }

// Size is the payload length in bytes.
func (f File) Size() int64 { return f.size }

// Path returns the on-disk location, or "" for in-memory payloads.
func (f File) Path() string { return f.path }

// Reader opens the payload for reading. Callers must close it.
func (f File) Reader() (io.ReadCloser, error) {
	if f.path == "" {
		return io.NopCloser(bytes.NewReader(f.data)), nil
	}
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	return file, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
