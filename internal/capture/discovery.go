package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// DefaultDevicePattern matches V4L2 capture nodes on Linux.
const DefaultDevicePattern = "/dev/video*"

var deviceNumber = regexp.MustCompile(`(\d+)$`)

// Devices lists capture device nodes matching pattern that the current user
// can open, sorted by device number. An empty pattern uses
// DefaultDevicePattern.
func Devices(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultDevicePattern
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan devices: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		ni, nj := extractDeviceNumber(matches[i]), extractDeviceNumber(matches[j])
		if ni != nj {
			return ni < nj
		}
		return matches[i] < matches[j]
	})

	devices := make([]string, 0, len(matches))
	for _, m := range matches {
		if deviceUsable(m) {
			devices = append(devices, m)
		}
	}
	return devices, nil
}

func deviceUsable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// extractDeviceNumber returns the trailing number of a device path, or -1.
func extractDeviceNumber(path string) int {
	m := deviceNumber.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}
