package capture

import (
	"context"
	"fmt"
)

// Source hands out combined audio/video streams.
type Source interface {
	// Acquire opens the devices. Denied permission or a missing device is
	// reported as an error; no tracks are left open in that case.
	Acquire(ctx context.Context) (Stream, error)
}

// Stream is one acquisition of the capture devices. A stream is used for a
// single recording and is never reused once its tracks are stopped.
type Stream interface {
	Tracks() []Track
	Recorder() (Recorder, error)
}

// Track is a single audio or video device handle.
type Track interface {
	Kind() string
	// Stop releases the device. It is safe to call more than once.
	Stop()
	Stopped() bool
}

// Recorder turns a stream into encoded chunks.
type Recorder interface {
	// Start begins recording. The returned channel yields chunks until the
	// recorder stops, then it is closed after any buffered data is flushed.
	Start(ctx context.Context) (<-chan []byte, error)
	// Stop asks the recorder to finish. It is safe to call more than once.
	Stop() error
}

// DeviceAccessError reports that the camera or microphone could not be used.
type DeviceAccessError struct {
	Op  string
	Err error
}

func (e *DeviceAccessError) Error() string {
	return fmt.Sprintf("could not access camera/microphone (%s): %v", e.Op, e.Err)
}

func (e *DeviceAccessError) Unwrap() error { return e.Err }

// StopTracks stops every track of stream.
func StopTracks(stream Stream) {
	if stream == nil {
		return
	}
	for _, t := range stream.Tracks() {
		t.Stop()
	}
}
