package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/five82/vidlift/internal/media"
)

// RecordingContentType is the MIME type of finalized recordings.
const RecordingContentType = "video/mp4"

// DeniedNotice is the user-visible message for a failed device acquisition.
const DeniedNotice = "Could not access camera/microphone"

var (
	// ErrAlreadyRecording is returned by Start when a session is active.
	ErrAlreadyRecording = errors.New("already recording")
	// ErrNotRecording is returned by Stop when no session is recording.
	ErrNotRecording = errors.New("not recording")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("capture controller closed")
)

// State is the recording lifecycle.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateRecording
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Uploader receives the finalized recording.
type Uploader interface {
	Upload(ctx context.Context, file media.File) error
}

// Snapshot is a read-only view of the controller for display.
type Snapshot struct {
	State          State
	StartedAt      time.Time
	ElapsedSeconds int
	Chunks         int
	Bytes          int64
}

// Options configures a Controller. All fields are optional.
type Options struct {
	TickEvery time.Duration
	Now       func() time.Time
	Logger    *slog.Logger
}

// Controller drives a single recording session at a time.
type Controller struct {
	source    Source
	uploader  Uploader
	tickEvery time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	session *session
	closed  bool
}

// NewController builds a Controller that records from source and hands the
// finished file to uploader.
func NewController(source Source, uploader Uploader, opts Options) *Controller {
	c := &Controller{
		source:    source,
		uploader:  uploader,
		tickEvery: opts.TickEvery,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if c.tickEvery <= 0 {
		c.tickEvery = time.Second
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// RecordingName returns the file name used for a recording finalized at t.
func RecordingName(t time.Time) string {
	return fmt.Sprintf("recorded-%d.mp4", t.UnixMilli())
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current state and session counters.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	state, s := c.state, c.session
	c.mu.Unlock()

	snap := Snapshot{State: state}
	if s != nil {
		snap.StartedAt = s.startedAt
		snap.ElapsedSeconds = int(s.elapsed.Load())
		snap.Chunks, snap.Bytes = s.counts()
	}
	return snap
}

// Start acquires the devices and begins recording. A device failure leaves
// the controller idle and returns a *DeviceAccessError.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}
	c.state = StateRequesting
	c.mu.Unlock()

	stream, err := c.source.Acquire(ctx)
	if err != nil {
		c.setIdle()
		var derr *DeviceAccessError
		if !errors.As(err, &derr) {
			derr = &DeviceAccessError{Op: "acquire", Err: err}
		}
		c.logger.Warn("device access failed", "op", derr.Op, "error", derr.Err)
		return derr
	}

	rec, err := stream.Recorder()
	if err != nil {
		return c.abortStart(stream, &DeviceAccessError{Op: "create recorder", Err: err})
	}
	// The recording outlives the caller's request; Stop and Close end it.
	chunks, err := rec.Start(context.WithoutCancel(ctx))
	if err != nil {
		return c.abortStart(stream, &DeviceAccessError{Op: "start recorder", Err: err})
	}

	s := newSession(stream, rec, c.now())

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = rec.Stop()
		s.release()
		c.setIdle()
		return ErrClosed
	}
	c.session = s
	c.state = StateRecording
	c.mu.Unlock()

	go s.drain(chunks)
	go s.tick(c.tickEvery)

	c.logger.Info("recording started", "tracks", len(stream.Tracks()))
	return nil
}

func (c *Controller) abortStart(stream Stream, derr *DeviceAccessError) error {
	StopTracks(stream)
	c.setIdle()
	c.logger.Warn("device access failed", "op", derr.Op, "error", derr.Err)
	return derr
}

// Stop finalizes the recording into one file and uploads it. Every track of
// the session's stream is stopped before Stop returns, whatever the outcome.
// Calling Stop when not recording returns ErrNotRecording.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateRecording || c.session == nil {
		c.mu.Unlock()
		return ErrNotRecording
	}
	s := c.session
	c.state = StateFinalizing
	c.mu.Unlock()

	defer func() {
		s.release()
		c.mu.Lock()
		c.session = nil
		c.state = StateIdle
		c.mu.Unlock()
	}()

	s.stopTicker()
	if err := s.recorder.Stop(); err != nil {
		c.logger.Warn("recorder stop reported error", "error", err)
	}
	select {
	case <-s.drained:
	case <-ctx.Done():
		return fmt.Errorf("finalize recording: %w", ctx.Err())
	}

	data, chunks := s.payload()
	file := media.FromBytes(RecordingName(c.now()), RecordingContentType, data)
	c.logger.Info("recording finalized",
		"file", file.Name(),
		"chunks", chunks,
		"bytes", file.Size(),
		"elapsed_seconds", s.elapsed.Load(),
	)

	if c.uploader == nil {
		return nil
	}
	if err := c.uploader.Upload(ctx, file); err != nil {
		return fmt.Errorf("upload recording: %w", err)
	}
	return nil
}

// Close abandons an active recording without uploading it and releases its
// devices. Later calls to Start return ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	s := c.session
	recording := c.state == StateRecording
	if recording {
		c.session = nil
		c.state = StateIdle
	}
	c.mu.Unlock()

	if s == nil {
		return
	}
	s.stopTicker()
	_ = s.recorder.Stop()
	s.release()
	if recording {
		c.logger.Info("recording discarded on shutdown")
	}
}

func (c *Controller) setIdle() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
}

// session owns one stream from acquisition to release.
type session struct {
	stream    Stream
	recorder  Recorder
	startedAt time.Time
	elapsed   atomic.Int64

	mu     sync.Mutex
	chunks [][]byte
	bytes  int64

	drained     chan struct{}
	tickStop    chan struct{}
	tickOnce    sync.Once
	releaseOnce sync.Once
}

func newSession(stream Stream, rec Recorder, startedAt time.Time) *session {
	return &session{
		stream:    stream,
		recorder:  rec,
		startedAt: startedAt,
		drained:   make(chan struct{}),
		tickStop:  make(chan struct{}),
	}
}

// drain appends every non-empty chunk until the recorder closes the channel.
func (s *session) drain(chunks <-chan []byte) {
	defer close(s.drained)
	for chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		s.mu.Lock()
		s.chunks = append(s.chunks, chunk)
		s.bytes += int64(len(chunk))
		s.mu.Unlock()
	}
}

func (s *session) tick(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.tickStop:
			return
		case <-ticker.C:
			s.elapsed.Add(1)
		}
	}
}

func (s *session) stopTicker() {
	s.tickOnce.Do(func() { close(s.tickStop) })
}

func (s *session) release() {
	s.releaseOnce.Do(func() { StopTracks(s.stream) })
}

func (s *session) counts() (int, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks), s.bytes
}

func (s *session) payload() ([]byte, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Join(s.chunks, nil), len(s.chunks)
}
