package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/five82/vidlift/internal/media"
	"github.com/five82/vidlift/internal/videoapi"
)

// FailedNotice is the user-visible message sent when an upload fails.
const FailedNotice = "Upload failed"

// ErrTransferInProgress is returned when Upload is called while another
// upload is still running.
var ErrTransferInProgress = errors.New("upload already in progress")

var errInterrupted = errors.New("upload interrupted")

// State is the lifecycle of a single upload.
type State int

const (
	StateIdle State = iota
	StateInProgress
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInProgress:
		return "in progress"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transfer is a point-in-time view of the current or last upload.
type Transfer struct {
	Name       string
	BytesSent  int64
	TotalBytes int64
	Percent    int
	State      State
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Uploader sends a file to the remote API.
type Uploader interface {
	Upload(ctx context.Context, file media.File, progress videoapi.ProgressFunc) error
}

// Refresher reloads the video list after a successful upload.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Notifier shows a blocking notice to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(msg string)

// Notify implements Notifier.
func (f NotifyFunc) Notify(msg string) { f(msg) }

// UploadError reports a failed upload.
type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Name, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Options configures a Controller. All fields are optional.
type Options struct {
	Refresher Refresher
	Notifier  Notifier
	Logger    *slog.Logger
	Now       func() time.Time
}

// Controller runs uploads one at a time and publishes their progress.
type Controller struct {
	uploader  Uploader
	refresher Refresher
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	current     Transfer
	subscribers []func(Transfer)
}

// New builds a Controller around uploader.
func New(uploader Uploader, opts Options) *Controller {
	c := &Controller{
		uploader:  uploader,
		refresher: opts.Refresher,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Subscribe registers fn to receive every state or progress change. fn is
// called outside the controller lock and must not block for long.
func (c *Controller) Subscribe(fn func(Transfer)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// Snapshot returns the current or last transfer.
func (c *Controller) Snapshot() Transfer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Busy reports whether an upload is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.State == StateInProgress
}

// Upload sends file and blocks until the server responds. On success the
// library is refreshed; a refresh failure is logged and does not fail the
// upload. On failure the notifier receives FailedNotice and an *UploadError
// is returned. There is no retry.
func (c *Controller) Upload(ctx context.Context, file media.File) error {
	c.mu.Lock()
	if c.current.State == StateInProgress {
		c.mu.Unlock()
		return ErrTransferInProgress
	}
	c.current = Transfer{
		Name:       file.Name(),
		TotalBytes: file.Size(),
		State:      StateInProgress,
		StartedAt:  c.now(),
	}
	c.mu.Unlock()
	c.publish()

	c.logger.Info("upload started", "file", file.Name(), "bytes", file.Size(), "content_type", file.ContentType())

	// Only fires when the uploader panics. The panic still propagates; this
	// just leaves observers with a failed transfer instead of one in progress.
	defer c.finish(StateFailed, errInterrupted)

	uploadErr := c.uploader.Upload(ctx, file, c.progress)
	if uploadErr != nil {
		uerr := &UploadError{Name: file.Name(), Err: uploadErr}
		c.finish(StateFailed, uerr)
		c.logger.Error("upload failed", "file", file.Name(), "error", uploadErr)
		if c.notifier != nil {
			c.notifier.Notify(FailedNotice)
		}
		return uerr
	}

	c.finish(StateSucceeded, nil)
	c.logger.Info("upload finished", "file", file.Name(), "bytes", file.Size())

	if c.refresher != nil {
		if rerr := c.refresher.Refresh(ctx); rerr != nil {
			c.logger.Warn("refresh after upload failed", "error", rerr)
		}
	}
	return nil
}

func (c *Controller) progress(sent, total int64) {
	c.mu.Lock()
	if c.current.State != StateInProgress {
		c.mu.Unlock()
		return
	}
	if total > 0 && c.current.TotalBytes <= 0 {
		c.current.TotalBytes = total
	}
	sent = clamp(sent, c.current.BytesSent, c.current.TotalBytes)
	if sent == c.current.BytesSent {
		c.mu.Unlock()
		return
	}
	c.current.BytesSent = sent
	c.current.Percent = percentOf(sent, c.current.TotalBytes)
	c.mu.Unlock()
	c.publish()
}

// finish performs the single terminal transition out of StateInProgress.
func (c *Controller) finish(state State, err error) {
	c.mu.Lock()
	if c.current.State != StateInProgress {
		c.mu.Unlock()
		return
	}
	c.current.State = state
	c.current.Err = err
	c.current.FinishedAt = c.now()
	if state == StateSucceeded {
		c.current.BytesSent = c.current.TotalBytes
		c.current.Percent = 100
	}
	c.mu.Unlock()
	c.publish()
}

func (c *Controller) publish() {
	c.mu.Lock()
	snap := c.current
	subs := make([]func(Transfer), len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if hi >= 0 && v > hi {
		return hi
	}
	return v
}

// percentOf rounds sent*100/total into [0,100]. A zero total is 0% until the
// transfer succeeds.
func percentOf(sent, total int64) int {
	if total <= 0 || sent <= 0 {
		return 0
	}
	p := int(math.Round(float64(sent) * 100 / float64(total)))
	if p > 100 {
		return 100
	}
	return p
}
