// Package library keeps the list of stored videos and handles deletion.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/five82/vidlift/internal/state"
	"github.com/five82/vidlift/internal/videoapi"
)

// DeletePrompt is shown before a delete request is issued.
const DeletePrompt = "Are you sure you want to delete this video?"

// ErrNotConfirmed is returned when the user declines a delete.
var ErrNotConfirmed = errors.New("delete not confirmed")

// API is the subset of the remote API the library uses.
type API interface {
	FetchVideos(ctx context.Context) ([]videoapi.VideoRecord, error)
	Delete(ctx context.Context, id string) error
	PlaybackURL(filename string) string
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Confirmed is a Confirmer for callers that already asked (a TUI modal, a
// --yes flag).
var Confirmed Confirmer = ConfirmFunc(func(string) bool { return true })

// FetchError reports a failed list refresh.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "refresh video list: " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// DeleteError reports a failed delete request.
type DeleteError struct {
	ID  string
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete video %s: %v", e.ID, e.Err)
}
func (e *DeleteError) Unwrap() error { return e.Err }

// View owns the displayed video list.
type View struct {
	api    API
	store  *state.Store
	logger *slog.Logger
}

// New builds a View. A nil store gets a fresh one; a nil logger discards.
func New(api API, store *state.Store, logger *slog.Logger) *View {
	if store == nil {
		store = &state.Store{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &View{api: api, store: store, logger: logger}
}

// Store exposes the backing store for readers.
func (v *View) Store() *state.Store { return v.store }

// Snapshot returns the current list and error state.
func (v *View) Snapshot() state.Snapshot { return v.store.Snapshot() }

// ConsecutiveFailures reports how many list fetches in a row have failed.
func (v *View) ConsecutiveFailures() int { return v.store.Snapshot().ConsecutiveFailures }

// Refresh fetches the list and replaces the local copy wholesale. On failure
// the previous list is kept.
func (v *View) Refresh(ctx context.Context) error {
	videos, err := v.api.FetchVideos(ctx)
	if err != nil {
		ferr := &FetchError{Err: err}
		v.store.Update(nil, ferr)
		v.logger.Warn("video list refresh failed", "error", err)
		return ferr
	}
	v.store.Update(videos, nil)
	v.logger.Debug("video list refreshed", "count", len(videos))
	return nil
}

// Delete removes a video after the user confirms. Without confirmation no
// request is sent. A failed delete is logged and leaves the list untouched.
func (v *View) Delete(ctx context.Context, id string, confirm Confirmer) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("video id required")
	}
	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return ErrNotConfirmed
	}

	if err := v.api.Delete(ctx, id); err != nil {
		derr := &DeleteError{ID: id, Err: err}
		v.store.RecordError(derr)
		v.logger.Error("error deleting video", "video_id", id, "error", err)
		return derr
	}
	v.logger.Info("video deleted", "video_id", id)
	// Refresh records its own failure; the list stays stale until the next one.
	_ = v.Refresh(ctx)
	return nil
}

// PlaybackURL returns the static URL for a record.
func (v *View) PlaybackURL(rec videoapi.VideoRecord) string {
	return v.api.PlaybackURL(rec.Filename)
}

const bytesPerMB = 1024 * 1024

// FormatSize renders bytes as megabytes with two decimals. Zero or negative
// sizes render as "0 MB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 MB"
	}
	return fmt.Sprintf("%.2f MB", float64(bytes)/bytesPerMB)
}
