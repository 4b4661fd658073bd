package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/vidlift/internal/capture"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 80; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type countingLibrary struct {
	mu       sync.Mutex
	calls    int
	failures int
	err      error
}

func (l *countingLibrary) Refresh(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		l.failures++
		return l.err
	}
	l.failures = 0
	return nil
}

func (l *countingLibrary) ConsecutiveFailures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures
}

func (l *countingLibrary) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestStartPoller_RefreshesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lib := &countingLibrary{}

	StartPoller(ctx, lib, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for lib.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("refresh calls = %d after 2s, want >= 3", lib.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	time.Sleep(20 * time.Millisecond)
	settled := lib.count()
	time.Sleep(30 * time.Millisecond)
	if got := lib.count(); got != settled {
		t.Fatalf("refresh calls grew from %d to %d after cancel", settled, got)
	}
}

func TestStartPoller_DisabledWithoutInterval(t *testing.T) {
	lib := &countingLibrary{}
	StartPoller(context.Background(), lib, 0)
	time.Sleep(20 * time.Millisecond)
	if got := lib.count(); got != 0 {
		t.Fatalf("refresh calls = %d, want 0", got)
	}
}

func TestNotifier_ForwardsToAttached(t *testing.T) {
	var n Notifier
	n.Notify("dropped")

	var got []string
	n.Attach(func(msg string) { got = append(got, msg) })
	n.Notify("Upload failed")
	n.Attach(nil)
	n.Notify("dropped again")

	if len(got) != 1 || got[0] != "Upload failed" {
		t.Fatalf("notices = %v, want [Upload failed]", got)
	}
}

func TestBuild_WiresServices(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	svc, err := Build(Options{ConfigPath: home + "/missing.toml", PrefsPath: home + "/prefs.toml", RefreshEvery: 7})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if svc.Config.RefreshInterval != 7*time.Second {
		t.Fatalf("RefreshInterval = %v, want 7s", svc.Config.RefreshInterval)
	}
	if svc.Library == nil || svc.Transfer == nil || svc.Capture == nil || svc.Client == nil {
		t.Fatalf("services not wired: %#v", svc)
	}
	if svc.Prefs.Theme == "" || svc.Prefs.StartTab == "" {
		t.Fatalf("prefs = %#v, want defaults", svc.Prefs)
	}
	if err := svc.Capture.Stop(context.Background()); !errors.Is(err, capture.ErrNotRecording) {
		t.Fatalf("Stop on fresh controller = %v", err)
	}
}
