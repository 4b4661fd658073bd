package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/vidlift/internal/videoapi"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	videos := []videoapi.VideoRecord{{ID: "1"}, {ID: "2"}}

	before := time.Now()
	s.Update(videos, nil)

	snap := s.Snapshot()
	if !snap.HasList {
		t.Fatalf("HasList = false, want true")
	}
	if len(snap.Videos) != 2 || snap.Videos[0].ID != "1" {
		t.Fatalf("snapshot videos = %#v, want 2 items", snap.Videos)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Videos[0].ID = "999"
	snap2 := s.Snapshot()
	if snap2.Videos[0].ID != "1" {
		t.Fatalf("Snapshot should clone videos; got id %q want 1", snap2.Videos[0].ID)
	}
}

func TestStore_UpdateReplacesWholesale(t *testing.T) {
	var s Store
	s.Update([]videoapi.VideoRecord{{ID: "1"}, {ID: "2"}}, nil)
	s.Update([]videoapi.VideoRecord{{ID: "3"}}, nil)

	snap := s.Snapshot()
	if len(snap.Videos) != 1 || snap.Videos[0].ID != "3" {
		t.Fatalf("videos = %#v, want only id 3", snap.Videos)
	}

	s.Update(nil, nil)
	snap = s.Snapshot()
	if len(snap.Videos) != 0 || !snap.HasList {
		t.Fatalf("empty update = %#v, want empty list with HasList", snap)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update([]videoapi.VideoRecord{{ID: "1"}}, nil)

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(nil, origErr)

	snap := s.Snapshot()
	if len(snap.Videos) != 1 || snap.Videos[0].ID != "1" {
		t.Fatalf("videos changed on error: got %#v", snap.Videos)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("cloned error should still wrap the original")
	}
}

func TestStore_RecordErrorLeavesListAndCounter(t *testing.T) {
	var s Store
	s.Update([]videoapi.VideoRecord{{ID: "1"}}, nil)
	s.RecordError(errors.New("delete failed"))
	s.RecordError(nil)

	snap := s.Snapshot()
	if len(snap.Videos) != 1 {
		t.Fatalf("videos = %#v, want unchanged", snap.Videos)
	}
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0", snap.ConsecutiveFailures)
	}
	if snap.LastError == nil || snap.LastError.Error() != "delete failed" {
		t.Fatalf("LastError = %v, want delete failed", snap.LastError)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store = %#v, want online with 0 failures", snap)
	}

	s.Update(nil, errors.New("fail 1"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure = %d offline=%v, want 1 online", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, errors.New("fail 2"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures = %d offline=%v, want 2 offline", snap.ConsecutiveFailures, snap.IsOffline())
	}

	// Success resets counter
	s.Update([]videoapi.VideoRecord{}, nil)
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success = %d offline=%v, want 0 online", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestSnapshot_Find(t *testing.T) {
	snap := Snapshot{Videos: []videoapi.VideoRecord{{ID: "1", Filename: "a"}, {ID: "2"}}}
	if v, ok := snap.Find("1"); !ok || v.Filename != "a" {
		t.Fatalf("Find(1) = %#v, %v", v, ok)
	}
	if _, ok := snap.Find("3"); ok {
		t.Fatalf("Find(3) ok = true, want false")
	}
}
