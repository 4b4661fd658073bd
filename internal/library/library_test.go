package library

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/five82/vidlift/internal/videoapi"
)

type fakeAPI struct {
	mu        sync.Mutex
	videos    []videoapi.VideoRecord
	fetchErr  error
	deleteErr error
	fetches   int
	deletes   []string
}

func (f *fakeAPI) FetchVideos(context.Context) ([]videoapi.VideoRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]videoapi.VideoRecord, len(f.videos))
	copy(out, f.videos)
	return out, nil
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, v := range f.videos {
		if v.ID == id {
			f.videos = append(f.videos[:i], f.videos[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) PlaybackURL(filename string) string {
	return "http://static/" + filename
}

func TestFormatSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 MB"},
		{-1, "0 MB"},
		{1048576, "1.00 MB"},
		{10 * 1048576, "10.00 MB"},
		{1572864, "1.50 MB"},
		{1, "0.00 MB"},
	}
	for _, tc := range cases {
		if got := FormatSize(tc.in); got != tc.want {
			t.Fatalf("FormatSize(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatSize_FromListPayload(t *testing.T) {
	var videos []videoapi.VideoRecord
	payload := `[{"id":"1","originalName":"a.mp4","size":1048576,"uploadDate":"2024-01-01T00:00:00Z","filename":"a.mp4"},{"id":"2"}]`
	if err := json.Unmarshal([]byte(payload), &videos); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := FormatSize(videos[0].Size); got != "1.00 MB" {
		t.Fatalf("FormatSize = %q, want 1.00 MB", got)
	}
	if got := FormatSize(videos[1].Size); got != "0 MB" {
		t.Fatalf("FormatSize(undefined) = %q, want 0 MB", got)
	}
}

func TestRefresh_ReplacesListAndKeepsItOnFailure(t *testing.T) {
	api := &fakeAPI{videos: []videoapi.VideoRecord{{ID: "1"}, {ID: "2"}}}
	v := New(api, nil, nil)

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if snap := v.Snapshot(); len(snap.Videos) != 2 {
		t.Fatalf("videos = %#v, want 2", snap.Videos)
	}

	api.fetchErr = errors.New("connection refused")
	err := v.Refresh(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Refresh error = %v, want FetchError", err)
	}
	snap := v.Snapshot()
	if len(snap.Videos) != 2 {
		t.Fatalf("videos = %#v, want previous list kept", snap.Videos)
	}
	if snap.LastError == nil || !strings.Contains(snap.LastError.Error(), "connection refused") {
		t.Fatalf("LastError = %v, want connection refused", snap.LastError)
	}
}

func TestDelete_WithoutConfirmationSendsNothing(t *testing.T) {
	api := &fakeAPI{videos: []videoapi.VideoRecord{{ID: "1"}}}
	v := New(api, nil, nil)

	var asked string
	decline := ConfirmFunc(func(prompt string) bool {
		asked = prompt
		return false
	})

	if err := v.Delete(context.Background(), "1", decline); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("Delete error = %v, want ErrNotConfirmed", err)
	}
	if err := v.Delete(context.Background(), "1", nil); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("Delete(nil confirmer) error = %v, want ErrNotConfirmed", err)
	}
	if asked != DeletePrompt {
		t.Fatalf("prompt = %q, want %q", asked, DeletePrompt)
	}
	if len(api.deletes) != 0 || api.fetches != 0 {
		t.Fatalf("deletes=%v fetches=%d, want no requests", api.deletes, api.fetches)
	}
}

func TestDelete_ConfirmedDeletesThenRefreshes(t *testing.T) {
	api := &fakeAPI{videos: []videoapi.VideoRecord{{ID: "1"}, {ID: "2"}}}
	v := New(api, nil, nil)
	_ = v.Refresh(context.Background())

	if err := v.Delete(context.Background(), "1", Confirmed); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(api.deletes) != 1 || api.deletes[0] != "1" {
		t.Fatalf("deletes = %v, want [1]", api.deletes)
	}
	if api.fetches != 2 {
		t.Fatalf("fetches = %d, want refresh after delete", api.fetches)
	}
	snap := v.Snapshot()
	if len(snap.Videos) != 1 || snap.Videos[0].ID != "2" {
		t.Fatalf("videos = %#v, want only id 2", snap.Videos)
	}
}

func TestDelete_FailureLeavesListStale(t *testing.T) {
	api := &fakeAPI{videos: []videoapi.VideoRecord{{ID: "1"}}}
	v := New(api, nil, nil)
	_ = v.Refresh(context.Background())

	api.deleteErr = errors.New("boom")
	err := v.Delete(context.Background(), "1", Confirmed)
	var deleteErr *DeleteError
	if !errors.As(err, &deleteErr) || deleteErr.ID != "1" {
		t.Fatalf("Delete error = %v, want DeleteError for 1", err)
	}
	if api.fetches != 1 {
		t.Fatalf("fetches = %d, want no refresh after failed delete", api.fetches)
	}
	snap := v.Snapshot()
	if len(snap.Videos) != 1 {
		t.Fatalf("videos = %#v, want unchanged", snap.Videos)
	}
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0", snap.ConsecutiveFailures)
	}
	if !errors.As(snap.LastError, &deleteErr) {
		t.Fatalf("LastError = %v, want DeleteError", snap.LastError)
	}
}

func TestDelete_RequiresID(t *testing.T) {
	v := New(&fakeAPI{}, nil, nil)
	if err := v.Delete(context.Background(), " ", Confirmed); err == nil {
		t.Fatalf("Delete returned nil error, want error")
	}
}

func TestPlaybackURL(t *testing.T) {
	v := New(&fakeAPI{}, nil, nil)
	if got := v.PlaybackURL(videoapi.VideoRecord{Filename: "a.mp4"}); got != "http://static/a.mp4" {
		t.Fatalf("PlaybackURL = %q", got)
	}
}

func TestView_AgainstHTTPClient(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	videos := []videoapi.VideoRecord{{ID: "1", OriginalName: "a.mp4", Filename: "a.mp4", Size: 1048576}}
	deletes := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(videos)
		case http.MethodDelete:
			deletes++
			videos = nil
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(server.Close)

	client, err := videoapi.NewClient(videoapi.Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	v := New(client, nil, nil)
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	snap := v.Snapshot()
	if len(snap.Videos) != 1 || FormatSize(snap.Videos[0].Size) != "1.00 MB" {
		t.Fatalf("snapshot = %#v", snap.Videos)
	}
	if got := v.PlaybackURL(snap.Videos[0]); got != server.URL+"/uploads/a.mp4" {
		t.Fatalf("PlaybackURL = %q", got)
	}

	if err := v.Delete(context.Background(), "1", Confirmed); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if deletes != 1 {
		t.Fatalf("deletes = %d, want 1", deletes)
	}
	if snap := v.Snapshot(); len(snap.Videos) != 0 {
		t.Fatalf("videos after delete = %#v, want empty", snap.Videos)
	}
}
