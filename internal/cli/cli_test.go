package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/vidlift/internal/library"
	"github.com/five82/vidlift/internal/transfer"
)

// fakeAPI serves the list, upload and delete endpoints.
type fakeAPI struct {
	mu         sync.Mutex
	videos     []map[string]any
	deletes    []string
	uploads    []string
	uploadCode int
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/videos", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.videos)
	})
	mux.HandleFunc("POST /api/videos/upload", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("video")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.uploadCode != 0 {
			w.WriteHeader(f.uploadCode)
			return
		}
		f.uploads = append(f.uploads, header.Filename)
		f.videos = append(f.videos, map[string]any{
			"_id": fmt.Sprintf("id%d", len(f.videos)+1), "originalName": header.Filename,
			"filename": "stored-" + header.Filename, "size": len(data),
			"uploadDate": "2024-03-01T10:00:00Z",
		})
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/videos/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.deletes = append(f.deletes, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeAPI) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func (f *fakeAPI) uploaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

type cliEnv struct {
	api     *fakeAPI
	cfgPath string
	prefs   string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	cfgPath := filepath.Join(dir, "config.toml")
	cfg := fmt.Sprintf("api_base = %q\nlog_dir = %q\n", srv.URL, filepath.Join(dir, "logs"))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{api: api, cfgPath: cfgPath, prefs: filepath.Join(dir, "prefs.toml")}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append(args, "--config", e.cfgPath, "--prefs", e.prefs))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestList_PrintsTable(t *testing.T) {
	env := newCLIEnv(t)
	env.api.videos = []map[string]any{
		{"_id": "a1", "originalName": "first.mp4", "filename": "1-first.mp4", "size": 1048576, "uploadDate": "2024-03-01T10:00:00Z"},
	}

	out, _, err := env.run(t, "", "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	for _, want := range []string{"ID", "a1", "first.mp4", "1.00 MB", "/uploads/1-first.mp4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestList_Empty(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "", "list")
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if !strings.Contains(out, "No videos found") {
		t.Fatalf("output = %q", out)
	}
}

func TestDelete_PromptDeclinedSendsNothing(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "n\n", "delete", "abc")
	if err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if !strings.Contains(out, library.DeletePrompt) || !strings.Contains(out, "Delete cancelled") {
		t.Fatalf("output = %q", out)
	}
	if len(env.api.deleted()) != 0 {
		t.Fatalf("deletes = %v, want none", env.api.deleted())
	}
}

func TestDelete_PromptAccepted(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "y\n", "delete", "abc")
	if err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if len(env.api.deleted()) != 1 || env.api.deleted()[0] != "abc" {
		t.Fatalf("deletes = %v, want [abc]", env.api.deleted())
	}
	if !strings.Contains(out, "Deleted abc") {
		t.Fatalf("output = %q", out)
	}
}

func TestDelete_YesFlagSkipsPrompt(t *testing.T) {
	env := newCLIEnv(t)
	out, _, err := env.run(t, "", "delete", "--yes", "xyz")
	if err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if strings.Contains(out, library.DeletePrompt) {
		t.Fatalf("--yes should not prompt: %q", out)
	}
	if len(env.api.deleted()) != 1 || env.api.deleted()[0] != "xyz" {
		t.Fatalf("deletes = %v, want [xyz]", env.api.deleted())
	}
}

// slowReader holds its first Read for delay, like a user thinking it over.
type slowReader struct {
	delay time.Duration
	r     io.Reader
	once  sync.Once
}

func (s *slowReader) Read(p []byte) (int, error) {
	s.once.Do(func() { time.Sleep(s.delay) })
	return s.r.Read(p)
}

func TestDelete_SlowAnswerStillSendsRequest(t *testing.T) {
	saved := apiTimeout
	apiTimeout = 50 * time.Millisecond
	t.Cleanup(func() { apiTimeout = saved })

	env := newCLIEnv(t)
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs([]string{"delete", "a1", "--config", env.cfgPath, "--prefs", env.prefs})
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(&slowReader{delay: 4 * apiTimeout, r: strings.NewReader("y\n")})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("delete returned error: %v (stderr %q)", err, errOut.String())
	}
	if got := env.api.deleted(); len(got) != 1 || got[0] != "a1" {
		t.Fatalf("deletes = %v, want [a1]", got)
	}
	if !strings.Contains(out.String(), "Deleted a1") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestUpload_UploadsAndReportsProgress(t *testing.T) {
	env := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, bytes.Repeat([]byte("v"), 4096), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	out, errOut, err := env.run(t, "", "upload", path)
	if err != nil {
		t.Fatalf("upload returned error: %v (stderr %q)", err, errOut)
	}
	if len(env.api.uploaded()) != 1 || env.api.uploaded()[0] != "clip.mp4" {
		t.Fatalf("uploads = %v", env.api.uploaded())
	}
	if !strings.Contains(errOut, "Uploading... 100%") {
		t.Fatalf("stderr = %q, want a final progress line", errOut)
	}
	if !strings.Contains(out, "Uploaded clip.mp4") {
		t.Fatalf("stdout = %q", out)
	}
}

func TestUpload_ServerErrorNotifies(t *testing.T) {
	env := newCLIEnv(t)
	env.api.uploadCode = http.StatusInternalServerError
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, errOut, err := env.run(t, "", "upload", path)
	if err == nil {
		t.Fatal("upload should fail on a 500")
	}
	if !strings.Contains(errOut, transfer.FailedNotice) {
		t.Fatalf("stderr = %q, want %q", errOut, transfer.FailedNotice)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	env := newCLIEnv(t)
	if _, _, err := env.run(t, "", "upload", filepath.Join(t.TempDir(), "nope.mp4")); err == nil {
		t.Fatal("upload of a missing file should fail")
	}
}

func TestRecord_RejectsNegativeDuration(t *testing.T) {
	env := newCLIEnv(t)
	if _, _, err := env.run(t, "", "record", "--duration=-1s"); err == nil {
		t.Fatal("negative duration should fail")
	}
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes ", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := promptConfirmer(strings.NewReader(tt.input), &out).Confirm("Delete?")
		if got != tt.want {
			t.Fatalf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Delete? [y/N] " {
			t.Fatalf("prompt = %q", out.String())
		}
	}
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)

	p.Update(transfer.Transfer{State: transfer.StateInProgress, Percent: 10, BytesSent: 1048576, TotalBytes: 10485760})
	p.Update(transfer.Transfer{State: transfer.StateInProgress, Percent: 10, BytesSent: 1048577, TotalBytes: 10485760})
	p.Update(transfer.Transfer{State: transfer.StateSucceeded, Percent: 100, BytesSent: 10485760, TotalBytes: 10485760})
	p.Finish()
	p.Update(transfer.Transfer{State: transfer.StateInProgress, Percent: 5})

	got := buf.String()
	if strings.Count(got, "Uploading...") != 2 {
		t.Fatalf("output = %q, want two redraws", got)
	}
	if !strings.Contains(got, "100% (10.00 MB / 10.00 MB)") || !strings.HasSuffix(got, "\n") {
		t.Fatalf("output = %q", got)
	}
}
