package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultBinary      = "ffmpeg"
	defaultChunkSize   = 64 * 1024
	defaultStopTimeout = 5 * time.Second
	stderrTailBytes    = 4 * 1024
)

// FFmpegConfig describes how ffmpeg should open the camera and microphone.
type FFmpegConfig struct {
	Binary           string
	InputFormat      string // v4l2, avfoundation, lavfi, ...
	VideoDevice      string
	AudioInputFormat string // ignored for avfoundation, which muxes both
	AudioDevice      string // empty or "none" records video only
	Width            int
	Height           int
	FPS              int
	ChunkSize        int
	StopTimeout      time.Duration
}

// FFmpegSource records through an ffmpeg subprocess writing fragmented MP4
// to stdout.
type FFmpegSource struct {
	cfg    FFmpegConfig
	logger *slog.Logger
}

var _ Source = (*FFmpegSource)(nil)

// NewFFmpegSource returns a Source backed by ffmpeg.
func NewFFmpegSource(cfg FFmpegConfig, logger *slog.Logger) *FFmpegSource {
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = defaultStopTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FFmpegSource{cfg: cfg, logger: logger}
}

// CheckBinary reports whether the ffmpeg binary can be found.
func (s *FFmpegSource) CheckBinary() (string, error) {
	path, err := exec.LookPath(s.cfg.Binary)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH: %w", s.cfg.Binary, err)
	}
	return path, nil
}

// CheckDevice verifies that the configured video device can be opened. Only
// file-backed inputs (v4l2) are checked.
func (s *FFmpegSource) CheckDevice() error {
	if s.cfg.InputFormat != "v4l2" {
		return nil
	}
	f, err := os.OpenFile(s.cfg.VideoDevice, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	return f.Close()
}

// Acquire checks the binary and device and returns a stream whose tracks
// share one ffmpeg process.
func (s *FFmpegSource) Acquire(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, &DeviceAccessError{Op: "acquire", Err: err}
	}
	bin, err := s.CheckBinary()
	if err != nil {
		return nil, &DeviceAccessError{Op: "find ffmpeg", Err: err}
	}
	if err := s.CheckDevice(); err != nil {
		return nil, &DeviceAccessError{Op: "open video device", Err: err}
	}

	proc := &ffmpegProc{
		bin:     bin,
		args:    s.args(),
		cfg:     s.cfg,
		logger:  s.logger,
		exited:  make(chan struct{}),
		stderrT: &tailBuffer{max: stderrTailBytes},
	}
	st := &ffmpegStream{proc: proc}
	st.tracks = append(st.tracks, &ffmpegTrack{kind: "video", stream: st})
	if s.hasAudio() {
		st.tracks = append(st.tracks, &ffmpegTrack{kind: "audio", stream: st})
	}
	return st, nil
}

func (s *FFmpegSource) hasAudio() bool {
	dev := strings.TrimSpace(s.cfg.AudioDevice)
	return dev != "" && dev != "none"
}

// args builds the ffmpeg command line.
func (s *FFmpegSource) args() []string {
	cfg := s.cfg
	args := []string{"-hide_banner", "-loglevel", "warning"}

	videoIn := []string{"-f", cfg.InputFormat}
	if cfg.FPS > 0 {
		videoIn = append(videoIn, "-framerate", strconv.Itoa(cfg.FPS))
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		videoIn = append(videoIn, "-video_size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))
	}

	switch {
	case cfg.InputFormat == "avfoundation":
		input := cfg.VideoDevice
		if s.hasAudio() {
			input += ":" + cfg.AudioDevice
		}
		args = append(args, videoIn...)
		args = append(args, "-i", input)
	default:
		args = append(args, videoIn...)
		args = append(args, "-i", cfg.VideoDevice)
		if s.hasAudio() {
			args = append(args, "-f", cfg.AudioInputFormat, "-i", cfg.AudioDevice)
		}
	}

	args = append(args,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
	)
	if s.hasAudio() {
		args = append(args, "-c:a", "aac")
	}
	args = append(args,
		"-movflags", "frag_keyframe+empty_moov",
		"-f", "mp4",
		"pipe:1",
	)
	return args
}

type ffmpegStream struct {
	proc   *ffmpegProc
	tracks []Track

	mu       sync.Mutex
	recorder *ffmpegRecorder
}

func (st *ffmpegStream) Tracks() []Track {
	out := make([]Track, len(st.tracks))
	copy(out, st.tracks)
	return out
}

func (st *ffmpegStream) Recorder() (Recorder, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.recorder != nil {
		return nil, errors.New("stream already has a recorder")
	}
	if st.allStopped() {
		return nil, errors.New("stream tracks already stopped")
	}
	st.recorder = &ffmpegRecorder{proc: st.proc}
	return st.recorder, nil
}

func (st *ffmpegStream) allStopped() bool {
	for _, t := range st.tracks {
		if !t.Stopped() {
			return false
		}
	}
	return true
}

// trackStopped kills the process once no track is left running.
func (st *ffmpegStream) trackStopped() {
	st.mu.Lock()
	done := st.allStopped()
	st.mu.Unlock()
	if done {
		st.proc.kill()
	}
}

type ffmpegTrack struct {
	kind    string
	stream  *ffmpegStream
	mu      sync.Mutex
	stopped bool
}

func (t *ffmpegTrack) Kind() string { return t.kind }

func (t *ffmpegTrack) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()
	t.stream.trackStopped()
}

func (t *ffmpegTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type ffmpegRecorder struct {
	proc *ffmpegProc
}

func (r *ffmpegRecorder) Start(ctx context.Context) (<-chan []byte, error) {
	return r.proc.start(ctx)
}

func (r *ffmpegRecorder) Stop() error {
	return r.proc.stop()
}

// ffmpegProc is the single subprocess behind a stream.
type ffmpegProc struct {
	bin     string
	args    []string
	cfg     FFmpegConfig
	logger  *slog.Logger
	stderrT *tailBuffer

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	started  bool
	exited   chan struct{}
	waitErr  error
	stopOnce sync.Once
	stopErr  error
}

func (p *ffmpegProc) start(ctx context.Context) (<-chan []byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil, errors.New("recorder already started")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(p.bin, p.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = p.stderrT

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", p.bin, err)
	}
	p.cmd = cmd
	p.stdin = stdin
	p.started = true
	p.logger.Debug("ffmpeg started", "pid", cmd.Process.Pid, "args", strings.Join(p.args, " "))

	out := make(chan []byte, 16)
	go p.read(stdout, out)
	return out, nil
}

// read forwards stdout in chunks, then reaps the process.
func (p *ffmpegProc) read(stdout io.Reader, out chan<- []byte) {
	defer close(out)
	for {
		buf := make([]byte, p.cfg.ChunkSize)
		n, err := stdout.Read(buf)
		if n > 0 {
			out <- buf[:n]
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.logger.Warn("ffmpeg stdout read failed", "error", err)
			}
			break
		}
	}
	err := p.cmd.Wait()
	p.mu.Lock()
	p.waitErr = err
	p.mu.Unlock()
	close(p.exited)
	if err != nil {
		p.logger.Debug("ffmpeg exited", "error", err, "stderr", p.stderrT.String())
	}
}

// stop asks ffmpeg to finish the file by sending "q", then kills it after
// StopTimeout.
func (p *ffmpegProc) stop() error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		started, stdin := p.started, p.stdin
		p.mu.Unlock()
		if !started {
			return
		}
		if _, err := io.WriteString(stdin, "q\n"); err != nil {
			p.logger.Debug("ffmpeg stdin write failed", "error", err)
		}
		_ = stdin.Close()

		select {
		case <-p.exited:
		case <-time.After(p.cfg.StopTimeout):
			p.logger.Warn("ffmpeg did not exit after q; killing", "timeout", p.cfg.StopTimeout)
			p.kill()
			<-p.exited
		}
		p.mu.Lock()
		err := p.waitErr
		p.mu.Unlock()
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			p.stopErr = err
		} else if err != nil && exitErr.ExitCode() > 0 {
			p.stopErr = fmt.Errorf("ffmpeg exited: %w: %s", err, strings.TrimSpace(p.stderrT.String()))
		}
	})
	return p.stopErr
}

func (p *ffmpegProc) kill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started || p.cmd == nil || p.cmd.Process == nil {
		return
	}
	select {
	case <-p.exited:
		return
	default:
	}
	_ = p.cmd.Process.Kill()
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(b []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, b...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(b), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
