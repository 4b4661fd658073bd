package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything vidlift reads from config.toml.
type Config struct {
	APIBase         string
	ListPath        string
	UploadPath      string
	DeletePath      string
	StaticBase      string
	LogDir          string
	LogLevel        string
	RefreshInterval time.Duration // zero disables background refresh
	RequestTimeout  time.Duration
	Capture         Capture
}

// Capture describes the camera and microphone inputs handed to ffmpeg.
type Capture struct {
	FFmpegPath       string
	InputFormat      string
	VideoDevice      string
	AudioInputFormat string
	AudioDevice      string
	Width            int
	Height           int
	FPS              int
}

const (
	defaultConfigPath     = "~/.config/vidlift/config.toml"
	defaultAPIBase        = "http://localhost:5000"
	defaultListPath       = "/api/videos"
	defaultUploadPath     = "/api/videos/upload"
	defaultDeletePath     = "/api/videos"
	defaultStaticSuffix   = "/uploads"
	defaultLogDir         = "~/.local/share/vidlift"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 10 * time.Second
	defaultFFmpegPath     = "ffmpeg"
	defaultWidth          = 1280
	defaultHeight         = 720
	defaultFPS            = 30
	logFileName           = "vidlift.log"
)

type rawConfig struct {
	APIBase               string     `toml:"api_base"`
	ListPath              string     `toml:"list_path"`
	UploadPath            string     `toml:"upload_path"`
	DeletePath            string     `toml:"delete_path"`
	StaticBase            string     `toml:"static_base"`
	LogDir                string     `toml:"log_dir"`
	LogLevel              string     `toml:"log_level"`
	RefreshSeconds        int        `toml:"refresh_seconds"`
	RequestTimeoutSeconds int        `toml:"request_timeout_seconds"`
	Capture               rawCapture `toml:"capture"`
}

type rawCapture struct {
	FFmpegPath       string `toml:"ffmpeg_path"`
	InputFormat      string `toml:"input_format"`
	VideoDevice      string `toml:"video_device"`
	AudioInputFormat string `toml:"audio_input_format"`
	AudioDevice      string `toml:"audio_device"`
	Width            int    `toml:"width"`
	Height           int    `toml:"height"`
	FPS              int    `toml:"fps"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg, _ := fromRaw(rawConfig{})
	return cfg
}

// Load locates and parses the vidlift config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return fromRaw(raw)
}

func fromRaw(raw rawConfig) (Config, error) {
	cfg := Config{
		APIBase:    orDefault(raw.APIBase, defaultAPIBase),
		ListPath:   orDefault(raw.ListPath, defaultListPath),
		UploadPath: orDefault(raw.UploadPath, defaultUploadPath),
		DeletePath: orDefault(raw.DeletePath, defaultDeletePath),
		LogDir:     mustExpand(orDefault(raw.LogDir, defaultLogDir)),
		LogLevel:   strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel)),
	}
	cfg.StaticBase = orDefault(raw.StaticBase, strings.TrimRight(cfg.APIBase, "/")+defaultStaticSuffix)

	if raw.RefreshSeconds < 0 {
		return Config{}, fmt.Errorf("refresh_seconds must be >= 0, got %d", raw.RefreshSeconds)
	}
	cfg.RefreshInterval = time.Duration(raw.RefreshSeconds) * time.Second

	cfg.RequestTimeout = defaultRequestTimeout
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}

	cfg.Capture = captureFromRaw(raw.Capture, runtime.GOOS)
	return cfg, nil
}

func captureFromRaw(raw rawCapture, goos string) Capture {
	input, video, audioFormat, audio := platformCaptureDefaults(goos)
	c := Capture{
		FFmpegPath:       orDefault(raw.FFmpegPath, defaultFFmpegPath),
		InputFormat:      orDefault(raw.InputFormat, input),
		VideoDevice:      orDefault(raw.VideoDevice, video),
		AudioInputFormat: orDefault(raw.AudioInputFormat, audioFormat),
		AudioDevice:      orDefault(raw.AudioDevice, audio),
		Width:            raw.Width,
		Height:           raw.Height,
		FPS:              raw.FPS,
	}
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = defaultWidth, defaultHeight
	}
	if c.FPS <= 0 {
		c.FPS = defaultFPS
	}
	return c
}

// platformCaptureDefaults returns input format, video device, audio input
// format and audio device for goos.
func platformCaptureDefaults(goos string) (string, string, string, string) {
	if goos == "darwin" {
		return "avfoundation", "0", "avfoundation", "0"
	}
	return "v4l2", "/dev/video0", "pulse", "default"
}

// LogPath returns the path to vidlift's own log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/" + logFileName)
	}
	return filepath.Join(c.LogDir, logFileName)
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
