// Package config loads vidlift's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/vidlift/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	api_base = "http://localhost:5000"
//	list_path = "/api/videos"
//	upload_path = "/api/videos/upload"
//	delete_path = "/api/videos"
//	static_base = "http://localhost:5000/uploads"
//	log_dir = "~/.local/share/vidlift"
//	log_level = "info"
//	refresh_seconds = 0
//	request_timeout_seconds = 10
//
//	[capture]
//	ffmpeg_path = "ffmpeg"
//	input_format = "v4l2"
//	video_device = "/dev/video0"
//	audio_input_format = "pulse"
//	audio_device = "default"
//	width = 1280
//	height = 720
//	fps = 30
//
// Every field is optional. static_base defaults to api_base plus /uploads.
// Capture defaults depend on the platform: v4l2 and PulseAudio on Linux,
// avfoundation device 0 on macOS. Set audio_device = "none" to record video
// only. Tilde expansion is performed for log_dir and the config path.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parse errors, wrapped as "parse config: ..."
//   - A negative refresh_seconds
package config
