// Package capture records a video from the camera and microphone and hands
// the finished file to an uploader.
//
// A Controller walks a single session through Idle, Requesting, Recording,
// Finalizing and back to Idle. Start acquires a Stream from a Source; any
// failure there returns a *DeviceAccessError and leaves the controller idle.
// While recording, a drain goroutine appends every non-empty chunk the
// Recorder emits and a ticker counts elapsed seconds for display. Stop waits
// for the recorder to flush, joins the chunks into one video/mp4 file named
// recorded-<epoch millis>.mp4, uploads it, and stops every track of the
// stream on the way out. Streams are never reused.
//
// FFmpegSource is the production Source. It runs one ffmpeg process per
// stream, writing fragmented MP4 to stdout, and stops it by sending "q" on
// stdin so the trailing fragment is flushed.
package capture
