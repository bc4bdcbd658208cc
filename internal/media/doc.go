// Package media wraps the ffmpeg and ffprobe binaries behind a Transcoder
// interface so pipelines can be tested without real media files.
package media
