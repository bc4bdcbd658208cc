package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Transcoder exposes the audio operations the pipelines need. Every method
// blocks until the underlying tool finishes or ctx is cancelled.
type Transcoder interface {
	// Probe inspects a media file and reports its stream layout.
	Probe(ctx context.Context, path string) (ProbeResult, error)
	// ExtractAudio writes the audio track of videoPath to audioPath as MP3.
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
	// Concat joins the given audio files into outPath without re-encoding.
	// Inputs must share a codec; order is preserved.
	Concat(ctx context.Context, inputs []string, outPath string) error
	// Compress re-encodes src into a mono low-bitrate MP3 at dst.
	Compress(ctx context.Context, src, dst string) error
}

// FFmpeg implements Transcoder by shelling out to ffmpeg and ffprobe.
type FFmpeg struct {
	ffmpegBin  string
	ffprobeBin string
}

// NewFFmpeg builds a Transcoder around the given binary names. Empty names
// fall back to the tools on PATH.
func NewFFmpeg(ffmpegBin, ffprobeBin string) *FFmpeg {
	ffmpegBin = strings.TrimSpace(ffmpegBin)
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	ffprobeBin = strings.TrimSpace(ffprobeBin)
	if ffprobeBin == "" {
		ffprobeBin = "ffprobe"
	}
	return &FFmpeg{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin}
}

// Probe executes ffprobe against path and decodes the JSON response.
func (f *FFmpeg) Probe(ctx context.Context, path string) (ProbeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ProbeResult{}, errors.New("ffprobe inspect: empty path")
	}
	cmd := exec.CommandContext(ctx, f.ffprobeBin, probeArgs(path)...)
	output, err := cmd.Output()
	if err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe inspect: %w: %s", err, exitDetail(err))
	}
	return decodeProbe(output)
}

// ExtractAudio pulls the audio track out of videoPath into an MP3 file.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	return f.run(ctx, extractArgs(videoPath, audioPath))
}

// Concat writes a concat demuxer list next to outPath and joins the inputs
// with stream copy.
func (f *FFmpeg) Concat(ctx context.Context, inputs []string, outPath string) error {
	if len(inputs) == 0 {
		return errors.New("ffmpeg concat: no inputs")
	}
	listPath := outPath + ".list.txt"
	if err := os.WriteFile(listPath, []byte(concatList(inputs)), 0o644); err != nil {
		return fmt.Errorf("ffmpeg concat: write list: %w", err)
	}
	defer os.Remove(listPath)
	return f.run(ctx, concatArgs(listPath, outPath))
}

// Compress re-encodes src to 16 kHz mono 64 kbit/s MP3, the smallest form the
// transcription service still handles well.
func (f *FFmpeg) Compress(ctx context.Context, src, dst string) error {
	return f.run(ctx, compressArgs(src, dst))
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, f.ffmpegBin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", f.ffmpegBin, args[len(args)-1], err, lastLines(string(output), 3))
	}
	return nil
}

func probeArgs(path string) []string {
	return []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path}
}

func extractArgs(videoPath, audioPath string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", "44100",
		"-b:a", "192k",
		audioPath,
	}
}

func concatArgs(listPath, outPath string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	}
}

func compressArgs(src, dst string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-b:a", "64k",
		dst,
	}
}

// concatList renders the concat demuxer file format. Single quotes inside
// paths are closed, escaped, and reopened per the demuxer's quoting rules.
func concatList(inputs []string) string {
	var b strings.Builder
	for _, input := range inputs {
		abs := input
		if resolved, err := filepath.Abs(input); err == nil {
			abs = resolved
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	return b.String()
}

func exitDetail(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return lastLines(string(exitErr.Stderr), 3)
	}
	return err.Error()
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}
