// Package sizeguard keeps transcription uploads under the service's size
// ceiling by re-encoding oversized audio once before giving up.
package sizeguard

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"stitcher/internal/fileutil"
	"stitcher/internal/media"
	"stitcher/internal/services"
)

// NeedsCompression reports whether an audio file of sizeBytes exceeds the
// upload ceiling.
func NeedsCompression(sizeBytes, ceilingBytes int64) bool {
	return sizeBytes > ceilingBytes
}

// Guard shrinks audio files that exceed the upload ceiling.
type Guard struct {
	transcoder   media.Transcoder
	ceilingBytes int64
}

// New builds a Guard around the given transcoder and byte ceiling.
func New(transcoder media.Transcoder, ceilingBytes int64) *Guard {
	return &Guard{transcoder: transcoder, ceilingBytes: ceilingBytes}
}

// Fit returns a path to audio that satisfies the ceiling, along with its
// size. When src already fits it is returned untouched. Otherwise one
// compression pass writes a downmixed copy into workDir; if even that copy
// exceeds the ceiling the error carries ErrSizeLimit and the caller must not
// upload.
func (g *Guard) Fit(ctx context.Context, src, workDir string) (string, int64, error) {
	size, err := fileutil.FileSize(src)
	if err != nil {
		return "", 0, services.Wrap(services.ErrTranscription, "sizeguard", "stat", src, err)
	}
	if !NeedsCompression(size, g.ceilingBytes) {
		return src, size, nil
	}

	dst := filepath.Join(workDir, compressedName(src))
	if err := g.transcoder.Compress(ctx, src, dst); err != nil {
		return "", 0, services.Wrap(services.ErrTranscription, "sizeguard", "compress", src, err)
	}
	compressedSize, err := fileutil.FileSize(dst)
	if err != nil {
		return "", 0, services.Wrap(services.ErrTranscription, "sizeguard", "stat compressed", dst, err)
	}
	if NeedsCompression(compressedSize, g.ceilingBytes) {
		detail := fmt.Sprintf("%d bytes after compression, ceiling %d", compressedSize, g.ceilingBytes)
		return "", 0, services.Wrap(services.ErrSizeLimit, "sizeguard", "fit", detail, nil)
	}
	return dst, compressedSize, nil
}

func compressedName(src string) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_compressed.mp3"
}
