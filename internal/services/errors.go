package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classify pipeline failures. Merge jobs fail with one of
// ErrNoAudioFound, ErrDownload, ErrExtraction, ErrConcatenation, or
// ErrPersist; enrichment jobs fail with one of ErrNoArtifact, ErrSizeLimit,
// ErrTranscription, ErrTranslation, or ErrRender. ErrEmptyQueue and
// ErrNoAudioTrack are user-visible conditions rather than job failures: an
// empty queue is a no-op, and a clip without an audio track is skipped, not
// fatal.
var (
	ErrEmptyQueue    = errors.New("empty queue")
	ErrNoAudioTrack  = errors.New("no audio track")
	ErrNoAudioFound  = errors.New("no audio found")
	ErrDownload      = errors.New("download failure")
	ErrExtraction    = errors.New("audio extraction failure")
	ErrConcatenation = errors.New("concatenation failure")
	ErrPersist       = errors.New("persist failure")
	ErrNoArtifact    = errors.New("no artifact")
	ErrSizeLimit     = errors.New("size limit exceeded")
	ErrTranscription = errors.New("transcription failure")
	ErrTranslation   = errors.New("translation failure")
	ErrRender        = errors.New("render failure")
	ErrJobInFlight   = errors.New("job already in flight")
)

// Wrap builds an error message that includes pipeline context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = errors.New("pipeline failure")
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// UserMessage maps a pipeline error to the human-readable text delivered to
// the user when a job aborts.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQueue):
		return "No videos to process. Send videos first."
	case errors.Is(err, ErrNoAudioFound):
		return "No audio found in any of your videos."
	case errors.Is(err, ErrDownload):
		return "Failed to download one of your videos. Try again."
	case errors.Is(err, ErrExtraction):
		return "Failed to read audio from one of your videos. Try again."
	case errors.Is(err, ErrConcatenation):
		return "Failed to assemble the combined audio. Try again."
	case errors.Is(err, ErrPersist):
		return "Failed to store the combined audio. Try again."
	case errors.Is(err, ErrNoArtifact):
		return "No combined audio found. Merge your videos first."
	case errors.Is(err, ErrSizeLimit):
		return "Combined audio is too large for transcription. Send shorter clips or split the batch."
	case errors.Is(err, ErrTranscription):
		return "Transcription failed. Your combined audio is kept; try again."
	case errors.Is(err, ErrTranslation):
		return "Translation failed. Your combined audio is kept; try again."
	case errors.Is(err, ErrRender):
		return "Document generation failed. Your combined audio is kept; try again."
	case errors.Is(err, ErrJobInFlight):
		return "A job is already running for you. Wait for it to finish."
	default:
		return "Something went wrong. Try again."
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
