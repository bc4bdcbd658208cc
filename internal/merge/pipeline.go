// Package merge implements the merge pipeline: it drains a user's queued
// videos, extracts each audio track, joins them in arrival order, and
// persists the result as the user's artifact.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"stitcher/internal/artifact"
	"stitcher/internal/config"
	"stitcher/internal/logging"
	"stitcher/internal/media"
	"stitcher/internal/services"
	"stitcher/internal/session"
	"stitcher/internal/transport"
	"stitcher/internal/workers"
)

// Pipeline turns a user's queued videos into one stored audio artifact.
type Pipeline struct {
	cfg        *config.Config
	sessions   *session.Store
	artifacts  *artifact.Store
	fetcher    transport.Fetcher
	transcoder media.Transcoder
	messenger  transport.Messenger
	pool       *workers.Pool
	logger     *slog.Logger
}

// New wires a merge pipeline from its collaborators.
func New(
	cfg *config.Config,
	sessions *session.Store,
	artifacts *artifact.Store,
	fetcher transport.Fetcher,
	transcoder media.Transcoder,
	messenger transport.Messenger,
	pool *workers.Pool,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		sessions:   sessions,
		artifacts:  artifacts,
		fetcher:    fetcher,
		transcoder: transcoder,
		messenger:  messenger,
		pool:       pool,
		logger:     logging.NewComponentLogger(logger, "merge"),
	}
}

// Run executes one merge for the user. The queue is drained atomically up
// front, so videos arriving mid-merge belong to the next one, and the queue
// stays cleared even when the merge fails. Clips without an audio track are
// skipped with a notice; every other per-clip failure aborts the job.
func (p *Pipeline) Run(ctx context.Context, user string) (*artifact.Record, error) {
	ctx = services.WithUserID(ctx, user)
	ctx = services.WithStage(ctx, "merge")
	log := logging.WithContext(ctx, p.logger)

	refs := p.sessions.SnapshotAndClear(user)
	if len(refs) == 0 {
		return nil, services.Wrap(services.ErrEmptyQueue, "merge", "snapshot", "", nil)
	}
	log.Info("merge started", logging.Int("videos", len(refs)))
	p.notify(ctx, user, fmt.Sprintf("Merging %d video(s)...", len(refs)))

	workDir := filepath.Join(p.cfg.Paths.WorkDir, "merge-"+jobDirSuffix(ctx))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConcatenation, "merge", "create work dir", workDir, err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("work dir cleanup failed", logging.String("dir", workDir), logging.Error(err))
		}
	}()

	tracks := make([]string, 0, len(refs))
	for i, ref := range refs {
		videoPath := filepath.Join(workDir, fmt.Sprintf("video_%03d%s", i, extensionOf(ref)))
		if err := p.pool.Do(ctx, func(ctx context.Context) error {
			return p.fetcher.Fetch(ctx, ref.URL, videoPath)
		}); err != nil {
			return nil, services.Wrap(services.ErrDownload, "merge", "download", ref.ID, err)
		}

		var probe media.ProbeResult
		if err := p.pool.Do(ctx, func(ctx context.Context) error {
			var probeErr error
			probe, probeErr = p.transcoder.Probe(ctx, videoPath)
			return probeErr
		}); err != nil {
			return nil, services.Wrap(services.ErrExtraction, "merge", "probe", ref.ID, err)
		}
		if !probe.HasAudio() {
			log.Info("clip skipped, no audio track", logging.String("video_id", ref.ID), logging.Int("position", i+1))
			p.notify(ctx, user, fmt.Sprintf("Video %d has no audio track, skipping.", i+1))
			continue
		}

		audioPath := filepath.Join(workDir, fmt.Sprintf("audio_%03d.mp3", i))
		if err := p.pool.Do(ctx, func(ctx context.Context) error {
			return p.transcoder.ExtractAudio(ctx, videoPath, audioPath)
		}); err != nil {
			return nil, services.Wrap(services.ErrExtraction, "merge", "extract audio", ref.ID, err)
		}
		tracks = append(tracks, audioPath)
	}

	if len(tracks) == 0 {
		return nil, services.Wrap(services.ErrNoAudioFound, "merge", "collect", fmt.Sprintf("%d video(s), none with audio", len(refs)), nil)
	}

	combined := filepath.Join(workDir, "combined.mp3")
	if err := p.pool.Do(ctx, func(ctx context.Context) error {
		return p.transcoder.Concat(ctx, tracks, combined)
	}); err != nil {
		return nil, services.Wrap(services.ErrConcatenation, "merge", "concat", "", err)
	}

	record, err := p.artifacts.Put(ctx, user, combined)
	if err != nil {
		return nil, services.Wrap(services.ErrPersist, "merge", "store artifact", "", err)
	}
	log.Info("merge completed",
		logging.Int("tracks", len(tracks)),
		logging.Int64("bytes", record.ByteSize),
		logging.String("artifact", record.Path))

	// The artifact is already persisted; a failed delivery is not a failed
	// merge.
	caption := fmt.Sprintf("Merged audio from %d video(s).", len(tracks))
	if err := p.messenger.SendFile(ctx, user, record.Path, caption); err != nil {
		log.Warn("merged audio delivery failed", logging.Error(err))
	}
	return record, nil
}

func (p *Pipeline) notify(ctx context.Context, user, text string) {
	if err := p.messenger.SendText(ctx, user, text); err != nil {
		logging.WithContext(ctx, p.logger).Warn("notification failed", logging.Error(err))
	}
}

func extensionOf(ref session.VideoRef) string {
	if ext := filepath.Ext(ref.URL); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".mp4"
}

func jobDirSuffix(ctx context.Context) string {
	if job, ok := services.JobIDFromContext(ctx); ok {
		return job
	}
	return fmt.Sprintf("%d", os.Getpid())
}
