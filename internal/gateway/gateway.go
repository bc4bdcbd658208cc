// Package gateway is the command surface of the daemon. It accepts user
// operations, enforces the one-job-per-user rule, launches pipeline runs on
// background goroutines, and turns failures into user notifications.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"stitcher/internal/artifact"
	"stitcher/internal/logging"
	"stitcher/internal/services"
	"stitcher/internal/session"
	"stitcher/internal/transport"
)

// MergeRunner runs one merge job for a user.
type MergeRunner interface {
	Run(ctx context.Context, user string) (*artifact.Record, error)
}

// EnrichRunner runs one enrichment job for a user.
type EnrichRunner interface {
	Run(ctx context.Context, user string) error
}

// Status summarizes a user's state for the status endpoint.
type Status struct {
	QueuedVideos int  `json:"queued_videos"`
	HasArtifact  bool `json:"has_artifact"`
	JobInFlight  bool `json:"job_in_flight"`
}

// Gateway coordinates sessions, jobs, and user notifications.
type Gateway struct {
	base      context.Context
	sessions  *session.Store
	artifacts *artifact.Store
	merger    MergeRunner
	enricher  EnrichRunner
	messenger transport.Messenger
	logger    *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
	jobs     sync.WaitGroup
}

// New builds a Gateway. Jobs inherit base, so cancelling it during shutdown
// aborts in-flight pipeline runs.
func New(
	base context.Context,
	sessions *session.Store,
	artifacts *artifact.Store,
	merger MergeRunner,
	enricher EnrichRunner,
	messenger transport.Messenger,
	logger *slog.Logger,
) *Gateway {
	if base == nil {
		base = context.Background()
	}
	return &Gateway{
		base:      base,
		sessions:  sessions,
		artifacts: artifacts,
		merger:    merger,
		enricher:  enricher,
		messenger: messenger,
		logger:    logging.NewComponentLogger(logger, "gateway"),
		inFlight:  make(map[string]struct{}),
	}
}

// EnqueueVideo appends a video to the user's queue and returns the new count.
// Queuing is always allowed, even while a job runs; the video lands in the
// next merge.
func (g *Gateway) EnqueueVideo(user string, ref session.VideoRef) int {
	count := g.sessions.Enqueue(user, ref)
	g.logger.Info("video queued",
		logging.String(logging.FieldUserID, user),
		logging.Int("queued", count))
	return count
}

// Merge starts a merge job for the user. It returns ErrJobInFlight when a
// job is already running; otherwise it returns immediately and the job runs
// in the background.
func (g *Gateway) Merge(user string) error {
	return g.launch(user, "merge", func(ctx context.Context) error {
		_, err := g.merger.Run(ctx, user)
		return err
	})
}

// Enrich starts an enrichment job for the user under the same in-flight rule.
func (g *Gateway) Enrich(user string) error {
	return g.launch(user, "enrich", func(ctx context.Context) error {
		return g.enricher.Run(ctx, user)
	})
}

// QueueStatus reports the user's queue depth, stored artifact, and job state.
func (g *Gateway) QueueStatus(ctx context.Context, user string) (Status, error) {
	record, err := g.artifacts.Get(ctx, user)
	if err != nil {
		return Status{}, err
	}
	g.mu.Lock()
	_, busy := g.inFlight[user]
	g.mu.Unlock()
	return Status{
		QueuedVideos: g.sessions.PeekCount(user),
		HasArtifact:  record != nil,
		JobInFlight:  busy,
	}, nil
}

// Clear drops the user's queued videos and reports whether a session existed.
// The stored artifact is untouched.
func (g *Gateway) Clear(user string) bool {
	existed := g.sessions.Clear(user)
	g.logger.Info("queue cleared",
		logging.String(logging.FieldUserID, user),
		logging.Bool("existed", existed))
	return existed
}

// Wait blocks until all in-flight jobs have finished.
func (g *Gateway) Wait() {
	g.jobs.Wait()
}

func (g *Gateway) launch(user, kind string, run func(context.Context) error) error {
	g.mu.Lock()
	if _, busy := g.inFlight[user]; busy {
		g.mu.Unlock()
		return services.Wrap(services.ErrJobInFlight, kind, "launch", user, nil)
	}
	g.inFlight[user] = struct{}{}
	g.mu.Unlock()

	jobID := uuid.NewString()
	ctx := services.WithUserID(g.base, user)
	ctx = services.WithJobID(ctx, jobID)
	log := logging.WithContext(ctx, g.logger)
	log.Info("job launched", logging.String("kind", kind))

	g.jobs.Add(1)
	go func() {
		defer g.jobs.Done()
		defer func() {
			g.mu.Lock()
			delete(g.inFlight, user)
			g.mu.Unlock()
		}()

		err := run(ctx)
		switch {
		case err == nil:
			log.Info("job finished", logging.String("kind", kind))
		case errors.Is(err, services.ErrEmptyQueue):
			log.Info("job was a no-op", logging.String("kind", kind), logging.Error(err))
			g.notifyFailure(ctx, user, err)
		default:
			log.Error("job failed", logging.String("kind", kind), logging.Error(err))
			g.notifyFailure(ctx, user, err)
		}
	}()
	return nil
}

func (g *Gateway) notifyFailure(ctx context.Context, user string, err error) {
	message := services.UserMessage(err)
	if message == "" {
		return
	}
	if sendErr := g.messenger.SendText(ctx, user, message); sendErr != nil {
		logging.WithContext(ctx, g.logger).Warn("failure notification failed", logging.Error(sendErr))
	}
}
