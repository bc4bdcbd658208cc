// Package daemon coordinates the long-running service: it enforces
// single-instance execution, wires the pipelines behind the gateway, and runs
// the HTTP control surface.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"stitcher/internal/api"
	"stitcher/internal/artifact"
	"stitcher/internal/config"
	"stitcher/internal/enrich"
	"stitcher/internal/gateway"
	"stitcher/internal/logging"
	"stitcher/internal/media"
	"stitcher/internal/merge"
	"stitcher/internal/render"
	"stitcher/internal/session"
	"stitcher/internal/sizeguard"
	"stitcher/internal/transcribe"
	"stitcher/internal/translate"
	"stitcher/internal/transport"
	"stitcher/internal/workers"
)

// Daemon owns the process-wide services and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *artifact.Store
	gateway *gateway.Gateway
	server  *api.Server

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	cancel   context.CancelFunc
	serveErr chan error
}

// New constructs a daemon around pre-built dependencies.
func New(cfg *config.Config, store *artifact.Store, gw *gateway.Gateway, server *api.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || gw == nil || server == nil {
		return nil, errors.New("daemon requires config, store, gateway, and server")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.LogDir, "stitcherd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		gateway:  gw,
		server:   server,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Bootstrap wires the full service graph from configuration and returns a
// ready-to-start daemon.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := artifact.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}

	sessions := session.NewStore()
	pool := workers.NewPool(cfg.Workflow.Workers)
	transcoder := media.NewFFmpeg(cfg.FFmpegBinary(), cfg.FFprobeBinary())
	fetcher := transport.NewFetcher(cfg)
	messenger := transport.NewMessenger(cfg)
	guard := sizeguard.New(transcoder, cfg.SizeCeilingBytes())

	merger := merge.New(cfg, sessions, store, fetcher, transcoder, messenger, pool, logger)
	enricher := enrich.New(cfg, store, guard, transcribe.NewClient(cfg), translate.NewClient(cfg), render.New(), messenger, pool, logger)
	gw := gateway.New(ctx, sessions, store, merger, enricher, messenger, logger)
	server := api.New(cfg.Paths.APIBind, gw, logger)

	daemon, err := New(cfg, store, gw, server, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return daemon, nil
}

// Start acquires the daemon lock and begins serving the API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another stitcher daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.serveErr = make(chan error, 1)
	go func() {
		d.serveErr <- d.server.Start()
	}()
	go func() {
		<-runCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := d.server.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("api shutdown failed", logging.Error(err))
		}
	}()

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("lock", d.lockPath),
		logging.String("bind", d.cfg.Paths.APIBind))
	return nil
}

// Wait blocks until the API listener exits and returns its error.
func (d *Daemon) Wait() error {
	if d.serveErr == nil {
		return nil
	}
	return <-d.serveErr
}

// Stop drains in-flight jobs, stops the API, and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.gateway.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// LockPath reports the single-instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Running reports whether the daemon has been started and not yet stopped.
func (d *Daemon) Running() bool {
	return d.running.Load()
}
