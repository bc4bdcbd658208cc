// Package enrich implements the enrichment pipeline: it transcribes a user's
// stored audio artifact, translates the transcript into every configured
// language, and delivers one PDF per language plus a combined text summary.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stitcher/internal/artifact"
	"stitcher/internal/config"
	"stitcher/internal/logging"
	"stitcher/internal/render"
	"stitcher/internal/services"
	"stitcher/internal/sizeguard"
	"stitcher/internal/transcribe"
	"stitcher/internal/translate"
	"stitcher/internal/transport"
	"stitcher/internal/workers"
)

// Pipeline turns a stored audio artifact into delivered transcript documents.
type Pipeline struct {
	cfg         *config.Config
	artifacts   *artifact.Store
	guard       *sizeguard.Guard
	transcriber transcribe.Client
	translator  translate.Client
	renderer    render.Client
	messenger   transport.Messenger
	pool        *workers.Pool
	logger      *slog.Logger
}

// New wires an enrichment pipeline from its collaborators.
func New(
	cfg *config.Config,
	artifacts *artifact.Store,
	guard *sizeguard.Guard,
	transcriber transcribe.Client,
	translator translate.Client,
	renderer render.Client,
	messenger transport.Messenger,
	pool *workers.Pool,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		artifacts:   artifacts,
		guard:       guard,
		transcriber: transcriber,
		translator:  translator,
		renderer:    renderer,
		messenger:   messenger,
		pool:        pool,
		logger:      logging.NewComponentLogger(logger, "enrich"),
	}
}

// Run executes one enrichment for the user. The stored artifact is deleted
// only when every step succeeds; any failure keeps it so the user can retry.
// Rendered documents and the compressed copy live in a job working directory
// removed on every exit path.
func (p *Pipeline) Run(ctx context.Context, user string) error {
	ctx = services.WithUserID(ctx, user)
	ctx = services.WithStage(ctx, "enrich")
	log := logging.WithContext(ctx, p.logger)

	record, err := p.artifacts.Get(ctx, user)
	if err != nil {
		return services.Wrap(services.ErrNoArtifact, "enrich", "load artifact", "", err)
	}
	if record == nil {
		return services.Wrap(services.ErrNoArtifact, "enrich", "load artifact", "", nil)
	}
	log.Info("enrichment started", logging.Int64("bytes", record.ByteSize))
	p.notify(ctx, user, "Transcribing your combined audio...")

	workDir := filepath.Join(p.cfg.Paths.WorkDir, "enrich-"+jobDirSuffix(ctx))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrTranscription, "enrich", "create work dir", workDir, err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("work dir cleanup failed", logging.String("dir", workDir), logging.Error(err))
		}
	}()

	var uploadPath string
	if err := p.pool.Do(ctx, func(ctx context.Context) error {
		path, size, fitErr := p.guard.Fit(ctx, record.Path, workDir)
		if fitErr != nil {
			return fitErr
		}
		if path != record.Path {
			log.Info("artifact compressed for upload", logging.Int64("bytes", size))
		}
		uploadPath = path
		return nil
	}); err != nil {
		return err
	}

	var transcript string
	if err := p.pool.Do(ctx, func(ctx context.Context) error {
		var transcribeErr error
		transcript, transcribeErr = p.transcriber.Transcribe(ctx, uploadPath)
		return transcribeErr
	}); err != nil {
		return err
	}
	log.Info("transcription completed", logging.Int("characters", len(transcript)))

	// All-or-nothing: no document ships unless every language translated.
	translations := make([]string, len(p.cfg.Translation.Languages))
	for i, lang := range p.cfg.Translation.Languages {
		if err := p.pool.Do(ctx, func(ctx context.Context) error {
			var translateErr error
			translations[i], translateErr = p.translator.Translate(ctx, transcript, lang.Code)
			return translateErr
		}); err != nil {
			return err
		}
	}

	created := time.Now()
	for i, lang := range p.cfg.Translation.Languages {
		doc := render.Document{
			LanguageName: lang.Name,
			LanguageCode: lang.Code,
			Transcript:   transcript,
			Translation:  translations[i],
			CreatedAt:    created,
		}
		if err := p.pool.Do(ctx, func(ctx context.Context) error {
			path, renderErr := p.renderer.Render(doc, workDir)
			if renderErr != nil {
				return renderErr
			}
			caption := fmt.Sprintf("Transcript in %s", lang.Name)
			if sendErr := p.messenger.SendFile(ctx, user, path, caption); sendErr != nil {
				return services.Wrap(services.ErrRender, "enrich", "deliver document", lang.Code, sendErr)
			}
			log.Info("document delivered", logging.String("language", lang.Code))
			return nil
		}); err != nil {
			return err
		}
	}

	if err := p.messenger.SendText(ctx, user, combinedMessage(p.cfg.Translation.Languages, translations)); err != nil {
		return services.Wrap(services.ErrRender, "enrich", "deliver summary", "", err)
	}

	if err := p.artifacts.Delete(ctx, user); err != nil {
		return services.Wrap(services.ErrPersist, "enrich", "retire artifact", "", err)
	}
	log.Info("enrichment completed", logging.Int("languages", len(p.cfg.Translation.Languages)))
	return nil
}

func (p *Pipeline) notify(ctx context.Context, user, text string) {
	if err := p.messenger.SendText(ctx, user, text); err != nil {
		logging.WithContext(ctx, p.logger).Warn("notification failed", logging.Error(err))
	}
}

func combinedMessage(languages []config.Language, translations []string) string {
	var b strings.Builder
	b.WriteString("Translations:\n")
	for i, lang := range languages {
		if i >= len(translations) {
			break
		}
		fmt.Fprintf(&b, "\n%s:\n%s\n", lang.Name, translations[i])
	}
	return strings.TrimRight(b.String(), "\n")
}

func jobDirSuffix(ctx context.Context) string {
	if job, ok := services.JobIDFromContext(ctx); ok {
		return job
	}
	return fmt.Sprintf("%d", os.Getpid())
}
