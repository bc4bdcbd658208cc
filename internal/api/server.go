// Package api exposes the daemon's HTTP control surface.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"stitcher/internal/gateway"
	"stitcher/internal/logging"
	"stitcher/internal/services"
	"stitcher/internal/session"
)

// Server wraps the echo HTTP server that fronts the gateway.
type Server struct {
	echo    *echo.Echo
	gateway *gateway.Gateway
	logger  *slog.Logger
	bind    string
}

// New builds the API server and registers its routes.
func New(bind string, gw *gateway.Gateway, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		gateway: gw,
		logger:  logging.NewComponentLogger(logger, "api"),
		bind:    bind,
	}

	e.GET("/healthz", s.health)
	v1 := e.Group("/v1/users/:id")
	v1.POST("/videos", s.enqueueVideo)
	v1.POST("/merge", s.merge)
	v1.POST("/enrich", s.enrich)
	v1.GET("/status", s.status)
	v1.DELETE("/queue", s.clearQueue)
	return s
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("api listening", logging.String("bind", s.bind))
	err := s.echo.Start(s.bind)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type enqueueRequest struct {
	VideoID string `json:"video_id"`
	URL     string `json:"url"`
}

type enqueueResponse struct {
	Queued int `json:"queued"`
}

type jobResponse struct {
	Accepted bool   `json:"accepted"`
	Detail   string `json:"detail,omitempty"`
}

type clearResponse struct {
	Cleared bool `json:"cleared"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) enqueueVideo(c echo.Context) error {
	user, err := userID(c)
	if err != nil {
		return err
	}
	var req enqueueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.URL) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	count := s.gateway.EnqueueVideo(user, session.VideoRef{
		ID:         strings.TrimSpace(req.VideoID),
		URL:        strings.TrimSpace(req.URL),
		ReceivedAt: time.Now(),
	})
	return c.JSON(http.StatusAccepted, enqueueResponse{Queued: count})
}

func (s *Server) merge(c echo.Context) error {
	user, err := userID(c)
	if err != nil {
		return err
	}
	return s.launch(c, s.gateway.Merge(user))
}

func (s *Server) enrich(c echo.Context) error {
	user, err := userID(c)
	if err != nil {
		return err
	}
	return s.launch(c, s.gateway.Enrich(user))
}

func (s *Server) launch(c echo.Context, err error) error {
	if errors.Is(err, services.ErrJobInFlight) {
		return c.JSON(http.StatusConflict, jobResponse{Detail: services.UserMessage(err)})
	}
	if err != nil {
		s.logger.Error("job launch failed", logging.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "job launch failed")
	}
	return c.JSON(http.StatusAccepted, jobResponse{Accepted: true})
}

func (s *Server) status(c echo.Context) error {
	user, err := userID(c)
	if err != nil {
		return err
	}
	status, err := s.gateway.QueueStatus(c.Request().Context(), user)
	if err != nil {
		s.logger.Error("status lookup failed", logging.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "status lookup failed")
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) clearQueue(c echo.Context) error {
	user, err := userID(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clearResponse{Cleared: s.gateway.Clear(user)})
}

func userID(c echo.Context) (string, error) {
	user := strings.TrimSpace(c.Param("id"))
	if user == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "user id is required")
	}
	return user, nil
}
