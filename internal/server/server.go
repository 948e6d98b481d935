// Package server exposes a caption session over HTTP for a browser player.
// The page owns the media element and streams its clock to the server over
// a websocket; the server answers with frames.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mgpai22/kara/internal/caption"
	"github.com/mgpai22/kara/internal/logging"
	"github.com/mgpai22/kara/internal/player"
	"github.com/mgpai22/kara/internal/style"
	"github.com/mgpai22/kara/internal/transcribe"
)

const DefaultMaxUpload = 512 << 20

type Options struct {
	AllowedOrigins []string
	// empty disables authentication
	JWTSecret string
	// largest accepted upload in bytes
	MaxUpload int64
}

type Server struct {
	log         *logging.Logger
	session     *caption.Session
	styles      *style.Registry
	transcriber transcribe.Transcriber
	renderer    *player.Renderer
	opts        Options
}

// New builds a server around session. transcriber may be nil, in which case
// uploads are refused and transcripts must be PUT directly.
func New(
	log *logging.Logger,
	session *caption.Session,
	styles *style.Registry,
	transcriber transcribe.Transcriber,
	renderer *player.Renderer,
	opts Options,
) *Server {
	if log == nil {
		log = logging.Nop()
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = DefaultMaxUpload
	}
	if renderer == nil {
		renderer = player.NewRenderer(1280, 720, "")
	}
	return &Server{
		log:         log.With("component", "server"),
		session:     session,
		styles:      styles,
		transcriber: transcriber,
		renderer:    renderer,
		opts:        opts,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.log))
	router.Use(CORS(s.opts.AllowedOrigins))
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", s.health)

	api := router.Group("/api")
	if s.opts.JWTSecret != "" {
		api.Use(RequireAuth(s.opts.JWTSecret))
	}
	{
		api.POST("/transcript", s.uploadTranscript)
		api.PUT("/transcript", s.putTranscript)
		api.GET("/transcript", s.getTranscript)
		api.DELETE("/transcript", s.deleteTranscript)
		api.PATCH("/segments/:segment/words/:word", s.editWord)

		api.GET("/resolve", s.resolve)
		api.GET("/preview", s.preview)
		api.PUT("/window", s.setWindow)
		api.GET("/style", s.getStyle)
		api.PUT("/style", s.setStyle)
		api.GET("/presets", s.listPresets)
		api.GET("/export/:format", s.export)
		api.GET("/ws", s.serveWS)
	}
	return router
}

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("Server listening", "addr", addr, "auth", s.opts.JWTSecret != "")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Infow("Shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
