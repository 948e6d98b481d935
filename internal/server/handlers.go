package server

import (
	"bytes"
	"errors"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mgpai22/kara/internal/caption"
	"github.com/mgpai22/kara/internal/style"
	"github.com/mgpai22/kara/internal/subtitle"
	"github.com/mgpai22/kara/internal/transcribe"
	"github.com/mgpai22/kara/internal/transcript"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"transcribing": s.session.Pending(),
	})
}

// POST /api/transcript: multipart "file" is transcribed with the configured
// provider. A newer upload or a DELETE while the provider runs makes this
// one stale.
func (s *Server) uploadTranscript(c *gin.Context) {
	if s.transcriber == nil {
		abortError(c, http.StatusServiceUnavailable, "unavailable", "no transcription provider configured")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUpload)
	file, err := c.FormFile("file")
	if err != nil {
		abortError(c, http.StatusBadRequest, "invalid_upload", "multipart field \"file\" is required")
		return
	}

	dir, err := os.MkdirTemp("", "kara-upload-*")
	if err != nil {
		abortError(c, http.StatusInternalServerError, "internal", "failed to create temp directory")
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		abortError(c, http.StatusInternalServerError, "internal", "failed to save upload")
		return
	}

	token := s.session.Begin()
	log := s.log.With("file", file.Filename, "size", file.Size)
	log.Infow("Transcribing upload")

	result, err := s.transcriber.Transcribe(c.Request.Context(), path)
	if err != nil {
		log.Warnw("Transcription failed", "error", err)
		s.session.Abort(token)
		abortError(c, http.StatusBadGateway, "provider_error", err.Error())
		return
	}

	if err := s.session.Complete(token, result.Transcript); err != nil {
		if errors.Is(err, caption.ErrStaleSession) {
			log.Infow("Dropped stale transcription")
			abortError(c, http.StatusConflict, "stale", "transcript was replaced or cleared during transcription")
			return
		}
		abortError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	log.Infow("Transcript loaded",
		"segments", len(result.Transcript.Segments),
		"words", result.Transcript.WordCount(),
		"duration", result.Duration)
	s.writeTranscript(c, http.StatusCreated, result.Transcript)
}

// PUT /api/transcript: loads a transcript in wire format
func (s *Server) putTranscript(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUpload))
	if err != nil {
		abortError(c, http.StatusBadRequest, "invalid_transcript", "failed to read body")
		return
	}
	t, err := transcribe.ParseResponse(body)
	if err != nil {
		abortError(c, http.StatusBadRequest, "invalid_transcript", err.Error())
		return
	}
	if err := s.session.Load(t); err != nil {
		abortError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	s.writeTranscript(c, http.StatusOK, t)
}

func (s *Server) getTranscript(c *gin.Context) {
	t, err := s.session.Snapshot()
	if err != nil {
		abortError(c, http.StatusNotFound, "no_transcript", err.Error())
		return
	}
	s.writeTranscript(c, http.StatusOK, t)
}

func (s *Server) deleteTranscript(c *gin.Context) {
	s.session.Clear()
	c.Status(http.StatusNoContent)
}

type editRequest struct {
	Text string `json:"text"`
}

// PATCH /api/segments/:segment/words/:word
func (s *Server) editWord(c *gin.Context) {
	segment, err1 := strconv.Atoi(c.Param("segment"))
	word, err2 := strconv.Atoi(c.Param("word"))
	if err1 != nil || err2 != nil {
		abortError(c, http.StatusBadRequest, "invalid_request", "segment and word must be integers")
		return
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	edit, err := s.session.EditWord(segment, word, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, caption.ErrNoTranscript):
			abortError(c, http.StatusNotFound, "no_transcript", err.Error())
		case errors.Is(err, transcript.ErrInvalidEdit):
			abortError(c, http.StatusUnprocessableEntity, "invalid_edit", err.Error())
		default:
			abortError(c, http.StatusInternalServerError, "internal", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"segment":     edit.Segment,
		"word":        edit.Word,
		"text":        edit.Text,
		"segmentText": edit.SegmentText,
	})
}

// GET /api/resolve?t=12.5
func (s *Server) resolve(c *gin.Context) {
	pos, ok := positionParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newFrameView(s.session.Tick(pos)))
}

// GET /api/preview?t=12.5: the frame at t rendered as PNG
func (s *Server) preview(c *gin.Context) {
	pos, ok := positionParam(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := s.renderer.RenderPNG(s.session.Tick(pos), &buf); err != nil {
		abortError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

type windowRequest struct {
	Size int `json:"size"`
}

func (s *Server) setWindow(c *gin.Context) {
	var req windowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := s.session.SetWindowSize(req.Size); err != nil {
		abortError(c, http.StatusUnprocessableEntity, "invalid_window_size", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"size": req.Size})
}

func (s *Server) getStyle(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Style())
}

type styleRequest struct {
	Preset string `json:"preset"`
}

func (s *Server) setStyle(c *gin.Context) {
	var req styleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	st, err := s.styles.Get(req.Preset)
	if err != nil {
		if errors.Is(err, style.ErrUnknownPreset) {
			abortError(c, http.StatusNotFound, "unknown_preset", err.Error())
			return
		}
		abortError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	s.session.SetStyle(st)
	c.JSON(http.StatusOK, st)
}

func (s *Server) listPresets(c *gin.Context) {
	names := s.styles.Names()
	presets := make([]style.Style, 0, len(names))
	for _, name := range names {
		if st, err := s.styles.Get(name); err == nil {
			presets = append(presets, st)
		}
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

// GET /api/export/:format[?karaoke=true]
func (s *Server) export(c *gin.Context) {
	format, err := subtitle.ParseFormat(c.Param("format"))
	if err != nil {
		abortError(c, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}
	t, err := s.session.Snapshot()
	if err != nil {
		abortError(c, http.StatusNotFound, "no_transcript", err.Error())
		return
	}

	opts := subtitle.ExportOptions{
		Karaoke:    c.Query("karaoke") == "true",
		WindowSize: s.session.WindowSize(),
		Style:      s.session.Style(),
	}
	var buf bytes.Buffer
	if err := subtitle.Export(t, format, opts, &buf); err != nil {
		if errors.Is(err, subtitle.ErrNoWordTiming) {
			abortError(c, http.StatusUnprocessableEntity, "no_word_timing", err.Error())
			return
		}
		abortError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	filename := "captions" + subtitle.GetExtensionForFormat(format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

func (s *Server) writeTranscript(c *gin.Context, status int, t *transcript.Transcript) {
	data, err := transcribe.EncodeResponse(t)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

// reads the t query parameter in float seconds
func positionParam(c *gin.Context) (pos time.Duration, ok bool) {
	raw := c.Query("t")
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		abortError(c, http.StatusBadRequest, "invalid_position", "query parameter t must be seconds")
		return 0, false
	}
	return fromSeconds(secs), true
}
