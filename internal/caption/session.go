package caption

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/kara/internal/style"
	"github.com/mgpai22/kara/internal/transcript"
)

var (
	// ErrStaleSession is returned when a transcription finishes after the
	// user has cleared or replaced the file it was started for.
	ErrStaleSession = errors.New("stale session")

	// ErrNoTranscript is returned by operations that need a loaded transcript.
	ErrNoTranscript = errors.New("no transcript loaded")
)

// Edit is the state of a word and its segment right after an edit.
type Edit struct {
	Segment     int
	Word        int
	Text        string
	SegmentText string
}

// Session owns the current engine for one viewer and serializes every event
// that touches it: clock ticks, edits, loads and clears.
//
// A new transcript is swapped in whole. Begin issues a token; only the
// Complete call carrying the latest token is applied, so a slow provider
// response can never replace a newer file or revive a cleared one.
type Session struct {
	mu         sync.Mutex
	token      uuid.UUID
	engine     *Engine
	windowSize int
	style      style.Style
}

func NewSession(windowSize int, st style.Style) (*Session, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidWindowSize, windowSize)
	}
	return &Session{windowSize: windowSize, style: st}, nil
}

// Begin starts a new upload. The current transcript is discarded.
func (s *Session) Begin() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = uuid.New()
	s.engine = nil
	return s.token
}

// Complete installs a copy of t if token is still current. The caller keeps
// t and may read it freely afterwards.
func (s *Session) Complete(token uuid.UUID, t *transcript.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == uuid.Nil || token != s.token {
		return ErrStaleSession
	}
	return s.install(t)
}

// Load installs a copy of t directly, invalidating any pending upload.
func (s *Session) Load(t *transcript.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = uuid.Nil
	s.engine = nil
	return s.install(t)
}

func (s *Session) install(t *transcript.Transcript) error {
	if t == nil {
		return fmt.Errorf("transcript is nil")
	}
	engine, err := NewEngine(t.Clone(), s.windowSize)
	if err != nil {
		return err
	}
	s.engine = engine
	s.token = uuid.Nil
	return nil
}

// Abort ends the upload started with token without installing anything.
// It is a no-op when token is no longer current.
func (s *Session) Abort(token uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != uuid.Nil && token == s.token {
		s.token = uuid.Nil
	}
}

// Clear discards the transcript and any pending upload.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = uuid.Nil
	s.engine = nil
}

// Tick resolves pos against the current transcript. With nothing loaded the
// frame is empty.
func (s *Session) Tick(pos time.Duration) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return newFrame(nil, emptyResult(pos), s.style)
	}
	return newFrame(s.engine.Transcript(), s.engine.Tick(pos), s.style)
}

// EditWord corrects one word and reports the result read under the same
// lock, so a load or clear arriving right after cannot change what is
// reported.
func (s *Session) EditWord(segment, word int, text string) (Edit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return Edit{}, ErrNoTranscript
	}
	if err := s.engine.EditWord(segment, word, text); err != nil {
		return Edit{}, err
	}
	seg := s.engine.Transcript().Segments[segment]
	return Edit{
		Segment:     segment,
		Word:        word,
		Text:        seg.Words[word].Text,
		SegmentText: seg.Text,
	}, nil
}

func (s *Session) SetWindowSize(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n < 1 {
		return fmt.Errorf("%w, got %d", ErrInvalidWindowSize, n)
	}
	s.windowSize = n
	if s.engine != nil {
		return s.engine.SetWindowSize(n)
	}
	return nil
}

func (s *Session) WindowSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windowSize
}

func (s *Session) SetStyle(st style.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = st
}

func (s *Session) Style() style.Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// Snapshot returns a copy of the current transcript.
func (s *Session) Snapshot() (*transcript.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return nil, ErrNoTranscript
	}
	return s.engine.Transcript().Clone(), nil
}

// Pending reports whether an upload started with Begin has not completed.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != uuid.Nil
}
