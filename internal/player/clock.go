// Package player drives the caption engine from a playback clock and hands
// each changed frame to a render target.
package player

import (
	"fmt"
	"sync"
	"time"
)

// Clock reports the current playback position.
type Clock interface {
	Position() time.Duration
}

// MediaClock is a simulated media clock with play, pause, seek and rate
// control. It is safe for concurrent use.
type MediaClock struct {
	mu      sync.Mutex
	now     func() time.Time
	base    time.Duration // position at the last state change
	since   time.Time     // wall time of the last state change
	playing bool
	rate    float64
}

func NewMediaClock() *MediaClock {
	return newMediaClock(time.Now)
}

func newMediaClock(now func() time.Time) *MediaClock {
	return &MediaClock{now: now, rate: 1}
}

// caller holds mu
func (c *MediaClock) position() time.Duration {
	if !c.playing {
		return c.base
	}
	elapsed := float64(c.now().Sub(c.since)) * c.rate
	return c.base + time.Duration(elapsed)
}

func (c *MediaClock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *MediaClock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.since = c.now()
	c.playing = true
}

func (c *MediaClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.position()
	c.playing = false
}

// Seek jumps to pos; negative positions clamp to zero.
func (c *MediaClock) Seek(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = max(pos, 0)
	c.since = c.now()
}

// SetRate changes playback speed, e.g. 0.5 or 2.
func (c *MediaClock) SetRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("playback rate must be positive, got %v", rate)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = c.position()
	c.since = c.now()
	c.rate = rate
	return nil
}

func (c *MediaClock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}
