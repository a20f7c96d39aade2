// Package sensor models the continuous location and heading feed. Readings
// arrive as a push stream and only ever update the latest-reading holder;
// committing a reading into captured geometry happens through an explicit
// user action, so sensor jitter cannot corrupt a survey.
package sensor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reading is a single location fix.
type Reading struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	At        time.Time `json:"at"`
}

// Heading is a single compass observation, degrees clockwise from true
// north.
type Heading struct {
	Degrees float64   `json:"degrees"`
	At      time.Time `json:"at"`
}

// Feed delivers location and heading observations. Either channel may stay
// silent indefinitely; consumers must tolerate absent readings.
type Feed interface {
	Readings() <-chan Reading
	Headings() <-chan Heading
	Close() error
}

// Latest retains the most recent observation of each kind.
type Latest struct {
	mu      sync.Mutex
	fix     *Reading
	heading *Heading
}

// Fix returns the most recent location fix, or ok=false before the first
// one arrives.
func (l *Latest) Fix() (Reading, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fix == nil {
		return Reading{}, false
	}
	return *l.fix, true
}

// Heading returns the most recent compass observation, or ok=false before
// the first one arrives.
func (l *Latest) Heading() (Heading, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.heading == nil {
		return Heading{}, false
	}
	return *l.heading, true
}

// SetFix records a location fix; exposed for feeds and tests.
func (l *Latest) SetFix(r Reading) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fix = &r
}

// SetHeading records a compass observation.
func (l *Latest) SetHeading(h Heading) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.heading = &h
}

// Watch consumes a feed into the holder until the context is canceled or
// both channels close.
func Watch(ctx context.Context, feed Feed, latest *Latest) {
	readings := feed.Readings()
	headings := feed.Headings()
	for readings != nil || headings != nil {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-readings:
			if !ok {
				readings = nil
				continue
			}
			latest.SetFix(r)
		case h, ok := <-headings:
			if !ok {
				headings = nil
				continue
			}
			latest.SetHeading(h)
		}
	}
	zap.L().Debug("sensor: feed drained")
}
