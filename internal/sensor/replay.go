package sensor

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// replayRecord is one line of a JSONL recording. A line carries a fix, a
// heading, or both.
type replayRecord struct {
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	At        time.Time `json:"at"`
	DelayMS   int       `json:"delay_ms,omitempty"`
}

// ReplayFeed emits a recorded JSONL observation stream, for demos and tests
// without positioning hardware.
type ReplayFeed struct {
	readings chan Reading
	headings chan Heading
	cancel   context.CancelFunc
}

var _ Feed = (*ReplayFeed)(nil)

// NewReplay starts replaying the recording at path. speed scales the
// recorded delays: 2.0 plays twice as fast, 0 drops delays entirely.
func NewReplay(ctx context.Context, path string, speed float64) (*ReplayFeed, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "sensor: open recording")
	}

	ctx, cancel := context.WithCancel(ctx)
	f := &ReplayFeed{
		readings: make(chan Reading, 16),
		headings: make(chan Heading, 16),
		cancel:   cancel,
	}

	go func() {
		defer file.Close()
		defer close(f.readings)
		defer close(f.headings)

		scanner := bufio.NewScanner(file)
		line := 0
		for scanner.Scan() {
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}
			var rec replayRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				zap.L().Warn("sensor: skipping malformed recording line",
					zap.Int("line", line), zap.Error(err))
				continue
			}

			if rec.DelayMS > 0 && speed > 0 {
				delay := time.Duration(float64(rec.DelayMS)/speed) * time.Millisecond
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}

			if rec.Latitude != nil && rec.Longitude != nil {
				r := Reading{
					Latitude:  *rec.Latitude,
					Longitude: *rec.Longitude,
					Accuracy:  rec.Accuracy,
					At:        rec.At,
				}
				select {
				case <-ctx.Done():
					return
				case f.readings <- r:
				}
			}
			if rec.Heading != nil {
				h := Heading{Degrees: *rec.Heading, At: rec.At}
				select {
				case <-ctx.Done():
					return
				case f.headings <- h:
				}
			}
		}
		if err := scanner.Err(); err != nil {
			zap.L().Warn("sensor: recording read failed", zap.Error(err))
		}
	}()

	return f, nil
}

// Readings implements Feed.
func (f *ReplayFeed) Readings() <-chan Reading { return f.readings }

// Headings implements Feed.
func (f *ReplayFeed) Headings() <-chan Heading { return f.headings }

// Close stops the replay.
func (f *ReplayFeed) Close() error {
	f.cancel()
	return nil
}
