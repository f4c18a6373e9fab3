package recorder

import (
	"time"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// CycleEvent summarizes one completed fetch cycle.
type CycleEvent struct {
	Generation uint64
	Trigger    string // "timer", "manual", "settings", "symbols", "startup"
	Range      string
	Symbols    int
	Errors     int
	Duration   time.Duration
}

// Recorder persists fetch history for later analysis.
type Recorder interface {
	RecordCycle(evt *CycleEvent) error
	RecordSnapshots(snaps []model.Snapshot) error
	// PruneBefore removes recorded rows older than the cutoff.
	PruneBefore(cutoff time.Time) error
	Close() error
}
