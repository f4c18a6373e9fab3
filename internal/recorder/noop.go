package recorder

import (
	"time"

	"github.com/navillusj/ASX-Share-Monitor/internal/model"
)

// NoopRecorder discards all records. Used when no SQLite path is configured
// or the database failed to open.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(*CycleEvent) error          { return nil }
func (n *NoopRecorder) RecordSnapshots([]model.Snapshot) error { return nil }
func (n *NoopRecorder) PruneBefore(time.Time) error            { return nil }
func (n *NoopRecorder) Close() error                           { return nil }
