package reminders

import "time"

// Cycle outcomes.
const (
	CycleOK       = "ok"
	CycleFailed   = "failed"
	CycleDisabled = "disabled"
	CycleBusy     = "busy"
)

// Batch outcomes.
const (
	BatchSent             = "sent"
	BatchSkippedDedup     = "skipped_dedup"
	BatchSkippedTransport = "skipped_transport"
	BatchFailed           = "failed"
)

// Recorder receives cycle statistics.
type Recorder interface {
	ObserveCycle(outcome string, took time.Duration)
	AddBatches(outcome string, n int)
	AddLogWriteFailures(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCycle(string, time.Duration) {}
func (nopRecorder) AddBatches(string, int)             {}
func (nopRecorder) AddLogWriteFailures(int)            {}
