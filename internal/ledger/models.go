package ledger

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted"
)

// Operation outcome labels.
const (
	OperationOK     = "ok"
	OperationFailed = "failed"
)

// Run is one apply invocation.
type Run struct {
	ID           string
	Command      string
	Status       Status
	InputDir     string
	MetadataPath string
	OutputDir    string
	DatasetType  string
	PipelineName string
	Move         bool
	Planned      int
	OK           int
	Failed       int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Duration returns the elapsed run time, or zero while the run is open.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// OperationRecord is the stored outcome of one transform operation.
type OperationRecord struct {
	Seq          int
	Source       string
	Destination  string
	Action       string
	Status       string
	Bytes        int64
	ErrorMessage string
	RecordedAt   time.Time
}

// Outcome closes a run.
type Outcome struct {
	Status       Status
	OK           int
	Failed       int
	ErrorMessage string
}
