// Package progress reports batch progress to registered sinks. Unlike a
// concurrent crawl pipeline there is exactly one emitting goroutine here,
// so events are delivered inline; the mutex only protects snapshot reads
// from the ops server.
package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone an Event represents.
type Stage string

// Supported progress stages.
const (
	StageBatchStart Stage = "BATCH_START"
	StageIssueDone  Stage = "ISSUE_DONE"
	StageIssueError Stage = "ISSUE_ERROR"
	StageBatchDone  Stage = "BATCH_DONE"
)

// Event captures a single batch milestone.
type Event struct {
	BatchID uuid.UUID
	TS      time.Time
	Stage   Stage
	Issue   string
	Done    int
	Total   int
	Note    string
}

// Sink receives events as they happen.
type Sink interface {
	Record(Event)
}

// Snapshot is the read-side view served by the ops endpoint.
type Snapshot struct {
	BatchID string  `json:"batch_id"`
	Done    int     `json:"done"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Reporter tracks one batch run.
type Reporter struct {
	mu      sync.Mutex
	batchID uuid.UUID
	total   int
	done    int
	sinks   []Sink
}

// NewReporter creates a Reporter for a batch of the given size.
func NewReporter(total int, sinks ...Sink) *Reporter {
	return &Reporter{
		batchID: uuid.New(),
		total:   total,
		sinks:   append([]Sink(nil), sinks...),
	}
}

// BatchID returns the batch identifier.
func (r *Reporter) BatchID() uuid.UUID {
	return r.batchID
}

// Start announces the batch.
func (r *Reporter) Start() {
	r.emit(StageBatchStart, "", "")
}

// IssueDone records one completed issue (committed or no-op).
func (r *Reporter) IssueDone(issue string) {
	r.mu.Lock()
	r.done++
	r.mu.Unlock()
	r.emit(StageIssueDone, issue, "")
}

// IssueError records one issue that failed; the batch continues.
func (r *Reporter) IssueError(issue, note string) {
	r.mu.Lock()
	r.done++
	r.mu.Unlock()
	r.emit(StageIssueError, issue, note)
}

// Finish announces batch completion.
func (r *Reporter) Finish() {
	r.emit(StageBatchDone, "", "")
}

// Snapshot returns the current completion state.
func (r *Reporter) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	percent := 0.0
	if r.total > 0 {
		percent = float64(r.done) / float64(r.total) * 100
	}
	return Snapshot{
		BatchID: r.batchID.String(),
		Done:    r.done,
		Total:   r.total,
		Percent: percent,
	}
}

func (r *Reporter) emit(stage Stage, issue, note string) {
	r.mu.Lock()
	ev := Event{
		BatchID: r.batchID,
		TS:      time.Now().UTC(),
		Stage:   stage,
		Issue:   issue,
		Done:    r.done,
		Total:   r.total,
		Note:    note,
	}
	r.mu.Unlock()
	for _, sink := range r.sinks {
		sink.Record(ev)
	}
}
