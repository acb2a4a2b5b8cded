package progress

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// LogSink writes issue milestones to the structured log and a transient
// percent-complete line to the given writer (normally stderr).
type LogSink struct {
	log *zap.Logger
	out io.Writer
}

// NewLogSink builds a LogSink. Either argument may be nil.
func NewLogSink(log *zap.Logger, out io.Writer) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log, out: out}
}

// Record implements Sink.
func (s *LogSink) Record(ev Event) {
	switch ev.Stage {
	case StageBatchStart:
		s.log.Info("batch started",
			zap.String("batch_id", ev.BatchID.String()),
			zap.Int("total", ev.Total))
	case StageIssueError:
		s.log.Warn("issue failed",
			zap.String("issue", ev.Issue),
			zap.String("note", ev.Note))
	case StageBatchDone:
		s.log.Info("batch finished",
			zap.String("batch_id", ev.BatchID.String()),
			zap.Int("done", ev.Done))
	}

	if s.out == nil || ev.Total == 0 {
		return
	}
	percent := float64(ev.Done) / float64(ev.Total) * 100
	// \r keeps the line transient on a terminal.
	fmt.Fprintf(s.out, "\rmigrating: %d/%d (%.1f%%)", ev.Done, ev.Total, percent)
	if ev.Stage == StageBatchDone {
		fmt.Fprintln(s.out)
	}
}
