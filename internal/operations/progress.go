package operations

import (
	"breakupscli/pkg/contracts/domain"
)

// ProgressSink receives run lifecycle events. Implementations must be safe
// for concurrent use; stage updates arrive from overlapping pipeline
// goroutines.
type ProgressSink interface {
	RunStarted(runID, clientName string)
	StageChanged(snapshot StateSnapshot)
	RunFinished(runID string, result domain.RunResult)
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RunStarted(string, string)            {}
func (NopSink) StageChanged(StateSnapshot)           {}
func (NopSink) RunFinished(string, domain.RunResult) {}
