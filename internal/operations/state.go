package operations

import (
	"sync"
	"time"
)

// Stage identifies one phase of the run state machine.
type Stage string

const (
	StageParsing   Stage = "parsing"
	StageAnalyzing Stage = "analyzing"
	StageRendering Stage = "rendering"
	StageComposing Stage = "composing"
	StageExporting Stage = "exporting"
	StagePackaging Stage = "packaging"
	StageDone      Stage = "done"
	StageFailed    Stage = "failed"
)

// workStages lists the executable stages in pipeline order. Rendering,
// composing, and exporting overlap at runtime but keep distinct entries so
// progress consumers see each one transition.
var workStages = []Stage{
	StageParsing, StageAnalyzing,
	StageRendering, StageComposing, StageExporting,
	StagePackaging,
}

// CanFail reports whether a stage is allowed to fail the whole run. Every
// other stage degrades the package instead of aborting it.
func (s Stage) CanFail() bool {
	return s == StageParsing || s == StagePackaging
}

// StageStatus is the lifecycle of one stage entry.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
)

// StageState is the progress record of one stage.
type StageState struct {
	Stage      Stage       `json:"stage"`
	Status     StageStatus `json:"status"`
	Detail     string      `json:"detail,omitempty"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// StateSnapshot is an immutable copy of the run state, safe to hand to
// progress consumers on another goroutine.
type StateSnapshot struct {
	RunID     string       `json:"run_id"`
	Stage     Stage        `json:"stage"`
	Stages    []StageState `json:"stages"`
	StartTime time.Time    `json:"start_time"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// RunState tracks one run through the state machine. Stage updates arrive
// from concurrent pipeline goroutines, so every mutation holds the lock.
type RunState struct {
	mu sync.RWMutex

	runID     string
	current   Stage
	stages    map[Stage]*StageState
	startTime time.Time
	endTime   *time.Time
	err       error
}

// NewRunState seeds a pending entry for every work stage.
func NewRunState(runID string) *RunState {
	stages := make(map[Stage]*StageState, len(workStages))
	for _, s := range workStages {
		stages[s] = &StageState{Stage: s, Status: StageStatusPending}
	}
	return &RunState{
		runID:     runID,
		current:   StageParsing,
		stages:    stages,
		startTime: time.Now(),
	}
}

// StartStage marks a stage active and makes it the current stage.
func (r *RunState) StartStage(stage Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.current = stage
	if s, ok := r.stages[stage]; ok {
		s.Status = StageStatusActive
		s.StartedAt = &now
	}
}

// CompleteStage marks a stage done with a human-readable detail line.
func (r *RunState) CompleteStage(stage Stage, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if s, ok := r.stages[stage]; ok {
		s.Status = StageStatusCompleted
		s.Detail = detail
		s.FinishedAt = &now
	}
}

// FailStage marks a stage failed and moves the run to Failed.
func (r *RunState) FailStage(stage Stage, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if s, ok := r.stages[stage]; ok {
		s.Status = StageStatusFailed
		s.Detail = err.Error()
		s.FinishedAt = &now
	}
	r.current = StageFailed
	r.endTime = &now
	r.err = err
}

// Finish moves the run to Done. A run that already failed stays failed.
func (r *RunState) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == StageFailed {
		return
	}
	now := time.Now()
	r.current = StageDone
	r.endTime = &now
}

// Current returns the current stage.
func (r *RunState) Current() Stage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Duration returns the run's elapsed time.
func (r *RunState) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.endTime != nil {
		return r.endTime.Sub(r.startTime)
	}
	return time.Since(r.startTime)
}

// Snapshot copies the state for progress consumers.
func (r *RunState) Snapshot() StateSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := StateSnapshot{
		RunID:     r.runID,
		Stage:     r.current,
		StartTime: r.startTime,
	}
	if r.endTime != nil {
		end := *r.endTime
		snap.EndTime = &end
	}
	if r.err != nil {
		snap.Error = r.err.Error()
	}
	for _, stage := range workStages {
		snap.Stages = append(snap.Stages, *r.stages[stage])
	}
	return snap
}
