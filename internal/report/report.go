// Package report collects an ordered record of the external invocations a
// run performed. The report is observational only: recording never fails and
// never alters driver behavior.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Step is one external invocation or file action taken by a driver.
type Step struct {
	// Kind labels the action: "simulate", "convert", "render", "cleanup",
	// "analyze", "copy".
	Kind string `json:"kind"`

	// Tool is the program name, empty for pure file actions.
	Tool string `json:"tool,omitempty"`

	// Args are the per-invocation arguments.
	Args []string `json:"args,omitempty"`

	// Value is the sweep value this step belongs to, when any.
	Value string `json:"value,omitempty"`

	// ExitCode is the child exit status; zero for file actions too.
	ExitCode int `json:"exit_code"`

	// Duration is the wall-clock time in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// Failed marks the step that aborted the run.
	Failed bool `json:"failed,omitempty"`
}

// Run is the full report for one driver invocation.
type Run struct {
	Driver   string    `json:"driver"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Steps    []Step    `json:"steps"`
	OK       bool      `json:"ok"`
}

// Recorder is a concurrency-safe in-memory step collector. A nil *Recorder
// is a valid no-op sink, so drivers never need to check for one.
type Recorder struct {
	mu      sync.Mutex
	driver  string
	started time.Time
	steps   []Step
}

// NewRecorder starts a report for the named driver.
func NewRecorder(driver string) *Recorder {
	return &Recorder{driver: driver, started: time.Now()}
}

// Record appends one step. Safe on a nil receiver.
func (r *Recorder) Record(step Step) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.steps = append(r.steps, step)
	r.mu.Unlock()
}

// Timed runs fn, records a step of the given kind with its duration and
// outcome, and returns fn's error unchanged.
func (r *Recorder) Timed(kind, tool, value string, args []string, exitCode func(error) int, fn func() error) error {
	start := time.Now()
	err := fn()
	step := Step{
		Kind:       kind,
		Tool:       tool,
		Value:      value,
		Args:       args,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		step.Failed = true
		if exitCode != nil {
			step.ExitCode = exitCode(err)
		}
	}
	r.Record(step)
	return err
}

// Finish assembles the Run. The report is OK when no recorded step failed.
func (r *Recorder) Finish() Run {
	if r == nil {
		return Run{OK: true}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	run := Run{
		Driver:   r.driver,
		Started:  r.started,
		Finished: time.Now(),
		Steps:    make([]Step, len(r.steps)),
		OK:       true,
	}
	copy(run.Steps, r.steps)
	for _, s := range run.Steps {
		if s.Failed {
			run.OK = false
			break
		}
	}
	return run
}

// WriteJSON serializes the run to path with stable indentation.
func (run Run) WriteJSON(path string) error {
	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
