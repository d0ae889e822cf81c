package domain

import "time"

// RunStatus tags the outcome of spawning and waiting on a subprocess.
type RunStatus string

const (
	RunOK       RunStatus = "ok"
	RunNotFound RunStatus = "not_found"
	RunFault    RunStatus = "fault"
)

// RunResult is the executor's report on one subprocess run. ExitCode is
// meaningful only when Status is RunOK; NotFound never pretends to have one.
type RunResult struct {
	Status   RunStatus
	ExitCode int
	Program  string
	Duration time.Duration
	Err      error
}

// Succeeded reports whether the process ran and exited zero.
func (r RunResult) Succeeded() bool {
	return r.Status == RunOK && r.ExitCode == 0
}
