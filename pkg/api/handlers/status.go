// Package handlers provides HTTP handlers for the Flotilla status API.
package handlers

import "time"

// Component states reported by the status API.
const (
	StatePending = "pending"
	StateRunning = "running"
	StateStopped = "stopped"
	StateFailed  = "failed"
)

// Component kinds reported by the status API.
const (
	KindProcess = "process"
	KindServer  = "server"
	KindWatcher = "watcher"
)

// ProcessStatus is a point-in-time view of one supervised component.
type ProcessStatus struct {
	// Name identifies the component within the fleet.
	Name string `json:"name"`

	// Index is the component's position in start order.
	Index int `json:"index"`

	// Kind distinguishes child processes from built-in components.
	Kind string `json:"kind"`

	// State is the component's current lifecycle state.
	State string `json:"state"`

	// PID is the OS process ID, set only for running child processes.
	PID int `json:"pid,omitempty"`

	StartedAt *time.Time `json:"started_at,omitempty"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`

	// ExitCode is set once a child process has exited.
	ExitCode *int `json:"exit_code,omitempty"`

	// Error describes the failure for components in the failed state.
	Error string `json:"error,omitempty"`
}

// FleetStatus summarizes the supervised fleet.
type FleetStatus struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	Uptime    string          `json:"uptime"`
	Processes []ProcessStatus `json:"processes"`
}

// StatusSource provides the running fleet state served by the API.
//
// It is implemented by the supervisor. Handlers only read state; the API
// never mutates the fleet.
type StatusSource interface {
	Status() FleetStatus
}
