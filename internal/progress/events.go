// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries real-time status events from the execution engine
// to whoever wants to render them.
package progress

import "time"

// EventType represents the type of progress event.
type EventType int

const (
	// EventStarted indicates a command has begun execution.
	EventStarted EventType = iota
	// EventCompleted indicates a command finished with a zero exit status.
	EventCompleted
	// EventFailed indicates a command finished with a nonzero exit status.
	EventFailed
	// EventSkipped indicates a command was skipped by the resume planner.
	EventSkipped
	// EventBatchFlushed indicates a batch finished and its records were persisted.
	EventBatchFlushed
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventStarted:
		return "started"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	case EventBatchFlushed:
		return "batch flushed"
	default:
		return "unknown"
	}
}

// Event is a single status update from the sweep.
type Event struct {
	CommandID string    // Identifier of the command, empty for batch events
	Command   string    // The command text
	Type      EventType // What happened
	Timestamp time.Time // When the event occurred
	ExitCode  int       // Exit status, for completed and failed events
	LogDir    string    // Per-command log directory, for started events
	Detail    string    // Last stderr line, for failed events
}

// Reporter is the interface for sending progress events.
// Implementations must be safe for concurrent use and should be
// non-blocking: the engine never waits on a slow consumer.
type Reporter interface {
	// Report sends a progress event.
	Report(event Event)
	// Close signals that no more events will be sent and cleans up resources.
	Close()
}

// Listener receives progress events from a reporter.
type Listener interface {
	// OnEvent is called for each received event. Implementations should
	// return quickly to avoid backing up the event channel.
	OnEvent(event Event)
}

// NullReporter is a no-op implementation of Reporter.
// Used when progress reporting is not needed.
type NullReporter struct{}

// Report implements Reporter.Report by doing nothing.
func (nr *NullReporter) Report(event Event) {
	// No-op
}

// Close implements Reporter.Close by doing nothing.
func (nr *NullReporter) Close() {
	// No-op
}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return &NullReporter{}
}
