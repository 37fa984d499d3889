// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package state

// ExecutionRecord is the outcome of running one command once.
// A later run of the same command replaces the record wholesale; no history
// is kept.
type ExecutionRecord struct {
	// Start is the wall-clock start time in epoch seconds.
	Start float64 `json:"start"`
	// Runtime is the elapsed wall-clock time in seconds.
	Runtime float64 `json:"runtime"`
	// Status is the process exit status, 0 meaning success. A nil status
	// marks a malformed record with no usable outcome.
	Status *int `json:"status"`
	// Command is the original command text.
	Command string `json:"command"`
	// Parameters is the parameter assignment that produced the command.
	Parameters map[string]any `json:"parameters"`
}

// Succeeded reports whether the record holds a zero exit status.
func (r ExecutionRecord) Succeeded() bool {
	return r.Status != nil && *r.Status == 0
}

// Failed reports whether the record holds a nonzero exit status.
func (r ExecutionRecord) Failed() bool {
	return r.Status != nil && *r.Status != 0
}
