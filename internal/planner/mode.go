// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"errors"
	"fmt"
)

// ErrUnknownMode is returned for run modes outside the closed set.
// It is a fatal configuration error: no execution may start.
var ErrUnknownMode = errors.New("configuration error: unknown run mode")

// RunMode controls how prior execution records affect the current run.
type RunMode int

const (
	// Resume skips every command with a usable prior outcome.
	Resume RunMode = iota
	// Overwrite re-executes every command regardless of prior state.
	Overwrite
	// RetryFailed skips prior successes and re-executes prior failures.
	RetryFailed
)

const (
	resumeName      = "resume"
	overwriteName   = "overwrite"
	retryFailedName = "retry_failed"
)

// ModeNames lists the accepted run mode spellings.
var ModeNames = []string{resumeName, overwriteName, retryFailedName}

// ParseRunMode converts a mode name into a RunMode.
func ParseRunMode(name string) (RunMode, error) {
	switch name {
	case resumeName:
		return Resume, nil
	case overwriteName:
		return Overwrite, nil
	case retryFailedName:
		return RetryFailed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// String implements the Stringer interface for RunMode.
func (m RunMode) String() string {
	switch m {
	case Resume:
		return resumeName
	case Overwrite:
		return overwriteName
	case RetryFailed:
		return retryFailedName
	default:
		return "unknown"
	}
}
