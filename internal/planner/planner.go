// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package planner decides which commands of a sweep must actually execute,
// given their prior outcomes and a run mode.
//
// The whole policy is one decision table keyed on (mode, prior record, prior
// status):
//
//	mode         no record   status == 0           status != 0
//	resume       enqueue     skip (skipped+1)      skip (skipped+1, failed+1)
//	overwrite    enqueue     enqueue               enqueue
//	retry_failed enqueue     skip (skipped+1)      enqueue (failed+1)
//
// A record with a nil status has no usable outcome and is enqueued in resume
// and retry_failed modes.
package planner

import (
	"github.com/bogdan-kulynych/batchrun/internal/cmdid"
	"github.com/bogdan-kulynych/batchrun/internal/gridspec"
	"github.com/bogdan-kulynych/batchrun/internal/state"
)

// Plan is an ordered job queue plus the counters pre-accounting commands
// whose prior outcome will not be re-executed this run.
type Plan struct {
	// Queue is the subsequence of the input that must execute, in the
	// original order.
	Queue []gridspec.Job
	// Skipped counts commands that will not run this time.
	Skipped int
	// Failed counts commands with a nonzero prior status, whether or not
	// they are re-enqueued.
	Failed int
	// SkippedIDs holds the identifiers of the skipped commands, in input
	// order, so that callers can report them.
	SkippedIDs []string
}

// Build applies the decision table to the ordered command list.
func Build(jobs []gridspec.Job, store *state.Store, mode RunMode) (*Plan, error) {
	switch mode {
	case Resume, Overwrite, RetryFailed:
	default:
		return nil, ErrUnknownMode
	}

	plan := &Plan{Queue: make([]gridspec.Job, 0, len(jobs))}

	for _, job := range jobs {
		if mode == Overwrite {
			plan.Queue = append(plan.Queue, job)
			continue
		}

		id := cmdid.New(job.Command)

		rec, ok := store.Get(id)
		if !ok || rec.Status == nil {
			plan.Queue = append(plan.Queue, job)
			continue
		}

		if rec.Succeeded() {
			plan.Skipped++
			plan.SkippedIDs = append(plan.SkippedIDs, id)

			continue
		}

		plan.Failed++

		if mode == RetryFailed {
			plan.Queue = append(plan.Queue, job)
			continue
		}

		plan.Skipped++
		plan.SkippedIDs = append(plan.SkippedIDs, id)
	}

	return plan, nil
}
