// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package engine runs a queue of shell commands with bounded parallelism and
// records every outcome in the state store.
//
// The queue is partitioned into consecutive batches of the parallelism
// degree. All commands within a batch run concurrently; only after the whole
// batch has terminated are its records merged into the store and the store
// persisted. A crash therefore loses at most one batch of completed but
// unpersisted work. There is no persisted "running" state: a command killed
// mid-flight simply has no record and is enqueued again on the next resume.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bogdan-kulynych/batchrun/internal/cmdid"
	"github.com/bogdan-kulynych/batchrun/internal/ctxlog"
	"github.com/bogdan-kulynych/batchrun/internal/gridspec"
	"github.com/bogdan-kulynych/batchrun/internal/progress"
	"github.com/bogdan-kulynych/batchrun/internal/state"
	"github.com/bogdan-kulynych/batchrun/internal/tailwriter"
	"github.com/spf13/afero"
)

const (
	stdoutFilename = "out.log"
	stderrFilename = "err.log"

	// launchFailureStatus is recorded when the shell itself could not be
	// started or the per-command log directory could not be prepared.
	launchFailureStatus = -1

	// detailMaxLength bounds the stderr tail attached to failure events.
	detailMaxLength = 120
)

// ErrNoParallelism is returned when the parallelism degree is less than one.
var ErrNoParallelism = errors.New("configuration error: parallelism must be at least 1")

// Config carries the explicit configuration of an Engine.
type Config struct {
	// Fs is the filesystem used for logs. Defaults to the OS filesystem.
	Fs afero.Fs
	// LogDir is the root under which each command gets its own
	// subdirectory, named by the command identifier.
	LogDir string
	// Parallelism is the batch size: how many commands run concurrently.
	Parallelism int
	// Reporter receives progress events. Defaults to a NullReporter.
	Reporter progress.Reporter
}

// Engine executes job queues batch by batch.
type Engine struct {
	fs          afero.Fs
	logDir      string
	parallelism int
	reporter    progress.Reporter
	store       *state.Store
}

// Summary aggregates the outcomes of one engine run.
type Summary struct {
	Executed  int // Commands actually run this invocation
	Succeeded int // Of those, how many exited zero
	Failed    int // Of those, how many exited nonzero
}

// outcome pairs a finished command's identifier with its record.
// Workers return outcomes as values; only the coordinator touches the store.
type outcome struct {
	id     string
	record state.ExecutionRecord
}

// New creates an Engine writing outcomes into store.
func New(cfg Config, store *state.Store) (*Engine, error) {
	if cfg.Parallelism < 1 {
		return nil, ErrNoParallelism
	}

	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}

	if cfg.Reporter == nil {
		cfg.Reporter = progress.NewNullReporter()
	}

	return &Engine{
		fs:          cfg.Fs,
		logDir:      cfg.LogDir,
		parallelism: cfg.Parallelism,
		reporter:    cfg.Reporter,
		store:       store,
	}, nil
}

// Run executes the queue and returns the aggregated summary.
// Per-command failures are recorded in the store, never returned as errors;
// the error conditions are state persistence failures and cancellation.
// Cancellation is checked between batches only, so the batch in flight
// always completes and gets persisted.
func (e *Engine) Run(ctx context.Context, queue []gridspec.Job) (Summary, error) {
	logger := ctxlog.Logger(ctx).With("parallelism", e.parallelism)

	var summary Summary

	for batch := range slices.Chunk(queue, e.parallelism) {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("sweep interrupted: %w", err)
		}

		logger.Debug("starting batch", "size", len(batch))

		outcomes := make(chan outcome, len(batch))
		wg := &sync.WaitGroup{}

		for _, job := range batch {
			wg.Add(1)

			go func(j gridspec.Job) {
				defer wg.Done()

				outcomes <- e.runJob(ctx, j)
			}(job)
		}

		wg.Wait()
		close(outcomes)

		for o := range outcomes {
			e.store.Put(o.id, o.record)

			summary.Executed++

			if o.record.Succeeded() {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
		}

		if err := e.store.Flush(); err != nil {
			return summary, err
		}

		e.reporter.Report(progress.Event{
			Type:      progress.EventBatchFlushed,
			Timestamp: time.Now(),
		})

		logger.Debug("batch persisted", "size", len(batch), "state", e.store.Path())
	}

	return summary, nil
}

// runJob executes one command with its output isolated into the per-command
// log directory. Every failure mode ends up as data in the returned record.
func (e *Engine) runJob(ctx context.Context, job gridspec.Job) outcome {
	id := cmdid.New(job.Command)
	logger := ctxlog.Logger(ctx).With("id", id)

	parameters := job.Parameters
	if parameters == nil {
		parameters = gridspec.ParseArgs(job.Command)
	}

	record := state.ExecutionRecord{
		Command:    job.Command,
		Parameters: parameters,
	}

	jobLogDir := filepath.Join(e.logDir, id)

	e.reporter.Report(progress.Event{
		CommandID: id,
		Command:   job.Command,
		Type:      progress.EventStarted,
		Timestamp: time.Now(),
		LogDir:    jobLogDir,
	})

	stdout, stderr, err := e.openLogs(jobLogDir)
	if err != nil {
		logger.Error("failed to prepare log directory", "dir", jobLogDir, "error", err)

		e.reporter.Report(progress.Event{
			CommandID: id,
			Command:   job.Command,
			Type:      progress.EventFailed,
			Timestamp: time.Now(),
			ExitCode:  launchFailureStatus,
		})

		return launchFailure(id, record, time.Now())
	}

	defer stdout.Close() //nolint:errcheck
	defer stderr.Close() //nolint:errcheck

	stderrTail := tailwriter.New(stderr)

	cmd := exec.Command("sh", "-c", job.Command)
	cmd.Stdout = stdout
	cmd.Stderr = stderrTail

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	record.Start = float64(start.UnixNano()) / float64(time.Second)
	record.Runtime = elapsed.Seconds()

	status := 0

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// Nonzero exit, or -1 for a signal-terminated process.
			status = exitErr.ExitCode()
		} else {
			logger.Warn("could not launch shell", "error", runErr)

			status = launchFailureStatus
		}
	}

	record.Status = &status

	eventType := progress.EventCompleted
	detail := ""

	if status != 0 {
		eventType = progress.EventFailed
		detail = stderrTail.LastLine(detailMaxLength)
	}

	e.reporter.Report(progress.Event{
		CommandID: id,
		Command:   job.Command,
		Type:      eventType,
		Timestamp: time.Now(),
		ExitCode:  status,
		Detail:    detail,
	})

	logger.Debug("command finished", "status", status, "runtime", record.Runtime)

	return outcome{id: id, record: record}
}

// openLogs creates the per-command log directory (idempotently) and opens
// fresh stdout and stderr files, truncating any prior contents.
func (e *Engine) openLogs(dir string) (afero.File, afero.File, error) {
	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	stdout, err := e.fs.Create(filepath.Join(dir, stdoutFilename))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create stdout log: %w", err)
	}

	stderr, err := e.fs.Create(filepath.Join(dir, stderrFilename))
	if err != nil {
		stdout.Close() //nolint:errcheck
		return nil, nil, fmt.Errorf("failed to create stderr log: %w", err)
	}

	return stdout, stderr, nil
}

// launchFailure records a command that never reached its shell.
func launchFailure(id string, record state.ExecutionRecord, start time.Time) outcome {
	status := launchFailureStatus
	record.Start = float64(start.UnixNano()) / float64(time.Second)
	record.Status = &status

	return outcome{id: id, record: record}
}
