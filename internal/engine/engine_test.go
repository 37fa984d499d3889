// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogdan-kulynych/batchrun/internal/cmdid"
	"github.com/bogdan-kulynych/batchrun/internal/gridspec"
	"github.com/bogdan-kulynych/batchrun/internal/planner"
	"github.com/bogdan-kulynych/batchrun/internal/progress"
	"github.com/bogdan-kulynych/batchrun/internal/state"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestEngine(t *testing.T, parallelism int) (*Engine, *state.Store, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	store := state.New(fs, "runs/demo/metadata.json")

	e, err := New(Config{
		Fs:          fs,
		LogDir:      "runs/demo/logs",
		Parallelism: parallelism,
	}, store)
	require.NoError(t, err)

	return e, store, fs
}

func TestNew_RejectsZeroParallelism(t *testing.T) {
	_, err := New(Config{Parallelism: 0}, state.New(afero.NewMemMapFs(), "metadata.json"))
	require.ErrorIs(t, err, ErrNoParallelism)
}

func TestRun_EndToEnd(t *testing.T) {
	spec := &gridspec.Spec{
		Program: "echo",
		Parameters: []gridspec.Parameter{
			{Name: "msg", Values: []any{"a", "b"}},
		},
	}

	e, store, fs := newTestEngine(t, 1)

	summary, err := e.Run(context.Background(), spec.Expand())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Executed)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	require.Equal(t, 2, store.Len())

	for i, msg := range []string{"a", "b"} {
		command := "echo --msg=" + msg
		id := cmdid.New(command)

		rec, ok := store.Get(id)
		require.True(t, ok, "expected record %d in store", i)
		require.NotNil(t, rec.Status)
		assert.Equal(t, 0, *rec.Status)
		assert.Equal(t, command, rec.Command)
		assert.Equal(t, map[string]any{"msg": msg}, rec.Parameters)
		assert.Greater(t, rec.Start, float64(0))
		assert.GreaterOrEqual(t, rec.Runtime, float64(0))

		stdout, err := afero.ReadFile(fs, filepath.Join("runs/demo/logs", id, "out.log"))
		require.NoError(t, err)
		assert.Contains(t, string(stdout), "--msg="+msg, "expected echoed flags in stdout log")

		exists, err := afero.Exists(fs, filepath.Join("runs/demo/logs", id, "err.log"))
		require.NoError(t, err)
		assert.True(t, exists, "expected stderr log to be created")
	}

	// State database persisted after the final batch.
	persisted, err := state.Load(fs, "runs/demo/metadata.json")
	require.NoError(t, err)
	assert.Equal(t, 2, persisted.Len())
}

func TestRun_FailureIsDataNotError(t *testing.T) {
	e, store, _ := newTestEngine(t, 1)

	summary, err := e.Run(context.Background(), []gridspec.Job{{Command: "exit 3"}})
	require.NoError(t, err, "per-command failures must never abort the sweep")

	assert.Equal(t, 1, summary.Failed)

	rec, ok := store.Get(cmdid.New("exit 3"))
	require.True(t, ok)
	require.NotNil(t, rec.Status)
	assert.Equal(t, 3, *rec.Status)
}

func TestRun_LogDirFailureIsRecorded(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := state.New(fs, "metadata.json")

	e, err := New(Config{
		Fs:          afero.NewReadOnlyFs(fs),
		LogDir:      "logs",
		Parallelism: 1,
	}, store)
	require.NoError(t, err)

	summary, err := e.Run(context.Background(), []gridspec.Job{{Command: "echo hi"}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	rec, ok := store.Get(cmdid.New("echo hi"))
	require.True(t, ok)
	require.NotNil(t, rec.Status)
	assert.Equal(t, -1, *rec.Status)
}

func TestRun_FlushFailureIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := state.New(afero.NewReadOnlyFs(fs), "metadata.json")

	e, err := New(Config{Fs: fs, LogDir: "logs", Parallelism: 1}, store)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), []gridspec.Job{{Command: "echo hi"}})
	require.ErrorIs(t, err, state.ErrFlushState,
		"a failed state flush must halt the sweep")
}

func TestRun_OneLogDirPerCommandID(t *testing.T) {
	e, _, fs := newTestEngine(t, 1)
	queue := []gridspec.Job{{Command: "echo same"}}

	_, err := e.Run(context.Background(), queue)
	require.NoError(t, err)
	_, err = e.Run(context.Background(), queue)
	require.NoError(t, err)

	entries, err := afero.ReadDir(fs, "runs/demo/logs")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "expected one subdirectory per distinct command id, not per execution")
}

func TestRun_BatchParallelism(t *testing.T) {
	e, _, _ := newTestEngine(t, 2)
	queue := []gridspec.Job{
		{Command: "sleep 0.5"},
		{Command: "sleep 0.5"},
	}

	start := time.Now()
	summary, err := e.Run(context.Background(), queue)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Less(t, elapsed, 950*time.Millisecond,
		"expected both commands of the batch to run concurrently")
}

func TestRun_ReportsEvents(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := state.New(fs, "metadata.json")
	reporter := progress.NewChannelReporter(context.Background(), 64)
	listener := &collectingListener{}
	reporter.Listen(listener)

	e, err := New(Config{
		Fs:          fs,
		LogDir:      "logs",
		Parallelism: 1,
		Reporter:    reporter,
	}, store)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), []gridspec.Job{
		{Command: "echo ok"},
		{Command: "exit 1"},
	})
	require.NoError(t, err)
	reporter.Close()

	types := listener.types()
	assert.Contains(t, types, progress.EventStarted)
	assert.Contains(t, types, progress.EventCompleted)
	assert.Contains(t, types, progress.EventFailed)
	assert.Contains(t, types, progress.EventBatchFlushed)
}

func TestRun_CancelledContextStopsBetweenBatches(t *testing.T) {
	e, store, _ := newTestEngine(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := e.Run(ctx, []gridspec.Job{
		{Command: "echo never"},
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Executed)
	assert.Equal(t, 0, store.Len(), "expected no record for a command that never started")
}

func TestRun_FailureEventCarriesStderrTail(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := state.New(fs, "metadata.json")
	reporter := progress.NewChannelReporter(context.Background(), 64)
	listener := &collectingListener{}
	reporter.Listen(listener)

	e, err := New(Config{
		Fs:          fs,
		LogDir:      "logs",
		Parallelism: 1,
		Reporter:    reporter,
	}, store)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), []gridspec.Job{
		{Command: "echo starting >&2; echo boom >&2; exit 2"},
	})
	require.NoError(t, err)
	reporter.Close()

	var failed *progress.Event

	for i := range listener.events {
		if listener.events[i].Type == progress.EventFailed {
			failed = &listener.events[i]
		}
	}

	require.NotNil(t, failed)
	assert.Equal(t, 2, failed.ExitCode)
	assert.Equal(t, "boom", failed.Detail)
}

func TestRun_ResumeSecondRunIsNoOp(t *testing.T) {
	e, store, _ := newTestEngine(t, 2)
	queue := []gridspec.Job{
		{Command: "echo one"},
		{Command: "echo two"},
		{Command: "echo three"},
	}

	_, err := e.Run(context.Background(), queue)
	require.NoError(t, err)

	before := store.Records()

	plan, err := planner.Build(queue, store, planner.Resume)
	require.NoError(t, err)
	assert.Empty(t, plan.Queue, "expected nothing left to run")
	assert.Equal(t, 3, plan.Skipped)

	summary, err := e.Run(context.Background(), plan.Queue)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Executed)
	assert.Equal(t, before, store.Records(), "expected the store to be unchanged")
}

func TestRun_RetryFailedReplacesRecord(t *testing.T) {
	e, store, _ := newTestEngine(t, 1)

	// Seed a failed record for a command that will now succeed.
	command := "echo recovered"
	failed := 1
	store.Put(cmdid.New(command), state.ExecutionRecord{
		Start:   1.0,
		Runtime: 1.0,
		Status:  &failed,
		Command: command,
	})

	plan, err := planner.Build([]gridspec.Job{{Command: command}}, store, planner.RetryFailed)
	require.NoError(t, err)
	require.Len(t, plan.Queue, 1)

	_, err = e.Run(context.Background(), plan.Queue)
	require.NoError(t, err)

	rec, ok := store.Get(cmdid.New(command))
	require.True(t, ok)
	require.NotNil(t, rec.Status)
	assert.Equal(t, 0, *rec.Status, "expected the record to be fully replaced")
	assert.Greater(t, rec.Start, 1.0, "expected a fresh start timestamp")
}

type collectingListener struct {
	events []progress.Event
}

func (cl *collectingListener) OnEvent(event progress.Event) {
	cl.events = append(cl.events, event)
}

func (cl *collectingListener) types() []progress.EventType {
	out := make([]progress.EventType, 0, len(cl.events))
	for _, e := range cl.events {
		out = append(out, e.Type)
	}

	return out
}
