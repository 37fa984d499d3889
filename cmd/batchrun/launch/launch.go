// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package launch implements the launch command, which executes the commands
// of a runfile with bounded parallelism and persistent accounting.
package launch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bogdan-kulynych/batchrun/internal/ctxlog"
	"github.com/bogdan-kulynych/batchrun/internal/engine"
	"github.com/bogdan-kulynych/batchrun/internal/planner"
	"github.com/bogdan-kulynych/batchrun/internal/progress"
	"github.com/bogdan-kulynych/batchrun/internal/runfile"
	"github.com/bogdan-kulynych/batchrun/internal/state"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	runfileArg = "runfile"

	modeFlag          = "mode"
	parallelismFlag   = "parallelism"
	accountingDirFlag = "accounting-dir"
	stateFilenameFlag = "state-filename"

	defaultAccountingRoot = "runs"
	logsSubdir            = "logs"

	eventBufferSize = 64

	cliExitStr = ""
)

// ErrSpecNotRunfile is returned when a YAML grid specification is passed
// where a runfile was expected.
var ErrSpecNotRunfile = errors.New(
	"configuration error: got a YAML grid spec where a runfile was expected; " +
		"generate the runfile first using the sweep command")

// LaunchCmd is the command that launches, tracks, and resumes command line jobs.
var LaunchCmd = &cli.Command{
	Name: "launch",
	Description: `Launch, track, and resume command line jobs.
The command takes as input a runfile containing the commands which are to be
executed, line by line. Commands run in batches of the parallelism degree;
after each batch the per-command outcomes are persisted to the state database
in the accounting directory, so an interrupted launch can be resumed without
re-running completed work.

The run mode controls how prior outcomes are treated: resume skips everything
already recorded, overwrite re-runs everything, and retry_failed re-runs only
prior failures. Individual command failures are recorded, not propagated as
the launcher's own exit code.`,
	Usage: "batchrun launch grid.runfile --mode resume -j 4",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: runfileArg,
		},
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     modeFlag,
			Aliases:  []string{"m"},
			Usage:    "How to deal with previous runs: " + strings.Join(planner.ModeNames, ", ") + ".",
			Value:    planner.Resume.String(),
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:     parallelismFlag,
			Aliases:  []string{"j"},
			Usage:    "Number of jobs to execute in parallel.",
			Value:    1,
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     accountingDirFlag,
			Usage:    "Location for run accounting. Defaults to " + defaultAccountingRoot + "/<runfile stem>.",
			Value:    "",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     stateFilenameFlag,
			Usage:    "Filename for the job state database inside the accounting directory.",
			Value:    state.DefaultFilename,
			OnlyOnce: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	path := cmd.StringArg(runfileArg)
	if path == "" {
		logger.Error("Please specify the runfile as an argument.")
		return cli.Exit(cliExitStr, 1)
	}

	// A YAML extension means the grid spec was passed by mistake.
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return cli.Exit(ErrSpecNotRunfile.Error(), 1)
	}

	mode, err := planner.ParseRunMode(cmd.String(modeFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	parallelism := cmd.Int(parallelismFlag)

	fs := afero.NewOsFs()

	accountingDir := cmd.String(accountingDirFlag)
	if accountingDir == "" {
		accountingDir = filepath.Join(defaultAccountingRoot, stem(path))
	}

	if err := fs.MkdirAll(accountingDir, 0o755); err != nil {
		logger.Error("failed to create accounting directory", "dir", accountingDir, "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	statePath := filepath.Join(accountingDir, cmd.String(stateFilenameFlag))

	store, err := state.Load(fs, statePath)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	jobs, err := runfile.Read(fs, path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	plan, err := planner.Build(jobs, store, mode)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintf(cmd.Writer, "Starting sweep from runfile: %s\n", path)
	fmt.Fprintf(cmd.Writer, "Accounting in directory: %s\n", accountingDir)
	fmt.Fprintf(cmd.Writer, "Mode: %s\n", mode)
	fmt.Fprintf(cmd.Writer, "Number of parallel jobs: %d\n", parallelism)

	reporter := progress.NewChannelReporter(ctx, eventBufferSize)
	reporter.Listen(progress.NewPrinter(cmd.Writer))

	for _, id := range plan.SkippedIDs {
		reporter.Report(progress.Event{
			CommandID: id,
			Type:      progress.EventSkipped,
			Timestamp: time.Now(),
		})
	}

	eng, err := engine.New(engine.Config{
		Fs:          fs,
		LogDir:      filepath.Join(accountingDir, logsSubdir),
		Parallelism: parallelism,
		Reporter:    reporter,
	}, store)
	if err != nil {
		reporter.Close()
		return cli.Exit(err.Error(), 1)
	}

	summary, err := eng.Run(ctx, plan.Queue)

	reporter.Close()

	if err != nil {
		// State persistence failures are fatal; an un-persisted store
		// must not be silently carried forward.
		logger.Error("sweep aborted", "error", err)
		return cli.Exit(cliExitStr, 1)
	}

	fmt.Fprintf(cmd.Writer, "Done: %d executed (%d succeeded, %d failed), %d skipped, %d failed previously\n",
		summary.Executed, summary.Succeeded, summary.Failed, plan.Skipped, plan.Failed)

	// Per-command failures are recoverable data, not launcher errors.
	return nil
}

// stem returns the path's base name without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
