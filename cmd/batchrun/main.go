// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the batchrun command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bogdan-kulynych/batchrun"
	"github.com/bogdan-kulynych/batchrun/cmd/batchrun/launch"
	"github.com/bogdan-kulynych/batchrun/cmd/batchrun/status"
	"github.com/bogdan-kulynych/batchrun/cmd/batchrun/sweep"
	"github.com/bogdan-kulynych/batchrun/internal/ctxlog"
	"github.com/bogdan-kulynych/batchrun/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		sweep.SweepCmd,
		launch.LaunchCmd,
		status.StatusCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "batchrun",
	Description: `Batchrun expands a declarative parameter grid into a list of shell
commands, executes them with bounded parallelism, and records every outcome so
that interrupted or partially-failed sweeps can be resumed without re-running
completed work. Use the sweep command to render a grid specification into a
runfile, and the launch command to execute it.`,
	Usage:                 "batchrun sweep grid.yml && batchrun launch grid.runfile -j 4",
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", batchrun.Version, batchrun.Commit)

	err := rootCmd.Run(ctx, os.Args)

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
