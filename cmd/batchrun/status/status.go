// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package status implements the status command, which renders the state
// database of a previous launch.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/TylerBrock/colorjson"
	"github.com/bogdan-kulynych/batchrun/internal/ctxlog"
	"github.com/bogdan-kulynych/batchrun/internal/state"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	accountingDirArg  = "accounting-dir"
	stateFilenameFlag = "state-filename"

	cliExitStr = ""
)

// ErrRenderState is returned when the state database cannot be rendered.
var ErrRenderState = errors.New("failed to render state database")

// StatusCmd is the command that shows recorded outcomes of a previous launch.
var StatusCmd = &cli.Command{
	Name: "status",
	Description: `Show the recorded outcomes of a previous launch.
Reads the state database from the given accounting directory and prints each
command's record together with success and failure totals.`,
	Usage: "batchrun status runs/grid",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: accountingDirArg,
		},
	},
	Flags: []cli.Flag{
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

	dir := cmd.StringArg(accountingDirArg)
	if dir == "" {
		logger.Error("Please specify the accounting directory as an argument.")
		return cli.Exit(cliExitStr, 1)
	}

	statePath := filepath.Join(dir, cmd.String(stateFilenameFlag))

	store, err := state.Load(afero.NewOsFs(), statePath)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	records := store.Records()

	var succeeded, failed int

	for _, rec := range records {
		switch {
		case rec.Succeeded():
			succeeded++
		case rec.Failed():
			failed++
		}
	}

	if len(records) > 0 {
		rendered, err := render(records)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		fmt.Fprintln(cmd.Writer, rendered)
	}

	fmt.Fprintf(cmd.Writer, "%d recorded: %d succeeded, %d failed\n",
		len(records), succeeded, failed)

	return nil
}

// render colorizes the state database as indented JSON.
func render(records map[string]state.ExecutionRecord) (string, error) {
	// Round-trip through encoding/json to get the generic shape that
	// colorjson knows how to walk.
	data, err := json.Marshal(records)
	if err != nil {
		return "", errors.Join(ErrRenderState, err)
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return "", errors.Join(ErrRenderState, err)
	}

	formatter := colorjson.NewFormatter()
	formatter.Indent = 2

	out, err := formatter.Marshal(generic)
	if err != nil {
		return "", errors.Join(ErrRenderState, err)
	}

	return string(out), nil
}
