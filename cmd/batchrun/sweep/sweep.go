// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sweep implements the sweep command, which renders a YAML grid
// specification into a runfile of concrete shell commands.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogdan-kulynych/batchrun/internal/ctxlog"
	"github.com/bogdan-kulynych/batchrun/internal/gridspec"
	"github.com/bogdan-kulynych/batchrun/internal/runfile"
	"github.com/hashicorp/go-getter/v2"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	specArg = "spec"
	outFlag = "out"

	cliExitStr = ""
)

// ErrGetSpecFile is returned when the grid specification cannot be fetched.
var ErrGetSpecFile = errors.New("failed to get grid specification file")

// SweepCmd is the command that expands a grid specification into a runfile.
var SweepCmd = &cli.Command{
	Name: "sweep",
	Description: `Create a list of command line jobs sweeping a parameter grid.
The command reads a YAML grid specification naming a program and its
parameters, expands the cartesian product of all parameter values, and writes
the resulting commands to a runfile, one per line. The runfile can be
annotated or edited by hand before being passed to the launch command.

Specification URLs use Hashicorp's go-getter syntax, which allows for
fetching files from various sources. See https://github.com/hashicorp/go-getter.`,
	Usage: "batchrun sweep grid.yml --out grid.runfile",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: specArg,
		},
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      outFlag,
			Aliases:   []string{"o"},
			Usage:     "Location for the generated runfile. Defaults to <spec stem>.runfile.",
			TakesFile: true,
			Value:     "",
			OnlyOnce:  true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	specPath := cmd.StringArg(specArg)
	if specPath == "" {
		logger.Error("Please specify the grid specification file as an argument.")
		return cli.Exit(cliExitStr, 1)
	}

	src, err := fetchSpec(ctx, specPath)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	spec, err := gridspec.Parse(src)
	if err != nil {
		// Specification errors abort before any side effect.
		return cli.Exit(err.Error(), 1)
	}

	jobs := spec.Expand()

	out := cmd.String(outFlag)
	if out == "" {
		out = stem(specPath) + runfile.DefaultExtension
	}

	if err := runfile.Write(afero.NewOsFs(), out, jobs); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Fprintf(cmd.Writer, "Runfile generated: %s (%d commands)\n", out, len(jobs))

	return nil
}

// fetchSpec retrieves the specification content using Hashicorp's go-getter,
// so that specs can live in local files, git repositories, or object stores.
// The temporary download location is removed after reading.
func fetchSpec(ctx context.Context, src string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "batchrun-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetSpecFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetSpecFile, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, "spec"),
		Pwd:     wd,
		GetMode: getter.ModeFile,
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrGetSpecFile, err)
	}

	content, err := os.ReadFile(res.Dst)
	if err != nil {
		return nil, errors.Join(ErrGetSpecFile, err)
	}

	return content, nil
}

// stem returns the path's base name without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
