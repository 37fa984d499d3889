// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runfile reads and writes runfiles: plain-text files with one
// fully-rendered command per line, in grid-expansion order.
//
// The runfile is the authoritative command list for a sweep. Blank lines and
// lines starting with '#' are ignored on read, so runfiles can be annotated
// or edited by hand between generation and execution.
package runfile

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/bogdan-kulynych/batchrun/internal/gridspec"
	"github.com/spf13/afero"
)

// DefaultExtension is appended to the spec file stem to name the runfile.
const DefaultExtension = ".runfile"

var (
	// ErrWriteRunfile is returned when the runfile cannot be written.
	ErrWriteRunfile = errors.New("failed to write runfile")
	// ErrReadRunfile is returned when the runfile cannot be read.
	ErrReadRunfile = errors.New("failed to read runfile")
)

// Write persists the jobs to path, one command per line, preserving order.
func Write(fs afero.Fs, path string, jobs []gridspec.Job) error {
	sb := strings.Builder{}
	for _, job := range jobs {
		sb.WriteString(job.Command)
		sb.WriteString("\n")
	}

	if err := afero.WriteFile(fs, path, []byte(sb.String()), 0o644); err != nil {
		return errors.Join(ErrWriteRunfile, err)
	}

	return nil
}

// Read loads the jobs from path, skipping blank lines and '#' comments.
// Each line's parameter assignment is derived once here, from the command
// text, so that execution records carry structured parameters without
// re-parsing per run.
func Read(fs afero.Fs, path string) ([]gridspec.Job, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Join(ErrReadRunfile, err)
	}
	defer f.Close() //nolint:errcheck

	var jobs []gridspec.Job

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		jobs = append(jobs, gridspec.Job{
			Command:    line,
			Parameters: gridspec.ParseArgs(line),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadRunfile, err)
	}

	return jobs, nil
}
