// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package gridspec

import (
	"fmt"
	"strings"
)

// Job is one fully-rendered command together with the structured parameter
// assignment that produced it. Carrying the typed values avoids lossy
// re-parsing of the command text later on.
type Job struct {
	Command    string
	Parameters map[string]any
}

// Expand produces every concrete command line of the grid: the cartesian
// product over all parameter value lists, each combination rendered by
// appending --name=value flags to the program in parameter order.
//
// The output order is the standard lexicographic product order over the input
// lists (the last parameter varies fastest) and is stable across repeated
// expansions of the same spec. Zero parameters yield exactly one job; any
// empty value list yields zero jobs.
func (s *Spec) Expand() []Job {
	program := escapeProgram(s.Program)

	total := 1
	for _, p := range s.Parameters {
		total *= len(p.Values)
	}

	jobs := make([]Job, 0, total)
	indices := make([]int, len(s.Parameters))

	for range total {
		parameters := make(map[string]any, len(s.Parameters))
		flags := make([]string, 0, len(s.Parameters))

		for i, p := range s.Parameters {
			v := p.Values[indices[i]]
			parameters[p.Name] = v
			flags = append(flags, fmt.Sprintf("--%s=%v", p.Name, v))
		}

		command := program
		if len(flags) > 0 {
			command += " " + strings.Join(flags, " ")
		}

		jobs = append(jobs, Job{Command: command, Parameters: parameters})

		// Advance the odometer, last parameter fastest.
		for i := len(indices) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(s.Parameters[i].Values) {
				break
			}

			indices[i] = 0
		}
	}

	return jobs
}

// escapeProgram escapes single quotes so that the rendered command stays
// shell-safe when later wrapped in quotes.
func escapeProgram(program string) string {
	return strings.ReplaceAll(program, "'", `\'`)
}
