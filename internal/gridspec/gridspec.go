// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package gridspec parses YAML grid specifications and expands them into
// concrete command lines.
//
// A grid specification names a program and a set of parameters, each with a
// list of candidate values. Expansion produces the cartesian product of all
// value lists, rendered as one shell command per combination.
package gridspec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

var (
	// ErrMissingProgram is returned when the spec does not name an executable.
	ErrMissingProgram = errors.New("spec error: executable not specified")
	// ErrMissingParameters is returned when the spec has no parameters section.
	ErrMissingParameters = errors.New("spec error: parameters not specified")
	// ErrInvalidParameter is returned when a parameter section has none of the
	// recognized keys (values, value, or min/max/step).
	ErrInvalidParameter = errors.New("spec error: invalid parameter section")
	// ErrInvalidRange is returned when a min/max/step range is not numeric.
	ErrInvalidRange = errors.New("spec error: invalid parameter range")
)

// Parameter is a named, ordered list of candidate values.
type Parameter struct {
	Name   string
	Values []any
}

// Spec is a parsed grid specification. Parameters preserve the order in which
// they appear in the YAML document; expansion order depends on it.
type Spec struct {
	Program    string
	Parameters []Parameter
}

// document mirrors the YAML layout. The parameters mapping is decoded as a
// MapSlice to preserve document order.
type document struct {
	Program    string        `yaml:"program"`
	Parameters yaml.MapSlice `yaml:"parameters"`
}

// Parse decodes a grid specification from YAML source.
// Multi-line program strings are collapsed to a single command line.
func Parse(src []byte) (*Spec, error) {
	doc := new(document)
	if err := yaml.Unmarshal(src, doc); err != nil {
		return nil, fmt.Errorf("spec error: %w", err)
	}

	if doc.Program == "" {
		return nil, ErrMissingProgram
	}

	if doc.Parameters == nil {
		return nil, ErrMissingParameters
	}

	spec := &Spec{
		Program:    normalizeProgram(doc.Program),
		Parameters: make([]Parameter, 0, len(doc.Parameters)),
	}

	for _, item := range doc.Parameters {
		name := fmt.Sprintf("%v", item.Key)

		section, ok := item.Value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidParameter, name)
		}

		values, err := resolveSection(name, section)
		if err != nil {
			return nil, err
		}

		spec.Parameters = append(spec.Parameters, Parameter{Name: name, Values: values})
	}

	return spec, nil
}

// resolveSection turns one parameter section into its candidate value list.
// Recognized forms: an explicit values list, a single value, or a half-open
// numeric range given by min/max/step (max exclusive, step defaults to 1,
// min defaults to 0).
func resolveSection(name string, section map[string]any) ([]any, error) {
	if values, ok := section["values"]; ok {
		list, ok := values.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q: values must be a list", ErrInvalidParameter, name)
		}

		return list, nil
	}

	if value, ok := section["value"]; ok {
		return []any{value}, nil
	}

	if maxRaw, ok := section["max"]; ok {
		return resolveRange(name, section, maxRaw)
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidParameter, name)
}

func resolveRange(name string, section map[string]any, maxRaw any) ([]any, error) {
	max, err := asInt(maxRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRange, name, err)
	}

	min := 0

	if minRaw, ok := section["min"]; ok {
		if min, err = asInt(minRaw); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRange, name, err)
		}
	}

	step := 1

	if stepRaw, ok := section["step"]; ok {
		if step, err = asInt(stepRaw); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRange, name, err)
		}
	}

	if step <= 0 {
		return nil, fmt.Errorf("%w: %q: step must be positive", ErrInvalidRange, name)
	}

	values := make([]any, 0, (max-min+step-1)/step)
	for v := min; v < max; v += step {
		values = append(values, v)
	}

	return values, nil
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// normalizeProgram collapses whitespace, so that YAML block scalars with
// continuation lines render as a single command line.
func normalizeProgram(program string) string {
	return strings.Join(strings.Fields(program), " ")
}
