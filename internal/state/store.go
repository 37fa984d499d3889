// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package state persists per-command execution outcomes for one sweep.
//
// The store is a single JSON document mapping command identifiers to
// execution records, kept under the sweep's accounting directory. It is
// loaded once at launch start, mutated in memory as batches complete, and
// rewritten in full after every batch. A missing or empty file means no
// prior state.
//
// The store is owned by a single launch invocation. Concurrent launches
// against the same accounting directory are not synchronized and may lose
// updates.
package state

import (
	"encoding/json"
	"errors"
	"maps"
	"os"

	"github.com/spf13/afero"
)

// DefaultFilename is the state database filename inside the accounting directory.
const DefaultFilename = "metadata.json"

var (
	// ErrLoadState is returned when the state database cannot be read or decoded.
	ErrLoadState = errors.New("failed to load state database")
	// ErrFlushState is returned when the state database cannot be persisted.
	// Persistence is load-bearing for resume correctness, so callers must
	// treat this as fatal rather than continuing with diverging state.
	ErrFlushState = errors.New("failed to flush state database")
)

// Store maps command identifiers to their last-known execution record.
type Store struct {
	fs      afero.Fs
	path    string
	records map[string]ExecutionRecord
}

// New creates an empty store persisted at path.
func New(fs afero.Fs, path string) *Store {
	return &Store{
		fs:      fs,
		path:    path,
		records: make(map[string]ExecutionRecord),
	}
}

// Load reads the persisted state into a new store.
// A missing or empty file yields an empty store.
func Load(fs afero.Fs, path string) (*Store, error) {
	s := New(fs, path)

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}

		return nil, errors.Join(ErrLoadState, err)
	}

	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, errors.Join(ErrLoadState, err)
	}

	return s, nil
}

// Get returns the record for the given command identifier.
func (s *Store) Get(id string) (ExecutionRecord, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

// Put inserts or replaces the record for the given command identifier.
func (s *Store) Put(id string, rec ExecutionRecord) {
	s.records[id] = rec
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a copy of the identifier-to-record mapping.
func (s *Store) Records() map[string]ExecutionRecord {
	return maps.Clone(s.records)
}

// Path returns the location of the persisted document.
func (s *Store) Path() string {
	return s.path
}

// Flush rewrites the entire store to durable storage.
func (s *Store) Flush() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return errors.Join(ErrFlushState, err)
	}

	if err := afero.WriteFile(s.fs, s.path, data, 0o644); err != nil {
		return errors.Join(ErrFlushState, err)
	}

	return nil
}
