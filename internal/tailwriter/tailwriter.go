// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tailwriter provides an io.Writer wrapper that tracks the most
// recent line of the stream passing through it.
package tailwriter

import (
	"io"
	"strings"
	"sync"
)

// LastLineWriter wraps an io.Writer and tracks the most recent line written
// through it, so that a failing command's final diagnostic can be surfaced
// without re-reading its log file. It is safe for concurrent use.
type LastLineWriter struct {
	w        io.Writer
	lastLine string
	partial  strings.Builder // buffer for data after the last newline
	mu       sync.RWMutex
}

// New creates a LastLineWriter that forwards all writes to w.
func New(w io.Writer) *LastLineWriter {
	return &LastLineWriter{w: w}
}

// Write implements io.Writer. The data is forwarded to the underlying writer
// first; line tracking only covers the bytes the underlying writer accepted.
func (lw *LastLineWriter) Write(p []byte) (int, error) {
	n, err := lw.w.Write(p)
	if n > 0 {
		lw.mu.Lock()
		lw.track(string(p[:n]))
		lw.mu.Unlock()
	}

	return n, err //nolint:wrapcheck
}

// track updates the last line from newly written data.
// Must be called with the write lock held.
func (lw *LastLineWriter) track(data string) {
	lw.partial.WriteString(data)
	combined := lw.partial.String()

	lines := strings.Split(combined, "\n")
	if len(lines) == 1 {
		// No newline yet, the partial buffer already holds everything.
		return
	}

	lw.lastLine = lines[len(lines)-2]
	lw.partial.Reset()
	lw.partial.WriteString(lines[len(lines)-1])
}

// LastLine returns the most recent line of the stream. A trailing line
// without a final newline counts: process diagnostics often end that way.
// If maxLength > 0 the result is truncated to that length with an ellipsis.
// This method is safe for concurrent use.
func (lw *LastLineWriter) LastLine(maxLength int) string {
	lw.mu.RLock()
	defer lw.mu.RUnlock()

	result := lw.partial.String()
	if result == "" {
		result = lw.lastLine
	}

	if maxLength > 3 && len(result) > maxLength {
		result = result[:maxLength-3] + "..."
	}

	return result
}
