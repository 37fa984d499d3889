// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tailwriter

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastLineWriter_SingleWrite(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single line with newline",
			input:    "hello world\n",
			expected: "hello world",
		},
		{
			name:     "single line without newline",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "just newline",
			input:    "\n",
			expected: "",
		},
		{
			name:     "trailing partial wins",
			input:    "first\nsecond\npartial",
			expected: "partial",
		},
		{
			name:     "final newline keeps last complete line",
			input:    "first\nsecond\n",
			expected: "second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sink bytes.Buffer

			lw := New(&sink)

			_, err := io.WriteString(lw, tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.input, sink.String(), "all data must reach the underlying writer")
			assert.Equal(t, tt.expected, lw.LastLine(0))
		})
	}
}

func TestLastLineWriter_ChunkedWrites(t *testing.T) {
	var sink bytes.Buffer

	lw := New(&sink)

	input := "first line\nsecond line\nthird line\nfourth line"
	for i := 0; i < len(input); i += 5 {
		end := min(i+5, len(input))
		_, err := lw.Write([]byte(input[i:end]))
		require.NoError(t, err)
	}

	assert.Equal(t, input, sink.String())
	assert.Equal(t, "fourth line", lw.LastLine(0))
}

func TestLastLineWriter_Truncation(t *testing.T) {
	var sink bytes.Buffer

	lw := New(&sink)

	_, err := io.WriteString(lw, strings.Repeat("x", 50)+"\n")
	require.NoError(t, err)

	got := lw.LastLine(20)
	assert.Len(t, got, 20)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestLastLineWriter_ConcurrentReads(t *testing.T) {
	var sink bytes.Buffer

	lw := New(&sink)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := 0; i < 1000; i++ {
			_, err := io.WriteString(lw, "line\n")
			assert.NoError(t, err)
		}
	}()

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				_ = lw.LastLine(0)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, "line", lw.LastLine(0))
}

func TestLastLineWriter_UnderlyingError(t *testing.T) {
	lw := New(&failingWriter{accept: 4})

	n, err := lw.Write([]byte("abcdefgh\n"))
	require.Error(t, err)
	assert.Equal(t, 4, n)

	// Only the accepted bytes are tracked.
	assert.Equal(t, "abcd", lw.LastLine(0))
}

// failingWriter accepts a fixed number of bytes, then errors.
type failingWriter struct {
	accept int
}

func (f *failingWriter) Write(p []byte) (int, error) {
	if len(p) <= f.accept {
		return len(p), nil
	}

	return f.accept, assert.AnError
}
