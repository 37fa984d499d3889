// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package sweep

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_fetchSpec(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name      string
		url       string
		wantErr   error
		wantBytes []byte
	}{
		{
			name:    "empty url returns error",
			url:     "",
			wantErr: ErrGetSpecFile,
		},
		{
			name:    "getter fails",
			url:     "git::http://notexist//grid.yml",
			wantErr: ErrGetSpecFile,
		},
		{
			name:      "local file succeeds",
			url:       "./testdata/grid.yml",
			wantErr:   nil,
			wantBytes: []byte("program: echo\nparameters:\n  msg:\n    values: [a, b]\n"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()

			bytes, err := fetchSpec(ctx, tc.url)
			if tc.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, bytes)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantBytes, bytes)
			}
		})
	}
}

func Test_stem(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "grid", stem("configs/grid.yml"))
	assert.Equal(t, "grid", stem("grid.yaml"))
	assert.Equal(t, "grid", stem("grid"))
}
