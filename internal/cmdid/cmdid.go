// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdid derives short, stable identifiers from command text.
// The identifier is the primary key of the state store and the name of the
// per-command log subdirectory, so it must be deterministic across process
// runs and short enough to be a comfortable directory name.
package cmdid

import (
	"crypto/sha256"
	"encoding/hex"
)

// Length is the number of hex characters in a command identifier.
// 16 hex characters carry 64 bits of digest, which keeps collision
// probability negligible for realistic sweep sizes.
const Length = 16

// New returns the identifier for the given command text.
// Identical text always yields the same identifier, within and across runs.
func New(command string) string {
	sum := sha256.Sum256([]byte(command))
	return hex.EncodeToString(sum[:])[:Length]
}
