// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batchrun provides the version and commit information for the batchrun application.
package batchrun

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)
