// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for OS termination signals during a sweep.
// By default it listens for syscall.SIGINT, syscall.SIGTERM, and syscall.SIGQUIT.
//
// The first signal of a type is only logged: the running batch keeps going so
// that its outcomes can still be persisted. A second signal of the same type
// cancels the context and tears the sweep down.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bogdan-kulynych/batchrun/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New creates a channel notified on signals that should terminate the sweep.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}
