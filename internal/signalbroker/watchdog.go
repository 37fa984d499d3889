// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/bogdan-kulynych/batchrun/internal/ctxlog"
)

// Watch monitors the signal channel and cancels the context on the second
// signal of a given type. The first one is only announced, giving the current
// batch a chance to finish and be persisted.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Logger(ctx).Info("watchdog",
				"detail", "received second signal of type, terminating the sweep", "signal", sig.String())
			close(sigCh)
			cancel()

			return
		}

		ctxlog.Logger(ctx).Info("watchdog",
			"detail", "received first signal of type, finishing the current batch; repeat to terminate",
			"signal", sig.String())

		seen[sig] = struct{}{}
	}
}
