// Copyright (c) bogdan-kulynych 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/bogdan-kulynych/batchrun/internal/color"
)

// Printer is a Listener that renders events as plain colorized lines.
// It is the default console view of a running sweep.
type Printer struct {
	w  io.Writer
	mu sync.Mutex
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// OnEvent implements the Listener interface for Printer.
func (p *Printer) OnEvent(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event.Type {
	case EventStarted:
		fmt.Fprintf(p.w, "%s %s: %s\n",
			color.Colorize("RUN ", color.FgCyan),
			event.CommandID, event.Command)
		fmt.Fprintf(p.w, "     %s: tail -f %s/out.log\n", event.CommandID, event.LogDir)
	case EventCompleted:
		fmt.Fprintf(p.w, "%s %s\n",
			color.Colorize("OK  ", color.FgGreen, color.Bold),
			event.CommandID)
	case EventFailed:
		fmt.Fprintf(p.w, "%s %s (exit %d)\n",
			color.Colorize("FAIL", color.FgRed, color.Bold),
			event.CommandID, event.ExitCode)

		if event.Detail != "" {
			fmt.Fprintf(p.w, "     %s: %s\n", event.CommandID, event.Detail)
		}
	case EventSkipped:
		fmt.Fprintf(p.w, "%s %s\n",
			color.Colorize("SKIP", color.FgYellow),
			event.CommandID)
	case EventBatchFlushed:
		// Quiet; the state database write is not newsworthy per command.
	}
}
