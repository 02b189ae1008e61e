// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ManuGH/dealflow/internal/client"
)

// terminalNotifier prints submit notices, colored when w is a terminal.
type terminalNotifier struct {
	w       io.Writer
	success lipgloss.Style
	failure lipgloss.Style
}

func newTerminalNotifier(w io.Writer) *terminalNotifier {
	r := lipgloss.NewRenderer(w)
	return &terminalNotifier{
		w:       w,
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#50fa7b")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5555")),
	}
}

func (n *terminalNotifier) Notify(message string, isError bool) {
	style := n.success
	if isError {
		style = n.failure
	}
	_, _ = fmt.Fprintln(n.w, style.Render(message))
}

func printNavigator(w io.Writer) client.NavigatorFunc {
	return func(url string) {
		_, _ = fmt.Fprintf(w, "next: %s\n", url)
	}
}
