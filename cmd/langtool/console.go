package main

import (
	"io"

	"github.com/fatih/color"

	"github.com/JonMunkholm/langtool/internal/core"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// consoleNotifier prints pipeline progress for a human at a terminal.
type consoleNotifier struct {
	w io.Writer
}

func (c consoleNotifier) Notify(p core.Progress) {
	switch p.Phase {
	case core.PhaseFailed:
		errorColor.Fprintln(c.w, p.Message())
	case core.PhasePublished:
		successColor.Fprintln(c.w, p.Message())
	case core.PhaseLocalePublished, core.PhaseLocaleWritten, core.PhaseIndexPublished:
		c.w.Write([]byte("  " + p.Message() + "\n"))
	default:
		infoColor.Fprintln(c.w, p.Message())
	}
}
