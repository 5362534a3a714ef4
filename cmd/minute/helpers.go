package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"minute/internal/api"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusCaser = cases.Title(language.Und)

// statusLabel renders a session status for table output, e.g. "Recording".
func statusLabel(status string) string {
	return statusCaser.String(status)
}

func statusColor(status string) string {
	switch status {
	case "recording":
		return ansiRed
	case "processing":
		return ansiYellow
	case "completed":
		return ansiGreen
	case "failed":
		return ansiRed
	case "interrupted":
		return ansiYellow
	default:
		return ansiBlue
	}
}

func colorizeStatus(status string, colorize bool) string {
	label := statusLabel(status)
	if !colorize {
		return label
	}
	return statusColor(status) + label + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// formatSessionDuration renders a measured recording length, or a dash when
// the session is still recording.
func formatSessionDuration(sess api.Session) string {
	if !sess.HasDuration() {
		return "-"
	}
	d := time.Duration(sess.DurationSeconds) * time.Second
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}

// shortID abbreviates a UUID for table display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
