package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"recall/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// healthLines renders the daemon health report section by section.
func healthLines(health api.HealthResponse, colorize bool) []string {
	var lines []string
	lines = append(lines, renderSectionHeader("Daemon", colorize)...)
	kind := statusOK
	if health.Status != "healthy" {
		kind = statusError
	}
	lines = append(lines, renderStatusLine("Status", kind, health.Status, colorize))
	lines = append(lines, renderStatusLine("Checked", statusInfo, health.Timestamp, colorize))
	if health.DatabasePath != "" {
		lines = append(lines, renderStatusLine("Database", statusInfo, health.DatabasePath, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Workers", colorize)...)
	pool := health.Pool
	lines = append(lines, renderStatusLine("Pool", statusInfo,
		fmt.Sprintf("%d workers, %d/%d queued, %d running", pool.Workers, pool.Queued, pool.QueueSize, pool.Running), colorize))
	lines = append(lines, renderStatusLine("Finished", statusInfo,
		fmt.Sprintf("%d completed, %d failed, %d rejected", pool.Completed, pool.Failed, pool.Rejected), colorize))

	if len(health.Stages) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Checks", colorize)...)
		for _, st := range health.Stages {
			kind := statusOK
			if !st.Ready {
				kind = statusWarn
			}
			lines = append(lines, renderStatusLine(st.Name, kind, st.Detail, colorize))
		}
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
	lines = append(lines, dependencyLines(health.Dependencies, colorize)...)
	return lines
}

func dependencyLines(deps []api.DependencyStatus, colorize bool) []string {
	if len(deps) == 0 {
		return []string{renderStatusLine("Summary", statusInfo, "No dependencies reported", colorize)}
	}
	var missing []string
	body := make([]string, 0, len(deps))
	for _, dep := range deps {
		switch {
		case dep.Available:
			body = append(body, renderStatusLine(dep.Name, statusOK, fmt.Sprintf("Ready (command: %s)", dep.Command), colorize))
		case dep.Optional:
			body = append(body, renderStatusLine(dep.Name, statusWarn, dep.Detail, colorize))
		default:
			missing = append(missing, dep.Name)
			body = append(body, renderStatusLine(dep.Name, statusError, dep.Detail, colorize))
		}
	}
	summary := renderStatusLine("Summary", statusOK, fmt.Sprintf("%d/%d available", len(deps)-len(missing), len(deps)), colorize)
	if len(missing) > 0 {
		summary = renderStatusLine("Summary", statusError, fmt.Sprintf("%d required missing", len(missing)), colorize)
	}
	lines := append([]string{summary}, body...)
	if len(missing) > 0 {
		lines = append(lines, statusIndent+"Missing dependencies: "+strings.Join(missing, ", "))
	}
	return lines
}
