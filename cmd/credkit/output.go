package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/credkit/internal/credtest"
	"github.com/janekbaraniewski/credkit/internal/history"
)

var (
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1"))
	invalidStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7F849C"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	columnStyle  = lipgloss.NewStyle().Width(22)
)

func statusBadge(status string) string {
	label := fmt.Sprintf("%-7s", status)
	switch credtest.Status(status) {
	case credtest.StatusOK:
		return okStyle.Render(label)
	case credtest.StatusInvalid:
		return invalidStyle.Render(label)
	default:
		return errorStyle.Render(label)
	}
}

func printResult(w io.Writer, id string, res credtest.Result) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		statusBadge(string(res.Status)),
		id,
		res.Message,
		dimStyle.Render(fmt.Sprintf("(%s, %s)", res.RequestURL, res.Duration.Round(time.Millisecond))),
	)
}

func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no test runs recorded"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render("recent credential tests"))
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s %s %s\n",
			dimStyle.Render(e.TestedAt.Local().Format(time.DateTime)),
			statusBadge(e.Status),
			columnStyle.Render(e.CredentialID),
			e.Message,
		)
	}
}
