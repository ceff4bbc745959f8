package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/refkit/internal/stress"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(14)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// renderReport formats results one scenario per line. Plain output is
// stable for scripts; styled output is meant for a terminal.
func renderReport(results []stress.Result, cfg stress.Config, styled bool) string {
	var b strings.Builder

	header := fmt.Sprintf("refstress: runs=%d workers=%d attempts=%d", cfg.Runs, cfg.Workers, cfg.Attempts)
	if styled {
		b.WriteString(titleStyle.Render(header))
	} else {
		b.WriteString(header)
	}
	b.WriteByte('\n')

	failed := 0
	for _, r := range results {
		status := "PASS"
		if !r.OK() {
			status = "FAIL"
			failed++
		}
		name := r.Scenario
		stats := fmt.Sprintf("runs=%d locked=%d lock_failed=%d destroyed=%d violations=%d in %s",
			r.Runs, r.Locked, r.LockFailed, r.Destroyed, r.Violations, r.Duration.Round(time.Millisecond))

		if styled {
			style := passStyle
			if status == "FAIL" {
				style = failStyle
			}
			status = style.Render(status)
			name = nameStyle.Render(name)
			stats = helpStyle.Render(stats)
		}
		fmt.Fprintf(&b, "%s %s %s\n", status, name, stats)
		if r.Err != nil {
			msg := "  " + r.Err.Error()
			if styled {
				msg = failStyle.Render(msg)
			}
			b.WriteString(msg)
			b.WriteByte('\n')
		}
	}

	summary := fmt.Sprintf("%d scenario(s), %d failed", len(results), failed)
	if styled {
		summary = helpStyle.Render(summary)
	}
	b.WriteString(summary)
	b.WriteByte('\n')
	return b.String()
}
