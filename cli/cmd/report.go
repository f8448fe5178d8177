package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Styles.
var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	sumStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
)

// Result marks.
const (
	okMark   = "✓"
	skipMark = "•"
	failMark = "✗"
)

// report writes one line per input plus a batch summary to w.
func report(w io.Writer, results []result, elapsed time.Duration) {
	var compiled, skipped, failed int

	for _, res := range results {
		switch {
		case res.err != nil:
			failed++

			fmt.Fprintf(w, "%s %s: %v\n",
				failStyle.Render(failMark),
				fileStyle.Render(res.in.name),
				res.err,
			)

		case res.skipped:
			skipped++

			fmt.Fprintf(w, "%s %s\n",
				skipStyle.Render(skipMark),
				skipStyle.Render(res.in.name+" (fresh)"),
			)

		default:
			compiled++

			line := fileStyle.Render(res.in.name)
			if res.size > 0 {
				line += skipStyle.Render(fmt.Sprintf(" (%d bytes)", res.size))
			}

			fmt.Fprintf(w, "%s %s\n", okStyle.Render(okMark), line)
		}
	}

	fmt.Fprintln(w, sumStyle.Render(fmt.Sprintf(
		"%d compiled, %d fresh, %d failed in %s",
		compiled, skipped, failed, elapsed.Round(time.Millisecond),
	)))
}
