package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ironsheep/img-diff/internal/imaging"
	"github.com/ironsheep/img-diff/internal/matching"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	matchedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	unmatchedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("202"))
	detailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

// Summary renders a short human readable report of a chunk comparison.
func Summary(a *imaging.Grid, res *matching.ChunkResult, merged []imaging.MatchPair) string {
	total := a.Width() * a.Height()
	matched := 0
	for _, p := range res.Matches {
		matched += p.A.Width() * p.A.Height()
	}

	var pct float64
	if total > 0 {
		pct = float64(matched) * 100 / float64(total)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", titleStyle.Render(fmt.Sprintf("Compared %dx%d over %d levels", a.Width(), a.Height(), res.Levels)))
	fmt.Fprintf(&sb, "Matched:   %s in %s\n",
		matchedStyle.Render(fmt.Sprintf("%d px (%.2f%%)", matched, pct)),
		detailStyle.Render(fmt.Sprintf("%d regions", len(merged))))
	fmt.Fprintf(&sb, "Unmatched: %s in %s\n",
		unmatchedStyle.Render(fmt.Sprintf("%d px", total-matched)),
		detailStyle.Render(fmt.Sprintf("%d regions", len(res.Unmatched))))
	return sb.String()
}
