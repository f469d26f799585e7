package report

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/atlasharvest/internal/database"
	"github.com/nao1215/atlasharvest/internal/model"
)

// scoreTypeLabel shows known score types by their title-cased display
// name and anything else as stored. Title casing follows Turkish rules, so
// "eşit ağırlık" reads "Eşit Ağırlık" and acronyms are kept.
func scoreTypeLabel(name string) string {
	st, err := model.ParseScoreType(name)
	if err != nil {
		return dash(name)
	}
	return cases.Title(language.Turkish, cases.NoLower).String(st.DisplayName())
}

func statusLabel(status string) string {
	return dash(status)
}

func runState(r database.Run) string {
	if r.Degraded {
		return r.State + " (degraded)"
	}
	return r.State
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
