package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/wonny/alphalens/internal/analysis"
)

const dateLayout = "2006-01-02"

// parseDateFlag parses an optional YYYY-MM-DD flag value
func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", name, value)
	}
	return t, nil
}

// userMessage turns a run failure into the message shown on the terminal
func userMessage(ticker string, err error) string {
	switch {
	case errors.Is(err, analysis.ErrNoPriceData):
		return fmt.Sprintf("No price data found for %s.", ticker)
	case errors.Is(err, analysis.ErrNoFactor):
		return fmt.Sprintf("Could not generate factor data for %s.", ticker)
	default:
		return fmt.Sprintf("Analysis of %s failed: %v", ticker, err)
	}
}

// PrintSection prints a titled separator
func PrintSection(title string) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  %s\n", title)
	fmt.Println("───────────────────────────────────────────────────────────")
}
