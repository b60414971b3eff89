package sentiment

import (
	"strings"

	"github.com/wonny/alphalens/internal/contracts"
)

// ScoringKeywords mark a headline as positive
var ScoringKeywords = []string{
	"surges", "upgrades", "beats", "profits", "innovates", "expands", "optimistic", "strong growth",
}

// ScoredHeadline is a headline with its sentiment score
type ScoredHeadline struct {
	contracts.Headline
	Score float64 `json:"score"`
}

// Scorer is a keyword sentiment scorer
type Scorer struct {
	keywords []string
}

// NewScorer creates a scorer using ScoringKeywords
func NewScorer() *Scorer {
	return &Scorer{keywords: ScoringKeywords}
}

// Score returns +1 when any positive keyword occurs in title, else -1
func (s *Scorer) Score(title string) float64 {
	for _, kw := range s.keywords {
		if strings.Contains(title, kw) {
			return 1
		}
	}
	return -1
}

// ScoreAll scores every headline
func (s *Scorer) ScoreAll(headlines []contracts.Headline) []ScoredHeadline {
	out := make([]ScoredHeadline, len(headlines))
	for i, h := range headlines {
		out[i] = ScoredHeadline{Headline: h, Score: s.Score(h.Title)}
	}
	return out
}
