package sentiment

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/wonny/alphalens/internal/contracts"
)

var (
	// PositiveKeywords are drawn for positive mock headlines
	PositiveKeywords = []string{
		"surges", "upgrades", "beats expectations", "record profits",
		"innovates", "expands", "optimistic", "strong growth",
	}

	// NegativeKeywords are drawn for negative mock headlines
	NegativeKeywords = []string{
		"plummets", "downgrades", "misses estimates", "reports loss",
		"investigation", "declines", "pessimistic", "headwinds",
	}

	// Sources are the outlets attributed to mock headlines
	Sources = []string{
		"Reuters", "Bloomberg", "Financial Times", "Wall Street Journal", "TechCrunch",
	}
)

// GeneratorConfig controls the mock news generator
type GeneratorConfig struct {
	Seed            uint64
	NewsProbability float64 // chance of a headline on any date
	PositiveBias    float64 // chance a headline is positive
}

// DefaultGeneratorConfig returns seed 42, 70% news days and 60% positive
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, NewsProbability: 0.7, PositiveBias: 0.6}
}

// Generator produces deterministic mock headlines. The same seed, ticker and
// dates always yield the same headlines.
type Generator struct {
	cfg GeneratorConfig
}

// NewGenerator creates a mock news generator
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{cfg: cfg}
}

// FetchHeadlines emits at most one headline per date
func (g *Generator) FetchHeadlines(ctx context.Context, ticker string, dates []time.Time) ([]contracts.Headline, error) {
	rng := rand.New(rand.NewPCG(g.cfg.Seed, tickerStream(ticker)))

	var out []contracts.Headline
	for _, d := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if rng.Float64() >= g.cfg.NewsProbability {
			continue
		}

		keywords := NegativeKeywords
		if rng.Float64() < g.cfg.PositiveBias {
			keywords = PositiveKeywords
		}
		keyword := keywords[rng.IntN(len(keywords))]

		out = append(out, contracts.Headline{
			Date:   contracts.Day(d),
			Title:  fmt.Sprintf("%s %s on new product announcement.", ticker, keyword),
			Source: Sources[rng.IntN(len(Sources))],
		})
	}

	return out, nil
}

func tickerStream(ticker string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ticker))
	return h.Sum64()
}
