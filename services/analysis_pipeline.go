package services

import (
	"context"
	"log"
	"time"

	"debatearena/models"
)

// AnalysisPipeline runs the scoring cascade: an explicit ordered list of
// tiers, tried strictly in order, short-circuiting on the first success.
// The fallback tier is the guaranteed terminal strategy, so Run always
// produces a result and never returns an error.
type AnalysisPipeline struct {
	tiers    []AnalysisTier
	fallback FallbackTier
}

// NewAnalysisPipeline builds a pipeline over the given tiers. The tier
// list is injected rather than looked up ambiently so tests can
// substitute deterministic tiers.
func NewAnalysisPipeline(tiers ...AnalysisTier) *AnalysisPipeline {
	return &AnalysisPipeline{tiers: tiers}
}

// Run scores the debate. Each tier's output is normalized into the
// canonical shape and tagged with the tier that produced it.
func (p *AnalysisPipeline) Run(ctx context.Context, debate *models.Debate) *models.AnalysisResult {
	arguments := collectArguments(debate)

	for _, tier := range p.tiers {
		result, err := tier.Analyze(ctx, debate.Topic, arguments)
		if err != nil {
			log.Printf("analysis tier %s failed for debate %s: %v", tier.Name(), debate.ID.Hex(), err)
			continue
		}
		normalize(result, debate, tier.Name())
		return result
	}

	result, _ := p.fallback.Analyze(ctx, debate.Topic, arguments)
	normalize(result, debate, p.fallback.Name())
	return result
}

func collectArguments(debate *models.Debate) []ParticipantArgument {
	arguments := make([]ParticipantArgument, 0, len(debate.Arguments))
	for _, arg := range debate.Arguments {
		arguments = append(arguments, ParticipantArgument{
			Username: arg.DisplayName,
			Text:     arg.Content,
		})
	}
	return arguments
}

// normalize forces a tier's output into the canonical result shape:
// every debate participant present, argument counts and lengths filled
// in, the source tag set, and the winner recomputed from totals with
// participant join order as the explicit tie-break.
func normalize(result *models.AnalysisResult, debate *models.Debate, source string) {
	if result.Results == nil {
		result.Results = make(map[string]models.ParticipantResult)
	}

	counts := make(map[string]int)
	lengths := make(map[string]int)
	for _, arg := range debate.Arguments {
		counts[arg.DisplayName]++
		lengths[arg.DisplayName] += len(arg.Content)
	}

	for _, name := range debate.ParticipantNames() {
		pr, ok := result.Results[name]
		if !ok {
			metric := models.MetricScore{Score: 50, Rating: models.RatingFor(50)}
			pr = models.ParticipantResult{
				Scores: map[string]models.MetricScore{
					"coherence":      metric,
					"evidence":       metric,
					"logic":          metric,
					"persuasiveness": metric,
				},
				Total: 50,
			}
		}
		pr.ArgumentCount = counts[name]
		if counts[name] > 0 {
			pr.AverageArgumentLength = float64(lengths[name]) / float64(counts[name])
		}
		result.Results[name] = pr
	}

	result.Source = source
	result.Winner = pickWinner(result, debate.ParticipantNames())
	if result.FinalizedAt.IsZero() {
		result.FinalizedAt = time.Now()
	}
}

// pickWinner selects the participant with the strictly greatest total.
// Equal totals resolve to whoever joined the debate first.
func pickWinner(result *models.AnalysisResult, joinOrder []string) string {
	winner := ""
	best := -1.0
	for _, name := range joinOrder {
		pr, ok := result.Results[name]
		if !ok {
			continue
		}
		if pr.Total > best {
			best = pr.Total
			winner = name
		}
	}
	if winner == "" {
		// Result keyed by names outside the participant list; fall back
		// to the tier's own choice.
		winner = result.Winner
	}
	return winner
}
