package services

import (
	"context"
	"errors"
	"time"

	"debatearena/models"
)

// Tier errors. The pipeline recovers from all of them by falling through
// to the next tier; they are never surfaced to callers.
var (
	ErrTierUnavailable     = errors.New("analysis tier unavailable")
	ErrTierTimeout         = errors.New("analysis tier timed out")
	ErrTierInvalidResponse = errors.New("analysis tier returned an invalid response")
)

// ParticipantArgument is one argument as handed to a scoring tier.
type ParticipantArgument struct {
	Username string `json:"username"`
	Text     string `json:"argumentText"`
}

// AnalysisTier is the shared contract for one strategy in the scoring
// cascade. Implementations classify their failures as unavailable,
// timeout or invalid-response; the pipeline treats them identically.
type AnalysisTier interface {
	Name() string
	Analyze(ctx context.Context, topic string, arguments []ParticipantArgument) (*models.AnalysisResult, error)
}

// FallbackTier is the guaranteed terminal tier: it assigns near-default
// scores so the cascade always terminates with a result. It never fails.
type FallbackTier struct{}

func (FallbackTier) Name() string { return models.SourceFallback }

func (FallbackTier) Analyze(_ context.Context, _ string, arguments []ParticipantArgument) (*models.AnalysisResult, error) {
	results := make(map[string]models.ParticipantResult)
	for _, arg := range arguments {
		if _, ok := results[arg.Username]; ok {
			continue
		}
		metric := models.MetricScore{Score: 50, Rating: models.RatingFor(50)}
		results[arg.Username] = models.ParticipantResult{
			Scores: map[string]models.MetricScore{
				"coherence":      metric,
				"evidence":       metric,
				"logic":          metric,
				"persuasiveness": metric,
			},
			Total: 50,
			Analysis: models.Analysis{
				Feedback: []string{"Automated scoring was unavailable for this debate; default scores were assigned."},
			},
		}
	}
	return &models.AnalysisResult{
		Results:     results,
		Source:      models.SourceFallback,
		FinalizedAt: time.Now(),
	}, nil
}
