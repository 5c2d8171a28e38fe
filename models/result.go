package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Analysis source tags identify which tier of the scoring cascade
// produced a result.
const (
	SourceML        = "ml"
	SourceLLM       = "llm"
	SourceHeuristic = "heuristic"
	SourceFallback  = "fallback"
)

// MetricScore is a single 0-100 sub-metric with its qualitative label.
type MetricScore struct {
	Score  float64 `bson:"score" json:"score"`
	Rating string  `bson:"rating" json:"rating"`
}

// RatingFor maps a percentage to the descriptive ladder used across all
// scoring tiers.
func RatingFor(value float64) string {
	switch {
	case value >= 85:
		return "Excellent"
	case value >= 70:
		return "Good"
	case value >= 50:
		return "Fair"
	default:
		return "Poor"
	}
}

// Score holds the four sub-metrics computed for a single argument plus
// the precomputed weighted total. Computed once at submission, never
// recomputed.
type Score struct {
	Coherence      MetricScore `bson:"coherence" json:"coherence"`
	Evidence       MetricScore `bson:"evidence" json:"evidence"`
	Logic          MetricScore `bson:"logic" json:"logic"`
	Persuasiveness MetricScore `bson:"persuasiveness" json:"persuasiveness"`
	Total          float64     `bson:"total" json:"total"`
}

// Metrics returns the sub-metric map keyed by metric name, the shape the
// canonical result uses.
func (s Score) Metrics() map[string]MetricScore {
	return map[string]MetricScore{
		"coherence":      s.Coherence,
		"evidence":       s.Evidence,
		"logic":          s.Logic,
		"persuasiveness": s.Persuasiveness,
	}
}

// Analysis carries the qualitative feedback lists for one participant.
type Analysis struct {
	Strengths  []string `bson:"strengths" json:"strengths"`
	Weaknesses []string `bson:"weaknesses" json:"weaknesses"`
	Feedback   []string `bson:"feedback" json:"feedback"`
}

// ParticipantResult is the canonical per-participant entry every tier
// must normalize into.
type ParticipantResult struct {
	Scores                map[string]MetricScore `bson:"scores" json:"scores"`
	Total                 float64                `bson:"total" json:"total"`
	ArgumentCount         int                    `bson:"argumentCount" json:"argumentCount"`
	AverageArgumentLength float64                `bson:"averageArgumentLength" json:"averageArgumentLength"`
	Analysis              Analysis               `bson:"analysis" json:"analysis"`
}

// AnalysisResult is the canonical outcome of a finalized debate. It is
// canonical only once every participant of the debate appears as a key
// in Results; Winner is always one of those keys.
type AnalysisResult struct {
	Results     map[string]ParticipantResult `bson:"results" json:"results"`
	Winner      string                       `bson:"winner" json:"winner"`
	Source      string                       `bson:"source" json:"analysisSource"`
	FinalizedAt time.Time                    `bson:"finalizedAt" json:"finalizedAt"`
}

// Totals returns each participant's total keyed by display name.
func (r *AnalysisResult) Totals() map[string]float64 {
	totals := make(map[string]float64, len(r.Results))
	for name, pr := range r.Results {
		totals[name] = pr.Total
	}
	return totals
}

// StoredResult is the persisted projection of an AnalysisResult, unique
// per debate. Saves are idempotent upserts; records are never deleted.
type StoredResult struct {
	ID          primitive.ObjectID           `bson:"_id,omitempty"`
	DebateID    primitive.ObjectID           `bson:"debateId"`
	Topic       string                       `bson:"topic"`
	Results     map[string]ParticipantResult `bson:"results"`
	Winner      string                       `bson:"winner"`
	Source      string                       `bson:"source"`
	FinalizedAt time.Time                    `bson:"finalizedAt"`
	SavedAt     time.Time                    `bson:"savedAt"`
}

// NewStoredResult projects an AnalysisResult into its stored shape.
func NewStoredResult(debateID primitive.ObjectID, topic string, result *AnalysisResult) *StoredResult {
	return &StoredResult{
		DebateID:    debateID,
		Topic:       topic,
		Results:     result.Results,
		Winner:      result.Winner,
		Source:      result.Source,
		FinalizedAt: result.FinalizedAt,
		SavedAt:     time.Now(),
	}
}

// AnalysisResult reconstructs the canonical result from the stored
// projection.
func (s *StoredResult) AnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Results:     s.Results,
		Winner:      s.Winner,
		Source:      s.Source,
		FinalizedAt: s.FinalizedAt,
	}
}

// MarshalJSON emits the canonical shape plus a flattened legacy view
// (top-level totals map) that older readers still expect. The legacy
// fields are derived at serialization time, never stored.
func (s *StoredResult) MarshalJSON() ([]byte, error) {
	totals := make(map[string]float64, len(s.Results))
	for name, pr := range s.Results {
		totals[name] = pr.Total
	}
	type storedResultJSON struct {
		DebateID    string                       `json:"debateId"`
		Topic       string                       `json:"topic"`
		Results     map[string]ParticipantResult `json:"results"`
		Winner      string                       `json:"winner"`
		Source      string                       `json:"analysisSource"`
		FinalizedAt time.Time                    `json:"finalizedAt"`
		Totals      map[string]float64           `json:"totals"`
	}
	return json.Marshal(storedResultJSON{
		DebateID:    s.DebateID.Hex(),
		Topic:       s.Topic,
		Results:     s.Results,
		Winner:      s.Winner,
		Source:      s.Source,
		FinalizedAt: s.FinalizedAt,
		Totals:      totals,
	})
}
