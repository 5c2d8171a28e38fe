package models

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStoredResultLegacyJSONView(t *testing.T) {
	debateID := primitive.NewObjectID()
	result := &AnalysisResult{
		Results: map[string]ParticipantResult{
			"alice": {Total: 82.5},
			"bob":   {Total: 67.0},
		},
		Winner:      "alice",
		Source:      SourceHeuristic,
		FinalizedAt: time.Now(),
	}

	data, err := json.Marshal(NewStoredResult(debateID, "school uniforms", result))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var view struct {
		DebateID string             `json:"debateId"`
		Winner   string             `json:"winner"`
		Source   string             `json:"analysisSource"`
		Totals   map[string]float64 `json:"totals"`
		Results  map[string]struct {
			Total float64 `json:"total"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &view); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if view.DebateID != debateID.Hex() {
		t.Errorf("debateId = %q, want %q", view.DebateID, debateID.Hex())
	}
	if view.Winner != "alice" {
		t.Errorf("winner = %q, want alice", view.Winner)
	}
	if view.Source != SourceHeuristic {
		t.Errorf("analysisSource = %q, want %q", view.Source, SourceHeuristic)
	}

	// The legacy flattened totals must mirror the canonical mapping.
	if view.Totals["alice"] != 82.5 || view.Totals["bob"] != 67.0 {
		t.Errorf("legacy totals = %v, want alice 82.5 / bob 67.0", view.Totals)
	}
	if view.Results["alice"].Total != view.Totals["alice"] {
		t.Error("legacy totals diverge from canonical results")
	}
}

func TestRatingLadder(t *testing.T) {
	cases := map[float64]string{
		95: "Excellent",
		85: "Excellent",
		84: "Good",
		70: "Good",
		69: "Fair",
		50: "Fair",
		49: "Poor",
		0:  "Poor",
	}
	for value, want := range cases {
		if got := RatingFor(value); got != want {
			t.Errorf("RatingFor(%.0f) = %q, want %q", value, got, want)
		}
	}
}

func TestDistinctRequestersIsOrderIndependentSet(t *testing.T) {
	debate := &Debate{
		FinalizationRequests: []FinalizationRequest{
			{UserID: "u1"},
			{UserID: "u2"},
			{UserID: "u1"},
		},
	}
	if got := debate.DistinctRequesters(); got != 2 {
		t.Errorf("DistinctRequesters = %d, want 2", got)
	}
}
