package services

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleArgument = "However, research shows that 75% of students perform better with less homework. " +
	"Therefore, if schools reduced assignments, students would clearly benefit. " +
	"We must consider their wellbeing."

func TestScoreArgumentDeterministic(t *testing.T) {
	first := ScoreArgument(sampleArgument, "homework")
	second := ScoreArgument(sampleArgument, "homework")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("scores differ between identical calls (-first +second):\n%s", diff)
	}
}

func TestScoreArgumentRanges(t *testing.T) {
	score := ScoreArgument(sampleArgument, "homework")

	checks := map[string]struct {
		value          float64
		floor, ceiling float64
	}{
		"coherence":      {score.Coherence.Score, 25, 95},
		"evidence":       {score.Evidence.Score, 20, 90},
		"logic":          {score.Logic.Score, 25, 95},
		"persuasiveness": {score.Persuasiveness.Score, 30, 95},
	}
	for name, check := range checks {
		if check.value < check.floor || check.value > check.ceiling {
			t.Errorf("%s score %.1f outside [%.0f, %.0f]", name, check.value, check.floor, check.ceiling)
		}
	}
	if score.Total < 0 || score.Total > 100 {
		t.Errorf("total %.1f outside [0, 100]", score.Total)
	}
}

func TestScoreArgumentRewardsEvidence(t *testing.T) {
	plain := ScoreArgument("I simply think this is a bad idea and nobody should ever do it at all.", "")
	cited := ScoreArgument("According to a 2020 study, 85% of participants improved; the research data supports this (Smith, 2020).", "")

	if cited.Evidence.Score <= plain.Evidence.Score {
		t.Errorf("expected evidence-rich text to score higher: cited=%.1f plain=%.1f",
			cited.Evidence.Score, plain.Evidence.Score)
	}
}

func TestScoreArgumentEmptyTextFallback(t *testing.T) {
	score := ScoreArgument("", "topic")

	if score.Total < 20 || score.Total > 100 {
		t.Errorf("fallback total %.1f outside [20, 100]", score.Total)
	}
	if score.Coherence.Score != score.Evidence.Score || score.Logic.Score != score.Persuasiveness.Score {
		t.Errorf("fallback should assign a uniform value, got %+v", score)
	}
	if score.Coherence.Rating != "Poor" {
		t.Errorf("expected Poor rating for empty text, got %s", score.Coherence.Rating)
	}
}

func TestScoreArgumentLongTextFallbackClamp(t *testing.T) {
	// Force the fallback path's upper clamp with a huge word count.
	score := fallbackScore(strings.Repeat("reasonable argument text ", 500))
	if score.Total != 100 {
		t.Errorf("expected fallback clamp at 100, got %.1f", score.Total)
	}
}
