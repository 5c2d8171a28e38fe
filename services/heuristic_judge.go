package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"debatearena/models"
)

// Thresholds for turning sub-metric scores into qualitative analysis.
const (
	strengthThreshold = 70
	weaknessThreshold = 60
)

// HeuristicJudge is the local scoring tier. It groups arguments by
// participant, concatenates each participant's text and applies the
// score engine's lexical sub-metrics. It never fails.
type HeuristicJudge struct{}

func (HeuristicJudge) Name() string { return models.SourceHeuristic }

func (HeuristicJudge) Analyze(_ context.Context, topic string, arguments []ParticipantArgument) (*models.AnalysisResult, error) {
	grouped := make(map[string][]string)
	order := make([]string, 0)
	for _, arg := range arguments {
		if _, ok := grouped[arg.Username]; !ok {
			order = append(order, arg.Username)
		}
		grouped[arg.Username] = append(grouped[arg.Username], arg.Text)
	}

	results := make(map[string]models.ParticipantResult, len(order))
	for _, username := range order {
		combined := strings.Join(grouped[username], " ")
		score := ScoreArgument(combined, topic)
		results[username] = models.ParticipantResult{
			Scores:   score.Metrics(),
			Total:    score.Total,
			Analysis: analyzeScores(score),
		}
	}

	return &models.AnalysisResult{
		Results:     results,
		Source:      models.SourceHeuristic,
		FinalizedAt: time.Now(),
	}, nil
}

// analyzeScores templates strengths and weaknesses from threshold
// crossings: >=70 is a strength, <60 a weakness.
func analyzeScores(score models.Score) models.Analysis {
	descriptions := map[string]string{
		"coherence":      "linking ideas into a clear line of reasoning",
		"evidence":       "backing claims with data and sources",
		"logic":          "reasoning through conditions and counterpoints",
		"persuasiveness": "making a compelling case on the topic",
	}

	analysis := models.Analysis{}
	for _, name := range []string{"coherence", "evidence", "logic", "persuasiveness"} {
		metric := score.Metrics()[name]
		switch {
		case metric.Score >= strengthThreshold:
			analysis.Strengths = append(analysis.Strengths, fmt.Sprintf("Strong %s: %s.", name, descriptions[name]))
		case metric.Score < weaknessThreshold:
			analysis.Weaknesses = append(analysis.Weaknesses, fmt.Sprintf("Weak %s: work on %s.", name, descriptions[name]))
		}
	}

	if len(analysis.Weaknesses) == 0 {
		analysis.Feedback = append(analysis.Feedback, "Well-rounded performance across all metrics.")
	} else {
		analysis.Feedback = append(analysis.Feedback, "Focus on the weaker metrics above to improve your overall score.")
	}
	return analysis
}
