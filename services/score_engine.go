package services

import (
	"math"
	"regexp"
	"strings"

	"debatearena/models"
)

// ScoreEngine turns argument text into four lexical sub-metric scores
// and a weighted total. It is fully deterministic, does no I/O, and
// never returns an error: any internal failure falls back to a formula
// derived from raw text statistics.

var (
	connectiveWords = []string{
		"however", "therefore", "furthermore", "moreover", "consequently",
		"nevertheless", "additionally", "thus", "hence", "because",
		"since", "whereas", "meanwhile", "similarly", "instead",
	}
	evidenceWords = []string{
		"study", "studies", "research", "data", "evidence", "statistics",
		"survey", "report", "according", "source", "experiment", "found",
	}
	logicWords = []string{
		"if", "unless", "although", "granted", "assuming", "provided",
		"suppose", "then", "implies", "either", "despite", "admittedly",
	}
	persuasionWords = []string{
		"must", "should", "need", "consider", "imagine", "clearly",
		"certainly", "undoubtedly", "crucial", "essential", "vital",
		"imperative", "absolutely",
	}

	numberPattern   = regexp.MustCompile(`\d+(\.\d+)?%?`)
	citationPattern = regexp.MustCompile(`\([A-Z][a-z]+,?\s*\d{4}\)|\[\d+\]`)
	wordPattern     = regexp.MustCompile(`[a-zA-Z']+`)
)

// ScoreArgument computes the four sub-metric scores for a single
// argument. The topic is used only for the persuasiveness term overlap.
func ScoreArgument(text, topic string) (score models.Score) {
	defer func() {
		if r := recover(); r != nil {
			score = fallbackScore(text)
		}
	}()

	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return fallbackScore(text)
	}

	coherence := clamp(scoreCoherence(words), 25, 95)
	evidence := clamp(scoreEvidence(text, words), 20, 90)
	logic := clamp(scoreLogic(words), 25, 95)
	persuasion := clamp(scorePersuasiveness(words, topic), 30, 95)

	total := math.Round((coherence + evidence + logic + persuasion) / 4)

	return models.Score{
		Coherence:      models.MetricScore{Score: coherence, Rating: models.RatingFor(coherence)},
		Evidence:       models.MetricScore{Score: evidence, Rating: models.RatingFor(evidence)},
		Logic:          models.MetricScore{Score: logic, Rating: models.RatingFor(logic)},
		Persuasiveness: models.MetricScore{Score: persuasion, Rating: models.RatingFor(persuasion)},
		Total:          total,
	}
}

// scoreCoherence rewards connective-word density: arguments that link
// their clauses read as more coherent.
func scoreCoherence(words []string) float64 {
	hits := countHits(words, connectiveWords)
	density := float64(hits) / float64(len(words))
	return 40 + density*600
}

// scoreEvidence rewards citation patterns, numbers and evidence
// vocabulary.
func scoreEvidence(text string, words []string) float64 {
	hits := countHits(words, evidenceWords)
	hits += len(numberPattern.FindAllString(text, -1))
	hits += 2 * len(citationPattern.FindAllString(text, -1))
	return 30 + float64(hits)*9
}

// scoreLogic rewards conditional and concessive markers.
func scoreLogic(words []string) float64 {
	hits := countHits(words, logicWords)
	return 38 + float64(hits)*9
}

// scorePersuasiveness rewards imperatives and intensifiers plus overlap
// with the debate topic's own terms.
func scorePersuasiveness(words []string, topic string) float64 {
	hits := countHits(words, persuasionWords)

	topicTerms := make(map[string]struct{})
	for _, t := range wordPattern.FindAllString(strings.ToLower(topic), -1) {
		if len(t) > 3 {
			topicTerms[t] = struct{}{}
		}
	}
	overlap := 0
	for _, w := range words {
		if _, ok := topicTerms[w]; ok {
			overlap++
		}
	}

	return 35 + float64(hits)*7 + float64(overlap)*3
}

// fallbackScore derives a deterministic score purely from word count,
// character count and average word length when the lexical path cannot
// run. All four metrics share the same value, clamped to [20,100].
func fallbackScore(text string) models.Score {
	trimmed := strings.TrimSpace(text)
	words := strings.Fields(trimmed)
	wordCount := float64(len(words))
	charCount := float64(len(trimmed))

	avgWordLen := 0.0
	if wordCount > 0 {
		avgWordLen = charCount / wordCount
	}

	value := clamp(20+wordCount/2+avgWordLen*4, 20, 100)
	metric := models.MetricScore{Score: value, Rating: models.RatingFor(value)}
	return models.Score{
		Coherence:      metric,
		Evidence:       metric,
		Logic:          metric,
		Persuasiveness: metric,
		Total:          value,
	}
}

func countHits(words []string, vocabulary []string) int {
	vocab := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		vocab[v] = struct{}{}
	}
	hits := 0
	for _, w := range words {
		if _, ok := vocab[w]; ok {
			hits++
		}
	}
	return hits
}

func clamp(value, floor, ceiling float64) float64 {
	if value < floor {
		return floor
	}
	if value > ceiling {
		return ceiling
	}
	return math.Round(value*10) / 10
}
