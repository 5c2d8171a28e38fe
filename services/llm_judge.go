package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"debatearena/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel = "gemini-1.5-flash"

	// DefaultLLMTimeout bounds a single generative call; the model can be
	// slow, so this is much looser than the ML tier's bound.
	DefaultLLMTimeout = 20 * time.Second
)

// LLMJudge scores a debate with a generative model asked for structured
// JSON output. Malformed or non-JSON output is classified as
// invalid-response; API failures as unavailable.
type LLMJudge struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewLLMJudge creates the Gemini-backed tier. Returns an error when no
// API key is configured so the pipeline can be built without this tier.
func NewLLMJudge(apiKey, model string, timeout time.Duration) (*LLMJudge, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	return &LLMJudge{client: client, model: model, timeout: timeout}, nil
}

func (j *LLMJudge) Name() string { return models.SourceLLM }

// llmParticipantResult is the JSON shape requested from the model.
type llmParticipantResult struct {
	Scores     map[string]models.MetricScore `json:"scores"`
	Total      float64                       `json:"total"`
	Strengths  []string                      `json:"strengths"`
	Weaknesses []string                      `json:"weaknesses"`
	Feedback   []string                      `json:"feedback"`
}

type llmResponse struct {
	Results map[string]llmParticipantResult `json:"results"`
	Winner  string                          `json:"winner"`
}

func (j *LLMJudge) Analyze(ctx context.Context, topic string, arguments []ParticipantArgument) (*models.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	model := j.client.GenerativeModel(j.model)
	resp, err := model.GenerateContent(ctx, genai.Text(j.buildPrompt(topic, arguments)))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("gemini: %w", ErrTierTimeout)
		}
		return nil, fmt.Errorf("gemini request failed: %v: %w", err, ErrTierUnavailable)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates: %w", ErrTierInvalidResponse)
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		text, ok := part.(genai.Text)
		if !ok {
			continue
		}

		var parsed llmResponse
		if err := json.Unmarshal([]byte(cleanModelOutput(string(text))), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse gemini output: %v: %w", err, ErrTierInvalidResponse)
		}
		if len(parsed.Results) == 0 {
			return nil, fmt.Errorf("gemini output contained no results: %w", ErrTierInvalidResponse)
		}

		results := make(map[string]models.ParticipantResult, len(parsed.Results))
		for username, pr := range parsed.Results {
			results[username] = models.ParticipantResult{
				Scores: pr.Scores,
				Total:  pr.Total,
				Analysis: models.Analysis{
					Strengths:  pr.Strengths,
					Weaknesses: pr.Weaknesses,
					Feedback:   pr.Feedback,
				},
			}
		}
		return &models.AnalysisResult{
			Results:     results,
			Winner:      parsed.Winner,
			Source:      models.SourceLLM,
			FinalizedAt: time.Now(),
		}, nil
	}

	return nil, fmt.Errorf("gemini returned no text parts: %w", ErrTierInvalidResponse)
}

func (j *LLMJudge) buildPrompt(topic string, arguments []ParticipantArgument) string {
	var transcript strings.Builder
	for _, arg := range arguments {
		transcript.WriteString(fmt.Sprintf("%s: %s\n", arg.Username, arg.Text))
	}

	return fmt.Sprintf(
		`Act as an expert debate judge. Below is a transcript of a debate on the topic "%s".
Score each participant from 0 to 100 on coherence, evidence, logic and persuasiveness,
give each metric a rating of Excellent, Good, Fair or Poor, compute a total score,
and list strengths, weaknesses and feedback for each participant.

Transcript:
%s

Required output format (JSON only, no commentary):
{
  "results": {
    "<username>": {
      "scores": {
        "coherence": {"score": X, "rating": "text"},
        "evidence": {"score": X, "rating": "text"},
        "logic": {"score": X, "rating": "text"},
        "persuasiveness": {"score": X, "rating": "text"}
      },
      "total": X,
      "strengths": ["text"],
      "weaknesses": ["text"],
      "feedback": ["text"]
    }
  },
  "winner": "<username>"
}`,
		topic,
		transcript.String(),
	)
}

// cleanModelOutput strips markdown code fences the model tends to wrap
// JSON output in.
func cleanModelOutput(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
