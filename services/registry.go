package services

import (
	"log"
	"time"

	"debatearena/config"
)

var (
	coordinator *FinalizationCoordinator
	resultStore *ResultStore
)

// InitDebateServices wires the analysis cascade and finalization
// machinery from configuration. Remote tiers are only added when their
// configuration is present; the local heuristic always runs, and the
// pipeline's built-in fallback covers total failure.
func InitDebateServices(cfg *config.Config, debates DebateRepository, results ResultRepository, users UserRepository, broadcaster Broadcaster) {
	tiers := make([]AnalysisTier, 0, 3)

	if cfg.MLService.URL != "" {
		tiers = append(tiers, NewMLClient(cfg.MLService.URL, time.Duration(cfg.MLService.TimeoutSeconds)*time.Second))
	} else {
		log.Println("ML service not configured, skipping ML analysis tier")
	}

	if llm, err := NewLLMJudge(cfg.Gemini.APIKey, cfg.Gemini.Model, time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second); err != nil {
		log.Printf("LLM analysis tier disabled: %v", err)
	} else {
		tiers = append(tiers, llm)
	}

	tiers = append(tiers, HeuristicJudge{})

	pipeline := NewAnalysisPipeline(tiers...)
	resultStore = NewResultStore(results, debates)
	coordinator = NewFinalizationCoordinator(debates, pipeline, resultStore, NewProfileUpdater(users), broadcaster)
}

// Coordinator returns the finalization coordinator singleton.
func Coordinator() *FinalizationCoordinator {
	return coordinator
}

// Store returns the result store singleton.
func Store() *ResultStore {
	return resultStore
}
