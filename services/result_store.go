package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"debatearena/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResultStore persists canonical analysis results, one per debate.
// Save is an idempotent last-writer-wins upsert. Load read-repairs: a
// missing stored record is reconstructed from the result embedded in an
// already-finalized debate and opportunistically written back, so the
// two storage locations converge without a cross-document transaction.
type ResultStore struct {
	results ResultRepository
	debates DebateRepository
}

// NewResultStore wires the store over its two backing repositories.
func NewResultStore(results ResultRepository, debates DebateRepository) *ResultStore {
	return &ResultStore{results: results, debates: debates}
}

// Save upserts the result keyed by debate id. Repeated saves overwrite.
func (s *ResultStore) Save(ctx context.Context, debateID primitive.ObjectID, topic string, result *models.AnalysisResult) error {
	stored := models.NewStoredResult(debateID, topic, result)
	if err := s.results.Upsert(ctx, stored); err != nil {
		return fmt.Errorf("failed to save result for debate %s: %w", debateID.Hex(), err)
	}
	return nil
}

// Load returns the stored result for a debate, reconstructing it from
// the debate's embedded copy when the store record is missing.
func (s *ResultStore) Load(ctx context.Context, debateID primitive.ObjectID) (*models.StoredResult, error) {
	stored, err := s.results.FindByDebateID(ctx, debateID)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, models.ErrResultNotFound) {
		return nil, fmt.Errorf("failed to load result for debate %s: %w", debateID.Hex(), err)
	}

	debate, err := s.debates.FindByID(ctx, debateID)
	if err != nil {
		return nil, models.ErrResultNotFound
	}
	if debate.Result == nil {
		return nil, models.ErrResultNotFound
	}

	repaired := models.NewStoredResult(debateID, debate.Topic, debate.Result)
	if err := s.results.Upsert(ctx, repaired); err != nil {
		// The embedded copy still answers this read; repair again later.
		log.Printf("read-repair write-back failed for debate %s: %v", debateID.Hex(), err)
	}
	return repaired, nil
}
