package services

import (
	"context"

	"debatearena/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DebateRepository is the persistence contract the coordinator works
// against. The Mongo implementation lives in the db package; tests use
// in-memory fakes.
type DebateRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Debate, error)

	// AppendArgument adds an argument to a debate that is not completed.
	AppendArgument(ctx context.Context, id primitive.ObjectID, argument models.Argument) error

	// AddFinalizationRequest appends a request only when the user has no
	// pending request yet; returns models.ErrDuplicateRequest otherwise.
	AddFinalizationRequest(ctx context.Context, id primitive.ObjectID, request models.FinalizationRequest) error

	// ClearFinalizationRequests atomically empties the pending set.
	ClearFinalizationRequests(ctx context.Context, id primitive.ObjectID) error

	// BeginFinalization is the single admission gate into finalizing: a
	// conditional update that flips status to completed only while it is
	// not already completed, returning the debate as it was admitted.
	// Exactly one concurrent caller can win; losers get
	// models.ErrDebateCompleted.
	BeginFinalization(ctx context.Context, id primitive.ObjectID) (*models.Debate, error)

	// EmbedResult writes the denormalized result copy into the debate.
	EmbedResult(ctx context.Context, id primitive.ObjectID, result *models.AnalysisResult) error
}

// ResultRepository persists stored results keyed uniquely by debate id.
type ResultRepository interface {
	Upsert(ctx context.Context, result *models.StoredResult) error
	FindByDebateID(ctx context.Context, debateID primitive.ObjectID) (*models.StoredResult, error)
}

// UserRepository records post-debate outcomes into user profiles.
type UserRepository interface {
	// RecordDebateOutcome appends a bounded history entry, bumps the
	// outcome counter and recomputes the running average score.
	RecordDebateOutcome(ctx context.Context, userID string, entry models.DebateHistoryEntry) error
}

// Broadcaster pushes room-scoped events to every connection in a
// debate's room. The websocket package provides the real implementation.
type Broadcaster interface {
	BroadcastToDebate(debateID string, event string, payload interface{})
}

// NopBroadcaster discards events; used when no messaging layer is wired.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastToDebate(string, string, interface{}) {}
