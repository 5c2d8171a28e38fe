package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"debatearena/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Argument content bounds, enforced on the trimmed text at creation.
const (
	MinArgumentLength = 10
	MaxArgumentLength = 2000
)

// MinArgumentsToFinalize is how many arguments a debate needs before it
// can be scored.
const MinArgumentsToFinalize = 2

// A requester that loses the admission race waits this long for the
// winner's result to be persisted.
const (
	raceLoserRetries   = 5
	raceLoserRetryWait = 200 * time.Millisecond
)

// FinalizationStatus reports the state of an approval round to the
// caller. Result is set once unanimity triggered the full finalize path.
type FinalizationStatus struct {
	Pending           bool                   `json:"pending"`
	TotalRequests     int                    `json:"totalRequests"`
	RequiredApprovals int                    `json:"requiredApprovals"`
	Result            *models.AnalysisResult `json:"result,omitempty"`
}

// FinalizationCoordinator governs how participants jointly end a debate.
// A single participant (or a forced call) finalizes directly; otherwise
// approvals are collected until unanimous. The repository's conditional
// status update is the sole admission gate, so concurrent finalize
// attempts resolve to exactly one pipeline run.
type FinalizationCoordinator struct {
	debates     DebateRepository
	pipeline    *AnalysisPipeline
	store       *ResultStore
	profiles    *ProfileUpdater
	broadcaster Broadcaster
}

// NewFinalizationCoordinator wires the coordinator over its
// collaborators. Pass a NopBroadcaster when no messaging layer exists.
func NewFinalizationCoordinator(debates DebateRepository, pipeline *AnalysisPipeline, store *ResultStore, profiles *ProfileUpdater, broadcaster Broadcaster) *FinalizationCoordinator {
	if broadcaster == nil {
		broadcaster = NopBroadcaster{}
	}
	return &FinalizationCoordinator{
		debates:     debates,
		pipeline:    pipeline,
		store:       store,
		profiles:    profiles,
		broadcaster: broadcaster,
	}
}

// SubmitArgument validates, scores and appends a new argument, then
// announces it to the debate room.
func (c *FinalizationCoordinator) SubmitArgument(ctx context.Context, debateID primitive.ObjectID, userID, content string) (*models.Argument, error) {
	content = strings.TrimSpace(content)
	if length := utf8.RuneCountInString(content); length < MinArgumentLength || length > MaxArgumentLength {
		return nil, models.NewValidationError(fmt.Sprintf("argument must be between %d and %d characters", MinArgumentLength, MaxArgumentLength))
	}

	debate, err := c.debates.FindByID(ctx, debateID)
	if err != nil {
		return nil, err
	}
	if debate.Status == models.StatusCompleted {
		return nil, models.ErrDebateCompleted
	}
	participant, ok := findParticipant(debate, userID)
	if !ok {
		return nil, models.ErrNotParticipant
	}

	argument := models.Argument{
		ID:          uuid.NewString(),
		UserID:      userID,
		DisplayName: participant.DisplayName,
		Content:     content,
		Score:       ScoreArgument(content, debate.Topic),
		CreatedAt:   time.Now(),
	}
	if err := c.debates.AppendArgument(ctx, debateID, argument); err != nil {
		return nil, err
	}

	c.broadcaster.BroadcastToDebate(debateID.Hex(), "argument-added", argument)
	return &argument, nil
}

// RequestFinalization records one participant's intent to end the
// debate. With a single participant it finalizes immediately; with
// several it collects approvals, firing the finalize path once every
// distinct participant has requested.
func (c *FinalizationCoordinator) RequestFinalization(ctx context.Context, debateID primitive.ObjectID, userID string) (*FinalizationStatus, error) {
	debate, err := c.debates.FindByID(ctx, debateID)
	if err != nil {
		return nil, err
	}
	if debate.Status == models.StatusCompleted {
		return nil, models.ErrDebateCompleted
	}
	participant, ok := findParticipant(debate, userID)
	if !ok {
		return nil, models.ErrNotParticipant
	}
	// Refuse to open an approval round that the finalize it triggers
	// would reject anyway.
	if len(debate.Arguments) < MinArgumentsToFinalize {
		return nil, models.ErrNotEnoughArguments
	}

	if len(debate.Participants) <= 1 {
		result, err := c.Finalize(ctx, debateID, userID, true)
		if err != nil {
			return nil, err
		}
		return &FinalizationStatus{TotalRequests: 1, RequiredApprovals: 1, Result: result}, nil
	}

	request := models.FinalizationRequest{
		UserID:      userID,
		DisplayName: participant.DisplayName,
		RequestedAt: time.Now(),
	}
	if err := c.debates.AddFinalizationRequest(ctx, debateID, request); err != nil {
		return nil, err
	}

	debate, err = c.debates.FindByID(ctx, debateID)
	if err != nil {
		return nil, err
	}
	required := len(debate.Participants)
	total := debate.DistinctRequesters()

	c.broadcaster.BroadcastToDebate(debateID.Hex(), "finalization-requested", map[string]interface{}{
		"requestedBy":       participant.DisplayName,
		"totalRequests":     total,
		"requiredApprovals": required,
	})

	if total < required {
		return &FinalizationStatus{Pending: true, TotalRequests: total, RequiredApprovals: required}, nil
	}

	result, err := c.Finalize(ctx, debateID, userID, true)
	if errors.Is(err, models.ErrDebateCompleted) {
		// A concurrent approver won the admission race; serve its
		// result, waiting out the window before it lands in the store.
		stored, loadErr := c.loadWithRetry(ctx, debateID)
		if loadErr != nil {
			return nil, err
		}
		result = stored.AnalysisResult()
	} else if err != nil {
		return nil, err
	}
	return &FinalizationStatus{TotalRequests: total, RequiredApprovals: required, Result: result}, nil
}

func (c *FinalizationCoordinator) loadWithRetry(ctx context.Context, debateID primitive.ObjectID) (*models.StoredResult, error) {
	var lastErr error
	for attempt := 0; attempt < raceLoserRetries; attempt++ {
		stored, err := c.store.Load(ctx, debateID)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, models.ErrResultNotFound) {
			return nil, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(raceLoserRetryWait):
		}
	}
	return nil, lastErr
}

// RejectFinalization cancels a pending approval round. The pending
// request set is cleared server-side atomically with the broadcast, so
// a later round starts from scratch.
func (c *FinalizationCoordinator) RejectFinalization(ctx context.Context, debateID primitive.ObjectID, userID string) error {
	debate, err := c.debates.FindByID(ctx, debateID)
	if err != nil {
		return err
	}
	if debate.Status == models.StatusCompleted {
		return models.ErrDebateCompleted
	}
	participant, ok := findParticipant(debate, userID)
	if !ok {
		return models.ErrNotParticipant
	}

	if err := c.debates.ClearFinalizationRequests(ctx, debateID); err != nil {
		return err
	}
	c.broadcaster.BroadcastToDebate(debateID.Hex(), "finalization-rejected", map[string]interface{}{
		"rejectedBy": participant.DisplayName,
	})
	return nil
}

// Finalize runs the full completion sequence once: admission gate,
// analysis cascade, result persistence, profile bookkeeping, broadcast.
// With multiple participants and no force flag it refuses until the
// pending approvals are unanimous.
func (c *FinalizationCoordinator) Finalize(ctx context.Context, debateID primitive.ObjectID, userID string, force bool) (*models.AnalysisResult, error) {
	debate, err := c.debates.FindByID(ctx, debateID)
	if err != nil {
		return nil, err
	}
	if debate.Status == models.StatusCompleted {
		return nil, models.ErrDebateCompleted
	}
	if userID != "" && !debate.HasParticipant(userID) {
		return nil, models.ErrNotParticipant
	}
	if len(debate.Arguments) < MinArgumentsToFinalize {
		return nil, models.ErrNotEnoughArguments
	}
	if len(debate.Participants) > 1 && !force && debate.DistinctRequesters() < len(debate.Participants) {
		return nil, models.ErrApprovalRequired
	}

	// Sole admission gate: at most one caller gets past this.
	admitted, err := c.debates.BeginFinalization(ctx, debateID)
	if err != nil {
		return nil, err
	}

	result := c.pipeline.Run(ctx, admitted)

	if err := c.store.Save(ctx, debateID, admitted.Topic, result); err != nil {
		// The embedded copy below is the durability fallback; a later
		// Load read-repairs the store.
		log.Printf("result store save failed for debate %s: %v", debateID.Hex(), err)
	}
	if err := c.debates.EmbedResult(ctx, debateID, result); err != nil {
		log.Printf("failed to embed result in debate %s: %v", debateID.Hex(), err)
	}

	c.profiles.Apply(ctx, debateID, admitted.Topic, admitted.Participants, result)

	c.broadcaster.BroadcastToDebate(debateID.Hex(), "debate-finalized", map[string]interface{}{
		"results":        result.Results,
		"analysisSource": result.Source,
		"winner":         result.Winner,
	})
	return result, nil
}

func findParticipant(debate *models.Debate, userID string) (models.Participant, bool) {
	for _, p := range debate.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return models.Participant{}, false
}
