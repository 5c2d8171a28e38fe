package db

import (
	"context"
	"fmt"
	"time"

	"debatearena/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DebateRepo is the Mongo-backed debate repository. It implements
// services.DebateRepository; the finalization admission gate relies on
// single-document atomicity of the conditional updates below.
type DebateRepo struct {
	collection *mongo.Collection
}

// Debates returns a repository over the debates collection.
func Debates() *DebateRepo {
	return &DebateRepo{collection: GetCollection("debates")}
}

// Create inserts a new debate in the waiting state with its creator as
// the first participant.
func (r *DebateRepo) Create(ctx context.Context, topic string, maxParticipants int, creator models.Participant) (*models.Debate, error) {
	if maxParticipants <= 0 {
		maxParticipants = models.DefaultMaxParticipants
	}

	now := time.Now()
	debate := &models.Debate{
		Topic:                topic,
		Status:               models.StatusWaiting,
		MaxParticipants:      maxParticipants,
		Participants:         []models.Participant{creator},
		Arguments:            []models.Argument{},
		FinalizationRequests: []models.FinalizationRequest{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if maxParticipants == 1 {
		debate.Status = models.StatusActive
	}

	inserted, err := r.collection.InsertOne(ctx, debate)
	if err != nil {
		return nil, fmt.Errorf("failed to create debate: %w", err)
	}
	debate.ID = inserted.InsertedID.(primitive.ObjectID)
	return debate, nil
}

// Join appends a participant while capacity remains. The filter keeps
// the participant list append-only and bounded in a single update; the
// debate flips to active once full.
func (r *DebateRepo) Join(ctx context.Context, id primitive.ObjectID, participant models.Participant) (*models.Debate, error) {
	filter := bson.M{
		"_id":                 id,
		"status":              bson.M{"$ne": models.StatusCompleted},
		"participants.userId": bson.M{"$ne": participant.UserID},
		"$expr":               bson.M{"$lt": bson.A{bson.M{"$size": "$participants"}, "$maxParticipants"}},
	}
	update := bson.M{
		"$push": bson.M{"participants": participant},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var debate models.Debate
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&debate)
	if err == mongo.ErrNoDocuments {
		return nil, r.classifyJoinFailure(ctx, id, participant.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to join debate: %w", err)
	}

	if debate.IsFull() && debate.Status == models.StatusWaiting {
		_, err = r.collection.UpdateOne(ctx,
			bson.M{"_id": id, "status": models.StatusWaiting},
			bson.M{"$set": bson.M{"status": models.StatusActive, "updatedAt": time.Now()}})
		if err != nil {
			return nil, fmt.Errorf("failed to activate debate: %w", err)
		}
		debate.Status = models.StatusActive
	}
	return &debate, nil
}

// classifyJoinFailure distinguishes why the conditional join matched
// nothing. A rejoin by an existing participant is treated as success.
func (r *DebateRepo) classifyJoinFailure(ctx context.Context, id primitive.ObjectID, userID string) error {
	debate, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if debate.HasParticipant(userID) {
		return nil
	}
	if debate.Status == models.StatusCompleted {
		return models.ErrDebateCompleted
	}
	return models.ErrDebateFull
}

func (r *DebateRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Debate, error) {
	var debate models.Debate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&debate)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrDebateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find debate: %w", err)
	}
	return &debate, nil
}

// List returns the most recently updated debates.
func (r *DebateRepo) List(ctx context.Context, limit int64) ([]models.Debate, error) {
	opts := options.Find().SetSort(bson.M{"updatedAt": -1}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list debates: %w", err)
	}
	defer cursor.Close(ctx)

	var debates []models.Debate
	if err := cursor.All(ctx, &debates); err != nil {
		return nil, fmt.Errorf("failed to decode debates: %w", err)
	}
	return debates, nil
}

// AppendArgument adds an argument unless the debate already completed.
func (r *DebateRepo) AppendArgument(ctx context.Context, id primitive.ObjectID, argument models.Argument) error {
	filter := bson.M{"_id": id, "status": bson.M{"$ne": models.StatusCompleted}}
	update := bson.M{
		"$push": bson.M{"arguments": argument},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to append argument: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}

// AddFinalizationRequest appends a request only when this user has none
// pending; the duplicate check and append are one atomic update.
func (r *DebateRepo) AddFinalizationRequest(ctx context.Context, id primitive.ObjectID, request models.FinalizationRequest) error {
	filter := bson.M{
		"_id":                         id,
		"status":                      bson.M{"$ne": models.StatusCompleted},
		"finalizationRequests.userId": bson.M{"$ne": request.UserID},
	}
	update := bson.M{
		"$push": bson.M{"finalizationRequests": request},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add finalization request: %w", err)
	}
	if result.MatchedCount == 0 {
		debate, findErr := r.FindByID(ctx, id)
		if findErr != nil {
			return findErr
		}
		if debate.Status == models.StatusCompleted {
			return models.ErrDebateCompleted
		}
		return models.ErrDuplicateRequest
	}
	return nil
}

// ClearFinalizationRequests atomically empties the pending approval set.
func (r *DebateRepo) ClearFinalizationRequests(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"finalizationRequests": []models.FinalizationRequest{}, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to clear finalization requests: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrDebateNotFound
	}
	return nil
}

// BeginFinalization flips status to completed only while it is not
// completed yet, in one conditional update. The returned pre-image is
// the debate exactly as admitted; a caller that loses the race gets
// models.ErrDebateCompleted.
func (r *DebateRepo) BeginFinalization(ctx context.Context, id primitive.ObjectID) (*models.Debate, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$ne": models.StatusCompleted}}
	update := bson.M{"$set": bson.M{"status": models.StatusCompleted, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var debate models.Debate
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&debate)
	if err == mongo.ErrNoDocuments {
		return nil, r.classifyMiss(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to begin finalization: %w", err)
	}
	return &debate, nil
}

// EmbedResult writes the denormalized result copy into the debate.
func (r *DebateRepo) EmbedResult(ctx context.Context, id primitive.ObjectID, result *models.AnalysisResult) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"result": result, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to embed result: %w", err)
	}
	return nil
}

func (r *DebateRepo) classifyMiss(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return models.ErrDebateCompleted
}
