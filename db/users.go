package db

import (
	"context"
	"fmt"

	"debatearena/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepo is the Mongo-backed user repository. It implements
// services.UserRepository for post-debate bookkeeping and backs the
// profile and auth handlers.
type UserRepo struct {
	collection *mongo.Collection
}

// Users returns a repository over the users collection.
func Users() *UserRepo {
	return &UserRepo{collection: GetCollection("users")}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	inserted, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = inserted.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// RecordDebateOutcome appends a history entry bounded to the retention
// window, bumps the outcome counter, then recomputes the running
// average over the retained entries.
func (r *UserRepo) RecordDebateOutcome(ctx context.Context, userID string, entry models.DebateHistoryEntry) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	counter := map[string]string{
		models.OutcomeWon:  "wins",
		models.OutcomeLost: "losses",
		models.OutcomeDraw: "draws",
	}[entry.Outcome]

	update := bson.M{
		"$push": bson.M{"debateHistory": bson.M{
			"$each":  []models.DebateHistoryEntry{entry},
			"$slice": -models.HistoryWindow,
		}},
		"$inc": bson.M{counter: 1},
	}
	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to record debate outcome: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrUserNotFound
	}

	return r.recomputeAverageScore(ctx, id)
}

func (r *UserRepo) recomputeAverageScore(ctx context.Context, id primitive.ObjectID) error {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if len(user.DebateHistory) == 0 {
		return nil
	}

	sum := 0.0
	for _, h := range user.DebateHistory {
		sum += h.Total
	}
	average := sum / float64(len(user.DebateHistory))

	_, err = r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"averageScore": average}})
	if err != nil {
		return fmt.Errorf("failed to update average score: %w", err)
	}
	return nil
}

// Leaderboard returns the top users by average score.
func (r *UserRepo) Leaderboard(ctx context.Context, limit int64) ([]models.User, error) {
	opts := options.Find().SetSort(bson.M{"averageScore": -1}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	return users, nil
}
