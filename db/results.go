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

// ResultRepo persists stored results in the debate_results collection,
// one document per debate. It implements services.ResultRepository.
type ResultRepo struct {
	collection *mongo.Collection
}

// Results returns a repository over the debate_results collection.
func Results() *ResultRepo {
	return &ResultRepo{collection: GetCollection("debate_results")}
}

// Upsert replaces the stored result for the debate, inserting when
// missing. Last writer wins; there is no versioning.
func (r *ResultRepo) Upsert(ctx context.Context, result *models.StoredResult) error {
	filter := bson.M{"debateId": result.DebateID}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, filter, result, opts); err != nil {
		return fmt.Errorf("failed to upsert stored result: %w", err)
	}
	return nil
}

func (r *ResultRepo) FindByDebateID(ctx context.Context, debateID primitive.ObjectID) (*models.StoredResult, error) {
	var stored models.StoredResult
	err := r.collection.FindOne(ctx, bson.M{"debateId": debateID}).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find stored result: %w", err)
	}
	return &stored, nil
}
