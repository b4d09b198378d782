package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

// ContextualQuestionRepo stores generated follow-up questions. Rows are
// created in batches and individually flipped to used as they are served.
type ContextualQuestionRepo interface {
	CreateBatch(ctx context.Context, questions []*model.ContextualQuestion) error
	GetByID(ctx context.Context, id string) (*model.ContextualQuestion, error)
	GetBySessionAndNode(ctx context.Context, sessionID, nodeID string) ([]*model.ContextualQuestion, error)
	GetNextUnused(ctx context.Context, sessionID, nodeID string) (*model.ContextualQuestion, error)
	// MarkUsed flips is_used false->true. Returns false without error when the
	// question is missing or already used; the flag never reverts.
	MarkUsed(ctx context.Context, questionID string) (bool, error)
}

type contextualQuestionRepo struct {
	collection *mongo.Collection
}

func NewContextualQuestionRepo(db *mongo.Database) ContextualQuestionRepo {
	return &contextualQuestionRepo{
		collection: db.Collection("contextual_questions"),
	}
}

func (r *contextualQuestionRepo) CreateBatch(ctx context.Context, questions []*model.ContextualQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(questions))
	for i, q := range questions {
		if q.GeneratedAt.IsZero() {
			q.GeneratedAt = now
		}
		docs[i] = q
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *contextualQuestionRepo) GetByID(ctx context.Context, id string) (*model.ContextualQuestion, error) {
	var q model.ContextualQuestion
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *contextualQuestionRepo) GetBySessionAndNode(ctx context.Context, sessionID, nodeID string) ([]*model.ContextualQuestion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "generated_at", Value: 1}, {Key: "sequence", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"session_id":       sessionID,
		"scenario_node_id": nodeID,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.ContextualQuestion
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *contextualQuestionRepo) GetNextUnused(ctx context.Context, sessionID, nodeID string) (*model.ContextualQuestion, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "generated_at", Value: 1}, {Key: "sequence", Value: 1}})
	var q model.ContextualQuestion
	err := r.collection.FindOne(ctx, bson.M{
		"session_id":       sessionID,
		"scenario_node_id": nodeID,
		"is_used":          false,
	}, opts).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *contextualQuestionRepo) MarkUsed(ctx context.Context, questionID string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": questionID, "is_used": false},
		bson.M{"$set": bson.M{"is_used": true, "used_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
