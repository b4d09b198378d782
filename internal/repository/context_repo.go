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

// SessionContextRepo stores the per-session navigation aggregate.
// Save upserts the whole document; within a session calls are serialized by
// the caller, so there is no partial-update contention to manage.
type SessionContextRepo interface {
	GetBySessionID(ctx context.Context, sessionID string) (*model.SessionContext, error)
	Save(ctx context.Context, sc *model.SessionContext) error
}

type sessionContextRepo struct {
	collection *mongo.Collection
}

func NewSessionContextRepo(db *mongo.Database) SessionContextRepo {
	return &sessionContextRepo{
		collection: db.Collection("session_context"),
	}
}

func (r *sessionContextRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.SessionContext, error) {
	var sc model.SessionContext
	err := r.collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&sc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *sessionContextRepo) Save(ctx context.Context, sc *model.SessionContext) error {
	sc.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": sc.ID}, sc, opts)
	return err
}
