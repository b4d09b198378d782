package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

type ResumeRepo interface {
	Create(ctx context.Context, resume *model.Resume) error
	GetByCandidateID(ctx context.Context, candidateID string) (*model.Resume, error)
}

type resumeRepo struct {
	collection *mongo.Collection
}

func NewResumeRepo(db *mongo.Database) ResumeRepo {
	return &resumeRepo{
		collection: db.Collection("resumes"),
	}
}

func (r *resumeRepo) Create(ctx context.Context, resume *model.Resume) error {
	_, err := r.collection.InsertOne(ctx, resume)
	return err
}

func (r *resumeRepo) GetByCandidateID(ctx context.Context, candidateID string) (*model.Resume, error) {
	var resume model.Resume
	err := r.collection.FindOne(ctx, bson.M{"candidate_id": candidateID}).Decode(&resume)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resume, nil
}
