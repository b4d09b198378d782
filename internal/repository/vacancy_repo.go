package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

type VacancyRepo interface {
	Create(ctx context.Context, vacancy *model.Vacancy) error
	GetByID(ctx context.Context, id string) (*model.Vacancy, error)
	SaveSkills(ctx context.Context, vacancyID string, skills []model.VacancySkill) error
}

type vacancyRepo struct {
	collection *mongo.Collection
}

func NewVacancyRepo(db *mongo.Database) VacancyRepo {
	return &vacancyRepo{
		collection: db.Collection("vacancies"),
	}
}

func (r *vacancyRepo) Create(ctx context.Context, vacancy *model.Vacancy) error {
	_, err := r.collection.InsertOne(ctx, vacancy)
	return err
}

func (r *vacancyRepo) GetByID(ctx context.Context, id string) (*model.Vacancy, error) {
	var vacancy model.Vacancy
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vacancy)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vacancy, nil
}

func (r *vacancyRepo) SaveSkills(ctx context.Context, vacancyID string, skills []model.VacancySkill) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": vacancyID},
		bson.M{"$set": bson.M{"skills": skills}},
	)
	return err
}
