package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

// ScenarioRepo reads interview scenario graphs. The graph is immutable input
// to the navigation engine; this repo exposes no mutation beyond seeding.
type ScenarioRepo interface {
	GetActiveByVacancy(ctx context.Context, vacancyID string) (*model.InterviewScenario, error)
	GetNode(ctx context.Context, nodeID string) (*model.ScenarioNode, error)
	GetStartNode(ctx context.Context, scenarioID string) (*model.ScenarioNode, error)
	GetOutgoingTransitions(ctx context.Context, nodeID string) ([]*model.ScenarioTransition, error)
	ValidateGraph(ctx context.Context, scenarioID string) error
	CreateScenario(ctx context.Context, scenario *model.InterviewScenario) error
	CreateNodes(ctx context.Context, nodes []*model.ScenarioNode) error
	CreateTransitions(ctx context.Context, transitions []*model.ScenarioTransition) error
}

type scenarioRepo struct {
	scenarios   *mongo.Collection
	nodes       *mongo.Collection
	transitions *mongo.Collection
}

func NewScenarioRepo(db *mongo.Database) ScenarioRepo {
	return &scenarioRepo{
		scenarios:   db.Collection("interview_scenarios"),
		nodes:       db.Collection("scenario_nodes"),
		transitions: db.Collection("scenario_transitions"),
	}
}

func (r *scenarioRepo) GetActiveByVacancy(ctx context.Context, vacancyID string) (*model.InterviewScenario, error) {
	var scenario model.InterviewScenario
	err := r.scenarios.FindOne(ctx, bson.M{
		"vacancy_id": vacancyID,
		"is_active":  true,
	}).Decode(&scenario)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (r *scenarioRepo) GetNode(ctx context.Context, nodeID string) (*model.ScenarioNode, error) {
	var node model.ScenarioNode
	err := r.nodes.FindOne(ctx, bson.M{"_id": nodeID}).Decode(&node)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *scenarioRepo) GetStartNode(ctx context.Context, scenarioID string) (*model.ScenarioNode, error) {
	var node model.ScenarioNode
	err := r.nodes.FindOne(ctx, bson.M{
		"scenario_id": scenarioID,
		"node_type":   model.NodeStart,
	}).Decode(&node)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// GetOutgoingTransitions returns edges ordered by ascending priority, with
// declaration order (creation time) breaking ties.
func (r *scenarioRepo) GetOutgoingTransitions(ctx context.Context, nodeID string) ([]*model.ScenarioTransition, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: 1},
		{Key: "created_at", Value: 1},
	})
	cursor, err := r.transitions.Find(ctx, bson.M{"from_node_id": nodeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var transitions []*model.ScenarioTransition
	if err := cursor.All(ctx, &transitions); err != nil {
		return nil, err
	}
	return transitions, nil
}

// ValidateGraph checks every transition's condition payload against its
// declared type so malformed graphs fail at load, not mid-interview.
func (r *scenarioRepo) ValidateGraph(ctx context.Context, scenarioID string) error {
	cursor, err := r.transitions.Find(ctx, bson.M{"scenario_id": scenarioID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var transitions []*model.ScenarioTransition
	if err := cursor.All(ctx, &transitions); err != nil {
		return err
	}
	for _, t := range transitions {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("scenario %s: %w", scenarioID, err)
		}
	}
	return nil
}

func (r *scenarioRepo) CreateScenario(ctx context.Context, scenario *model.InterviewScenario) error {
	_, err := r.scenarios.InsertOne(ctx, scenario)
	return err
}

func (r *scenarioRepo) CreateNodes(ctx context.Context, nodes []*model.ScenarioNode) error {
	if len(nodes) == 0 {
		return nil
	}
	docs := make([]interface{}, len(nodes))
	for i, n := range nodes {
		docs[i] = n
	}
	_, err := r.nodes.InsertMany(ctx, docs)
	return err
}

func (r *scenarioRepo) CreateTransitions(ctx context.Context, transitions []*model.ScenarioTransition) error {
	if len(transitions) == 0 {
		return nil
	}
	docs := make([]interface{}, len(transitions))
	for i, t := range transitions {
		docs[i] = t
	}
	_, err := r.transitions.InsertMany(ctx, docs)
	return err
}
