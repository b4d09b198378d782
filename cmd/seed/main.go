package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chudo9991/more.tech.2025-sub000/internal/config"
	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
	"github.com/chudo9991/more.tech.2025-sub000/internal/repository"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)

	vacancyRepo := repository.NewVacancyRepo(db)
	resumeRepo := repository.NewResumeRepo(db)
	questionRepo := repository.NewQuestionRepo(db)
	scenarioRepo := repository.NewScenarioRepo(db)

	vacancy := &model.Vacancy{
		ID:    uuid.NewString(),
		Title: "Backend Developer",
		Requirements: "Python, FastAPI, Docker, PostgreSQL, CI/CD pipelines, " +
			"experience with distributed systems",
		Skills: []model.VacancySkill{
			{SkillName: "Python", Category: model.CategoryProgramming, Importance: 1.0, RequiredLevel: model.LevelExpert, IsMandatory: true},
			{SkillName: "Docker", Category: model.CategoryDevOps, Importance: 0.8, RequiredLevel: model.LevelIntermediate, IsMandatory: true, Alternatives: []string{"Containers", "Kubernetes"}},
			{SkillName: "PostgreSQL", Category: model.CategoryDatabase, Importance: 0.7, RequiredLevel: model.LevelIntermediate, Alternatives: []string{"SQL"}},
			{SkillName: "FastAPI", Category: model.CategoryFrameworks, Importance: 0.6, RequiredLevel: model.LevelIntermediate},
		},
	}
	if err := vacancyRepo.Create(ctx, vacancy); err != nil {
		log.Fatalf("Failed to insert vacancy: %v", err)
	}

	resume := &model.Resume{
		ID:          uuid.NewString(),
		CandidateID: "candidate_demo",
		Skills: []model.ResumeSkill{
			{SkillName: "Python", ExperienceYears: 4},
			{SkillName: "Docker", ExperienceYears: 2},
			{SkillName: "PostgreSQL", ExperienceYears: 3},
		},
		Summary: "Backend developer with four years of Python services experience.",
	}
	if err := resumeRepo.Create(ctx, resume); err != nil {
		log.Fatalf("Failed to insert resume: %v", err)
	}

	questions := []*model.Question{
		{
			ID:   "q_python_intro",
			Text: "Tell me about your Python experience: what kind of services have you built?",
			Type: "open",
			Criteria: []model.QuestionCriterion{
				{Name: "Python", Weight: 1.0},
				{Name: "Programming", Weight: 0.5},
			},
		},
		{
			ID:   "q_python_deep",
			Text: "How do you structure a large Python codebase, and how do you manage dependencies?",
			Type: "open",
			Criteria: []model.QuestionCriterion{
				{Name: "Python", Weight: 1.0},
			},
		},
		{
			ID:   "q_docker",
			Text: "Describe how you have used Docker in development and deployment.",
			Type: "open",
			Criteria: []model.QuestionCriterion{
				{Name: "Docker", Weight: 1.0},
			},
		},
		{
			ID:   "q_sql",
			Text: "What was the most complex PostgreSQL query or schema problem you have solved?",
			Type: "open",
			Criteria: []model.QuestionCriterion{
				{Name: "PostgreSQL", Weight: 1.0},
			},
		},
	}
	for _, q := range questions {
		if err := questionRepo.Create(ctx, q); err != nil {
			log.Fatalf("Failed to insert question %s: %v", q.ID, err)
		}
	}

	scenario := &model.InterviewScenario{
		ID:        uuid.NewString(),
		VacancyID: vacancy.ID,
		Name:      "Backend Developer Screening",
		IsActive:  true,
	}
	if err := scenarioRepo.CreateScenario(ctx, scenario); err != nil {
		log.Fatalf("Failed to insert scenario: %v", err)
	}

	nodes := []*model.ScenarioNode{
		{ID: "n_start", ScenarioID: scenario.ID, NodeType: model.NodeStart, Config: model.NodeConfig{Label: "Start"}},
		{ID: "n_python", ScenarioID: scenario.ID, NodeType: model.NodeQuestion, QuestionID: "q_python_intro", Config: model.NodeConfig{Label: "Python Experience", Weight: 1.0, MustHave: true, TargetSkills: []string{"Python"}}},
		{ID: "n_python_deep", ScenarioID: scenario.ID, NodeType: model.NodeQuestion, QuestionID: "q_python_deep", Config: model.NodeConfig{Label: "Python Architecture", Weight: 1.0, TargetSkills: []string{"Python"}}},
		{ID: "n_docker", ScenarioID: scenario.ID, NodeType: model.NodeQuestion, QuestionID: "q_docker", Config: model.NodeConfig{Label: "Docker Practice", Weight: 0.8, TargetSkills: []string{"Docker"}}},
		{ID: "n_docker_skip", ScenarioID: scenario.ID, NodeType: model.NodeSkip, Config: model.NodeConfig{Label: "Skip past Docker"}},
		{ID: "n_sql", ScenarioID: scenario.ID, NodeType: model.NodeQuestion, QuestionID: "q_sql", Config: model.NodeConfig{Label: "PostgreSQL Depth", Weight: 0.7, TargetSkills: []string{"PostgreSQL"}}},
		{ID: "n_end", ScenarioID: scenario.ID, NodeType: model.NodeEnd, Config: model.NodeConfig{Label: "End"}},
	}
	if err := scenarioRepo.CreateNodes(ctx, nodes); err != nil {
		log.Fatalf("Failed to insert nodes: %v", err)
	}

	transitions := []*model.ScenarioTransition{
		{
			ID: uuid.NewString(), ScenarioID: scenario.ID,
			FromNodeID: "n_start", ToNodeID: "n_python",
			ConditionType: model.ConditionAlways, Priority: 1, Label: "begin",
		},
		{
			ID: uuid.NewString(), ScenarioID: scenario.ID,
			FromNodeID: "n_python", ToNodeID: "n_python_deep",
			ConditionType: model.ConditionScoreThreshold,
			Condition: model.TransitionCondition{
				ScoreThreshold: &model.ScoreThresholdCondition{Criterion: "Python", MinScore: f(0.7)},
			},
			Priority: 1, Label: "strong python answer",
		},
		{
			ID: uuid.NewString(), ScenarioID: scenario.ID,
			FromNodeID: "n_python", ToNodeID: "n_docker",
			ConditionType: model.ConditionNegativeResponse,
			Condition: model.TransitionCondition{
				NegativeResponse: &model.NegativeResponseCondition{Patterns: []string{"don't know", "never worked"}},
			},
			Priority: 2, Label: "python denied, move on",
		},
		{
			ID: uuid.NewString(), ScenarioID: scenario.ID,
			FromNodeID: "n_python", ToNodeID: "n_docker",
			ConditionType: model.ConditionAlways, Priority: 3, Label: "default",
		},
		{
			ID: uuid.NewString(), ScenarioID: scenario.ID,
			FromNodeID: "n_python_deep", ToNodeID: "n_docker",
			ConditionType: model.ConditionAlways, Priority: 1, Label: "continue",
		},
		{
			ID: uuid.NewString(), ScenarioID: scenario.ID,
			FromNodeID: "n_docker", ToNodeID: "n_docker_skip",
			ConditionType: model.ConditionSkillMissing,
			Condition: model.TransitionCondition{
				SkillMissing: &model.SkillMissingCondition{SkillName: "Docker"},
			},
			Priority: 1, Label: "no docker, skip sql depth",
		},
		{
			ID: uuid.NewString(), ScenarioID: scenario.ID,
			FromNodeID: "n_docker", ToNodeID: "n_sql",
			ConditionType: model.ConditionAlways, Priority: 2, Label: "default",
		},
		{
			ID: uuid.NewString(), ScenarioID: scenario.ID,
			FromNodeID: "n_docker_skip", ToNodeID: "n_end",
			ConditionType: model.ConditionAlways, Priority: 1, Label: "wrap up",
		},
		{
			ID: uuid.NewString(), ScenarioID: scenario.ID,
			FromNodeID: "n_sql", ToNodeID: "n_end",
			ConditionType: model.ConditionAlways, Priority: 1, Label: "wrap up",
		},
	}
	if err := scenarioRepo.CreateTransitions(ctx, transitions); err != nil {
		log.Fatalf("Failed to insert transitions: %v", err)
	}

	if err := scenarioRepo.ValidateGraph(ctx, scenario.ID); err != nil {
		log.Fatalf("Seeded graph failed validation: %v", err)
	}

	fmt.Printf("Seeded vacancy '%s' with scenario '%s' (%d nodes, %d transitions)\n",
		vacancy.Title, scenario.Name, len(nodes), len(transitions))
}

func f(v float64) *float64 { return &v }
