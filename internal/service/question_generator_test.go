package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

type genHarness struct {
	svc      *ContextualQuestionGenerator
	cq       *fakeCQRepo
	contexts *fakeContextRepo
	llm      *fakeTextGenerator
	genCache *fakeGenerationCache
}

func newGenHarness(t *testing.T, llm *fakeTextGenerator) *genHarness {
	t.Helper()

	sessionRepo := newFakeSessionRepo(&model.Session{
		ID: "s1", VacancyID: "v1", CandidateID: "c1", Status: model.SessionActive,
	})
	vacancyRepo := newFakeVacancyRepo(&model.Vacancy{
		ID: "v1", Title: "Backend Developer",
		Skills: []model.VacancySkill{
			{SkillName: "Docker", Category: model.CategoryDevOps, Importance: 0.8, RequiredLevel: model.LevelIntermediate},
			{SkillName: "Python", Category: model.CategoryProgramming, Importance: 1.0, RequiredLevel: model.LevelExpert},
		},
	})
	resumeRepo := newFakeResumeRepo(&model.Resume{
		ID: "r1", CandidateID: "c1",
		Skills: []model.ResumeSkill{{SkillName: "Docker", ExperienceYears: 2}},
	})

	scenario := newFakeScenarioRepo()
	ctx := context.Background()
	require.NoError(t, scenario.CreateScenario(ctx, &model.InterviewScenario{
		ID: "sc1", VacancyID: "v1", IsActive: true,
	}))
	require.NoError(t, scenario.CreateNodes(ctx, []*model.ScenarioNode{
		{ID: "n_docker", ScenarioID: "sc1", NodeType: model.NodeQuestion, QuestionID: "q_docker",
			Config: model.NodeConfig{Label: "Docker Practice", TargetSkills: []string{"Docker"}}},
	}))

	contexts := newFakeContextRepo()
	sc := model.NewSessionContext("s1", "sc1")
	sc.CurrentNodeID = "n_docker"
	require.NoError(t, contexts.Save(ctx, sc))

	cq := &fakeCQRepo{}
	genCache := newFakeGenerationCache()
	skillsSvc := NewSkillsExtractor(vacancyRepo, newFakeSkillsCache(), llm, zap.NewNop())

	svc := NewContextualQuestionGenerator(
		sessionRepo, scenario, vacancyRepo, resumeRepo, contexts, cq,
		skillsSvc, NewQuestionQualityValidator(), NewPatternAnalyzer(),
		llm, genCache, zap.NewNop(),
	)

	return &genHarness{svc: svc, cq: cq, contexts: contexts, llm: llm, genCache: genCache}
}

func TestGenerateDisabledGeneratorFallsBackToTemplates(t *testing.T) {
	h := newGenHarness(t, &fakeTextGenerator{enabled: false})

	result, err := h.svc.Generate(context.Background(), "s1", "n_docker", 3)
	require.NoError(t, err)

	assert.Equal(t, model.SourceFallback, result.Source)
	assert.Equal(t, "generator disabled", result.FallbackReason)
	require.Len(t, result.Questions, 3)
	for _, q := range result.Questions {
		assert.True(t, strings.HasPrefix(q.ID, "CONTEXT_Q_"))
		assert.Equal(t, model.SourceFallback, q.ContextSource)
		assert.Contains(t, q.QuestionText, "Docker Practice")
	}

	// Persisted and recorded in the session context.
	assert.Len(t, h.cq.questions, 3)
	st := h.contexts.contexts["s1"].ContextualQuestions["n_docker"]
	require.NotNil(t, st)
	assert.Len(t, st.Generated, 3)
	assert.Len(t, st.Remaining, 3)
}

func TestGenerateStampsCreationOrderSequence(t *testing.T) {
	h := newGenHarness(t, &fakeTextGenerator{enabled: false})
	ctx := context.Background()

	_, err := h.svc.Generate(ctx, "s1", "n_docker", 3)
	require.NoError(t, err)

	require.Len(t, h.cq.questions, 3)
	for i, q := range h.cq.questions {
		assert.Equal(t, i, q.Sequence)
	}

	// A batch lands with one timestamp; sequence alone must keep the order.
	stamp := time.Now().UTC()
	for _, q := range h.cq.questions {
		q.GeneratedAt = stamp
	}
	next, err := h.svc.GetNextUnused(ctx, "s1", "n_docker")
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, h.cq.questions[0].ID, next.ID)
}

func TestGenerateUsesLLMOutput(t *testing.T) {
	response := `{"questions": [
		{"question": "Describe a project where you used Docker compose for integration testing.", "type": "project", "context": "resume shows Docker"},
		{"question": "What difficulties did you hit running Docker builds in CI?", "type": "technical", "context": "probes depth"}
	]}`
	h := newGenHarness(t, &fakeTextGenerator{enabled: true, response: response})

	result, err := h.svc.Generate(context.Background(), "s1", "n_docker", 3)
	require.NoError(t, err)

	assert.Equal(t, model.SourceLLM, result.Source)
	assert.Empty(t, result.FallbackReason)
	require.Len(t, result.Questions, 3, "validated output is topped up with templates")
	assert.Equal(t, model.SourceLLM, result.Questions[0].ContextSource)
	assert.Equal(t, model.ContextualTypeProject, result.Questions[0].QuestionType)
	assert.Equal(t, model.SourceFallback, result.Questions[2].ContextSource)
}

func TestGenerateLLMErrorFallsBackToTemplates(t *testing.T) {
	h := newGenHarness(t, &fakeTextGenerator{enabled: true, err: errGeneratorDown})

	result, err := h.svc.Generate(context.Background(), "s1", "n_docker", 3)
	require.NoError(t, err)

	assert.Equal(t, model.SourceFallback, result.Source)
	assert.Contains(t, result.FallbackReason, "generator down")
	assert.Len(t, result.Questions, 3)
}

func TestGenerateMalformedJSONFallsBackToTemplates(t *testing.T) {
	h := newGenHarness(t, &fakeTextGenerator{enabled: true, response: "I would suggest asking about volumes."})

	result, err := h.svc.Generate(context.Background(), "s1", "n_docker", 3)
	require.NoError(t, err)

	assert.Equal(t, model.SourceFallback, result.Source)
	assert.NotEmpty(t, result.FallbackReason)
	assert.Len(t, result.Questions, 3)
}

func TestGenerateRejectsWeakQuestionsAndTopsUp(t *testing.T) {
	response := `{"questions": [
		{"question": "Describe a project where you used Docker compose for integration testing.", "type": "project", "context": "good"},
		{"question": "What is Docker?", "type": "technical", "context": "too generic and short"},
		{"question": "Have you ever had a conflict about Docker licensing costs with management?", "type": "experience", "context": "personal"}
	]}`
	h := newGenHarness(t, &fakeTextGenerator{enabled: true, response: response})

	result, err := h.svc.Generate(context.Background(), "s1", "n_docker", 3)
	require.NoError(t, err)

	require.Len(t, result.Questions, 3)
	assert.Equal(t, model.SourceLLM, result.Questions[0].ContextSource)
	assert.Equal(t, model.SourceFallback, result.Questions[1].ContextSource)
	assert.Equal(t, model.SourceFallback, result.Questions[2].ContextSource)
}

func TestGenerateReusesCachedResponse(t *testing.T) {
	response := `{"questions": [
		{"question": "Describe a project where you used Docker compose for integration testing.", "type": "project", "context": "good"}
	]}`
	llm := &fakeTextGenerator{enabled: true, response: response}
	h := newGenHarness(t, llm)
	ctx := context.Background()

	_, err := h.svc.Generate(ctx, "s1", "n_docker", 3)
	require.NoError(t, err)
	_, err = h.svc.Generate(ctx, "s1", "n_docker", 3)
	require.NoError(t, err)

	assert.Equal(t, 1, llm.calls, "identical prompt is served from cache")
}

func TestGenerateUnknownSessionAndNode(t *testing.T) {
	h := newGenHarness(t, &fakeTextGenerator{enabled: false})
	ctx := context.Background()

	_, err := h.svc.Generate(ctx, "missing", "n_docker", 3)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = h.svc.Generate(ctx, "s1", "n_missing", 3)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestMarkUsedIsIdempotent(t *testing.T) {
	h := newGenHarness(t, &fakeTextGenerator{enabled: false})
	ctx := context.Background()

	result, err := h.svc.Generate(ctx, "s1", "n_docker", 1)
	require.NoError(t, err)
	require.Len(t, result.Questions, 1)
	id := result.Questions[0].ID

	used, err := h.svc.MarkUsed(ctx, id)
	require.NoError(t, err)
	assert.True(t, used)

	used, err = h.svc.MarkUsed(ctx, id)
	require.NoError(t, err)
	assert.False(t, used, "second mark is a no-op")

	used, err = h.svc.MarkUsed(ctx, "CONTEXT_Q_MISSING1")
	require.NoError(t, err)
	assert.False(t, used)
}

func TestStatusCounts(t *testing.T) {
	h := newGenHarness(t, &fakeTextGenerator{enabled: false})
	ctx := context.Background()

	result, err := h.svc.Generate(ctx, "s1", "n_docker", 3)
	require.NoError(t, err)

	next, err := h.svc.GetNextUnused(ctx, "s1", "n_docker")
	require.NoError(t, err)
	require.NotNil(t, next)
	_, err = h.svc.MarkUsed(ctx, next.ID)
	require.NoError(t, err)

	status, err := h.svc.Status(ctx, "s1", "n_docker")
	require.NoError(t, err)
	assert.Equal(t, 3, status.Total)
	assert.Equal(t, 1, status.Used)
	assert.Equal(t, 2, status.Remaining)
	assert.True(t, status.HasRemaining)
	assert.Equal(t, "n_docker", status.NodeID)

	_ = result
}
