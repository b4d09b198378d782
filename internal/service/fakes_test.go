package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

// In-memory repository and cache fakes shared by the service tests.

type fakeSessionRepo struct {
	sessions map[string]*model.Session
}

func newFakeSessionRepo(sessions ...*model.Session) *fakeSessionRepo {
	r := &fakeSessionRepo{sessions: map[string]*model.Session{}}
	for _, s := range sessions {
		r.sessions[s.ID] = s
	}
	return r
}

func (r *fakeSessionRepo) Create(_ context.Context, s *model.Session) error {
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now().UTC()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	return r.sessions[id], nil
}

func (r *fakeSessionRepo) SetStatus(_ context.Context, id string, status model.SessionStatus) error {
	if s, ok := r.sessions[id]; ok {
		s.Status = status
	}
	return nil
}

type fakeScenarioRepo struct {
	scenarios   map[string]*model.InterviewScenario
	nodes       map[string]*model.ScenarioNode
	transitions []*model.ScenarioTransition
}

func newFakeScenarioRepo() *fakeScenarioRepo {
	return &fakeScenarioRepo{
		scenarios: map[string]*model.InterviewScenario{},
		nodes:     map[string]*model.ScenarioNode{},
	}
}

func (r *fakeScenarioRepo) GetActiveByVacancy(_ context.Context, vacancyID string) (*model.InterviewScenario, error) {
	for _, s := range r.scenarios {
		if s.VacancyID == vacancyID && s.IsActive {
			return s, nil
		}
	}
	return nil, nil
}

func (r *fakeScenarioRepo) GetNode(_ context.Context, nodeID string) (*model.ScenarioNode, error) {
	return r.nodes[nodeID], nil
}

func (r *fakeScenarioRepo) GetStartNode(_ context.Context, scenarioID string) (*model.ScenarioNode, error) {
	for _, n := range r.nodes {
		if n.ScenarioID == scenarioID && n.NodeType == model.NodeStart {
			return n, nil
		}
	}
	return nil, nil
}

func (r *fakeScenarioRepo) GetOutgoingTransitions(_ context.Context, nodeID string) ([]*model.ScenarioTransition, error) {
	var out []*model.ScenarioTransition
	for _, t := range r.transitions {
		if t.FromNodeID == nodeID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (r *fakeScenarioRepo) ValidateGraph(_ context.Context, scenarioID string) error {
	for _, t := range r.transitions {
		if t.ScenarioID == scenarioID {
			if err := t.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *fakeScenarioRepo) CreateScenario(_ context.Context, s *model.InterviewScenario) error {
	r.scenarios[s.ID] = s
	return nil
}

func (r *fakeScenarioRepo) CreateNodes(_ context.Context, nodes []*model.ScenarioNode) error {
	for _, n := range nodes {
		r.nodes[n.ID] = n
	}
	return nil
}

func (r *fakeScenarioRepo) CreateTransitions(_ context.Context, transitions []*model.ScenarioTransition) error {
	r.transitions = append(r.transitions, transitions...)
	return nil
}

type fakeQuestionRepo struct {
	questions map[string]*model.Question
}

func newFakeQuestionRepo(questions ...*model.Question) *fakeQuestionRepo {
	r := &fakeQuestionRepo{questions: map[string]*model.Question{}}
	for _, q := range questions {
		r.questions[q.ID] = q
	}
	return r
}

func (r *fakeQuestionRepo) Create(_ context.Context, q *model.Question) error {
	r.questions[q.ID] = q
	return nil
}

func (r *fakeQuestionRepo) GetByID(_ context.Context, id string) (*model.Question, error) {
	return r.questions[id], nil
}

type fakeContextRepo struct {
	contexts map[string]*model.SessionContext
	saves    int
}

func newFakeContextRepo() *fakeContextRepo {
	return &fakeContextRepo{contexts: map[string]*model.SessionContext{}}
}

func (r *fakeContextRepo) GetBySessionID(_ context.Context, sessionID string) (*model.SessionContext, error) {
	return r.contexts[sessionID], nil
}

func (r *fakeContextRepo) Save(_ context.Context, sc *model.SessionContext) error {
	r.saves++
	sc.UpdatedAt = time.Now().UTC()
	r.contexts[sc.SessionID] = sc
	return nil
}

type fakeCQRepo struct {
	questions []*model.ContextualQuestion
}

func (r *fakeCQRepo) CreateBatch(_ context.Context, questions []*model.ContextualQuestion) error {
	for _, q := range questions {
		if q.GeneratedAt.IsZero() {
			q.GeneratedAt = time.Now().UTC()
		}
	}
	r.questions = append(r.questions, questions...)
	return nil
}

func (r *fakeCQRepo) GetByID(_ context.Context, id string) (*model.ContextualQuestion, error) {
	for _, q := range r.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (r *fakeCQRepo) GetBySessionAndNode(_ context.Context, sessionID, nodeID string) ([]*model.ContextualQuestion, error) {
	var out []*model.ContextualQuestion
	for _, q := range r.questions {
		if q.SessionID == sessionID && q.ScenarioNodeID == nodeID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *fakeCQRepo) GetNextUnused(_ context.Context, sessionID, nodeID string) (*model.ContextualQuestion, error) {
	var candidates []*model.ContextualQuestion
	for _, q := range r.questions {
		if q.SessionID == sessionID && q.ScenarioNodeID == nodeID && !q.IsUsed {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].GeneratedAt.Equal(candidates[j].GeneratedAt) {
			return candidates[i].GeneratedAt.Before(candidates[j].GeneratedAt)
		}
		return candidates[i].Sequence < candidates[j].Sequence
	})
	return candidates[0], nil
}

func (r *fakeCQRepo) MarkUsed(_ context.Context, questionID string) (bool, error) {
	for _, q := range r.questions {
		if q.ID == questionID {
			if q.IsUsed {
				return false, nil
			}
			q.IsUsed = true
			now := time.Now().UTC()
			q.UsedAt = &now
			return true, nil
		}
	}
	return false, nil
}

type fakeVacancyRepo struct {
	vacancies map[string]*model.Vacancy
}

func newFakeVacancyRepo(vacancies ...*model.Vacancy) *fakeVacancyRepo {
	r := &fakeVacancyRepo{vacancies: map[string]*model.Vacancy{}}
	for _, v := range vacancies {
		r.vacancies[v.ID] = v
	}
	return r
}

func (r *fakeVacancyRepo) Create(_ context.Context, v *model.Vacancy) error {
	r.vacancies[v.ID] = v
	return nil
}

func (r *fakeVacancyRepo) GetByID(_ context.Context, id string) (*model.Vacancy, error) {
	return r.vacancies[id], nil
}

func (r *fakeVacancyRepo) SaveSkills(_ context.Context, vacancyID string, skills []model.VacancySkill) error {
	if v, ok := r.vacancies[vacancyID]; ok {
		v.Skills = skills
	}
	return nil
}

type fakeResumeRepo struct {
	resumes map[string]*model.Resume
}

func newFakeResumeRepo(resumes ...*model.Resume) *fakeResumeRepo {
	r := &fakeResumeRepo{resumes: map[string]*model.Resume{}}
	for _, res := range resumes {
		r.resumes[res.CandidateID] = res
	}
	return r
}

func (r *fakeResumeRepo) Create(_ context.Context, res *model.Resume) error {
	r.resumes[res.CandidateID] = res
	return nil
}

func (r *fakeResumeRepo) GetByCandidateID(_ context.Context, candidateID string) (*model.Resume, error) {
	return r.resumes[candidateID], nil
}

type fakeSkillsCache struct {
	data map[string][]model.VacancySkill
}

func newFakeSkillsCache() *fakeSkillsCache {
	return &fakeSkillsCache{data: map[string][]model.VacancySkill{}}
}

func (c *fakeSkillsCache) Get(_ context.Context, vacancyID string) ([]model.VacancySkill, error) {
	return c.data[vacancyID], nil
}

func (c *fakeSkillsCache) Set(_ context.Context, vacancyID string, skills []model.VacancySkill) error {
	c.data[vacancyID] = skills
	return nil
}

func (c *fakeSkillsCache) Invalidate(_ context.Context, vacancyID string) error {
	delete(c.data, vacancyID)
	return nil
}

type fakeGenerationCache struct {
	data map[string]string
}

func newFakeGenerationCache() *fakeGenerationCache {
	return &fakeGenerationCache{data: map[string]string{}}
}

func (c *fakeGenerationCache) Get(_ context.Context, prompt string) (string, bool, error) {
	v, ok := c.data[prompt]
	return v, ok, nil
}

func (c *fakeGenerationCache) Set(_ context.Context, prompt, response string) error {
	c.data[prompt] = response
	return nil
}

func (c *fakeGenerationCache) Invalidate(_ context.Context, prompt string) error {
	delete(c.data, prompt)
	return nil
}

// fakeTextGenerator returns canned responses, or fails when broken.
type fakeTextGenerator struct {
	enabled  bool
	response string
	err      error
	calls    int
}

func (g *fakeTextGenerator) Generate(_ context.Context, _ string, _ int, _ float64) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func (g *fakeTextGenerator) Enabled() bool { return g.enabled }

var errGeneratorDown = errors.New("generator down")
