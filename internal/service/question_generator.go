package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chudo9991/more.tech.2025-sub000/internal/cache"
	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
	"github.com/chudo9991/more.tech.2025-sub000/internal/repository"
)

// GenerationResult carries the accepted questions plus the provenance of
// the batch, so degraded (template) generation is observable to callers
// instead of passing as a normal success.
type GenerationResult struct {
	Questions      []*model.ContextualQuestion `json:"questions"`
	Source         model.ContextSource         `json:"source"`
	FallbackReason string                      `json:"fallbackReason,omitempty"`
}

// questionCandidate is one question as proposed by the LLM.
type questionCandidate struct {
	Question string `json:"question"`
	Type     string `json:"type"`
	Context  string `json:"context"`
}

// ContextualQuestionGenerator builds follow-up questions scoped to one
// session and one scenario node.
type ContextualQuestionGenerator struct {
	sessionRepo     repository.SessionRepo
	scenarioRepo    repository.ScenarioRepo
	vacancyRepo     repository.VacancyRepo
	resumeRepo      repository.ResumeRepo
	contextRepo     repository.SessionContextRepo
	questionRepo    repository.ContextualQuestionRepo
	skillsSvc       *SkillsExtractor
	validator       *QuestionQualityValidator
	analyzer        *PatternAnalyzer
	generator       TextGenerator
	generationCache cache.GenerationCache
	logger          *zap.Logger
}

func NewContextualQuestionGenerator(
	sessionRepo repository.SessionRepo,
	scenarioRepo repository.ScenarioRepo,
	vacancyRepo repository.VacancyRepo,
	resumeRepo repository.ResumeRepo,
	contextRepo repository.SessionContextRepo,
	questionRepo repository.ContextualQuestionRepo,
	skillsSvc *SkillsExtractor,
	validator *QuestionQualityValidator,
	analyzer *PatternAnalyzer,
	generator TextGenerator,
	generationCache cache.GenerationCache,
	logger *zap.Logger,
) *ContextualQuestionGenerator {
	return &ContextualQuestionGenerator{
		sessionRepo:     sessionRepo,
		scenarioRepo:    scenarioRepo,
		vacancyRepo:     vacancyRepo,
		resumeRepo:      resumeRepo,
		contextRepo:     contextRepo,
		questionRepo:    questionRepo,
		skillsSvc:       skillsSvc,
		validator:       validator,
		analyzer:        analyzer,
		generator:       generator,
		generationCache: generationCache,
		logger:          logger,
	}
}

// Generate produces up to maxCount questions for the (session, node) pair,
// persists them, and records them in the session context. LLM failure or a
// validation shortfall is absorbed by deterministic templates; the result's
// Source and FallbackReason say which path was taken.
func (g *ContextualQuestionGenerator) Generate(ctx context.Context, sessionID, nodeID string, maxCount int) (*GenerationResult, error) {
	if maxCount <= 0 {
		maxCount = 3
	}

	session, err := g.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	node, err := g.scenarioRepo.GetNode(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	if node == nil {
		return nil, ErrNodeNotFound
	}

	var resume *model.Resume
	if session.CandidateID != "" {
		resume, err = g.resumeRepo.GetByCandidateID(ctx, session.CandidateID)
		if err != nil {
			g.logger.Warn("resume lookup failed", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	sc, err := g.contextRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session context: %w", err)
	}

	skills, err := g.skillsSvc.ExtractSkills(ctx, session.VacancyID, false)
	if err != nil {
		g.logger.Warn("vacancy skills unavailable", zap.String("vacancy_id", session.VacancyID), zap.Error(err))
		skills = nil
	}

	nodeLabel := node.Config.Label
	if nodeLabel == "" {
		nodeLabel = "the topic"
	}

	resumeCtx := g.analyzeResumeForNode(resume, node, skills)
	answerCtx := g.analyzeAnswers(sc, skills)

	candidates, source, fallbackReason := g.proposeCandidates(ctx, nodeLabel, resumeCtx, answerCtx, skills, maxCount)

	existing, err := g.questionRepo.GetBySessionAndNode(ctx, sessionID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question history: %w", err)
	}
	history := make([]string, len(existing))
	for i, q := range existing {
		history[i] = q.QuestionText
	}

	accepted := g.screenCandidates(candidates, node, resumeCtx, history, nodeLabel, maxCount, source)

	questions := make([]*model.ContextualQuestion, 0, len(accepted))
	for i, c := range accepted {
		questions = append(questions, &model.ContextualQuestion{
			ID:             newQuestionID(),
			SessionID:      sessionID,
			ScenarioNodeID: nodeID,
			QuestionText:   c.Question,
			QuestionType:   candidateType(c.Type),
			ContextSource:  sourceOf(c),
			ContextNote:    c.Context,
			Sequence:       len(existing) + i,
		})
	}

	if err := g.questionRepo.CreateBatch(ctx, questions); err != nil {
		return nil, fmt.Errorf("failed to persist contextual questions: %w", err)
	}

	if sc != nil {
		st := sc.NodeState(nodeID)
		for _, q := range questions {
			st.Generated = append(st.Generated, q.QuestionText)
			st.Remaining = append(st.Remaining, q.QuestionText)
		}
		if err := g.contextRepo.Save(ctx, sc); err != nil {
			g.logger.Warn("failed to record generated questions in context",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	if source == model.SourceFallback {
		g.logger.Warn("served template questions",
			zap.String("session_id", sessionID),
			zap.String("node_id", nodeID),
			zap.String("reason", fallbackReason))
	}

	return &GenerationResult{
		Questions:      questions,
		Source:         source,
		FallbackReason: fallbackReason,
	}, nil
}

// proposeCandidates asks the LLM for questions, consulting the prompt cache
// first. Any failure flips the whole batch to templates.
func (g *ContextualQuestionGenerator) proposeCandidates(
	ctx context.Context,
	nodeLabel string,
	resumeCtx model.ResumeContext,
	answerCtx map[string]interface{},
	skills []model.VacancySkill,
	maxCount int,
) ([]questionCandidate, model.ContextSource, string) {
	if !g.generator.Enabled() {
		return templateQuestions(nodeLabel, maxCount), model.SourceFallback, "generator disabled"
	}

	prompt := buildGenerationPrompt(nodeLabel, resumeCtx, answerCtx, skills, maxCount)

	response, cached, err := g.generationCache.Get(ctx, prompt)
	if err != nil {
		g.logger.Warn("generation cache read failed", zap.Error(err))
	}
	if !cached {
		response, err = g.generator.Generate(ctx, prompt, 1500, 0.7)
		if err != nil {
			return templateQuestions(nodeLabel, maxCount), model.SourceFallback, err.Error()
		}
		if err := g.generationCache.Set(ctx, prompt, response); err != nil {
			g.logger.Warn("generation cache write failed", zap.Error(err))
		}
	}

	candidates, err := parseCandidates(response)
	if err != nil {
		return templateQuestions(nodeLabel, maxCount), model.SourceFallback, err.Error()
	}
	return candidates, model.SourceLLM, ""
}

// screenCandidates validates LLM output and tops the batch up with
// templates until maxCount questions are available. Template questions are
// deterministic and skip validation.
func (g *ContextualQuestionGenerator) screenCandidates(
	candidates []questionCandidate,
	node *model.ScenarioNode,
	resumeCtx model.ResumeContext,
	history []string,
	nodeLabel string,
	maxCount int,
	source model.ContextSource,
) []questionCandidate {
	var accepted []questionCandidate

	if source == model.SourceLLM {
		texts := make([]string, len(candidates))
		for i, c := range candidates {
			texts[i] = c.Question
		}
		valid, rejections := g.validator.ValidateQuestions(texts, node, resumeCtx, history)
		if len(rejections) > 0 {
			g.logger.Info("rejected generated questions",
				zap.String("node_id", node.ID),
				zap.Strings("reasons", rejections))
		}
		validSet := make(map[string]bool, len(valid))
		for _, q := range valid {
			validSet[q] = true
		}
		for _, c := range candidates {
			if validSet[c.Question] && len(accepted) < maxCount {
				accepted = append(accepted, c)
			}
		}
	} else {
		accepted = candidates
	}

	if len(accepted) < maxCount {
		seen := make(map[string]bool, len(history)+len(accepted))
		for _, h := range history {
			seen[h] = true
		}
		for _, c := range accepted {
			seen[c.Question] = true
		}
		for _, t := range templateQuestions(nodeLabel, maxCount) {
			if len(accepted) >= maxCount {
				break
			}
			if !seen[t.Question] {
				accepted = append(accepted, t)
				seen[t.Question] = true
			}
		}
	}
	if len(accepted) > maxCount {
		accepted = accepted[:maxCount]
	}
	return accepted
}

// GetNextUnused returns the oldest unserved question for the pair, or nil.
func (g *ContextualQuestionGenerator) GetNextUnused(ctx context.Context, sessionID, nodeID string) (*model.ContextualQuestion, error) {
	return g.questionRepo.GetNextUnused(ctx, sessionID, nodeID)
}

// MarkUsed flips a question to used. Returns false, without error, when the
// question does not exist or was already used.
func (g *ContextualQuestionGenerator) MarkUsed(ctx context.Context, questionID string) (bool, error) {
	return g.questionRepo.MarkUsed(ctx, questionID)
}

// Status summarizes generation and usage for one node.
func (g *ContextualQuestionGenerator) Status(ctx context.Context, sessionID, nodeID string) (*model.QuestionsStatus, error) {
	questions, err := g.questionRepo.GetBySessionAndNode(ctx, sessionID, nodeID)
	if err != nil {
		return nil, err
	}
	used := 0
	for _, q := range questions {
		if q.IsUsed {
			used++
		}
	}
	remaining := len(questions) - used
	return &model.QuestionsStatus{
		Total:        len(questions),
		Used:         used,
		Remaining:    remaining,
		HasRemaining: remaining > 0,
		NodeID:       nodeID,
	}, nil
}

// analyzeResumeForNode summarizes the resume against the node's skills and
// infers the candidate level from how many relevant skills it shows.
func (g *ContextualQuestionGenerator) analyzeResumeForNode(
	resume *model.Resume,
	node *model.ScenarioNode,
	skills []model.VacancySkill,
) model.ResumeContext {
	if resume == nil {
		return model.ResumeContext{
			HasResume:      false,
			NodeLabel:      node.Config.Label,
			CandidateLevel: model.LevelBeginner,
		}
	}

	nodeSkills := skillsForLabel(node.Config.Label, skills)
	if len(nodeSkills) == 0 && len(node.Config.TargetSkills) > 0 {
		nodeSkills = node.Config.TargetSkills
	}

	var relevant []string
	for _, rs := range resume.Skills {
		for _, ns := range nodeSkills {
			if strings.Contains(strings.ToLower(rs.SkillName), strings.ToLower(ns)) ||
				strings.Contains(strings.ToLower(ns), strings.ToLower(rs.SkillName)) {
				relevant = append(relevant, rs.SkillName)
				break
			}
		}
	}

	level := model.LevelBeginner
	switch {
	case len(relevant) >= 3:
		level = model.LevelExpert
	case len(relevant) >= 1:
		level = model.LevelIntermediate
	}

	summary := "no matching experience"
	if len(relevant) > 0 {
		summary = "experience with: " + strings.Join(relevant, ", ")
	}

	return model.ResumeContext{
		HasResume:         true,
		ResumeID:          resume.ID,
		NodeLabel:         node.Config.Label,
		RelevantSkills:    relevant,
		CandidateLevel:    level,
		ExperienceSummary: summary,
	}
}

// analyzeAnswers distills the session context into the prompt payload.
func (g *ContextualQuestionGenerator) analyzeAnswers(sc *model.SessionContext, skills []model.VacancySkill) map[string]interface{} {
	if sc == nil {
		return map[string]interface{}{"has_previous_answers": false}
	}

	var denied []string
	for _, s := range skills {
		if g.analyzer.ShouldSkipRelated(s.SkillName, sc.NegativeResponses) {
			denied = append(denied, s.SkillName)
		}
	}

	return map[string]interface{}{
		"has_previous_answers": true,
		"skill_assessments":    sc.SkillAssessments,
		"negative_responses":   sc.NegativeResponses,
		"current_path":         sc.CurrentPath,
		"skills_to_avoid":      denied,
	}
}

func buildGenerationPrompt(
	nodeLabel string,
	resumeCtx model.ResumeContext,
	answerCtx map[string]interface{},
	skills []model.VacancySkill,
	maxCount int,
) string {
	resumeJSON, _ := json.MarshalIndent(resumeCtx, "", "  ")
	answersJSON, _ := json.MarshalIndent(answerCtx, "", "  ")

	var skillLines []string
	for _, s := range skills {
		skillLines = append(skillLines, fmt.Sprintf("- %s (%s): %s level", s.SkillName, s.Category, s.RequiredLevel))
	}

	return fmt.Sprintf(`You are an experienced technical interviewer. Generate %d individual questions for the interview topic "%s" based on the candidate's context.

RESUME CONTEXT:
%s

PREVIOUS ANSWERS:
%s

REQUIRED SKILLS:
%s

QUESTION REQUIREMENTS:
1. Questions must be specific to the candidate's experience
2. Avoid generic questions like "tell me about %s"
3. Focus on concrete projects and decisions
4. Match the candidate's level
5. Do not repeat topics the candidate already denied knowing
6. Account for previous answers and skill scores

QUESTION TYPES:
- experience: questions about work experience
- project: questions about specific projects
- technical: technical questions

RESPONSE FORMAT (JSON):
{
    "questions": [
        {
            "question": "a specific question",
            "type": "experience/project/technical",
            "context": "why this question fits"
        }
    ]
}

Respond ONLY with JSON.`,
		maxCount, nodeLabel, resumeJSON, answersJSON, strings.Join(skillLines, "\n"), nodeLabel)
}

func parseCandidates(response string) ([]questionCandidate, error) {
	var parsed struct {
		Questions []questionCandidate `json:"questions"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: unparseable question payload: %v", ErrGenerationUnavailable, err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions in response", ErrGenerationUnavailable)
	}
	return parsed.Questions, nil
}

// templateQuestions are the deterministic fallback, pre-tagged by type.
func templateQuestions(nodeLabel string, maxCount int) []questionCandidate {
	templates := []questionCandidate{
		{
			Question: fmt.Sprintf("Tell me about your experience with %s.", nodeLabel),
			Type:     string(model.ContextualTypeExperience),
			Context:  "fallback template",
		},
		{
			Question: fmt.Sprintf("Describe a project where you used %s.", nodeLabel),
			Type:     string(model.ContextualTypeProject),
			Context:  "fallback template",
		},
		{
			Question: fmt.Sprintf("What difficulties have you faced with %s?", nodeLabel),
			Type:     string(model.ContextualTypeTechnical),
			Context:  "fallback template",
		},
	}
	if maxCount < len(templates) {
		return templates[:maxCount]
	}
	return templates
}

func skillsForLabel(label string, skills []model.VacancySkill) []string {
	labelLower := strings.ToLower(label)
	var relevant []string
	for _, s := range skills {
		if strings.Contains(labelLower, strings.ToLower(s.SkillName)) {
			relevant = append(relevant, s.SkillName)
			continue
		}
		for _, alt := range s.Alternatives {
			if strings.Contains(labelLower, strings.ToLower(alt)) {
				relevant = append(relevant, s.SkillName)
				break
			}
		}
	}
	return relevant
}

func candidateType(t string) model.ContextualQuestionType {
	switch model.ContextualQuestionType(t) {
	case model.ContextualTypeExperience, model.ContextualTypeProject, model.ContextualTypeTechnical:
		return model.ContextualQuestionType(t)
	}
	return model.ContextualTypeTechnical
}

func sourceOf(c questionCandidate) model.ContextSource {
	if c.Context == "fallback template" {
		return model.SourceFallback
	}
	return model.SourceLLM
}

func newQuestionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CONTEXT_Q_" + strings.ToUpper(hex[:8])
}
