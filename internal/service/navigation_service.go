package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
	"github.com/chudo9991/more.tech.2025-sub000/internal/repository"
)

// navState is where the navigator stands between requests for one session.
type navState int

const (
	// awaitingContextual: the current node still has unserved follow-ups.
	awaitingContextual navState = iota
	// awaitingTransition: follow-ups are exhausted, transitions decide next.
	awaitingTransition
	// terminated: the interview ended, every further call repeats the verdict.
	terminated
)

const (
	// lowSkillThreshold marks an average score below which a skill counts
	// as effectively missing for skill_missing conditions.
	lowSkillThreshold = 0.3

	// maxSkipHops bounds traversal through non-question nodes so a cyclic
	// graph terminates the interview instead of hanging it.
	maxSkipHops = 10
)

// defaultCriticalSkills terminate the interview early when the candidate
// denies knowing at least two of them.
var defaultCriticalSkills = []string{"Python", "Programming", "Development"}

// NavigationService walks a session through its scenario graph: it serves
// contextual follow-ups first, checks for premature termination, then
// evaluates outgoing transitions in priority order.
type NavigationService struct {
	sessionRepo    repository.SessionRepo
	scenarioRepo   repository.ScenarioRepo
	questionRepo   repository.QuestionRepo
	contextRepo    repository.SessionContextRepo
	cqRepo         repository.ContextualQuestionRepo
	analyzer       *PatternAnalyzer
	criticalSkills []string
	logger         *zap.Logger
}

func NewNavigationService(
	sessionRepo repository.SessionRepo,
	scenarioRepo repository.ScenarioRepo,
	questionRepo repository.QuestionRepo,
	contextRepo repository.SessionContextRepo,
	cqRepo repository.ContextualQuestionRepo,
	analyzer *PatternAnalyzer,
	logger *zap.Logger,
) *NavigationService {
	return &NavigationService{
		sessionRepo:    sessionRepo,
		scenarioRepo:   scenarioRepo,
		questionRepo:   questionRepo,
		contextRepo:    contextRepo,
		cqRepo:         cqRepo,
		analyzer:       analyzer,
		criticalSkills: defaultCriticalSkills,
		logger:         logger,
	}
}

// GetNextQuestion resolves the next thing to ask the candidate, advancing
// the session's position in the graph as a side effect. Graph defects and
// dead ends terminate the interview with a reason rather than erroring.
func (s *NavigationService) GetNextQuestion(ctx context.Context, sessionID string) (*model.NextQuestion, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status == model.SessionCompleted || session.Status == model.SessionAborted {
		return &model.NextQuestion{ShouldTerminate: true, Reason: ReasonCompleted}, nil
	}

	sc, err := s.ensureContext(ctx, session)
	if err != nil {
		return nil, err
	}

	node, err := s.currentNode(ctx, sc)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return s.terminate(ctx, session, sc, ReasonMalformedGraph)
	}

	cq, err := s.cqRepo.GetNextUnused(ctx, sessionID, node.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check contextual questions: %w", err)
	}

	// Contextual follow-ups for the current node come before any
	// transition is considered.
	var state navState
	switch {
	case cq != nil:
		state = awaitingContextual
	case s.criticalSkillGap(sc):
		state = terminated
	default:
		state = awaitingTransition
	}

	switch state {
	case awaitingContextual:
		return &model.NextQuestion{
			QuestionText:         cq.QuestionText,
			NodeID:               node.ID,
			IsContextual:         true,
			ContextualQuestionID: cq.ID,
		}, nil
	case terminated:
		return s.terminate(ctx, session, sc, ReasonCriticalSkillGap)
	default:
		return s.advance(ctx, session, sc, node)
	}
}

// advance follows transitions from node until it lands on a question or a
// terminal condition. Skip and condition nodes are walked through inline,
// bounded by maxSkipHops.
func (s *NavigationService) advance(ctx context.Context, session *model.Session, sc *model.SessionContext, node *model.ScenarioNode) (*model.NextQuestion, error) {
	current := node
	for hops := 0; hops < maxSkipHops; hops++ {
		transitions, err := s.scenarioRepo.GetOutgoingTransitions(ctx, current.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get transitions: %w", err)
		}

		next := s.firstSatisfied(transitions, sc)
		if next == nil {
			if current.IsTerminal() {
				return s.terminate(ctx, session, sc, ReasonCompleted)
			}
			return s.terminate(ctx, session, sc, ReasonNoReachable)
		}

		target, err := s.scenarioRepo.GetNode(ctx, next.ToNodeID)
		if err != nil {
			return nil, fmt.Errorf("failed to get node: %w", err)
		}
		if target == nil {
			s.logger.Warn("transition points at missing node",
				zap.String("transition_id", next.ID),
				zap.String("to_node_id", next.ToNodeID))
			return s.terminate(ctx, session, sc, ReasonMalformedGraph)
		}

		sc.CurrentNodeID = target.ID
		if err := s.contextRepo.Save(ctx, sc); err != nil {
			return nil, fmt.Errorf("failed to save context: %w", err)
		}

		switch target.NodeType {
		case model.NodeEnd:
			return s.terminate(ctx, session, sc, ReasonCompleted)
		case model.NodeQuestion:
			return s.serveQuestion(ctx, session, sc, target)
		case model.NodeSkip, model.NodeCondition, model.NodeStart:
			current = target
		default:
			s.logger.Warn("unknown node type", zap.String("node_id", target.ID), zap.String("type", string(target.NodeType)))
			return s.terminate(ctx, session, sc, ReasonMalformedGraph)
		}
	}

	s.logger.Warn("skip chain exceeded hop budget", zap.String("session_id", session.ID))
	return s.terminate(ctx, session, sc, ReasonMalformedGraph)
}

func (s *NavigationService) serveQuestion(ctx context.Context, session *model.Session, sc *model.SessionContext, node *model.ScenarioNode) (*model.NextQuestion, error) {
	if node.QuestionID == "" {
		s.logger.Warn("question node has no question", zap.String("node_id", node.ID))
		return s.terminate(ctx, session, sc, ReasonMalformedGraph)
	}
	q, err := s.questionRepo.GetByID(ctx, node.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if q == nil {
		s.logger.Warn("question node references missing question",
			zap.String("node_id", node.ID), zap.String("question_id", node.QuestionID))
		return s.terminate(ctx, session, sc, ReasonMalformedGraph)
	}
	return &model.NextQuestion{
		QuestionText: q.Text,
		QuestionID:   q.ID,
		NodeID:       node.ID,
	}, nil
}

// UpdateContextAfterAnswer folds one answer into the rolling session state:
// negativity analysis, per-criterion score accumulation, path history, and
// contextual-question bookkeeping.
func (s *NavigationService) UpdateContextAfterAnswer(ctx context.Context, sessionID, questionID, answerText string, score float64) (*model.ContextUpdate, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	sc, err := s.ensureContext(ctx, session)
	if err != nil {
		return nil, err
	}

	analysis := s.analyzer.Analyze(answerText)

	contextual := strings.HasPrefix(questionID, "CONTEXT_Q_")
	var criteria []model.QuestionCriterion
	if !contextual {
		q, err := s.questionRepo.GetByID(ctx, questionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		if q != nil {
			criteria = q.Criteria
		}
	}

	for _, c := range criteria {
		sc.RecordAssessment(c.Name, score*c.Weight)
		if analysis.IsNegative {
			sc.NegativeResponses[c.Name] = append(sc.NegativeResponses[c.Name], model.NegativeResponse{
				QuestionID:      questionID,
				AnswerText:      answerText,
				MatchedPatterns: analysis.MatchedPatterns,
				Confidence:      analysis.ConfidenceLevel,
			})
		}
	}

	sc.CurrentPath = append(sc.CurrentPath, model.PathStep{
		QuestionID: questionID,
		AnswerText: answerText,
		Score:      score,
		IsNegative: analysis.IsNegative,
		Confidence: analysis.ConfidenceLevel,
		Timestamp:  time.Now().UTC(),
	})

	if contextual {
		used, err := s.cqRepo.MarkUsed(ctx, questionID)
		if err != nil {
			return nil, fmt.Errorf("failed to mark contextual question used: %w", err)
		}
		if used {
			if cq, err := s.cqRepo.GetByID(ctx, questionID); err == nil && cq != nil {
				st := sc.NodeState(cq.ScenarioNodeID)
				sc.MarkAsked(cq.ScenarioNodeID, cq.QuestionText)
				st.Answers = append(st.Answers, model.ContextualAnswer{
					QuestionID:   questionID,
					QuestionText: cq.QuestionText,
					AnswerText:   answerText,
					Score:        score,
					Timestamp:    time.Now().UTC(),
				})
			}
		}
	}

	if err := s.contextRepo.Save(ctx, sc); err != nil {
		return nil, fmt.Errorf("failed to save context: %w", err)
	}

	return &model.ContextUpdate{
		SkillAssessments:  sc.SkillAssessments,
		NegativeResponses: sc.NegativeResponses,
		Analysis:          analysis,
	}, nil
}

// GetAvailableTransitions reports every outgoing transition of the current
// node with its evaluation against the present context, for diagnostics.
func (s *NavigationService) GetAvailableTransitions(ctx context.Context, sessionID string) ([]model.TransitionView, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	sc, err := s.ensureContext(ctx, session)
	if err != nil {
		return nil, err
	}

	transitions, err := s.scenarioRepo.GetOutgoingTransitions(ctx, sc.CurrentNodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transitions: %w", err)
	}

	views := make([]model.TransitionView, 0, len(transitions))
	for _, t := range transitions {
		views = append(views, model.TransitionView{
			TransitionID:  t.ID,
			ToNodeID:      t.ToNodeID,
			ConditionType: t.ConditionType,
			Condition:     t.Condition,
			Priority:      t.Priority,
			Label:         t.Label,
			IsValid:       s.conditionSatisfied(t, sc),
		})
	}
	return views, nil
}

// GetContext exposes the session's rolling state.
func (s *NavigationService) GetContext(ctx context.Context, sessionID string) (*model.SessionContext, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return s.ensureContext(ctx, session)
}

// ensureContext loads the session context, creating and positioning it at
// the scenario's start node on first touch.
func (s *NavigationService) ensureContext(ctx context.Context, session *model.Session) (*model.SessionContext, error) {
	sc, err := s.contextRepo.GetBySessionID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session context: %w", err)
	}
	if sc != nil {
		return sc, nil
	}

	scenario, err := s.scenarioRepo.GetActiveByVacancy(ctx, session.VacancyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	if scenario == nil {
		return nil, ErrScenarioNotConfigured
	}

	sc = model.NewSessionContext(session.ID, scenario.ID)
	start, err := s.scenarioRepo.GetStartNode(ctx, scenario.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get start node: %w", err)
	}
	if start != nil {
		sc.CurrentNodeID = start.ID
	}
	if err := s.contextRepo.Save(ctx, sc); err != nil {
		return nil, fmt.Errorf("failed to save context: %w", err)
	}
	if session.Status == model.SessionCreated {
		if err := s.sessionRepo.SetStatus(ctx, session.ID, model.SessionActive); err != nil {
			s.logger.Warn("failed to activate session", zap.String("session_id", session.ID), zap.Error(err))
		}
	}
	return sc, nil
}

func (s *NavigationService) currentNode(ctx context.Context, sc *model.SessionContext) (*model.ScenarioNode, error) {
	if sc.CurrentNodeID == "" {
		start, err := s.scenarioRepo.GetStartNode(ctx, sc.ScenarioID)
		if err != nil {
			return nil, fmt.Errorf("failed to get start node: %w", err)
		}
		if start != nil {
			sc.CurrentNodeID = start.ID
		}
		return start, nil
	}
	node, err := s.scenarioRepo.GetNode(ctx, sc.CurrentNodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return node, nil
}

// criticalSkillGap reports whether at least two distinct critical skills
// have recorded negative responses.
func (s *NavigationService) criticalSkillGap(sc *model.SessionContext) bool {
	missing := 0
	for _, skill := range s.criticalSkills {
		for recorded := range sc.NegativeResponses {
			if strings.EqualFold(recorded, skill) {
				missing++
				break
			}
		}
	}
	return missing >= 2
}

// firstSatisfied picks the first transition whose condition holds. The
// repository returns transitions already sorted by priority, so a tie on
// priority is resolved by declaration order.
func (s *NavigationService) firstSatisfied(transitions []*model.ScenarioTransition, sc *model.SessionContext) *model.ScenarioTransition {
	for _, t := range transitions {
		if s.conditionSatisfied(t, sc) {
			return t
		}
	}
	return nil
}

func (s *NavigationService) conditionSatisfied(t *model.ScenarioTransition, sc *model.SessionContext) bool {
	switch t.ConditionType {
	case model.ConditionAlways, "":
		return true

	case model.ConditionScoreThreshold:
		cond := t.Condition.ScoreThreshold
		if cond == nil {
			return false
		}
		assessment, ok := sc.SkillAssessments[cond.Criterion]
		if !ok || assessment.Count == 0 {
			return false
		}
		avg := assessment.AverageScore
		if cond.MinScore != nil && avg < *cond.MinScore {
			return false
		}
		if cond.MaxScore != nil && avg > *cond.MaxScore {
			return false
		}
		return true

	case model.ConditionNegativeResponse:
		cond := t.Condition.NegativeResponse
		if cond == nil {
			return false
		}
		last := sc.LastStep()
		if last == nil {
			return false
		}
		answer := strings.ToLower(last.AnswerText)
		for _, p := range cond.Patterns {
			if strings.Contains(answer, strings.ToLower(p)) {
				return true
			}
		}
		return false

	case model.ConditionSkillMissing:
		cond := t.Condition.SkillMissing
		if cond == nil {
			return false
		}
		for recorded := range sc.NegativeResponses {
			if strings.EqualFold(recorded, cond.SkillName) {
				return true
			}
		}
		if a, ok := sc.SkillAssessments[cond.SkillName]; ok && a.Count > 0 && a.AverageScore < lowSkillThreshold {
			return true
		}
		return false
	}

	s.logger.Warn("unknown condition type",
		zap.String("transition_id", t.ID),
		zap.String("condition_type", string(t.ConditionType)))
	return false
}

// terminate closes out the interview and reports the reason.
func (s *NavigationService) terminate(ctx context.Context, session *model.Session, sc *model.SessionContext, reason string) (*model.NextQuestion, error) {
	if err := s.contextRepo.Save(ctx, sc); err != nil {
		s.logger.Warn("failed to save context at termination",
			zap.String("session_id", session.ID), zap.Error(err))
	}
	if session.Status != model.SessionCompleted {
		if err := s.sessionRepo.SetStatus(ctx, session.ID, model.SessionCompleted); err != nil {
			s.logger.Warn("failed to complete session",
				zap.String("session_id", session.ID), zap.Error(err))
		}
	}
	s.logger.Info("interview terminated",
		zap.String("session_id", session.ID),
		zap.String("reason", reason))
	return &model.NextQuestion{
		NodeID:          sc.CurrentNodeID,
		ShouldTerminate: true,
		Reason:          reason,
	}, nil
}
