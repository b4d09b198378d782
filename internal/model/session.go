package model

import "time"

type SessionStatus string

const (
	SessionCreated   SessionStatus = "created"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAborted   SessionStatus = "aborted"
)

// Session is one interview run for a candidate and a vacancy
type Session struct {
	ID          string        `json:"id" bson:"_id"`
	VacancyID   string        `json:"vacancyId" bson:"vacancy_id"`
	CandidateID string        `json:"candidateId,omitempty" bson:"candidate_id,omitempty"`
	Status      SessionStatus `json:"status" bson:"status"`
	StartedAt   time.Time     `json:"startedAt" bson:"started_at"`
	EndedAt     *time.Time    `json:"endedAt,omitempty" bson:"ended_at,omitempty"`
}

// SkillAssessment is the running weighted mean for one criterion.
// AverageScore is always TotalScore/Count after every update.
type SkillAssessment struct {
	TotalScore   float64 `json:"totalScore" bson:"total_score"`
	Count        int     `json:"count" bson:"count"`
	AverageScore float64 `json:"averageScore" bson:"average_score"`
	LastScore    float64 `json:"lastScore" bson:"last_score"`
}

// NegativeResponse records one denial of a skill by the candidate
type NegativeResponse struct {
	QuestionID      string          `json:"questionId" bson:"question_id"`
	AnswerText      string          `json:"answerText" bson:"answer_text"`
	MatchedPatterns []string        `json:"matchedPatterns" bson:"matched_patterns"`
	Confidence      ConfidenceLevel `json:"confidence" bson:"confidence"`
}

// PathStep is one answered question on the session path
type PathStep struct {
	QuestionID string          `json:"questionId" bson:"question_id"`
	AnswerText string          `json:"answerText" bson:"answer_text"`
	Score      float64         `json:"score" bson:"score"`
	IsNegative bool            `json:"isNegative" bson:"is_negative"`
	Confidence ConfidenceLevel `json:"confidence" bson:"confidence"`
	Timestamp  time.Time       `json:"timestamp" bson:"timestamp"`
}

// ContextualAnswer records an answer given to a contextual question
type ContextualAnswer struct {
	QuestionID   string    `json:"questionId" bson:"question_id"`
	QuestionText string    `json:"questionText" bson:"question_text"`
	AnswerText   string    `json:"answerText" bson:"answer_text"`
	Score        float64   `json:"score" bson:"score"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
}

// NodeQuestionState tracks contextual-question usage for one node
type NodeQuestionState struct {
	Generated []string           `json:"generated" bson:"generated"`
	Asked     []string           `json:"asked" bson:"asked"`
	Remaining []string           `json:"remaining" bson:"remaining"`
	Answers   []ContextualAnswer `json:"answers,omitempty" bson:"answers,omitempty"`
}

// SessionContext is the per-session aggregate driving navigation decisions.
// One per session, created lazily on the first navigation call. The engine
// never deletes it.
type SessionContext struct {
	ID                  string                        `json:"id" bson:"_id"`
	SessionID           string                        `json:"sessionId" bson:"session_id"`
	ScenarioID          string                        `json:"scenarioId,omitempty" bson:"scenario_id,omitempty"`
	CurrentNodeID       string                        `json:"currentNodeId,omitempty" bson:"current_node_id,omitempty"`
	SkillAssessments    map[string]*SkillAssessment   `json:"skillAssessments" bson:"skill_assessments"`
	NegativeResponses   map[string][]NegativeResponse `json:"negativeResponses" bson:"negative_responses"`
	CurrentPath         []PathStep                    `json:"currentPath" bson:"current_path"`
	ContextualQuestions map[string]*NodeQuestionState `json:"contextualQuestions" bson:"contextual_questions"`
	CreatedAt           time.Time                     `json:"createdAt" bson:"created_at"`
	UpdatedAt           time.Time                     `json:"updatedAt" bson:"updated_at"`
}

// NewSessionContext returns an empty context bound to a session and scenario.
func NewSessionContext(sessionID, scenarioID string) *SessionContext {
	now := time.Now().UTC()
	return &SessionContext{
		ID:                  "ctx_" + sessionID,
		SessionID:           sessionID,
		ScenarioID:          scenarioID,
		SkillAssessments:    make(map[string]*SkillAssessment),
		NegativeResponses:   make(map[string][]NegativeResponse),
		CurrentPath:         []PathStep{},
		ContextualQuestions: make(map[string]*NodeQuestionState),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// RecordAssessment folds one weighted score into the criterion's running mean.
func (c *SessionContext) RecordAssessment(criterion string, weightedScore float64) {
	sa, ok := c.SkillAssessments[criterion]
	if !ok {
		sa = &SkillAssessment{}
		c.SkillAssessments[criterion] = sa
	}
	sa.TotalScore += weightedScore
	sa.Count++
	sa.AverageScore = sa.TotalScore / float64(sa.Count)
	sa.LastScore = weightedScore
}

// LastStep returns the most recent path entry, or nil for an empty path.
func (c *SessionContext) LastStep() *PathStep {
	if len(c.CurrentPath) == 0 {
		return nil
	}
	return &c.CurrentPath[len(c.CurrentPath)-1]
}

// NodeState returns the contextual-question state for a node, creating it
// on first use.
func (c *SessionContext) NodeState(nodeID string) *NodeQuestionState {
	if c.ContextualQuestions == nil {
		c.ContextualQuestions = make(map[string]*NodeQuestionState)
	}
	st, ok := c.ContextualQuestions[nodeID]
	if !ok {
		st = &NodeQuestionState{
			Generated: []string{},
			Asked:     []string{},
			Remaining: []string{},
		}
		c.ContextualQuestions[nodeID] = st
	}
	return st
}

// MarkAsked moves a question text from remaining to asked for a node.
func (c *SessionContext) MarkAsked(nodeID, questionText string) {
	st := c.NodeState(nodeID)
	for _, asked := range st.Asked {
		if asked == questionText {
			return
		}
	}
	st.Asked = append(st.Asked, questionText)
	for i, rem := range st.Remaining {
		if rem == questionText {
			st.Remaining = append(st.Remaining[:i], st.Remaining[i+1:]...)
			break
		}
	}
}
