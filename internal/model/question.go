package model

import "time"

// QuestionCriterion links a base question to a scored criterion
type QuestionCriterion struct {
	Name   string  `json:"name" bson:"name"`
	Weight float64 `json:"weight" bson:"weight"`
}

// Question is a fixed base question referenced by scenario nodes
type Question struct {
	ID       string              `json:"id" bson:"_id"`
	Text     string              `json:"text" bson:"text"`
	Type     string              `json:"type,omitempty" bson:"type,omitempty"`
	Criteria []QuestionCriterion `json:"criteria,omitempty" bson:"criteria,omitempty"`
}

// ContextualQuestionType tags a generated question with its angle
type ContextualQuestionType string

const (
	ContextualTypeExperience ContextualQuestionType = "experience"
	ContextualTypeProject    ContextualQuestionType = "project"
	ContextualTypeTechnical  ContextualQuestionType = "technical"
)

// ContextSource records where a generated question came from
type ContextSource string

const (
	SourceLLM      ContextSource = "llm"
	SourceFallback ContextSource = "fallback"
)

// ContextualQuestion is a follow-up generated for one (session, node) pair.
// IsUsed only ever flips false to true.
type ContextualQuestion struct {
	ID             string                 `json:"id" bson:"_id"`
	SessionID      string                 `json:"sessionId" bson:"session_id"`
	ScenarioNodeID string                 `json:"scenarioNodeId" bson:"scenario_node_id"`
	QuestionText   string                 `json:"questionText" bson:"question_text"`
	QuestionType   ContextualQuestionType `json:"questionType" bson:"question_type"`
	ContextSource  ContextSource          `json:"contextSource" bson:"context_source"`
	ContextNote    string                 `json:"contextNote,omitempty" bson:"context_note,omitempty"`
	Sequence       int                    `json:"sequence" bson:"sequence"`
	GeneratedAt    time.Time              `json:"generatedAt" bson:"generated_at"`
	IsUsed         bool                   `json:"isUsed" bson:"is_used"`
	UsedAt         *time.Time             `json:"usedAt,omitempty" bson:"used_at,omitempty"`
}
