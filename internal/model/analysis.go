package model

// ConfidenceLevel is the dominant certainty register of an answer
type ConfidenceLevel string

const (
	ConfidenceHigh    ConfidenceLevel = "high"
	ConfidenceMedium  ConfidenceLevel = "medium"
	ConfidenceLow     ConfidenceLevel = "low"
	ConfidenceUnknown ConfidenceLevel = "unknown"
)

// AnswerAnalysis is the pattern analyzer's verdict on one answer
type AnswerAnalysis struct {
	IsNegative      bool            `json:"isNegative"`
	ConfidenceLevel ConfidenceLevel `json:"confidenceLevel"`
	MatchedPatterns []string        `json:"matchedPatterns"`
	ConfidenceScore float64         `json:"confidenceScore"`
	TextLength      int             `json:"textLength"`
	WordCount       int             `json:"wordCount"`
}

// NextQuestion is the navigation engine's answer to "what do we ask now"
type NextQuestion struct {
	QuestionText         string `json:"questionText,omitempty"`
	QuestionID           string `json:"questionId,omitempty"`
	NodeID               string `json:"nodeId,omitempty"`
	IsContextual         bool   `json:"isContextual"`
	ContextualQuestionID string `json:"contextualQuestionId,omitempty"`
	ShouldTerminate      bool   `json:"shouldTerminate"`
	Reason               string `json:"reason,omitempty"`
}

// TransitionView is one outgoing transition with its current evaluation
type TransitionView struct {
	TransitionID  string              `json:"transitionId"`
	ToNodeID      string              `json:"toNodeId"`
	ConditionType ConditionType       `json:"conditionType"`
	Condition     TransitionCondition `json:"condition"`
	Priority      int                 `json:"priority"`
	Label         string              `json:"label,omitempty"`
	IsValid       bool                `json:"isValid"`
}

// ContextUpdate is returned after an answer is folded into the session context
type ContextUpdate struct {
	SkillAssessments  map[string]*SkillAssessment   `json:"skillAssessments"`
	NegativeResponses map[string][]NegativeResponse `json:"negativeResponses"`
	Analysis          AnswerAnalysis                `json:"analysis"`
}

// QuestionsStatus summarizes contextual-question usage for one node
type QuestionsStatus struct {
	Total        int    `json:"total"`
	Used         int    `json:"used"`
	Remaining    int    `json:"remaining"`
	HasRemaining bool   `json:"hasRemaining"`
	NodeID       string `json:"nodeId"`
}
