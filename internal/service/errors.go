package service

import "errors"

var (
	// ErrSessionNotFound means the session id resolves to nothing.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNodeNotFound means a node id resolves to nothing.
	ErrNodeNotFound = errors.New("scenario node not found")
	// ErrVacancyNotFound means the session's vacancy is gone.
	ErrVacancyNotFound = errors.New("vacancy not found")
	// ErrScenarioNotConfigured means no active scenario exists for the vacancy.
	ErrScenarioNotConfigured = errors.New("no active scenario for vacancy")
	// ErrGenerationUnavailable is the recoverable LLM failure; callers fall
	// back to templates and never surface it to a running interview.
	ErrGenerationUnavailable = errors.New("text generation unavailable")
)

// Termination reasons reported through NextQuestion.Reason. Callers tell a
// normal end from an error end by this string, never by a raised error.
const (
	ReasonCompleted        = "interview completed"
	ReasonCriticalSkillGap = "critical skill gap"
	ReasonNoReachable      = "no reachable question"
	ReasonMalformedGraph   = "scenario graph misconfigured"
)
