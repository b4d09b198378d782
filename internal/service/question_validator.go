package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

// genericPatterns mark questions that ask for a definition instead of
// probing the candidate's own work.
var genericPatterns = compileAll([]string{
	`\bwhat is\b`,
	`\bwhat are\b`,
	`\bwhat does\b.*\bmean\b`,
	`\bexplain\b.*\bwhat\b`,
	`\bexplain how\b.*\bworks\b`,
	`\bhow does\b.*\bwork\b`,
	`\btell me about\b`,
	`\bdescribe the process\b`,
	`\bwhat'?s the difference\b`,
})

// personalPatterns mark topics an automated interview must not raise.
var personalPatterns = compileAll([]string{
	`\bsalary\b`,
	`\bcompensation\b`,
	`\bmoney\b`,
	`\bconflict\b`,
	`\bargument\b`,
	`\bfired\b`,
	`\bdismissal\b`,
	`\btermination\b`,
	`\bproblems with (your )?management\b`,
	`\bpersonal life\b`,
	`\bfamily\b`,
	`\bhealth\b`,
})

// concreteIndicators redeem generic phrasing when the question still pins
// the candidate to a specific project or situation.
var concreteIndicators = compileAll([]string{
	`\bproject\b`,
	`\btask\b`,
	`\bsolution\b`,
	`\bexperience\b`,
	`\bcase\b`,
	`\bsituation\b`,
	`\bexample\b`,
	`\bspecific\b`,
	`\bdifficult`,
	`\bchallenge`,
	`\bin detail\b`,
})

var expertIndicators = compileAll([]string{
	`\barchitecture\b`,
	`\bscal(?:ing|ability)\b`,
	`\boptimi[sz]ation\b`,
	`\bperformance\b`,
	`\bsecurity\b`,
	`\bmicroservice`,
	`\bcontaineri[sz]ation\b`,
	`\borchestration\b`,
	`\bmonitoring\b`,
	`\bdistributed\b`,
})

var beginnerIndicators = compileAll([]string{
	`\bwhat is\b`,
	`\bhow to use\b`,
	`\bbasic`,
	`\bsimple\b`,
	`\bfundamentals\b`,
	`\bgetting started\b`,
})

// Question length bounds in characters.
const (
	minQuestionLength = 20
	maxQuestionLength = 300
)

// labelStopWords are filler words stripped when extracting node keywords.
var labelStopWords = map[string]bool{
	"questions": true,
	"question":  true,
	"topic":     true,
	"section":   true,
	"part":      true,
	"block":     true,
	"and":       true,
	"the":       true,
	"with":      true,
	"for":       true,
}

// QuestionQualityValidator screens generated follow-up questions before
// they are persisted and served.
type QuestionQualityValidator struct{}

func NewQuestionQualityValidator() *QuestionQualityValidator {
	return &QuestionQualityValidator{}
}

// ValidateQuestions runs every candidate through the per-question checks.
// history holds question texts already generated for the same node; exact
// repeats are rejected.
func (v *QuestionQualityValidator) ValidateQuestions(
	questions []string,
	node *model.ScenarioNode,
	resumeCtx model.ResumeContext,
	history []string,
) (accepted []string, rejections []string) {
	seen := make(map[string]bool, len(history))
	for _, h := range history {
		seen[h] = true
	}

	for i, q := range questions {
		if reason := v.validateOne(q, node, resumeCtx, seen); reason != "" {
			rejections = append(rejections, fmt.Sprintf("question %d: %s", i+1, reason))
			continue
		}
		accepted = append(accepted, q)
		seen[q] = true
	}
	return accepted, rejections
}

// validateOne returns an empty string for a valid question, otherwise the
// rejection reason. Checks short-circuit on the first failure.
func (v *QuestionQualityValidator) validateOne(
	question string,
	node *model.ScenarioNode,
	resumeCtx model.ResumeContext,
	seen map[string]bool,
) string {
	if len(question) < minQuestionLength {
		return fmt.Sprintf("too short (%d chars)", len(question))
	}
	if len(question) > maxQuestionLength {
		return fmt.Sprintf("too long (%d chars)", len(question))
	}
	if v.isTooPersonal(question) {
		return "touches personal topics"
	}
	if v.isTooGeneric(question) {
		return "too generic"
	}
	if !v.isRelevantToNode(question, node) {
		return "not relevant to node"
	}
	if !v.matchesCandidateLevel(question, resumeCtx) {
		return "too difficult for candidate level"
	}
	if seen[question] {
		return "duplicates an existing question"
	}
	return ""
}

func (v *QuestionQualityValidator) isTooPersonal(question string) bool {
	lower := strings.ToLower(question)
	for _, re := range personalPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func (v *QuestionQualityValidator) isTooGeneric(question string) bool {
	lower := strings.ToLower(question)
	generic := false
	for _, re := range genericPatterns {
		if re.MatchString(lower) {
			generic = true
			break
		}
	}
	// Generic phrasing is acceptable only when anchored to something concrete.
	if generic {
		return !v.hasConcreteElements(question)
	}
	return !v.hasConcreteElements(question)
}

func (v *QuestionQualityValidator) hasConcreteElements(question string) bool {
	lower := strings.ToLower(question)
	for _, re := range concreteIndicators {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

func (v *QuestionQualityValidator) isRelevantToNode(question string, node *model.ScenarioNode) bool {
	if node == nil || node.Config.Label == "" {
		return true
	}
	keywords := extractLabelKeywords(node.Config.Label)
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(question)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (v *QuestionQualityValidator) matchesCandidateLevel(question string, resumeCtx model.ResumeContext) bool {
	level := resumeCtx.CandidateLevel
	if level == "" {
		level = model.LevelIntermediate
	}
	complexity := v.assessComplexity(question)
	// Difficulty may exceed the inferred level by at most one tier.
	return complexity.Tier()-level.Tier() <= 1
}

func (v *QuestionQualityValidator) assessComplexity(question string) model.SkillLevel {
	lower := strings.ToLower(question)
	expert := countMatches(lower, expertIndicators)
	beginner := countMatches(lower, beginnerIndicators)

	switch {
	case expert > 0:
		return model.LevelExpert
	case beginner > 0:
		return model.LevelBeginner
	default:
		return model.LevelIntermediate
	}
}

// QualityScore grades a question from 0 to 1. Diagnostic only; accept or
// reject decisions come from ValidateQuestions.
func (v *QuestionQualityValidator) QualityScore(question string) float64 {
	score := 1.0

	if len(question) < 30 {
		score -= 0.2
	} else if len(question) > 200 {
		score -= 0.1
	}

	lower := strings.ToLower(question)
	score -= float64(countMatches(lower, genericPatterns)) * 0.3

	if v.hasConcreteElements(question) {
		score += 0.2
	}

	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}

// SuggestImprovements lists concrete fixes for a weak question.
func (v *QuestionQualityValidator) SuggestImprovements(question string) []string {
	var suggestions []string
	if len(question) < minQuestionLength {
		suggestions = append(suggestions, "make the question more detailed")
	}
	if v.isTooGeneric(question) {
		suggestions = append(suggestions, "add concrete details or examples")
	}
	if !v.hasConcreteElements(question) {
		suggestions = append(suggestions, "reference a specific project or situation")
	}
	if v.isTooPersonal(question) {
		suggestions = append(suggestions, "avoid personal topics")
	}
	return suggestions
}

func countMatches(lower string, patterns []*regexp.Regexp) int {
	n := 0
	for _, re := range patterns {
		if re.MatchString(lower) {
			n++
		}
	}
	return n
}

// extractLabelKeywords pulls the meaningful words out of a node label.
func extractLabelKeywords(label string) []string {
	var keywords []string
	for _, word := range strings.Fields(label) {
		w := strings.Trim(word, ".,:;()")
		if len(w) <= 2 || labelStopWords[strings.ToLower(w)] {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}
