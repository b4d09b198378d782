package service

import (
	"regexp"
	"strings"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

// negativePatterns catch denial-of-experience phrasing in answers.
var negativePatterns = compileAll([]string{
	`\bdon'?t know\b`,
	`\bdo not know\b`,
	`\bnever worked\b`,
	`\bnever used\b`,
	`\bnever heard\b`,
	`\bnever learned\b`,
	`\bnever studied\b`,
	`\bnot familiar\b`,
	`\bunfamiliar\b`,
	`\bno experience\b`,
	`\bhave no experience\b`,
	`\bhaven'?t worked\b`,
	`\bhaven'?t used\b`,
	`\bhaven'?t tried\b`,
	`\bcan'?t answer\b`,
	`\bcannot answer\b`,
	`\bcan'?t recall\b`,
	`\bcan'?t remember\b`,
	`\bdon'?t understand\b`,
	`\bdon'?t remember\b`,
	`\bnot sure\b`,
	`\bunsure\b`,
	`\bi forgot\b`,
	`\bno idea\b`,
})

// confidencePatterns grade how certain the phrasing sounds.
var confidencePatterns = map[model.ConfidenceLevel][]*regexp.Regexp{
	model.ConfidenceHigh: compileAll([]string{
		`\bdefinitely\b`,
		`\bcertainly\b`,
		`\babsolutely\b`,
		`\bof course\b`,
		`\bconfident\b`,
		`\bi know\b`,
		`\bi'?ve worked\b`,
		`\bi have worked\b`,
		`\bi worked\b`,
		`\bi'?ve used\b`,
		`\bi used\b`,
		`\bi have used\b`,
		`\bextensive experience\b`,
		`\bhands-?on\b`,
		`\bin production\b`,
		`\bi understand\b`,
		`\bi can explain\b`,
	}),
	model.ConfidenceMedium: compileAll([]string{
		`\bprobably\b`,
		`\bperhaps\b`,
		`\bmaybe\b`,
		`\bi think\b`,
		`\bi believe\b`,
		`\bi suppose\b`,
		`\bi guess\b`,
		`\bmost likely\b`,
		`\bsort of\b`,
		`\bkind of\b`,
		`\bin general\b`,
		`\bbasically\b`,
	}),
	model.ConfidenceLow: compileAll([]string{
		`\bnot sure\b`,
		`\bunsure\b`,
		`\bi doubt\b`,
		`\bdon'?t know\b`,
		`\bi forgot\b`,
		`\bdon'?t remember\b`,
		`\bcan'?t recall\b`,
		`\bdon'?t understand\b`,
		`\bno idea\b`,
	}),
}

// relatedSkills links a skill to neighbours that usually fall with it.
var relatedSkills = map[string][]string{
	"Python":        {"FastAPI", "Django", "Flask", "Async Programming"},
	"FastAPI":       {"Python", "Async Programming", "API Development"},
	"Databases":     {"SQL", "PostgreSQL", "MySQL", "ORM", "Migrations"},
	"SQL":           {"Database Design", "Query Optimization", "Indexing", "Transactions"},
	"Testing":       {"Unit Tests", "Integration Tests", "TDD"},
	"Microservices": {"Docker", "Kubernetes", "API Gateway"},
	"Deployment":    {"CI/CD", "Docker", "Kubernetes", "Cloud Platforms"},
	"Async":         {"FastAPI", "Concurrent Programming", "Performance"},
}

// skillGapWindow is how far around a negative match a skill mention still
// counts as denied, in bytes of lowercased text.
const skillGapWindow = 50

func compileAll(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// PatternAnalyzer detects negative and uncertain phrasing in free-text
// answers. It is a pure function of its input plus the static tables.
type PatternAnalyzer struct{}

func NewPatternAnalyzer() *PatternAnalyzer {
	return &PatternAnalyzer{}
}

// Analyze classifies one answer. An answer is negative iff any negative
// pattern matches; the confidence level is the indicator set with the most
// matches, ties resolving to medium, no matches to unknown.
func (a *PatternAnalyzer) Analyze(text string) model.AnswerAnalysis {
	if text == "" {
		return model.AnswerAnalysis{
			ConfidenceLevel: model.ConfidenceUnknown,
			MatchedPatterns: []string{},
		}
	}

	lower := strings.ToLower(text)

	matched := []string{}
	for _, re := range negativePatterns {
		if re.MatchString(lower) {
			matched = append(matched, re.String())
		}
	}

	counts := map[model.ConfidenceLevel]int{}
	for level, patterns := range confidencePatterns {
		for _, re := range patterns {
			counts[level] += len(re.FindAllStringIndex(lower, -1))
		}
	}

	level := model.ConfidenceUnknown
	score := 0.0
	maxCount := counts[model.ConfidenceHigh]
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount > 0 {
		switch {
		case counts[model.ConfidenceHigh] > counts[model.ConfidenceLow]:
			level = model.ConfidenceHigh
			score = float64(counts[model.ConfidenceHigh]) / 10.0
			if score > 1.0 {
				score = 1.0
			}
		case counts[model.ConfidenceLow] > counts[model.ConfidenceHigh]:
			level = model.ConfidenceLow
			score = 1.0 - float64(counts[model.ConfidenceLow])/10.0
			if score < 0.0 {
				score = 0.0
			}
		default:
			level = model.ConfidenceMedium
			score = 0.5
		}
	}

	return model.AnswerAnalysis{
		IsNegative:      len(matched) > 0,
		ConfidenceLevel: level,
		MatchedPatterns: matched,
		ConfidenceScore: score,
		TextLength:      len(text),
		WordCount:       len(strings.Fields(text)),
	}
}

// SkillGaps flags each required skill the answer fails to cover: either the
// skill is never mentioned, or a negative pattern fires close enough to a
// mention to read as a denial of it.
func (a *PatternAnalyzer) SkillGaps(text string, requiredSkills []string) []string {
	if text == "" || len(requiredSkills) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	var missing []string

	for _, skill := range requiredSkills {
		skillLower := strings.ToLower(skill)
		mentioned := strings.Contains(lower, skillLower)

		denied := false
		for _, re := range negativePatterns {
			for _, loc := range re.FindAllStringIndex(lower, -1) {
				start := loc[0] - skillGapWindow
				if start < 0 {
					start = 0
				}
				end := loc[1] + skillGapWindow
				if end > len(lower) {
					end = len(lower)
				}
				if strings.Contains(lower[start:end], skillLower) {
					denied = true
					break
				}
			}
			if denied {
				break
			}
		}

		if !mentioned || denied {
			missing = append(missing, skill)
		}
	}
	return missing
}

// ShouldSkipRelated reports whether a skill, or one of its related skills,
// has already been denied in this session.
func (a *PatternAnalyzer) ShouldSkipRelated(skillName string, negativeResponses map[string][]model.NegativeResponse) bool {
	if len(negativeResponses) == 0 {
		return false
	}
	if _, ok := negativeResponses[skillName]; ok {
		return true
	}
	for _, related := range relatedSkills[skillName] {
		if _, ok := negativeResponses[related]; ok {
			return true
		}
	}
	return false
}
