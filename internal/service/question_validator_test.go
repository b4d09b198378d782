package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
)

func dockerNode() *model.ScenarioNode {
	return &model.ScenarioNode{
		ID:       "n_docker",
		NodeType: model.NodeQuestion,
		Config:   model.NodeConfig{Label: "Docker Practice"},
	}
}

func intermediateCtx() model.ResumeContext {
	return model.ResumeContext{
		HasResume:      true,
		CandidateLevel: model.LevelIntermediate,
	}
}

func TestValidateQuestionsAcceptsConcreteQuestion(t *testing.T) {
	v := NewQuestionQualityValidator()

	accepted, rejections := v.ValidateQuestions(
		[]string{"Describe a project where you used Docker for local development."},
		dockerNode(), intermediateCtx(), nil,
	)
	assert.Len(t, accepted, 1)
	assert.Empty(t, rejections)
}

func TestValidateQuestionsRejectionReasons(t *testing.T) {
	v := NewQuestionQualityValidator()

	cases := []struct {
		name     string
		question string
		reason   string
	}{
		{"too short", "Docker?", "too short"},
		{"too long", "Describe your Docker experience " + strings.Repeat("in great detail ", 20), "too long"},
		{"personal topic", "Did you ever have a conflict about Docker usage with your team?", "personal topics"},
		{"generic definition", "What is Docker and how does it work internally in the kernel?", "too generic"},
		{"off topic", "Describe a project where you used Terraform modules.", "not relevant"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			accepted, rejections := v.ValidateQuestions([]string{tc.question}, dockerNode(), intermediateCtx(), nil)
			assert.Empty(t, accepted)
			if assert.Len(t, rejections, 1) {
				assert.Contains(t, rejections[0], tc.reason)
			}
		})
	}
}

func TestValidateQuestionsLevelGate(t *testing.T) {
	v := NewQuestionQualityValidator()
	expert := "Describe a project where you designed the Docker orchestration architecture."

	beginner := model.ResumeContext{HasResume: true, CandidateLevel: model.LevelBeginner}
	accepted, rejections := v.ValidateQuestions([]string{expert}, dockerNode(), beginner, nil)
	assert.Empty(t, accepted)
	if assert.Len(t, rejections, 1) {
		assert.Contains(t, rejections[0], "too difficult")
	}

	// One tier above the candidate is allowed.
	accepted, rejections = v.ValidateQuestions([]string{expert}, dockerNode(), intermediateCtx(), nil)
	assert.Len(t, accepted, 1)
	assert.Empty(t, rejections)
}

func TestValidateQuestionsDeduplicates(t *testing.T) {
	v := NewQuestionQualityValidator()
	q := "Describe a project where you used Docker for deployments."

	t.Run("against history", func(t *testing.T) {
		accepted, rejections := v.ValidateQuestions([]string{q}, dockerNode(), intermediateCtx(), []string{q})
		assert.Empty(t, accepted)
		if assert.Len(t, rejections, 1) {
			assert.Contains(t, rejections[0], "duplicates")
		}
	})

	t.Run("within one batch", func(t *testing.T) {
		accepted, rejections := v.ValidateQuestions([]string{q, q}, dockerNode(), intermediateCtx(), nil)
		assert.Len(t, accepted, 1)
		assert.Len(t, rejections, 1)
	})
}

func TestValidateQuestionsAcceptsTemplates(t *testing.T) {
	v := NewQuestionQualityValidator()

	templates := templateQuestions("Docker Practice", 3)
	texts := make([]string, len(templates))
	for i, c := range templates {
		texts[i] = c.Question
	}

	accepted, rejections := v.ValidateQuestions(texts, dockerNode(), intermediateCtx(), nil)
	assert.Len(t, accepted, len(templates))
	assert.Empty(t, rejections)
}

func TestQualityScore(t *testing.T) {
	v := NewQuestionQualityValidator()

	concrete := v.QualityScore("Describe a project where you used Docker in a CI pipeline.")
	assert.Equal(t, 1.0, concrete)

	generic := v.QualityScore("What is Docker and why does everyone mention it so often today?")
	assert.Less(t, generic, 1.0)

	short := v.QualityScore("Docker basics again?")
	assert.Less(t, short, 1.0)
}

func TestSuggestImprovements(t *testing.T) {
	v := NewQuestionQualityValidator()

	suggestions := v.SuggestImprovements("What is Docker?")
	assert.NotEmpty(t, suggestions)

	assert.Empty(t, v.SuggestImprovements("Describe a project where you used Docker for deployments."))
}
