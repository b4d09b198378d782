package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestTransitionValidate(t *testing.T) {
	cases := []struct {
		name    string
		tr      ScenarioTransition
		wantErr string
	}{
		{
			name: "always with no payload",
			tr:   ScenarioTransition{ID: "t", ConditionType: ConditionAlways},
		},
		{
			name: "empty type defaults to always",
			tr:   ScenarioTransition{ID: "t"},
		},
		{
			name: "always with stray payload",
			tr: ScenarioTransition{
				ID: "t", ConditionType: ConditionAlways,
				Condition: TransitionCondition{SkillMissing: &SkillMissingCondition{SkillName: "Go"}},
			},
			wantErr: "must carry no payload",
		},
		{
			name: "score threshold with bounds",
			tr: ScenarioTransition{
				ID: "t", ConditionType: ConditionScoreThreshold,
				Condition: TransitionCondition{
					ScoreThreshold: &ScoreThresholdCondition{Criterion: "Python", MinScore: f(0.3), MaxScore: f(0.9)},
				},
			},
		},
		{
			name:    "score threshold missing payload",
			tr:      ScenarioTransition{ID: "t", ConditionType: ConditionScoreThreshold},
			wantErr: "requires a scoreThreshold payload",
		},
		{
			name: "score threshold with wrong variant",
			tr: ScenarioTransition{
				ID: "t", ConditionType: ConditionScoreThreshold,
				Condition: TransitionCondition{
					NegativeResponse: &NegativeResponseCondition{Patterns: []string{"no"}},
				},
			},
			wantErr: "requires a scoreThreshold payload",
		},
		{
			name: "score threshold missing criterion",
			tr: ScenarioTransition{
				ID: "t", ConditionType: ConditionScoreThreshold,
				Condition: TransitionCondition{ScoreThreshold: &ScoreThresholdCondition{MinScore: f(0.5)}},
			},
			wantErr: "requires a criterion",
		},
		{
			name: "score threshold inverted bounds",
			tr: ScenarioTransition{
				ID: "t", ConditionType: ConditionScoreThreshold,
				Condition: TransitionCondition{
					ScoreThreshold: &ScoreThresholdCondition{Criterion: "Python", MinScore: f(0.9), MaxScore: f(0.3)},
				},
			},
			wantErr: "bounds inverted",
		},
		{
			name: "negative response with patterns",
			tr: ScenarioTransition{
				ID: "t", ConditionType: ConditionNegativeResponse,
				Condition: TransitionCondition{
					NegativeResponse: &NegativeResponseCondition{Patterns: []string{"never worked"}},
				},
			},
		},
		{
			name: "negative response without patterns",
			tr: ScenarioTransition{
				ID: "t", ConditionType: ConditionNegativeResponse,
				Condition: TransitionCondition{NegativeResponse: &NegativeResponseCondition{}},
			},
			wantErr: "at least one pattern",
		},
		{
			name: "skill missing ok",
			tr: ScenarioTransition{
				ID: "t", ConditionType: ConditionSkillMissing,
				Condition: TransitionCondition{SkillMissing: &SkillMissingCondition{SkillName: "Docker"}},
			},
		},
		{
			name: "skill missing without name",
			tr: ScenarioTransition{
				ID: "t", ConditionType: ConditionSkillMissing,
				Condition: TransitionCondition{SkillMissing: &SkillMissingCondition{}},
			},
			wantErr: "requires a skill name",
		},
		{
			name: "two variants set",
			tr: ScenarioTransition{
				ID: "t", ConditionType: ConditionSkillMissing,
				Condition: TransitionCondition{
					SkillMissing:   &SkillMissingCondition{SkillName: "Docker"},
					ScoreThreshold: &ScoreThresholdCondition{Criterion: "Docker"},
				},
			},
			wantErr: "requires a skillMissing payload",
		},
		{
			name:    "unknown type",
			tr:      ScenarioTransition{ID: "t", ConditionType: "sometimes"},
			wantErr: "unknown condition type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tr.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestSessionContextRecordAssessment(t *testing.T) {
	sc := NewSessionContext("s1", "sc1")

	sc.RecordAssessment("Python", 0.8)
	sc.RecordAssessment("Python", 0.4)

	a := sc.SkillAssessments["Python"]
	assert.Equal(t, 2, a.Count)
	assert.InDelta(t, 1.2, a.TotalScore, 1e-9)
	assert.InDelta(t, 0.6, a.AverageScore, 1e-9)
	assert.InDelta(t, 0.4, a.LastScore, 1e-9)
}

func TestSessionContextMarkAsked(t *testing.T) {
	sc := NewSessionContext("s1", "sc1")
	st := sc.NodeState("n1")
	st.Remaining = []string{"q one", "q two"}

	sc.MarkAsked("n1", "q one")
	assert.Equal(t, []string{"q one"}, st.Asked)
	assert.Equal(t, []string{"q two"}, st.Remaining)

	// Marking again is a no-op.
	sc.MarkAsked("n1", "q one")
	assert.Equal(t, []string{"q one"}, st.Asked)
}
