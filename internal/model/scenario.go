package model

import (
	"fmt"
	"time"
)

// NodeType defines the role of a node in the interview graph
type NodeType string

const (
	NodeStart     NodeType = "start"
	NodeQuestion  NodeType = "question"
	NodeCondition NodeType = "condition"
	NodeSkip      NodeType = "skip"
	NodeEnd       NodeType = "end"
)

// NodeConfig is the typed per-node configuration. The generation service
// writes it once; the navigation engine only reads it.
type NodeConfig struct {
	Label        string   `json:"label" bson:"label"`
	Weight       float64  `json:"weight" bson:"weight"`
	MustHave     bool     `json:"mustHave" bson:"must_have"`
	TargetSkills []string `json:"targetSkills,omitempty" bson:"target_skills,omitempty"`
}

// ScenarioNode is a vertex of an interview scenario graph
type ScenarioNode struct {
	ID         string     `json:"id" bson:"_id"`
	ScenarioID string     `json:"scenarioId" bson:"scenario_id"`
	QuestionID string     `json:"questionId,omitempty" bson:"question_id,omitempty"`
	NodeType   NodeType   `json:"nodeType" bson:"node_type"`
	Config     NodeConfig `json:"config" bson:"config"`
	CreatedAt  time.Time  `json:"createdAt" bson:"created_at"`
}

// IsTerminal reports whether reaching this node ends the interview.
func (n *ScenarioNode) IsTerminal() bool {
	return n.NodeType == NodeEnd
}

// ConditionType defines how a transition condition is evaluated
type ConditionType string

const (
	ConditionAlways           ConditionType = "always"
	ConditionScoreThreshold   ConditionType = "score_threshold"
	ConditionNegativeResponse ConditionType = "negative_response"
	ConditionSkillMissing     ConditionType = "skill_missing"
)

// ScoreThresholdCondition passes when the criterion's running average score
// lies within the given bounds. Either bound may be omitted.
type ScoreThresholdCondition struct {
	Criterion string   `json:"criterion" bson:"criterion"`
	MinScore  *float64 `json:"minScore,omitempty" bson:"min_score,omitempty"`
	MaxScore  *float64 `json:"maxScore,omitempty" bson:"max_score,omitempty"`
}

// NegativeResponseCondition passes when any pattern occurs in the most
// recent answer on the session path.
type NegativeResponseCondition struct {
	Patterns []string `json:"patterns" bson:"patterns"`
}

// SkillMissingCondition passes when the named skill was denied by the
// candidate or is scored below the low-skill threshold.
type SkillMissingCondition struct {
	SkillName string `json:"skillName" bson:"skill_name"`
}

// TransitionCondition is a tagged union: at most one variant is set, and the
// set variant must match the transition's ConditionType. Malformed payloads
// are caught at graph-load time, not during evaluation.
type TransitionCondition struct {
	ScoreThreshold   *ScoreThresholdCondition   `json:"scoreThreshold,omitempty" bson:"score_threshold,omitempty"`
	NegativeResponse *NegativeResponseCondition `json:"negativeResponse,omitempty" bson:"negative_response,omitempty"`
	SkillMissing     *SkillMissingCondition     `json:"skillMissing,omitempty" bson:"skill_missing,omitempty"`
}

// ScenarioTransition is a directed, conditioned, prioritized edge.
// For one from-node, transitions are evaluated in ascending priority order;
// equal priorities keep declaration order.
type ScenarioTransition struct {
	ID            string              `json:"id" bson:"_id"`
	ScenarioID    string              `json:"scenarioId" bson:"scenario_id"`
	FromNodeID    string              `json:"fromNodeId" bson:"from_node_id"`
	ToNodeID      string              `json:"toNodeId" bson:"to_node_id"`
	ConditionType ConditionType       `json:"conditionType" bson:"condition_type"`
	Condition     TransitionCondition `json:"condition" bson:"condition"`
	Priority      int                 `json:"priority" bson:"priority"`
	Label         string              `json:"label,omitempty" bson:"label,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"created_at"`
}

// Validate checks that the condition payload carries exactly the variant the
// condition type needs.
func (t *ScenarioTransition) Validate() error {
	set := 0
	if t.Condition.ScoreThreshold != nil {
		set++
	}
	if t.Condition.NegativeResponse != nil {
		set++
	}
	if t.Condition.SkillMissing != nil {
		set++
	}

	switch t.ConditionType {
	case ConditionAlways, "":
		if set != 0 {
			return fmt.Errorf("transition %s: always condition must carry no payload", t.ID)
		}
	case ConditionScoreThreshold:
		if t.Condition.ScoreThreshold == nil || set != 1 {
			return fmt.Errorf("transition %s: score_threshold condition requires a scoreThreshold payload", t.ID)
		}
		if t.Condition.ScoreThreshold.Criterion == "" {
			return fmt.Errorf("transition %s: score_threshold condition requires a criterion", t.ID)
		}
		st := t.Condition.ScoreThreshold
		if st.MinScore != nil && st.MaxScore != nil && *st.MinScore > *st.MaxScore {
			return fmt.Errorf("transition %s: score_threshold bounds inverted", t.ID)
		}
	case ConditionNegativeResponse:
		if t.Condition.NegativeResponse == nil || set != 1 {
			return fmt.Errorf("transition %s: negative_response condition requires a negativeResponse payload", t.ID)
		}
		if len(t.Condition.NegativeResponse.Patterns) == 0 {
			return fmt.Errorf("transition %s: negative_response condition requires at least one pattern", t.ID)
		}
	case ConditionSkillMissing:
		if t.Condition.SkillMissing == nil || set != 1 {
			return fmt.Errorf("transition %s: skill_missing condition requires a skillMissing payload", t.ID)
		}
		if t.Condition.SkillMissing.SkillName == "" {
			return fmt.Errorf("transition %s: skill_missing condition requires a skill name", t.ID)
		}
	default:
		return fmt.Errorf("transition %s: unknown condition type %q", t.ID, t.ConditionType)
	}
	return nil
}

// InterviewScenario is the graph header. Nodes and transitions reference it
// by id; IsActive selects the scenario used for new sessions of a vacancy.
type InterviewScenario struct {
	ID        string    `json:"id" bson:"_id"`
	VacancyID string    `json:"vacancyId" bson:"vacancy_id"`
	Name      string    `json:"name" bson:"name"`
	IsActive  bool      `json:"isActive" bson:"is_active"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
