package model

import "time"

// SkillCategory groups vacancy skills
type SkillCategory string

const (
	CategoryProgramming   SkillCategory = "programming"
	CategoryDatabase      SkillCategory = "database"
	CategoryDevOps        SkillCategory = "devops"
	CategoryFrameworks    SkillCategory = "frameworks"
	CategoryTools         SkillCategory = "tools"
	CategoryCloud         SkillCategory = "cloud"
	CategoryTesting       SkillCategory = "testing"
	CategorySoftSkills    SkillCategory = "soft_skills"
	CategoryMethodologies SkillCategory = "methodologies"
	CategoryOther         SkillCategory = "other"
)

// SkillLevel is a proficiency tier
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "beginner"
	LevelIntermediate SkillLevel = "intermediate"
	LevelExpert       SkillLevel = "expert"
)

// Tier maps a level to its ordinal for gap comparisons.
func (l SkillLevel) Tier() int {
	switch l {
	case LevelBeginner:
		return 0
	case LevelIntermediate:
		return 1
	case LevelExpert:
		return 2
	}
	return 1
}

// VacancySkill is one ranked requirement extracted from a vacancy
type VacancySkill struct {
	SkillName     string        `json:"skillName" bson:"skill_name"`
	Category      SkillCategory `json:"category" bson:"category"`
	Importance    float64       `json:"importance" bson:"importance"`
	RequiredLevel SkillLevel    `json:"requiredLevel" bson:"required_level"`
	IsMandatory   bool          `json:"isMandatory" bson:"is_mandatory"`
	Alternatives  []string      `json:"alternatives,omitempty" bson:"alternatives,omitempty"`
}

// Vacancy is the position a session interviews for
type Vacancy struct {
	ID           string         `json:"id" bson:"_id"`
	Title        string         `json:"title" bson:"title"`
	Requirements string         `json:"requirements,omitempty" bson:"requirements,omitempty"`
	Skills       []VacancySkill `json:"skills,omitempty" bson:"skills,omitempty"`
	CreatedAt    time.Time      `json:"createdAt" bson:"created_at"`
}

// ResumeSkill is one skill parsed out of a candidate's resume
type ResumeSkill struct {
	SkillName       string `json:"skillName" bson:"skill_name"`
	ExperienceYears int    `json:"experienceYears,omitempty" bson:"experience_years,omitempty"`
}

// Resume is the candidate's parsed resume
type Resume struct {
	ID          string        `json:"id" bson:"_id"`
	CandidateID string        `json:"candidateId" bson:"candidate_id"`
	Skills      []ResumeSkill `json:"skills,omitempty" bson:"skills,omitempty"`
	Summary     string        `json:"summary,omitempty" bson:"summary,omitempty"`
}

// ResumeContext is the resume summary the generator scopes to one node
type ResumeContext struct {
	HasResume         bool       `json:"hasResume"`
	ResumeID          string     `json:"resumeId,omitempty"`
	NodeLabel         string     `json:"nodeLabel,omitempty"`
	RelevantSkills    []string   `json:"relevantSkills,omitempty"`
	CandidateLevel    SkillLevel `json:"candidateLevel"`
	ExperienceSummary string     `json:"experienceSummary,omitempty"`
}
