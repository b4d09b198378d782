package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chudo9991/more.tech.2025-sub000/internal/cache"
	"github.com/chudo9991/more.tech.2025-sub000/internal/model"
	"github.com/chudo9991/more.tech.2025-sub000/internal/repository"
)

// SkillsExtractor resolves a vacancy to its ranked skill list. Resolution
// order: redis cache, skills stored on the vacancy document, LLM extraction
// from the requirements text, and finally a plain-text heuristic.
type SkillsExtractor struct {
	vacancyRepo repository.VacancyRepo
	skillsCache cache.SkillsCache
	generator   TextGenerator
	logger      *zap.Logger
}

func NewSkillsExtractor(
	vacancyRepo repository.VacancyRepo,
	skillsCache cache.SkillsCache,
	generator TextGenerator,
	logger *zap.Logger,
) *SkillsExtractor {
	return &SkillsExtractor{
		vacancyRepo: vacancyRepo,
		skillsCache: skillsCache,
		generator:   generator,
		logger:      logger,
	}
}

// ExtractSkills returns the vacancy's skills, extracting and caching them
// when needed. forceReload bypasses the cache.
func (e *SkillsExtractor) ExtractSkills(ctx context.Context, vacancyID string, forceReload bool) ([]model.VacancySkill, error) {
	if !forceReload {
		skills, err := e.skillsCache.Get(ctx, vacancyID)
		if err != nil {
			e.logger.Warn("skills cache read failed", zap.String("vacancy_id", vacancyID), zap.Error(err))
		} else if skills != nil {
			return skills, nil
		}
	}

	vacancy, err := e.vacancyRepo.GetByID(ctx, vacancyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vacancy: %w", err)
	}
	if vacancy == nil {
		return nil, ErrVacancyNotFound
	}

	skills := vacancy.Skills
	if len(skills) == 0 {
		skills = e.extractFromRequirements(ctx, vacancy)
		if len(skills) > 0 {
			if err := e.vacancyRepo.SaveSkills(ctx, vacancyID, skills); err != nil {
				e.logger.Warn("failed to persist extracted skills", zap.String("vacancy_id", vacancyID), zap.Error(err))
			}
		}
	}

	if err := e.skillsCache.Set(ctx, vacancyID, skills); err != nil {
		e.logger.Warn("skills cache write failed", zap.String("vacancy_id", vacancyID), zap.Error(err))
	}
	return skills, nil
}

func (e *SkillsExtractor) extractFromRequirements(ctx context.Context, vacancy *model.Vacancy) []model.VacancySkill {
	if vacancy.Requirements == "" {
		return nil
	}

	if e.generator.Enabled() {
		skills, err := e.extractWithLLM(ctx, vacancy)
		if err == nil && len(skills) > 0 {
			return skills
		}
		e.logger.Warn("LLM skill extraction failed, using heuristic",
			zap.String("vacancy_id", vacancy.ID), zap.Error(err))
	}
	return heuristicSkills(vacancy.Requirements)
}

func (e *SkillsExtractor) extractWithLLM(ctx context.Context, vacancy *model.Vacancy) ([]model.VacancySkill, error) {
	prompt := fmt.Sprintf(`You are a technical recruiter. Extract the skills required by this vacancy.
Return ONLY valid JSON:
{
  "skills": [
    {
      "skillName": "skill",
      "category": "programming|database|devops|frameworks|tools|cloud|testing|soft_skills|methodologies|other",
      "importance": 0.0 to 1.0,
      "requiredLevel": "beginner|intermediate|expert",
      "isMandatory": true or false,
      "alternatives": ["other names"]
    }
  ]
}

Vacancy: %s
Requirements:
%s`, vacancy.Title, vacancy.Requirements)

	response, err := e.generator.Generate(ctx, prompt, 1000, 0.2)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Skills []model.VacancySkill `json:"skills"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: unparseable skills payload: %v", ErrGenerationUnavailable, err)
	}
	return parsed.Skills, nil
}

// heuristicSkills splits the requirements text into one skill per line or
// comma-separated token. Importance decays with position.
func heuristicSkills(requirements string) []model.VacancySkill {
	fields := strings.FieldsFunc(requirements, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})

	var skills []model.VacancySkill
	for i, f := range fields {
		name := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(f), "-* "))
		if name == "" || len(name) > 60 {
			continue
		}
		importance := 1.0 - float64(i)*0.1
		if importance < 0.3 {
			importance = 0.3
		}
		skills = append(skills, model.VacancySkill{
			SkillName:     name,
			Category:      model.CategoryOther,
			Importance:    importance,
			RequiredLevel: model.LevelIntermediate,
		})
	}
	return skills
}

// extractJSON trims any prose around the first JSON object in an LLM reply.
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return response
	}
	return response[start : end+1]
}
