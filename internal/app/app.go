package app

import (
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/chudo9991/more.tech.2025-sub000/internal/cache"
	"github.com/chudo9991/more.tech.2025-sub000/internal/config"
	"github.com/chudo9991/more.tech.2025-sub000/internal/repository"
	"github.com/chudo9991/more.tech.2025-sub000/internal/service"
	"github.com/chudo9991/more.tech.2025-sub000/internal/transport/rest"
)

// App wires repositories, caches and services into the HTTP container.
type App struct {
	SessionRepo   repository.SessionRepo
	ScenarioRepo  repository.ScenarioRepo
	QuestionRepo  repository.QuestionRepo
	ContextRepo   repository.SessionContextRepo
	CQRepo        repository.ContextualQuestionRepo
	VacancyRepo   repository.VacancyRepo
	ResumeRepo    repository.ResumeRepo
	SkillsCache   cache.SkillsCache
	GenCache      cache.GenerationCache
	Navigation    *service.NavigationService
	Generator     *service.ContextualQuestionGenerator
	SkillsService *service.SkillsExtractor
}

// New builds the full dependency graph from the shared connections.
func New(cfg *config.Config, db *mongo.Database, rdb *redis.Client, logger *zap.Logger) *App {
	sessionRepo := repository.NewSessionRepo(db)
	scenarioRepo := repository.NewScenarioRepo(db)
	questionRepo := repository.NewQuestionRepo(db)
	contextRepo := repository.NewSessionContextRepo(db)
	cqRepo := repository.NewContextualQuestionRepo(db)
	vacancyRepo := repository.NewVacancyRepo(db)
	resumeRepo := repository.NewResumeRepo(db)

	skillsCache := cache.NewSkillsCache(rdb)
	genCache := cache.NewGenerationCache(rdb)

	generator := service.NewGeminiGenerator(cfg.AI)
	analyzer := service.NewPatternAnalyzer()
	validator := service.NewQuestionQualityValidator()

	skillsSvc := service.NewSkillsExtractor(vacancyRepo, skillsCache, generator, logger)
	genSvc := service.NewContextualQuestionGenerator(
		sessionRepo, scenarioRepo, vacancyRepo, resumeRepo, contextRepo, cqRepo,
		skillsSvc, validator, analyzer, generator, genCache, logger,
	)
	navSvc := service.NewNavigationService(
		sessionRepo, scenarioRepo, questionRepo, contextRepo, cqRepo, analyzer, logger,
	)

	return &App{
		SessionRepo:   sessionRepo,
		ScenarioRepo:  scenarioRepo,
		QuestionRepo:  questionRepo,
		ContextRepo:   contextRepo,
		CQRepo:        cqRepo,
		VacancyRepo:   vacancyRepo,
		ResumeRepo:    resumeRepo,
		SkillsCache:   skillsCache,
		GenCache:      genCache,
		Navigation:    navSvc,
		Generator:     genSvc,
		SkillsService: skillsSvc,
	}
}

// Container returns the router dependencies.
func (a *App) Container() *rest.Container {
	return &rest.Container{
		SessionRepo:       a.SessionRepo,
		NavigationService: a.Navigation,
		GeneratorService:  a.Generator,
	}
}
