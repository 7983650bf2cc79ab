package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"talentscout/interview/internal/auth"
	"talentscout/interview/internal/config"
	"talentscout/interview/internal/engine"
	"talentscout/interview/internal/handlers"
	"talentscout/interview/internal/interview"
	"talentscout/interview/internal/jobs"
	"talentscout/interview/internal/llm"
	_ "talentscout/interview/internal/llm/gemini"
	"talentscout/interview/internal/metrics"
	appmiddleware "talentscout/interview/internal/middleware"
	"talentscout/interview/internal/prompts"
	"talentscout/interview/internal/resume"
	"talentscout/interview/internal/routers"
	"talentscout/interview/internal/scoring"
	"talentscout/interview/internal/session"
	"talentscout/interview/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type routeHandlers struct {
	interview *handlers.InterviewHandler
	candidate *handlers.CandidateHandler
	auth      *handlers.AuthHandler
	resume    *handlers.ResumeHandler
	health    *handlers.HealthHandler
}

func registerRoutes(router *chi.Mux, h routeHandlers, requireAdmin func(http.Handler) http.Handler) {
	routers.HealthRoutes(router, h.health)
	routers.AuthRoutes(router, h.auth)
	routers.InterviewRoutes(router, h.interview, requireAdmin)
	routers.CandidateRoutes(router, h.candidate, requireAdmin)
	routers.ResumeRoutes(router, h.resume, requireAdmin)
}

// app holds everything main starts and later shuts down.
type app struct {
	router   *chi.Mux
	service  *interview.Service
	backfill *jobs.ScoreBackfillJob
	closers  []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openDatabase connects to Postgres when DATABASE_URL is set and to SQLite
// otherwise.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db, nil
	}

	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func buildStore(cfg *config.Config, db *gorm.DB) (session.Store, error) {
	if cfg.SessionStore == config.StoreMemory {
		return session.NewMemoryStore(), nil
	}
	store := session.NewGormStore(db)
	if err := store.Migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// buildLocker returns a Redis lock when REDIS_ADDR is set so several
// instances can share sessions, and an in-process lock otherwise.
func buildLocker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Locker, *redis.Client, error) {
	mode, err := session.ParseLockMode(cfg.LockMode)
	if err != nil {
		return nil, nil, err
	}
	if cfg.RedisAddr == "" {
		return session.NewLocalLocker(mode), nil, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return session.NewRedisLocker(rdb, mode, cfg.LockTTL, logger), rdb, nil
}

func buildCollaborators(cfg *config.Config, promptManager prompts.PromptProvider, logger *zap.Logger) (engine.Interviewer, scoring.Judge, error) {
	var provider llm.Provider
	if cfg.UsesProvider() {
		base, err := llm.NewProvider(config.ProviderGemini)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize AI provider: %w", err)
		}
		provider = llm.NewRetrier(base, llm.RetryConfig{
			Timeout: cfg.CollaboratorTimeout,
			Retries: cfg.CollaboratorRetries,
			Backoff: cfg.CollaboratorBackoff,
		}, logger)
	}

	var interviewer engine.Interviewer
	if cfg.Interviewer == config.ProviderGemini {
		interviewer = engine.NewLLMInterviewer(provider, promptManager, logger)
	} else {
		bank, err := prompts.LoadQuestionBank(cfg.QuestionBankPath)
		if err != nil {
			return nil, nil, err
		}
		interviewer = engine.NewScriptedInterviewer(bank)
	}

	var judge scoring.Judge = scoring.NewHeuristicJudge()
	if cfg.Judge == config.ProviderGemini {
		judge = scoring.NewLLMJudge(provider, promptManager)
	}
	return interviewer, judge, nil
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}
	fail := func(err error) (*app, error) {
		a.Close()
		return nil, err
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return fail(fmt.Errorf("failed to initialize prompt manager: %w", err))
	}
	interviewer, judge, err := buildCollaborators(cfg, promptManager, logger)
	if err != nil {
		return fail(err)
	}
	policy, err := engine.NewPolicy(cfg.AdvancePolicy, cfg.AnswersPerPhase, cfg.AdaptiveMinAnswers, cfg.AdaptiveMaxAnswers)
	if err != nil {
		return fail(err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fail(err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	store, err := buildStore(cfg, db)
	if err != nil {
		return fail(err)
	}

	locker, rdb, err := buildLocker(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	dependencies := map[string]handlers.Pinger{"store": store}
	if rdb != nil {
		a.closers = append(a.closers, rdb.Close)
		dependencies["redis"] = locker.(*session.RedisLocker)
	}

	analyzer := resume.NewAnalyzer(db, resume.NewPlainTextExtractor(), logger)
	if err := analyzer.Migrate(); err != nil {
		return fail(err)
	}
	if seeded, err := analyzer.SeedDefaults(ctx); err != nil {
		return fail(err)
	} else if seeded > 0 {
		logger.Info("seeded resume keywords", zap.Int("count", seeded))
	}
	dependencies["resume_store"] = analyzer

	authenticator, err := auth.NewAuthenticator(cfg.AdminPassword, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fail(err)
	}
	if !authenticator.LoginEnabled() {
		logger.Warn("ADMIN_PASSWORD is not set, admin login is disabled")
	}
	if cfg.JWTSecretGenerated {
		logger.Warn("JWT_SECRET is not set, using a random secret for this process")
	}

	eng := engine.New(interviewer, policy, logger)
	aggregator := scoring.NewAggregator(judge, logger)
	a.service = interview.NewService(store, locker, eng, aggregator, logger)

	a.backfill = jobs.NewScoreBackfillJob(a.service, &jobs.BackfillConfig{
		Schedule: cfg.ScoreBackfillSchedule,
		Enabled:  cfg.BackfillEnabled(),
		Timeout:  time.Minute,
	}, logger)

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware)

	registerRoutes(router, routeHandlers{
		interview: handlers.NewInterviewHandler(a.service, logger),
		candidate: handlers.NewCandidateHandler(a.service, logger),
		auth:      handlers.NewAuthHandler(authenticator, logger),
		resume:    handlers.NewResumeHandler(analyzer, logger),
		health:    handlers.NewHealthHandler(interviewer, judge, promptManager, cfg, dependencies),
	}, appmiddleware.RequireAdmin(authenticator))
	a.router = router

	logger.Info("Configuration loaded",
		zap.String("interviewer", interviewer.Name()),
		zap.String("judge", judge.Name()),
		zap.String("advance_policy", policy.Name()),
		zap.String("session_store", cfg.SessionStore),
		zap.String("lock_mode", cfg.LockMode),
		zap.Bool("redis", rdb != nil))
	return a, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	application, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize service", zap.Error(err))
	}
	defer application.Close()

	if err := application.backfill.Start(); err != nil {
		logger.Error("Failed to start score backfill job", zap.Error(err))
	}

	serverAddr := ":" + strings.TrimPrefix(cfg.Port, ":")

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      application.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	application.backfill.Stop()

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
