package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"tecrank_admin/internal/api"
	"tecrank_admin/internal/app/screen"
	"tecrank_admin/internal/app/service"
	"tecrank_admin/internal/app/session"
	"tecrank_admin/internal/common/security"
	"tecrank_admin/internal/domain/repository"
	"tecrank_admin/internal/platform/backend"
	"tecrank_admin/internal/platform/config"
	"tecrank_admin/internal/platform/database"
	"tecrank_admin/internal/platform/kv"
	"tecrank_admin/internal/platform/logger"
	"time"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Initialize Logger
	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("Could not initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Log.Info("configuration loaded", zap.String("backend", cfg.BackendBaseURL), zap.String("sessionDriver", cfg.SessionDriver))

	// 3. Initialize JWT and confirmation keys
	security.InitJWT(cfg.JWTKey, cfg.JWTExp)
	screen.SetConfirmKey(cfg.ConfirmKey[:])

	// 4. Initialize Session Storage
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	sessionRepo, closeStore, err := openSessionStore(startupCtx, cfg)
	startupCancel()
	if err != nil {
		logger.Log.Fatal("session storage unavailable", zap.Error(err))
	}
	defer closeStore()
	sessions := session.NewManager(sessionRepo, cfg.SessionSealKey)

	// 5. Initialize Repositories
	client := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, nil)
	authRepo := repository.NewApiAuthRepository(client)
	collabRepo := repository.NewApiCollaboratorRepository(client)
	sectorRepo := repository.NewApiSectorRepository(client)
	subjectRepo := repository.NewApiSubjectRepository(client)
	tutorialRepo := repository.NewApiTutorialRepository(client)
	evalRepo := repository.NewApiEvaluationRepository(client)
	rankingRepo := repository.NewApiRankingRepository(client, cfg.BackendSlowTimeout)

	// 6. Initialize Services
	svc := api.Services{
		Sessions:      sessions,
		Auth:          service.NewAuthService(authRepo, sessions),
		Collaborators: service.NewCollaboratorService(collabRepo, sectorRepo),
		Sectors:       service.NewSectorService(sectorRepo),
		Subjects:      service.NewSubjectService(subjectRepo),
		Tutorials:     service.NewTutorialService(tutorialRepo),
		Evaluations:   service.NewEvaluationService(evalRepo),
		Exports:       service.NewExportService(evalRepo, subjectRepo),
		Ranking:       service.NewRankingService(rankingRepo),
	}
	// Screen state kept per session goes away with the session: at logout, on expiry,
	// when a login replaces it, or once idle for a whole session lifetime.
	for _, screens := range []interface {
		Forget(sid string)
		ForgetIdle(d time.Duration)
	}{svc.Collaborators, svc.Sectors, svc.Subjects, svc.Tutorials} {
		svc.Auth.OnLogout(screens.Forget)
		screens.ForgetIdle(cfg.SessionTTL)
	}

	// 7. Initialize Router & HTTP Server
	router, err := api.NewRouter(cfg, svc)
	if err != nil {
		logger.Log.Fatal("could not build router", zap.Error(err))
	}

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.BackendSlowTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Log.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("could not listen", zap.String("port", cfg.APIPort), zap.Error(err))
		}
	}()

	<-stop

	logger.Log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server shutdown failed", zap.Error(err))
		return
	}
	logger.Log.Info("server stopped gracefully")
}

func openSessionStore(ctx context.Context, cfg *config.Config) (repository.SessionRepository, func(), error) {
	switch cfg.SessionDriver {
	case config.SessionDriverRedis:
		if err := kv.ConnectRedis(ctx); err != nil {
			return nil, nil, err
		}
		return repository.NewRedisSessionRepository(kv.RDB, cfg.SessionTTL), kv.CloseRedis, nil
	case config.SessionDriverPostgres:
		if err := database.Connect(ctx); err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewPgSessionRepository(ctx, database.DB, cfg.SessionTTL)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return repo, database.Close, nil
	default:
		logger.Log.Warn("using in-memory session storage; sessions are lost on restart")
		return repository.NewMemorySessionRepository(), func() {}, nil
	}
}
