package main

import (
	"context"
	"encoding/hex"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gradecast/gradecast/internal/api"
	"github.com/gradecast/gradecast/internal/config"
	"github.com/gradecast/gradecast/internal/crypto"
	"github.com/gradecast/gradecast/internal/database"
	"github.com/gradecast/gradecast/internal/downloader"
	"github.com/gradecast/gradecast/internal/grade"
	"github.com/gradecast/gradecast/internal/health"
	"github.com/gradecast/gradecast/internal/library"
	"github.com/gradecast/gradecast/internal/logger"
	"github.com/gradecast/gradecast/internal/missing"
	"github.com/gradecast/gradecast/internal/pool"
	"github.com/gradecast/gradecast/internal/programming"
	"github.com/gradecast/gradecast/internal/ranking"
	"github.com/gradecast/gradecast/internal/scheduler"
	"github.com/gradecast/gradecast/internal/scheduler/tasks"
	"github.com/gradecast/gradecast/internal/scrape"
	"github.com/gradecast/gradecast/internal/websocket"
)

func main() {
	// A missing .env is fine, environment variables still apply.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		BufferSize: cfg.Logging.BufferSize,
	})
	defer log.Close()

	log.Info().Str("version", config.Version).Str("logLevel", cfg.Logging.Level).Msg("Starting gradecast")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	ctx := context.Background()
	store := database.NewStore(db.Conn())

	// Seed stations, sequences and fixed content on a fresh database.
	importer := programming.NewImporter(store, log.Logger)
	if err := importer.ImportIfEmpty(ctx, cfg.Programming.Path); err != nil {
		log.Fatal().Err(err).Msg("Failed to import programming")
	}

	hub := websocket.NewHub()
	go hub.Run()

	poolSvc := pool.NewService(store, log.Logger)
	rankingSvc := ranking.NewService(store, log.Logger)
	missingSvc := missing.NewService(store, rankingSvc, log.Logger)

	var checker library.Checker
	if len(cfg.Library.SearchPaths) > 0 {
		checker = library.NewFilesystemChecker(library.Config{
			SearchPaths:         cfg.Library.SearchPaths,
			SimilarityThreshold: cfg.Library.SimilarityThreshold,
			CacheTTL:            time.Duration(cfg.Library.CacheTTLMinutes) * time.Minute,
		}, log.Logger)
	} else {
		log.Warn().Msg("No library search paths configured, treating every song as present")
		checker = library.NoopChecker{}
	}

	provider := downloader.NewMockProvider(cfg.Download.OutputFolder, providerCredentials(cfg, store, log), log.Logger)
	queue := downloader.NewQueue(cfg.Download, store, provider, checker, hub, log.Logger)
	missingSvc.SetEnqueuer(queue)
	if err := queue.Requeue(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to requeue pending missing songs")
	}

	tracker := grade.NewTracker(cfg.Generation.WindowMinutes, cfg.Generation.FullDayWindowMinutes)
	generator := grade.NewGenerator(cfg.Generation, store, poolSvc, tracker, checker, missingSvc,
		time.Duration(cfg.Library.CheckTimeoutSeconds)*time.Second, log.Logger)
	writer := grade.NewMergeWriter(cfg.Generation.OutputFolder)
	gradeSvc := grade.NewService(cfg.Generation, store, generator, writer, hub, log.Logger)

	healthSvc := health.NewService(store, cfg.Library.SearchPaths, cfg.Generation.OutputFolder, hub, log.Logger)

	fetcher := scrape.NewHTTPFetcher(time.Duration(cfg.Scrape.TimeoutSeconds)*time.Second, log.Logger)
	orchestrator := scrape.NewOrchestrator(cfg.Scrape, store, poolSvc, rankingSvc, fetcher, hub, log.Logger)
	orchestrator.SetHealth(healthSvc)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if err := tasks.RegisterGradeTask(sched, gradeSvc, cfg.Generation); err != nil {
		log.Fatal().Err(err).Msg("Failed to register grade task")
	}
	if err := tasks.RegisterScrapeTask(sched, orchestrator, cfg.Scrape); err != nil {
		log.Fatal().Err(err).Msg("Failed to register scrape task")
	}
	// Registered even when downloads start disabled; Drain is a no-op
	// until the queue is enabled over the API.
	if err := tasks.RegisterDownloadTask(sched, queue); err != nil {
		log.Fatal().Err(err).Msg("Failed to register download task")
	}
	if err := tasks.RegisterHealthTask(sched, healthSvc); err != nil {
		log.Fatal().Err(err).Msg("Failed to register health task")
	}
	sched.Start()

	server := api.NewServer(cfg, hub, log, api.Services{
		Store:     store,
		Pool:      poolSvc,
		Ranking:   rankingSvc,
		Grade:     gradeSvc,
		Missing:   missingSvc,
		Downloads: queue,
		Scrape:    orchestrator,
		Scheduler: sched,
		Health:    healthSvc,
	})

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	if err := sched.Stop(); err != nil {
		log.Warn().Err(err).Msg("Scheduler shutdown failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Server shutdown failed")
	}
}

// providerCredentials decrypts the stored download credentials. The vault
// salt persists in settings; the passphrase comes from the environment so
// the database alone cannot reveal the password.
func providerCredentials(cfg *config.Config, store *database.Store, log *logger.Logger) downloader.Credentials {
	creds := downloader.Credentials{Username: cfg.Download.Username, Password: cfg.Download.Password}
	if !crypto.IsEncrypted(creds.Password) {
		return creds
	}

	passphrase := os.Getenv("GRADECAST_SECRET_KEY")
	if passphrase == "" {
		log.Warn().Msg("GRADECAST_SECRET_KEY not set, cannot decrypt download password")
		return creds
	}

	salt, err := vaultSalt(store)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load vault salt")
		return creds
	}

	plain, err := crypto.NewVault(passphrase, salt).Decrypt(creds.Password)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to decrypt download password")
		return creds
	}
	creds.Password = plain
	return creds
}

// vaultSalt loads the persisted vault salt, generating one on first use.
func vaultSalt(store *database.Store) ([]byte, error) {
	ctx := context.Background()
	if value, err := store.GetSetting(ctx, "vault_salt"); err == nil && value != "" {
		return hex.DecodeString(value)
	}

	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err := store.SetSetting(ctx, "vault_salt", hex.EncodeToString(salt)); err != nil {
		return nil, err
	}
	return salt, nil
}
