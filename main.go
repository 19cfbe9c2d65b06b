package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"moneyhunter/dealworker/config"
	"moneyhunter/dealworker/helpers"
	"moneyhunter/dealworker/internal/crawler"
	"moneyhunter/dealworker/internal/filter"
	"moneyhunter/dealworker/logger"
	"moneyhunter/dealworker/services/cache"
	"moneyhunter/dealworker/services/notifier"
	"moneyhunter/dealworker/services/publisher"
	"moneyhunter/dealworker/services/store"
	"moneyhunter/dealworker/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	helpers.SetFetchTimeout(cfg.FetchTimeout)

	log.Info().
		Str("environment", cfg.Environment).
		Bool("notification", cfg.NotificationEnabled()).
		Msg("Starting deal worker")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, cleanup, err := initializeServices(ctx, &cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer cleanup()

	// Create crawlers
	crawlers := crawler.CreateCrawlers(&cfg, newCacheService(&cfg))
	if len(crawlers) == 0 {
		log.Fatal().Msg("No crawlers were created")
	}

	log.Info().
		Int("crawler_count", len(crawlers)).
		Msg("Created crawlers")

	keywords := filter.Keywords{
		Ban:     cfg.BanKeywords,
		Watch:   cfg.WatchKeywords,
		Jackpot: cfg.JackpotKeywords,
	}

	// Create and start worker
	w := worker.NewWorker(
		ctx,
		crawlers,
		services,
		keywords,
		cfg.RunTimeout,
		cfg.NotifyTimeout,
	)

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting deal ingestion worker")
		workerDone <- w.Start()
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}

// initializeServices initializes the store, notifier and optional publisher
func initializeServices(ctx context.Context, cfg *config.Config) (worker.Services, func(), error) {
	var services worker.Services
	var closers []func()

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return services, nil, err
	}
	closers = append(closers, func() { db.Close() })

	dealStore := store.NewPostgresStore(db)
	if err := dealStore.EnsureSchema(ctx); err != nil {
		db.Close()
		return services, nil, err
	}
	services.Store = dealStore

	logger.Info("Connected to Postgres, deals table ready")

	if cfg.NotificationEnabled() {
		services.Notifier = notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, cfg.NotifyTimeout)
		logger.Info("Telegram notification enabled (chat %s)", cfg.TelegramChatID)
	} else {
		services.Notifier = notifier.Disabled{}
		logger.Warn("TELEGRAM_TOKEN 또는 CHANNEL_ID_DEAL 미설정 → 알림 비활성")
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			ctx,
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		services.Publisher = redisPublisher
		closers = append(closers, func() { redisPublisher.Close() })

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return services, cleanup, nil
}

// newCacheService returns the memcache-backed rate-limit guard, or nil when
// no memcache address is configured
func newCacheService(cfg *config.Config) cache.CacheService {
	if cfg.MemcacheAddr == "" {
		return nil
	}
	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	return cache.NewMemcacheService(cfg.MemcacheAddr)
}
