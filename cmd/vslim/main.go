package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"vslim/internal/backend"
	"vslim/internal/cache"
	"vslim/internal/classify"
	"vslim/internal/cli"
	"vslim/internal/config"
	apphttp "vslim/internal/http"
	"vslim/internal/log"
	"vslim/internal/metrics"
	"vslim/internal/nlu"
	"vslim/internal/services"
	"vslim/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	logger.Info("Starting vslim",
		log.FieldOperation, log.OpStartup,
		"env", cfg.Env,
		"port", cfg.Port,
		"data_backend", cfg.DataBackend,
		"session_backend", cfg.SessionBackend)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	m := metrics.New()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	ledgerBackend, err := backend.NewFactory(logger).Open(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := ledgerBackend.Close(); err != nil {
			logger.Error("Ledger close failed", log.FieldError, err)
		}
	}()

	sessions, err := session.New(ctx, session.Backend(cfg.SessionBackend), session.Options{
		TTL:           cfg.SessionTTL,
		MaxEntries:    cfg.SessionMaxEntries,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer sessions.Close()

	janitor := cache.NewJanitor(logger.WithComponent(log.ComponentSession).Logger)
	if mem, ok := sessions.(*session.MemoryStore); ok {
		janitor.Register(mem.Cache())
	}

	var classifier classify.Classifier = classify.NewKeywordClassifier(nil)
	if cfg.OpenAIAPIKey != "" {
		classifier = classify.NewOpenAIClassifier(classify.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, logger)
	}
	labels := cache.NewLRU[string](cfg.ClassifierCacheSize, cfg.ClassifierCacheTTL)
	janitor.Register(labels)
	classifier = classify.NewCached(classifier, labels)

	janitor.Start(time.Minute)
	defer janitor.Stop()

	parser := nlu.NewClient(nlu.Config{
		URL:        cfg.LLMParseURL,
		Timeout:    cfg.NLUTimeout,
		MaxRetries: cfg.NLUMaxRetries,
	}, logger)

	executor := services.NewFrameExecutor(ledgerBackend.Store, classifier, m, logger)
	chat := services.NewChatService(parser, sessions, executor, m, logger)

	readiness := map[string]apphttp.Pinger{}
	if p, ok := ledgerBackend.Store.(apphttp.Pinger); ok {
		readiness["ledger"] = p
	}
	if p, ok := sessions.(apphttp.Pinger); ok {
		readiness["sessions"] = p
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Chat:               chat,
		Store:              ledgerBackend.Store,
		Metrics:            m,
		Logger:             logger,
		Readiness:          readiness,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
