package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smrz/internal/bot"
	"smrz/internal/config"
	"smrz/internal/database"
	"smrz/internal/domain"
	"smrz/internal/extractor"
	"smrz/internal/fetch"
	"smrz/internal/llm"
	"smrz/internal/metadata"
	"smrz/internal/scheduler"
	"smrz/internal/server"
	"smrz/internal/service"
	"smrz/internal/summary"
	"smrz/internal/transcribe"

	"github.com/kkdai/youtube/v2"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("Failed to run",
			"error", err)

		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "Config is loaded",
		"listenAddr", cfg.ListenAddr,
		"transcriptSource", cfg.TranscriptSource,
		"articleConverter", cfg.ArticleConverter)

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		return err
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	factory, closeCompleters, err := initFactory(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer closeCompleters()

	ex, err := initExtractor(ctx, cfg, httpClient, factory, log)
	if err != nil {
		return err
	}

	summaryClient, err := factory.Client(cfg.SummaryModel, "summary")
	if err != nil {
		return err
	}

	svc := service.New(ex, summary.New(summaryClient, log), log)

	sched := scheduler.New(ctx, db, cfg.UsageRetention, log)
	if err = sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.DailyRetentionSpec,
		"retention", cfg.UsageRetention)

	var botInst *bot.Bot
	if cfg.TelegramToken != "" {
		botInst, err = bot.New(cfg.TelegramToken, svc, db, cfg.AllowedUsers, log)
		if err != nil {
			return err
		}

		go botInst.Start(ctx)
		log.InfoContext(ctx, "Bot is started",
			"allowedUsersCount", len(cfg.AllowedUsers),
			"updateTimeoutSeconds", bot.BotUpdateTimeout)
	} else {
		log.InfoContext(ctx, "TELEGRAM_TOKEN is missing so bot is disabled",
			"envVar", "TELEGRAM_TOKEN")
	}

	srv := server.New(cfg.ListenAddr, svc, db, log)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()
	log.InfoContext(ctx, "Server is started",
		"listenAddr", cfg.ListenAddr)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case err = <-serveErr:
		if err != nil {
			log.ErrorContext(ctx, "Server is stopped unexpectedly",
				"error", err)
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err != nil {
		errs = append(errs, err)
	}

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		errs = append(errs, shutdownErr)
	}

	if botInst != nil {
		botInst.Stop()
		log.InfoContext(shutdownCtx, "Bot is stopped")
	}

	log.InfoContext(shutdownCtx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	return errors.Join(errs...)
}

// initFactory registers a transport for every provider with a credential.
func initFactory(
	ctx context.Context,
	cfg config.Config,
	recorder llm.Recorder,
	log *slog.Logger,
) (*llm.Factory, func(), error) {
	completers := make(map[llm.Provider]llm.Completer)
	closeFn := func() {}

	if cfg.OpenAIAPIKey != "" {
		// Model calls are bounded by the request context only.
		openAI, err := llm.NewOpenAICompleter(cfg.OpenAIAPIKey, &http.Client{})
		if err != nil {
			return nil, nil, err
		}
		completers[llm.ProviderOpenAI] = openAI
	}

	if cfg.OpenRouterAPIKey != "" {
		openRouter, err := llm.NewOpenRouterCompleter(cfg.OpenRouterAPIKey)
		if err != nil {
			return nil, nil, err
		}
		completers[llm.ProviderOpenRouter] = openRouter
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiCompleter(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		completers[llm.ProviderGoogle] = gemini

		closeFn = func() {
			if err := gemini.Close(); err != nil {
				log.ErrorContext(ctx, "Failed to close Gemini client",
					"error", err)
			}
		}
	}

	providers := make([]llm.Provider, 0, len(completers))
	for p := range completers {
		providers = append(providers, p)
	}
	log.InfoContext(ctx, "Model providers are initialized",
		"providers", providers)

	return llm.NewFactory(completers, recorder, log), closeFn, nil
}

func initExtractor(
	ctx context.Context,
	cfg config.Config,
	httpClient *http.Client,
	factory *llm.Factory,
	log *slog.Logger,
) (*extractor.Extractor, error) {
	fetcher := fetch.New(httpClient, log)

	readability, err := factory.Client(cfg.ReadabilityModel, "readability")
	if err != nil {
		return nil, err
	}

	deps := extractor.Deps{
		HTML:        fetcher,
		Metadata:    metadata.New(fetcher, log),
		Readability: readability,
	}

	if cfg.OpenAIAPIKey != "" {
		// Media downloads and uploads are bounded by the request context only.
		mediaClient := &http.Client{}

		deps.Media = transcribe.New(
			transcribe.NewDirectSource(fetch.New(mediaClient, log)),
			transcribe.NewYouTubeSource(&youtube.Client{HTTPClient: mediaClient}),
			transcribe.NewFFmpeg(cfg.FFmpegPath),
			transcribe.NewWhisper(cfg.OpenAIAPIKey, mediaClient),
			"",
			log,
		)
	} else {
		deps.Media = unavailableMedia{}
		log.WarnContext(ctx, "OPENAI_API_KEY is missing so audio and video transcription is disabled",
			"envVar", "OPENAI_API_KEY")
	}

	if cfg.TranscriptSource == config.TranscriptCaptions {
		deps.Captions = transcribe.NewCaptionFetcher(transcribe.NewYouTubeCaptions())
	}

	if cfg.ArticleConverter == config.ConverterLLM {
		article, err := factory.Client(cfg.ArticleModel, "article")
		if err != nil {
			return nil, err
		}
		deps.Article = article
	}

	metadataClient, err := factory.Client(cfg.MetadataModel, "metadata")
	switch {
	case err != nil:
		log.WarnContext(ctx, "Metadata model is unavailable so missing article titles fall back to URLs",
			"error", err,
			"model", cfg.MetadataModel)
	case !metadataClient.SupportsSchema():
		log.WarnContext(ctx, "Metadata model has no structured output so missing article titles fall back to URLs",
			"model", cfg.MetadataModel,
			"provider", metadataClient.Descriptor().Provider)
	default:
		deps.MetadataModel = metadataClient
	}

	return extractor.New(deps, log), nil
}

type unavailableMedia struct{}

func (unavailableMedia) Transcribe(context.Context, string, domain.SourceKind) (string, error) {
	return "", fmt.Errorf("%w: speech to text is not configured", transcribe.ErrTranscription)
}
