package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/erickai/companion/backend/internal/analysis/emotion"
	"github.com/erickai/companion/backend/internal/config"
	"github.com/erickai/companion/backend/internal/handler"
	relayHandler "github.com/erickai/companion/backend/internal/handler/relay"
	"github.com/erickai/companion/backend/internal/model/persona"
	"github.com/erickai/companion/backend/internal/relay"
	"github.com/erickai/companion/backend/internal/service/ai"
	"github.com/erickai/companion/backend/internal/service/chat"
	"github.com/erickai/companion/backend/internal/service/conversation"
	"github.com/erickai/companion/backend/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zlog, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	if envErr != nil {
		zlog.Debug("no .env file loaded, using process environment only", zap.Error(envErr))
	}

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	lexicon := emotion.DefaultLexicon()
	if cfg.LexiconPath != "" {
		loaded, err := emotion.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			return fmt.Errorf("failed to load lexicon: %w", err)
		}
		lexicon = loaded
		zlog.Info("custom lexicon loaded", zap.String("path", cfg.LexiconPath))
	}
	analyzer := emotion.NewAnalyzer(lexicon)
	erick := persona.Erick()

	aiService, convRelay := buildRelay(ctx, cfg, zlog)

	chatService := chat.NewService(convRelay, conversation.Config{
		Analyzer: analyzer,
		Persona:  &erick,
		Logger:   zlog.Named("conversation"),
	}, chat.Config{
		IdleTTL:       cfg.Session.IdleTTL,
		SweepInterval: cfg.Session.SweepInterval,
		Logger:        zlog.Named("sessions"),
	})

	deps := handler.Dependencies{
		Chat:           chatService,
		Analyzer:       analyzer,
		Persona:        erick,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         zlog,
	}
	if aiService != nil {
		deps.Model = aiService
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return chatService.Run(gctx)
	})
	g.Go(func() error {
		zlog.Info("Erick backend listening", zap.String("addr", srv.Addr))
		return runServer(gctx, srv)
	})
	return g.Wait()
}

// buildRelay picks the conversation relay: the local model when Ark is
// configured, else a remote relay, else one that always fails.
func buildRelay(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (relayHandler.Model, conversation.Relay) {
	if cfg.AI.Enabled() {
		svc, err := ai.NewService(ctx, cfg.AI, zlog.Named("ai"))
		if err == nil {
			zlog.Info("AI service initialized", zap.String("model", svc.ModelName()))
			return svc, svc
		}
		zlog.Warn("failed to initialize AI service, continuing without local model", zap.Error(err))
	}

	if cfg.Relay.URL != "" {
		zlog.Info("using remote relay", zap.String("url", cfg.Relay.URL))
		return nil, relay.NewClient(cfg.Relay.URL, cfg.Relay.Timeout, zlog.Named("relay"))
	}

	zlog.Warn("no model or relay configured, replies will use the fallback line")
	return nil, relay.Unavailable{}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
