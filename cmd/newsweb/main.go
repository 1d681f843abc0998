package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deusflow/newsweb/internal/chat"
	"github.com/deusflow/newsweb/internal/config"
	"github.com/deusflow/newsweb/internal/feeds"
	"github.com/deusflow/newsweb/internal/logger"
	"github.com/deusflow/newsweb/internal/overrides"
	"github.com/deusflow/newsweb/internal/server"
	"github.com/deusflow/newsweb/internal/topics"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	sources := feeds.Default()
	if cfg.SourcesConfigPath != "" {
		sources, err = feeds.Load(cfg.SourcesConfigPath)
		if err != nil {
			logger.Error("load sources config", "path", cfg.SourcesConfigPath, "err", err)
			os.Exit(1)
		}
	}

	catalog := topics.Default()
	if cfg.TopicsConfigPath != "" {
		catalog, err = topics.Load(cfg.TopicsConfigPath)
		if err != nil {
			logger.Error("load topics config", "path", cfg.TopicsConfigPath, "err", err)
			os.Exit(1)
		}
	}

	var kv overrides.KV = overrides.NewMemoryKV()
	if cfg.OverridesFilePath != "" {
		kv = overrides.NewFileKV(cfg.OverridesFilePath)
	}
	store := overrides.NewStore(kv)

	var gemini *chat.Gemini
	if cfg.ChatUpstreamURL == "" && cfg.GeminiAPIKey != "" {
		gemini, err = chat.NewGemini(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.Error("init gemini", "err", err)
			os.Exit(1)
		}
		defer gemini.Close()
	}
	chatSvc := chat.NewService(cfg.ChatUpstreamURL, gemini, cfg.ScrapeEnabled)

	srv := server.New(sources, catalog, store, chatSvc, cfg.RequestTimeout)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr, "sources", len(sources), "topics", len(catalog))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
}
