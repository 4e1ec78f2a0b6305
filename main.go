package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"novelweaver/bridge"
	"novelweaver/config"
	"novelweaver/crawler"
	"novelweaver/db"
	handlers "novelweaver/handler"
	"novelweaver/logutils"
	"novelweaver/store"
	"novelweaver/translator"
	"novelweaver/utils"
	"novelweaver/worker"
)

func main() {
	cfg := config.LoadConfig()

	backend, err := db.Open(cfg.StorageDriver, cfg.DataDir, cfg.DatabaseURL)
	if err != nil {
		logutils.Log.WithError(err).Fatal("opening storage backend")
	}

	st := store.New()
	workspaces, activeID := db.Restore(backend)
	st.Reset(workspaces, activeID)
	logutils.Log.WithField("workspaces", len(workspaces)).Info("state restored")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	autosaver := db.NewAutosaver(backend, st, cfg.AutosaveInterval)
	autosaveDone := make(chan struct{})
	go func() {
		defer close(autosaveDone)
		autosaver.Run(ctx)
	}()

	hub := bridge.NewHub()
	go hub.RunProbe(ctx)

	cr := crawler.New(hub)

	var gemini *translator.Gemini
	var geminiProvider translator.Provider
	if cfg.GeminiAPIKey != "" {
		gemini = translator.NewGemini(cfg.GeminiAPIKey, cfg.GeminiBaseURL, nil)
		geminiProvider = gemini
	}
	orch := translator.NewOrchestrator(st, geminiProvider, translator.NewGoogleTranslate())

	var w *worker.Worker
	if cfg.RedisURL != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
		w = worker.NewWorker(rdb, st, cr, orch)
		w.Start(ctx)
		logutils.Log.Info("background worker started")
	}

	uploader, err := utils.NewS3Uploader(cfg)
	if err != nil {
		logutils.Log.WithError(err).Warn("s3 uploader unavailable, covers stored inline")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h := &handlers.Handler{
		Store:        st,
		Hub:          hub,
		Crawler:      cr,
		Orchestrator: orch,
		Gemini:       gemini,
		Worker:       w,
		Autosaver:    autosaver,
		Uploader:     uploader,
	}
	h.RegisterRoutes(e)

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			logutils.Log.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logutils.Log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logutils.Log.WithError(err).Error("server shutdown")
	}

	// The autosaver flushes once more on cancellation; waiting for it keeps
	// the snapshot writes strictly sequential.
	<-autosaveDone
}
