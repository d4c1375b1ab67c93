package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/api"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/config"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/emotion"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/queue"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/rubric"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/storage"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/transcribe"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	q, err := queue.NewRedisQueue(&cfg.Redis, &cfg.Worker)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer q.Close()

	rubrics, err := rubric.LoadDir(cfg.Rubric.Dir)
	if err != nil {
		log.WithError(err).Fatal("failed to load rubrics")
	}

	var transcriber *transcribe.Client
	if cfg.Transcriber.APIKey != "" {
		transcriber = transcribe.NewClient(cfg.Transcriber, log)
	}

	var emotionClient *emotion.Client
	if cfg.Emotion.TextServiceURL != "" || cfg.Emotion.AudioServiceURL != "" {
		emotionClient = emotion.NewClient(cfg.Emotion.TextServiceURL, cfg.Emotion.AudioServiceURL)
	}

	router := api.NewRouter(api.Deps{
		DB:            db,
		Queue:         q,
		Rubrics:       rubrics,
		Transcriber:   transcriber,
		EmotionClient: emotionClient,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("addr", cfg.Server.Addr()).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server shutdown error")
	}

	log.Info("server stopped")
}
