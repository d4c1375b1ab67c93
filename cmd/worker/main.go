package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/config"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/emotion"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/knowledge"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/llm"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/queue"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/report"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/rubric"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/scoring"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/storage"
	"github.com/PUGALARASANL2004/inpersonSales-ReviewSys-FATAL/internal/worker"
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

	kb, err := knowledge.LoadFile(cfg.Knowledge.Path)
	if err != nil {
		log.WithError(err).Warn("knowledge base unavailable, claim validation disabled")
		kb = knowledge.NewStore()
	}

	llmClient, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		log.WithError(err).Fatal("failed to create LLM client")
	}

	engine := scoring.NewEngine(llmClient, kb, cfg.Scoring, cfg.LLM.EvaluatorModel, log)

	var emotionClient *emotion.Client
	if cfg.Emotion.TextServiceURL != "" || cfg.Emotion.AudioServiceURL != "" {
		emotionClient = emotion.NewClient(cfg.Emotion.TextServiceURL, cfg.Emotion.AudioServiceURL)
	}
	fuser := emotion.NewFuser(cfg.Emotion)

	summarizer := report.NewSummarizer(llmClient, cfg.LLM.SummaryModel)
	assembler := report.NewAssembler(summarizer, log)

	callRepo := storage.NewCallRepo(db)
	reportRepo := storage.NewReportRepo(db)

	w := worker.New(
		q,
		callRepo,
		reportRepo,
		rubrics,
		engine,
		emotionClient,
		fuser,
		assembler,
		cfg.Rubric.DefaultVersion,
		cfg.Worker.Concurrency,
		cfg.Worker.BatchSize,
		log,
	)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down worker")
		cancel()
	}()

	log.Info("worker starting")
	if err := w.Start(ctx); err != nil {
		log.WithError(err).Fatal("worker error")
	}

	log.Info("worker stopped")
}
