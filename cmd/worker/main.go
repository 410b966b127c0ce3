package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/clipforge/video-transcoder/internal/config"
	"github.com/clipforge/video-transcoder/internal/transcoding/repository"
	"github.com/clipforge/video-transcoder/internal/worker"
	"github.com/clipforge/video-transcoder/pkg/db/aws"
	"github.com/clipforge/video-transcoder/pkg/db/postgres"
	"github.com/clipforge/video-transcoder/pkg/logger"
)

func main() {
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}

	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
	defer psqlDB.Close()

	s3Client, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Fatalf("could not connect to s3: %s", err)
	}

	jobRepo := repository.NewJobRepo(psqlDB)
	storageRepo := repository.NewAwsRepository(s3Client, cfg)
	encoder := worker.NewFFmpegEncoder(cfg.Worker.SegmentDuration, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutdown signal received")
		cancel()
	}()

	w := worker.NewWorker(cfg, jobRepo, storageRepo, encoder, appLogger)
	if err := w.Run(ctx); err != nil {
		appLogger.Fatalf("worker stopped: %v", err)
	}
}
