package main

import (
	"log"

	"github.com/clipforge/video-transcoder/internal/config"
	"github.com/clipforge/video-transcoder/internal/server"
	"github.com/clipforge/video-transcoder/pkg/db/postgres"
	"github.com/clipforge/video-transcoder/pkg/db/redis"
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

	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	appLogger.Infof("redis connected")
	defer redisClient.Close()

	s := server.NewServer(cfg, psqlDB, redisClient, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Fatalf("could not start server: %s", err)
	}
}
