package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deepdelve-server/internal/engine"
	"deepdelve-server/internal/infrastructure/storage"
	"deepdelve-server/internal/server"
	"deepdelve-server/internal/version"
	"deepdelve-server/pkg/logger"
)

func init() {
	logger.Init()
}

func main() {
	// 1. Парсинг конфигурации
	var seed uint64
	var loadPath string
	var saveDir string
	// Флаг -seed. По умолчанию 0 (значит сгенерировать случайно).
	flag.Uint64Var(&seed, "seed", 0, "Master world seed (0 for random)")
	flag.StringVar(&loadPath, "load", "", "Path to .ddsv save file to resume")
	flag.StringVar(&saveDir, "savedir", "saves", "Directory for run snapshots")
	flag.Parse()

	logger.Log.Info("Starting Deep Delve...")
	logger.Log.Info(version.String())

	cfg := engine.NewConfig()
	if seed != 0 {
		cfg.Seed = uint32(seed)
		logger.Log.Infof("🎲 Using explicit master seed: %d", cfg.Seed)
	} else {
		logger.Log.Infof("🎲 Using random master seed: %d", cfg.Seed)
	}

	saves := storage.NewSaveService(saveDir)
	gameService := engine.NewService(cfg)

	// Возобновление забега из снимка: сейв подменяет главный инстанс.
	if loadPath != "" {
		sg, err := saves.Load(loadPath)
		if err != nil {
			logger.Log.Fatal("Failed to load save: ", err)
		}
		inst, err := engine.RestoreInstance(1, sg)
		if err != nil {
			logger.Log.Fatal("Failed to restore run: ", err)
		}
		gameService.Instances[1] = inst
		logger.Log.Infof("💿 Resumed run: seed %d, depth %d", inst.Cfg.Seed, inst.CurrentDepth)
	}

	port := os.Getenv("DD_PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// 2. Запуск сервера
	srv := server.New(gameService, port)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error: ", err)
		}
	}()

	<-stop
	logger.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Warn("Shutdown error: ", err)
	}

	// Снимок главного забега на выходе.
	if inst := gameService.Default(); inst != nil {
		if path, err := saves.Save(inst.Snapshot()); err != nil {
			logger.Log.Warn("Failed to save run: ", err)
		} else {
			logger.Log.Info("Run saved to ", path)
		}
	}

	logger.Log.Info("Done.")
}
