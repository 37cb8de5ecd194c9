package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/config"
	"github.com/flashframe/flashframe-backend/internal/repository"
	"github.com/flashframe/flashframe-backend/internal/worker"
	"github.com/flashframe/flashframe-backend/pkg/database"
	applogger "github.com/flashframe/flashframe-backend/pkg/logger"
	"github.com/flashframe/flashframe-backend/pkg/queue"
	"github.com/flashframe/flashframe-backend/pkg/recognition"
	"github.com/flashframe/flashframe-backend/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadConfig()

	logger, err := applogger.New(cfg.Env)
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}

	s3Storage, err := storage.NewS3Storage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	recognitionClient, err := recognition.NewClient(ctx, cfg.S3.Region, logger)
	if err != nil {
		logger.Fatal("failed to initialize recognition client", zap.Error(err))
	}
	jobQueue, err := queue.NewQueue(ctx, cfg.S3.Region, logger)
	if err != nil {
		logger.Fatal("failed to initialize queue client", zap.Error(err))
	}

	eventRepo := repository.NewEventRepository(db)
	faceRepo := repository.NewFaceRepository(db)

	resizeWorker := worker.NewResizeWorker(s3Storage, eventRepo, logger)
	faceIndexWorker := worker.NewFaceIndexWorker(eventRepo, faceRepo, recognitionClient, s3Storage, logger)
	cascadeWorker := worker.NewCascadeWorker(faceRepo, recognitionClient, s3Storage, logger)

	consumers := []*worker.Consumer{
		worker.NewConsumer(jobQueue, cfg.SQS.ResizeQueueURL, resizeWorker.Handle, logger),
		worker.NewConsumer(jobQueue, cfg.SQS.FacesQueueURL, faceIndexWorker.Handle, logger),
		worker.NewConsumer(jobQueue, cfg.SQS.DeleteQueueURL, cascadeWorker.Handle, logger),
	}

	logger.Info("worker started",
		zap.String("resizeQueue", cfg.SQS.ResizeQueueURL),
		zap.String("facesQueue", cfg.SQS.FacesQueueURL),
		zap.String("deleteQueue", cfg.SQS.DeleteQueueURL))

	var wg sync.WaitGroup
	for _, c := range consumers {
		wg.Add(1)
		go func(c *worker.Consumer) {
			defer wg.Done()
			c.Run(ctx)
		}(c)
	}
	wg.Wait()

	logger.Info("worker stopped")
}
