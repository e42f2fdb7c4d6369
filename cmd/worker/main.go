package main

import (
	"GoLocker/config"
	"GoLocker/internal/repo"
	"GoLocker/internal/service"
	"GoLocker/internal/storage"
	"GoLocker/internal/task"
	"GoLocker/internal/worker"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	repo.InitFileStore()
	storage.InitMinio()

	lifecycle := &service.Lifecycle{
		Blobs:      storage.Default,
		Files:      repo.Files,
		Bucket:     config.AppConfig.BucketName,
		QuotaBytes: config.AppConfig.QuotaBytes,
		Reclaim:    task.EnqueueReclaim,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runSweeper(ctx, lifecycle)

	log.Println("reclaim worker started")
	if err := worker.RunReclaimWorker(ctx); err != nil {
		log.Fatalf("reclaim worker stopped: %v", err)
	}
}

// runSweeper periodically reconciles bucket objects against metadata.
func runSweeper(ctx context.Context, lifecycle *service.Lifecycle) {
	interval := config.AppConfig.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := lifecycle.SweepOrphans(ctx, config.AppConfig.SweepGracePeriod)
			if err != nil {
				log.Printf("sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("sweep handled %d orphaned blobs (queued or removed)", n)
			}
		}
	}
}
