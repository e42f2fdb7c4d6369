package main

import (
	"GoLocker/config"
	"GoLocker/internal/repo"
	"GoLocker/internal/service"
	"GoLocker/internal/storage"
	"GoLocker/internal/task"
	"GoLocker/router"
)

// main initializes services and starts the HTTP server.
func main() {
	config.InitConfig()
	repo.InitMysql()
	repo.InitRedis()
	repo.InitFileStore()
	storage.InitMinio()

	service.Default = &service.Lifecycle{
		Blobs:      storage.Default,
		Files:      repo.Files,
		Bucket:     config.AppConfig.BucketName,
		QuotaBytes: config.AppConfig.QuotaBytes,
		Locks:      repo.NewUploadLocker(repo.Redis),
		Reclaim:    task.EnqueueReclaim,
	}

	router := router.InitRouter()

	router.Run(":8000")
}
