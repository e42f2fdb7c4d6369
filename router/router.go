package router

import (
	"GoLocker/internal/handler"
	"GoLocker/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/register", handler.Register)
		api.GET("/activate", handler.Activate)
		api.POST("/login", handler.Login)

		auth := api.Group("")
		auth.Use(utils.AuthMiddleware())

		file := auth.Group("/file")
		{
			file.POST("/upload", handler.UploadFile)
			file.POST("/list", handler.GetFileList)
			file.GET("/usage", handler.GetUsage)
			file.GET("/download/:fileID", handler.DownloadFile)
			file.GET("/download-url/:fileID", handler.DownloadFileURL)
			file.POST("/delete", handler.DeleteFile)
		}
	}
	return r
}
