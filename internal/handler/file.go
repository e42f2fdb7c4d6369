package handler

import (
	"GoLocker/config"
	"GoLocker/internal/dto"
	"GoLocker/internal/service"
	"GoLocker/utils"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// writeLifecycleError maps a lifecycle outcome to an HTTP response. Store
// failures are logged server-side and reported as an opaque 500. Both
// not-found and non-owner produce the same 404 body so a non-owner learns
// nothing about a record's existence.
func writeLifecycleError(c *gin.Context, err error) {
	if !service.IsRejection(err) {
		log.Printf("file operation failed: %v", err)
		utils.Fail(c, http.StatusInternalServerError, "operation failed")
		return
	}
	switch {
	case errors.Is(err, service.ErrNoContent):
		utils.Fail(c, http.StatusBadRequest, "no file selected")
	case errors.Is(err, service.ErrQuotaExceeded):
		utils.Fail(c, http.StatusRequestEntityTooLarge, "storage quota exceeded")
	default:
		utils.Fail(c, http.StatusNotFound, "file not found")
	}
}

func usageStats(u service.Usage) dto.UsageStats {
	return dto.UsageStats{
		UsedBytes:  u.UsedBytes,
		UsedMB:     u.UsedMB(),
		Percent:    u.Percent(config.AppConfig.QuotaBytes),
		FileCount:  u.FileCount,
		QuotaBytes: config.AppConfig.QuotaBytes,
	}
}

// UploadFile stores a multipart upload for the authenticated user.
func UploadFile(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)

	header, err := c.FormFile("file")
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "no file selected")
		return
	}
	src, err := header.Open()
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "open upload failed")
		return
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "read upload failed")
		return
	}

	mimeType := service.ResolveContentType(header.Header.Get("Content-Type"), header.Filename)
	file, err := service.Default.Upload(c.Request.Context(), userID, content, header.Filename, mimeType)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	utils.Success(c, gin.H{
		"msg":     "ok",
		"file_id": file.ID,
		"name":    file.OriginalName,
		"size":    file.Size,
	})
}

// GetFileList returns a user's files, newest first, with usage stats.
func GetFileList(c *gin.Context) {
	var req dto.FileListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet("user_id").(uint64)

	files, usage, err := service.Default.List(c.Request.Context(), userID, req.Search)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	utils.Success(c, dto.FileListResponse{
		Files: files,
		Stats: usageStats(usage),
	})
}

// GetUsage returns a user's quota consumption.
func GetUsage(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	usage, err := service.Default.Usage(c.Request.Context(), userID)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	utils.Success(c, usageStats(usage))
}

// DownloadFile streams a file's content back to its owner.
func DownloadFile(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("fileID"), 10, 64)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid file id")
		return
	}
	userID := c.MustGet("user_id").(uint64)

	reader, file, err := service.Default.Download(c.Request.Context(), userID, fileID)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	defer reader.Close()

	fileName := utils.SanitizeHeaderFilename(file.OriginalName)
	contentType := file.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", fmt.Sprintf("%d", file.Size))

	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Println("download error:", err)
	}
}

// DownloadFileURL returns a presigned download URL.
func DownloadFileURL(c *gin.Context) {
	fileID, err := strconv.ParseUint(c.Param("fileID"), 10, 64)
	if err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid file id")
		return
	}
	userID := c.MustGet("user_id").(uint64)

	url, file, err := service.Default.DownloadURL(c.Request.Context(), userID, fileID, 10*time.Minute)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}
	utils.Success(c, gin.H{
		"url":  url,
		"name": file.OriginalName,
		"size": file.Size,
	})
}

// DeleteFile removes a file owned by the authenticated user.
func DeleteFile(c *gin.Context) {
	var req dto.FileDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet("user_id").(uint64)

	if err := service.Default.Delete(c.Request.Context(), userID, req.FileID); err != nil {
		writeLifecycleError(c, err)
		return
	}
	utils.Success(c, gin.H{"msg": "success"})
}
