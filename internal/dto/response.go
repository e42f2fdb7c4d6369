package dto

import "GoLocker/model"

// UsageStats is the quota block returned next to listings.
type UsageStats struct {
	UsedBytes  int64   `json:"used_bytes"`
	UsedMB     float64 `json:"used_mb"`
	Percent    int     `json:"percent"`
	FileCount  int     `json:"file_count"`
	QuotaBytes int64   `json:"quota_bytes"`
}

type FileListResponse struct {
	Files []model.File `json:"files"`
	Stats UsageStats   `json:"stats"`
}
