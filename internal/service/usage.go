package service

import (
	"GoLocker/model"
	"math"
)

// Usage is a user's consumed storage, recomputed from the metadata records
// on every call. The store is the source of truth; nothing here is cached.
type Usage struct {
	UsedBytes int64 `json:"used_bytes"`
	FileCount int   `json:"file_count"`
}

// ComputeUsage sums the sizes of a user's file records.
func ComputeUsage(files []model.File) Usage {
	var used int64
	for _, f := range files {
		used += f.Size
	}
	return Usage{UsedBytes: used, FileCount: len(files)}
}

// UsedMB returns consumed MiB rounded to two decimals, for display.
func (u Usage) UsedMB() float64 {
	return math.Round(float64(u.UsedBytes)/(1024*1024)*100) / 100
}

// Percent returns consumed quota percent, capped at 100.
func (u Usage) Percent(quotaBytes int64) int {
	if quotaBytes <= 0 {
		return 0
	}
	p := math.Min(float64(u.UsedBytes)/float64(quotaBytes), 1.0) * 100
	return int(math.Round(p))
}
