package service

import (
	"GoLocker/internal/repo"
	"GoLocker/internal/storage"
	"GoLocker/model"
	"GoLocker/utils"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"gorm.io/gorm"
)

// Locker serializes uploads per user. repo.UploadLocker satisfies it.
type Locker interface {
	Lock(ctx context.Context, userID uint64) (func(), error)
}

// ReclaimFunc schedules an orphaned blob for asynchronous deletion.
type ReclaimFunc func(ctx context.Context, bucket, object, origin string) error

// Lifecycle coordinates the blob store and the metadata store. The two have
// no shared transaction, so Upload and Delete are ordered two-step workflows
// with a compensating action for each second-step failure. The manager holds
// no state of its own and is safe for concurrent use.
type Lifecycle struct {
	Blobs      storage.Store
	Files      repo.FileStore
	Bucket     string
	QuotaBytes int64

	// Locks closes the quota check-then-write race per user. When nil, or
	// when the lock cannot be acquired, the quota check degrades to the
	// advisory behavior.
	Locks Locker

	// Reclaim is invoked for orphaned blobs. When nil the orphan is only
	// logged.
	Reclaim ReclaimFunc
}

// Default is the main lifecycle manager instance, wired in main.
var Default *Lifecycle

// Upload admits content against the user's quota, writes the blob first and
// the metadata record second. An orphaned blob is invisible and reclaimable;
// an orphaned metadata record would be a user-visible broken file, which is
// why the blob goes first.
func (l *Lifecycle) Upload(ctx context.Context, userID uint64, content []byte, originalName, mimeType string) (*model.File, error) {
	if len(content) == 0 {
		return nil, ErrNoContent
	}
	if l.Locks != nil {
		release, err := l.Locks.Lock(ctx, userID)
		if err != nil {
			log.Printf("upload: user %d lock unavailable, quota check is advisory: %v", userID, err)
		} else {
			defer release()
		}
	}

	usage, err := l.Usage(ctx, userID)
	if err != nil {
		return nil, err
	}
	if usage.UsedBytes+int64(len(content)) > l.QuotaBytes {
		return nil, ErrQuotaExceeded
	}

	key := BuildStorageKey(userID)
	if err := l.Blobs.PutObject(ctx, l.Bucket, key, bytes.NewReader(content), int64(len(content)), storage.PutOptions{
		ContentType: mimeType,
	}); err != nil {
		log.Printf("upload: blob write failed user=%d key=%s: %v", userID, key, err)
		return nil, storeFailure(FailBlobWrite, err)
	}

	file := &model.File{
		UserID:       userID,
		StorageKey:   key,
		OriginalName: originalName,
		Size:         int64(len(content)),
		MimeType:     mimeType,
	}
	if err := l.Files.Create(ctx, file); err != nil {
		log.Printf("upload: metadata write failed user=%d key=%s: %v", userID, key, err)
		if delErr := l.Blobs.RemoveObject(ctx, l.Bucket, key); delErr != nil {
			l.reportOrphan(ctx, key, "upload_compensation", delErr)
		}
		return nil, storeFailure(FailMetadataWrite, err)
	}
	return file, nil
}

// Delete removes a file: metadata first, blob second. Once the record is
// gone the file is unreachable, so a failing blob delete leaves only an
// orphan for reconciliation, never a broken download.
func (l *Lifecycle) Delete(ctx context.Context, userID, fileID uint64) error {
	file, err := l.Files.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		log.Printf("delete: metadata read failed user=%d file=%d: %v", userID, fileID, err)
		return storeFailure(FailMetadataRead, err)
	}
	if file.UserID != userID {
		return ErrForbidden
	}

	if err := l.Files.DeleteByID(ctx, fileID); err != nil {
		log.Printf("delete: metadata delete failed user=%d file=%d: %v", userID, fileID, err)
		return storeFailure(FailMetadataDelete, err)
	}
	if err := l.Blobs.RemoveObject(ctx, l.Bucket, file.StorageKey); err != nil {
		l.reportOrphan(ctx, file.StorageKey, "delete_cleanup", err)
	}
	return nil
}

// Download streams a file's content. Ownership is enforced by the query
// predicate, so a file owned by someone else looks exactly like a missing
// one.
func (l *Lifecycle) Download(ctx context.Context, userID, fileID uint64) (io.ReadCloser, *model.File, error) {
	file, err := l.Files.FindOwned(ctx, userID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		log.Printf("download: metadata read failed user=%d file=%d: %v", userID, fileID, err)
		return nil, nil, storeFailure(FailMetadataRead, err)
	}
	reader, _, err := l.Blobs.GetObject(ctx, l.Bucket, file.StorageKey)
	if err != nil {
		// a missing key here means a past reconciliation gap
		log.Printf("download: blob read failed user=%d file=%d key=%s: %v", userID, fileID, file.StorageKey, err)
		return nil, nil, storeFailure(FailBlobRead, err)
	}
	return reader, file, nil
}

// DownloadURL returns a presigned URL with attachment disposition.
func (l *Lifecycle) DownloadURL(ctx context.Context, userID, fileID uint64, expiry time.Duration) (string, *model.File, error) {
	file, err := l.Files.FindOwned(ctx, userID, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrNotFound
		}
		log.Printf("download-url: metadata read failed user=%d file=%d: %v", userID, fileID, err)
		return "", nil, storeFailure(FailMetadataRead, err)
	}
	safeName := utils.SanitizeHeaderFilename(file.OriginalName)
	disposition := fmt.Sprintf("attachment; filename=\"%s\"", safeName)
	url, err := l.Blobs.PresignedGetObjectWithResponse(ctx, l.Bucket, file.StorageKey, expiry, map[string]string{
		"response-content-type":        file.MimeType,
		"response-content-disposition": disposition,
	})
	if err == nil {
		return url, file, nil
	}
	url, err = l.Blobs.PresignedGetObject(ctx, l.Bucket, file.StorageKey, expiry)
	if err != nil {
		log.Printf("download-url: presign failed user=%d file=%d key=%s: %v", userID, fileID, file.StorageKey, err)
		return "", nil, storeFailure(FailBlobRead, err)
	}
	return url, file, nil
}

// List returns a user's files newest first, optionally filtered by a
// case-insensitive name substring, paired with usage from the same read.
func (l *Lifecycle) List(ctx context.Context, userID uint64, search string) ([]model.File, Usage, error) {
	files, err := l.Files.FindByOwner(ctx, userID, search)
	if err != nil {
		log.Printf("list: metadata read failed user=%d: %v", userID, err)
		return nil, Usage{}, storeFailure(FailMetadataRead, err)
	}
	if search == "" {
		return files, ComputeUsage(files), nil
	}
	all, err := l.Files.FindByOwner(ctx, userID, "")
	if err != nil {
		log.Printf("list: metadata read failed user=%d: %v", userID, err)
		return nil, Usage{}, storeFailure(FailMetadataRead, err)
	}
	return files, ComputeUsage(all), nil
}

// Usage recomputes a user's consumed bytes from the metadata store.
func (l *Lifecycle) Usage(ctx context.Context, userID uint64) (Usage, error) {
	files, err := l.Files.FindByOwner(ctx, userID, "")
	if err != nil {
		log.Printf("usage: metadata read failed user=%d: %v", userID, err)
		return Usage{}, storeFailure(FailMetadataRead, err)
	}
	return ComputeUsage(files), nil
}

// reportOrphan logs an orphaned blob at warning level and hands it to the
// reclaim queue when one is wired. A second failure here is logged too but
// never escalated; the primary operation's outcome is already decided.
func (l *Lifecycle) reportOrphan(ctx context.Context, key, origin string, cause error) {
	log.Printf("warning: orphaned blob %s/%s (%s): %v", l.Bucket, key, origin, cause)
	if l.Reclaim == nil {
		return
	}
	if err := l.Reclaim(ctx, l.Bucket, key, origin); err != nil {
		log.Printf("warning: reclaim enqueue failed for %s/%s: %v", l.Bucket, key, err)
	}
}
