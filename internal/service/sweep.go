package service

import (
	"context"
	"log"
	"time"
)

// SweepOrphans compares bucket objects against referenced storage keys and
// handles blobs nothing points at: they are handed to the reclaim queue when
// one is wired, removed directly otherwise. The count covers both. Objects
// younger than grace are skipped: they may belong to an upload whose
// metadata write is still in flight.
func (l *Lifecycle) SweepOrphans(ctx context.Context, grace time.Duration) (int, error) {
	objects, err := l.Blobs.ListObjects(ctx, l.Bucket, StorageKeyPrefix)
	if err != nil {
		log.Printf("sweep: list objects failed bucket=%s: %v", l.Bucket, err)
		return 0, storeFailure(FailBlobRead, err)
	}
	cutoff := time.Now().Add(-grace)
	handled := 0
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		referenced, err := l.Files.ExistsByStorageKey(ctx, obj.ObjectName)
		if err != nil {
			log.Printf("sweep: metadata read failed key=%s: %v", obj.ObjectName, err)
			return handled, storeFailure(FailMetadataRead, err)
		}
		if referenced {
			continue
		}
		if l.Reclaim != nil {
			if err := l.Reclaim(ctx, l.Bucket, obj.ObjectName, "sweep"); err != nil {
				log.Printf("warning: reclaim enqueue failed for %s/%s: %v", l.Bucket, obj.ObjectName, err)
				continue
			}
		} else if err := l.Blobs.RemoveObject(ctx, l.Bucket, obj.ObjectName); err != nil {
			log.Printf("warning: orphaned blob %s/%s (sweep): %v", l.Bucket, obj.ObjectName, err)
			continue
		}
		handled++
	}
	return handled, nil
}
