package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestUploadRejectsEmptyContent(t *testing.T) {
	lifecycle, blobs, files := newTestLifecycle(1000)

	_, err := lifecycle.Upload(context.Background(), 1, nil, "a.txt", "text/plain")
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
	if len(blobs.objects) != 0 {
		t.Fatal("no blob should be written for an empty upload")
	}
	if files.count() != 0 {
		t.Fatal("no record should be created for an empty upload")
	}
}

func TestUploadQuotaBoundary(t *testing.T) {
	quota := int64(1000)
	lifecycle, blobs, files := newTestLifecycle(quota)
	files.addRecord(1, "big.bin", "files/1/big", quota-10, time.Unix(1, 0))

	// one byte over the remaining 10 is rejected with no store writes
	_, err := lifecycle.Upload(context.Background(), 1, make([]byte, 11), "over.bin", "application/octet-stream")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if len(blobs.objects) != 0 {
		t.Fatal("rejected upload must not write a blob")
	}
	if files.count() != 1 {
		t.Fatal("rejected upload must not create a record")
	}

	// exactly the remaining 10 bytes fills the quota to the brim
	file, err := lifecycle.Upload(context.Background(), 1, make([]byte, 10), "fit.bin", "application/octet-stream")
	if err != nil {
		t.Fatalf("upload at quota boundary failed: %v", err)
	}
	if file.Size != 10 {
		t.Fatalf("expected size 10, got %d", file.Size)
	}
	usage, err := lifecycle.Usage(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if usage.UsedBytes != quota {
		t.Fatalf("expected usedBytes == quota (%d), got %d", quota, usage.UsedBytes)
	}
}

func TestUploadBlobWriteFailure(t *testing.T) {
	lifecycle, blobs, files := newTestLifecycle(1000)
	blobs.failPut = true

	_, err := lifecycle.Upload(context.Background(), 1, []byte("data"), "a.txt", "text/plain")
	var failure *StoreFailure
	if !errors.As(err, &failure) || failure.Kind != FailBlobWrite {
		t.Fatalf("expected blob_write failure, got %v", err)
	}
	if files.count() != 0 {
		t.Fatal("no record may exist when the blob never landed")
	}
}

func TestUploadCompensatesFailedMetadataWrite(t *testing.T) {
	lifecycle, blobs, files := newTestLifecycle(1000)
	files.failCreate = true

	_, err := lifecycle.Upload(context.Background(), 1, []byte("data"), "a.txt", "text/plain")
	var failure *StoreFailure
	if !errors.As(err, &failure) || failure.Kind != FailMetadataWrite {
		t.Fatalf("expected metadata_write failure, got %v", err)
	}
	if len(blobs.objects) != 0 {
		t.Fatal("compensating delete should have removed the blob")
	}
	if len(blobs.removeCalls) != 1 {
		t.Fatalf("expected exactly one compensating delete, got %d", len(blobs.removeCalls))
	}

	// the failed upload must be invisible to readers
	listed, _, err := lifecycle.List(context.Background(), 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Fatal("failed upload must not appear in listings")
	}
}

func TestUploadCompensationFailureReportsOrphan(t *testing.T) {
	lifecycle, blobs, files := newTestLifecycle(1000)
	recorder := &orphanRecorder{}
	lifecycle.Reclaim = recorder.reclaim
	files.failCreate = true
	blobs.failRemove = true

	_, err := lifecycle.Upload(context.Background(), 1, []byte("data"), "a.txt", "text/plain")
	var failure *StoreFailure
	if !errors.As(err, &failure) || failure.Kind != FailMetadataWrite {
		t.Fatalf("compensation failure must not mask the primary outcome, got %v", err)
	}
	if recorder.count() != 1 {
		t.Fatalf("expected one orphan report, got %d", recorder.count())
	}
	if !strings.HasPrefix(recorder.entries[0], "upload_compensation:") {
		t.Fatalf("unexpected orphan origin: %s", recorder.entries[0])
	}
}

func TestDeleteOwnershipIsolation(t *testing.T) {
	lifecycle, blobs, files := newTestLifecycle(1000)
	file, err := lifecycle.Upload(context.Background(), 2, []byte("owned by user 2"), "b.txt", "text/plain")
	if err != nil {
		t.Fatal(err)
	}

	if err := lifecycle.Delete(context.Background(), 1, file.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// the file stays fully intact
	if _, err := files.FindByID(context.Background(), file.ID); err != nil {
		t.Fatal("record must survive a forbidden delete")
	}
	if !blobs.has(file.StorageKey) {
		t.Fatal("blob must survive a forbidden delete")
	}
}

func TestDeleteMissingFile(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(1000)
	if err := lifecycle.Delete(context.Background(), 1, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteMetadataFailureKeepsBlob(t *testing.T) {
	lifecycle, blobs, files := newTestLifecycle(1000)
	file, err := lifecycle.Upload(context.Background(), 1, []byte("data"), "a.txt", "text/plain")
	if err != nil {
		t.Fatal(err)
	}
	files.failDelete = true

	err = lifecycle.Delete(context.Background(), 1, file.ID)
	var failure *StoreFailure
	if !errors.As(err, &failure) || failure.Kind != FailMetadataDelete {
		t.Fatalf("expected metadata_delete failure, got %v", err)
	}
	// consistent, visible state: record and blob both still there
	files.failDelete = false
	if _, err := files.FindByID(context.Background(), file.ID); err != nil {
		t.Fatal("record must still exist after a failed metadata delete")
	}
	if !blobs.has(file.StorageKey) {
		t.Fatal("blob must be untouched after a failed metadata delete")
	}
}

func TestDeleteOrphanTolerance(t *testing.T) {
	lifecycle, blobs, files := newTestLifecycle(1000)
	recorder := &orphanRecorder{}
	lifecycle.Reclaim = recorder.reclaim
	file, err := lifecycle.Upload(context.Background(), 1, []byte("data"), "a.txt", "text/plain")
	if err != nil {
		t.Fatal(err)
	}
	blobs.failRemove = true

	if err := lifecycle.Delete(context.Background(), 1, file.ID); err != nil {
		t.Fatalf("delete must succeed once metadata is gone, got %v", err)
	}
	if files.count() != 0 {
		t.Fatal("record must be gone")
	}
	listed, _, err := lifecycle.List(context.Background(), 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Fatal("deleted file must not appear in listings")
	}
	if recorder.count() != 1 || !strings.HasPrefix(recorder.entries[0], "delete_cleanup:") {
		t.Fatalf("expected one delete_cleanup orphan report, got %v", recorder.entries)
	}
}

func TestDownloadRoundTrip(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(1000)
	content := []byte("hello locker")
	file, err := lifecycle.Upload(context.Background(), 1, content, "hello.txt", "text/plain")
	if err != nil {
		t.Fatal(err)
	}

	reader, got, err := lifecycle.Download(context.Background(), 1, file.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("downloaded %q, want %q", data, content)
	}
	if got.OriginalName != "hello.txt" || got.MimeType != "text/plain" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestDownloadHidesOtherOwnersFiles(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(1000)
	file, err := lifecycle.Upload(context.Background(), 2, []byte("secret"), "secret.txt", "text/plain")
	if err != nil {
		t.Fatal(err)
	}

	// the non-owner sees NotFound, not Forbidden
	_, _, err = lifecycle.Download(context.Background(), 1, file.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
}

func TestDownloadBlobReadFailure(t *testing.T) {
	lifecycle, blobs, _ := newTestLifecycle(1000)
	file, err := lifecycle.Upload(context.Background(), 1, []byte("data"), "a.txt", "text/plain")
	if err != nil {
		t.Fatal(err)
	}
	blobs.failGet = true

	_, _, err = lifecycle.Download(context.Background(), 1, file.ID)
	var failure *StoreFailure
	if !errors.As(err, &failure) || failure.Kind != FailBlobRead {
		t.Fatalf("expected blob_read failure, got %v", err)
	}
}

func TestListOrderingAndFiltering(t *testing.T) {
	lifecycle, _, files := newTestLifecycle(100000)
	files.addRecord(1, "first.txt", "files/1/k1", 10, time.Unix(1, 0))
	files.addRecord(1, "second.txt", "files/1/k2", 10, time.Unix(2, 0))
	files.addRecord(1, "third.txt", "files/1/k3", 10, time.Unix(3, 0))

	listed, _, err := lifecycle.List(context.Background(), 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 files, got %d", len(listed))
	}
	for i, want := range []string{"third.txt", "second.txt", "first.txt"} {
		if listed[i].OriginalName != want {
			t.Fatalf("position %d: got %s, want %s", i, listed[i].OriginalName, want)
		}
	}
}

func TestListSearchIsCaseInsensitive(t *testing.T) {
	lifecycle, _, files := newTestLifecycle(100000)
	files.addRecord(1, "Report.pdf", "files/1/k1", 10, time.Unix(1, 0))
	files.addRecord(1, "image.png", "files/1/k2", 20, time.Unix(2, 0))

	listed, usage, err := lifecycle.List(context.Background(), 1, "report")
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].OriginalName != "Report.pdf" {
		t.Fatalf("expected only Report.pdf, got %v", listed)
	}
	// usage next to a filtered listing still covers all the user's files
	if usage.UsedBytes != 30 || usage.FileCount != 2 {
		t.Fatalf("usage must cover all files, got %+v", usage)
	}
}

func TestListScopedToOwner(t *testing.T) {
	lifecycle, _, files := newTestLifecycle(100000)
	files.addRecord(1, "mine.txt", "files/1/k1", 10, time.Unix(1, 0))
	files.addRecord(2, "theirs.txt", "files/2/k1", 10, time.Unix(2, 0))

	listed, usage, err := lifecycle.List(context.Background(), 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].OriginalName != "mine.txt" {
		t.Fatalf("expected only the owner's file, got %v", listed)
	}
	if usage.UsedBytes != 10 {
		t.Fatalf("usage must only count the owner's files, got %+v", usage)
	}
}

func TestUsageIdempotentReread(t *testing.T) {
	lifecycle, _, files := newTestLifecycle(100000)
	files.addRecord(1, "a.txt", "files/1/k1", 123, time.Unix(1, 0))
	files.addRecord(1, "b.txt", "files/1/k2", 456, time.Unix(2, 0))

	first, err := lifecycle.Usage(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	second, err := lifecycle.Usage(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("usage must be stable without mutations: %+v vs %+v", first, second)
	}
	if first.UsedBytes != 579 || first.FileCount != 2 {
		t.Fatalf("unexpected usage: %+v", first)
	}
}

func TestUploadAcquiresPerUserLock(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(1000)
	locker := &fakeLocker{}
	lifecycle.Locks = locker

	if _, err := lifecycle.Upload(context.Background(), 7, []byte("data"), "a.txt", "text/plain"); err != nil {
		t.Fatal(err)
	}
	if len(locker.locks) != 1 || locker.locks[0] != 7 {
		t.Fatalf("expected one lock for user 7, got %v", locker.locks)
	}
	if locker.held != 0 {
		t.Fatal("lock must be released after the upload")
	}
}

func TestUploadProceedsWhenLockUnavailable(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(1000)
	lifecycle.Locks = &fakeLocker{fail: true}

	// the quota check degrades to advisory instead of blocking the upload
	if _, err := lifecycle.Upload(context.Background(), 1, []byte("data"), "a.txt", "text/plain"); err != nil {
		t.Fatalf("upload must proceed without the lock, got %v", err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(1000)
	ctx := context.Background()

	file, err := lifecycle.Upload(ctx, 1, make([]byte, 100), "a.txt", "text/plain")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	usage, err := lifecycle.Usage(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if usage.UsedBytes != 100 {
		t.Fatalf("expected usedBytes=100, got %d", usage.UsedBytes)
	}
	if p := usage.Percent(1000); p != 10 {
		t.Fatalf("expected percent=10, got %d", p)
	}

	if err := lifecycle.Delete(ctx, 1, file.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	usage, err = lifecycle.Usage(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if usage.UsedBytes != 0 || usage.Percent(1000) != 0 {
		t.Fatalf("expected empty usage after delete, got %+v", usage)
	}

	if _, _, err := lifecycle.Download(ctx, 1, file.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted file, got %v", err)
	}
}
