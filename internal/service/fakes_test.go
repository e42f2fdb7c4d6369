package service

import (
	"GoLocker/internal/storage"
	"GoLocker/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// fakeBlobStore is an in-memory storage.Store with switchable failures.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	modTime map[string]time.Time

	failPut    bool
	failGet    bool
	failRemove bool
	// failRemoveKeys fails removal of specific keys only, e.g. to break just
	// the compensating delete.
	failRemoveKeys map[string]bool

	removeCalls []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		objects:        make(map[string][]byte),
		modTime:        make(map[string]time.Time),
		failRemoveKeys: make(map[string]bool),
	}
}

func (s *fakeBlobStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts storage.PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errors.New("blob store unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[object] = data
	s.modTime[object] = time.Now()
	return nil
}

func (s *fakeBlobStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, storage.ObjectInfo{}, errors.New("blob store unavailable")
	}
	data, ok := s.objects[object]
	if !ok {
		return nil, storage.ObjectInfo{}, errors.New("key not found")
	}
	info := storage.ObjectInfo{
		ObjectName:   object,
		Size:         int64(len(data)),
		LastModified: s.modTime[object],
	}
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func (s *fakeBlobStore) RemoveObject(ctx context.Context, bucket, object string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeCalls = append(s.removeCalls, object)
	if s.failRemove || s.failRemoveKeys[object] {
		return errors.New("blob store unavailable")
	}
	delete(s.objects, object)
	delete(s.modTime, object)
	return nil
}

func (s *fakeBlobStore) ListObjects(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []storage.ObjectInfo
	for key, data := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		out = append(out, storage.ObjectInfo{
			ObjectName:   key,
			Size:         int64(len(data)),
			LastModified: s.modTime[key],
		})
	}
	return out, nil
}

func (s *fakeBlobStore) PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[object]; !ok {
		return "", errors.New("key not found")
	}
	return "http://blob.test/" + bucket + "/" + object, nil
}

func (s *fakeBlobStore) PresignedGetObjectWithResponse(ctx context.Context, bucket, object string, expiry time.Duration, params map[string]string) (string, error) {
	return s.PresignedGetObject(ctx, bucket, object, expiry)
}

func (s *fakeBlobStore) has(object string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[object]
	return ok
}

func (s *fakeBlobStore) setModTime(object string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modTime[object] = t
}

// fakeFileStore is an in-memory repo.FileStore with switchable failures.
type fakeFileStore struct {
	mu      sync.Mutex
	nextID  uint64
	records map[uint64]*model.File

	failCreate bool
	failDelete bool
	failFind   bool
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{records: make(map[uint64]*model.File)}
}

func (s *fakeFileStore) Create(ctx context.Context, file *model.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return errors.New("metadata store unavailable")
	}
	s.nextID++
	file.ID = s.nextID
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Unix(int64(s.nextID), 0)
	}
	copied := *file
	s.records[file.ID] = &copied
	return nil
}

func (s *fakeFileStore) FindByID(ctx context.Context, id uint64) (*model.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind {
		return nil, errors.New("metadata store unavailable")
	}
	file, ok := s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *file
	return &copied, nil
}

func (s *fakeFileStore) FindOwned(ctx context.Context, ownerID, id uint64) (*model.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind {
		return nil, errors.New("metadata store unavailable")
	}
	file, ok := s.records[id]
	if !ok || file.UserID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *file
	return &copied, nil
}

func (s *fakeFileStore) FindByOwner(ctx context.Context, ownerID uint64, search string) ([]model.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind {
		return nil, errors.New("metadata store unavailable")
	}
	var out []model.File
	needle := strings.ToLower(search)
	for _, file := range s.records {
		if file.UserID != ownerID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(file.OriginalName), needle) {
			continue
		}
		out = append(out, *file)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *fakeFileStore) DeleteByID(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete {
		return errors.New("metadata store unavailable")
	}
	delete(s.records, id)
	return nil
}

func (s *fakeFileStore) ExistsByStorageKey(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind {
		return false, errors.New("metadata store unavailable")
	}
	for _, file := range s.records {
		if file.StorageKey == key {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeFileStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// addRecord seeds a record directly, bypassing failure switches.
func (s *fakeFileStore) addRecord(ownerID uint64, name, key string, size int64, createdAt time.Time) *model.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	file := &model.File{
		ID:           s.nextID,
		UserID:       ownerID,
		StorageKey:   key,
		OriginalName: name,
		Size:         size,
		MimeType:     "application/octet-stream",
		CreatedAt:    createdAt,
	}
	s.records[file.ID] = file
	return file
}

// fakeLocker records lock acquisitions per user.
type fakeLocker struct {
	mu    sync.Mutex
	locks []uint64
	held  int
	fail  bool
}

func (l *fakeLocker) Lock(ctx context.Context, userID uint64) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return nil, errors.New("lock unavailable")
	}
	l.locks = append(l.locks, userID)
	l.held++
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held--
	}, nil
}

// orphanRecorder captures reclaim hook invocations.
type orphanRecorder struct {
	mu      sync.Mutex
	entries []string
	fail    bool
}

func (r *orphanRecorder) reclaim(ctx context.Context, bucket, object, origin string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("queue unavailable")
	}
	r.entries = append(r.entries, fmt.Sprintf("%s:%s", origin, object))
	return nil
}

func (r *orphanRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func newTestLifecycle(quota int64) (*Lifecycle, *fakeBlobStore, *fakeFileStore) {
	blobs := newFakeBlobStore()
	files := newFakeFileStore()
	lifecycle := &Lifecycle{
		Blobs:      blobs,
		Files:      files,
		Bucket:     "test-bucket",
		QuotaBytes: quota,
	}
	return lifecycle, blobs, files
}
