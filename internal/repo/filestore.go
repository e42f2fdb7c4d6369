package repo

import (
	"GoLocker/model"
	"context"
	"fmt"

	"gorm.io/gorm"
)

// FileStore abstracts the metadata store operations the lifecycle manager
// needs. Lookups that miss return gorm.ErrRecordNotFound.
type FileStore interface {
	Create(ctx context.Context, file *model.File) error
	FindByID(ctx context.Context, id uint64) (*model.File, error)
	// FindOwned looks a file up scoped to its owner; a record owned by
	// someone else is indistinguishable from a missing one.
	FindOwned(ctx context.Context, ownerID, id uint64) (*model.File, error)
	// FindByOwner returns the owner's files newest first, optionally
	// filtered by a case-insensitive substring match on the name.
	FindByOwner(ctx context.Context, ownerID uint64, search string) ([]model.File, error)
	DeleteByID(ctx context.Context, id uint64) error
	ExistsByStorageKey(ctx context.Context, key string) (bool, error)
}

// GormFileStore implements FileStore on GORM/MySQL.
type GormFileStore struct {
	db *gorm.DB
}

// NewGormFileStore builds a FileStore from a GORM handle.
func NewGormFileStore(db *gorm.DB) *GormFileStore {
	return &GormFileStore{db: db}
}

// Create inserts a file record.
func (s *GormFileStore) Create(ctx context.Context, file *model.File) error {
	return s.db.WithContext(ctx).Create(file).Error
}

// FindByID loads a file record by ID.
func (s *GormFileStore) FindByID(ctx context.Context, id uint64) (*model.File, error) {
	var file model.File
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// FindOwned loads a file record by ID scoped to its owner.
func (s *GormFileStore) FindOwned(ctx context.Context, ownerID, id uint64) (*model.File, error) {
	var file model.File
	if err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// FindByOwner lists an owner's files newest first. MySQL LIKE under
// utf8mb4_general_ci already matches case-insensitively.
func (s *GormFileStore) FindByOwner(ctx context.Context, ownerID uint64, search string) ([]model.File, error) {
	query := s.db.WithContext(ctx).Model(&model.File{}).Where("user_id = ?", ownerID)
	if search != "" {
		query = query.Where("original_name LIKE ?", fmt.Sprintf("%%%s%%", search))
	}
	var files []model.File
	if err := query.Order("created_at DESC, id DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// DeleteByID removes a file record. Deleting an already-gone record is not
// an error; the observable state is the same.
func (s *GormFileStore) DeleteByID(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Delete(&model.File{}, id).Error
}

// ExistsByStorageKey reports whether any record references a storage key.
func (s *GormFileStore) ExistsByStorageKey(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.File{}).
		Where("storage_key = ?", key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Files is the main metadata store instance.
var Files FileStore

// InitFileStore wires the FileStore onto the initialized GORM handle.
func InitFileStore() {
	Files = NewGormFileStore(Db)
}
