package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BuildStorageKey returns a fresh blob key for a user's upload. The random
// component makes keys unique even for uploads landing in the same tick;
// the original file name lives only in the metadata record.
func BuildStorageKey(userID uint64) string {
	return fmt.Sprintf("files/%d/%d-%s", userID, time.Now().UnixNano(), uuid.NewString())
}

// StorageKeyPrefix is the bucket prefix all upload keys share; the sweep
// scans only under it.
const StorageKeyPrefix = "files/"
