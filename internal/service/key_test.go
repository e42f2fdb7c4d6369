package service

import (
	"strings"
	"testing"
)

func TestBuildStorageKey(t *testing.T) {
	key := BuildStorageKey(42)
	if !strings.HasPrefix(key, "files/42/") {
		t.Fatalf("key %q must sit under the user's prefix", key)
	}
	if !strings.HasPrefix(key, StorageKeyPrefix) {
		t.Fatalf("key %q must sit under %q", key, StorageKeyPrefix)
	}
}

func TestBuildStorageKeyUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := BuildStorageKey(1)
		if seen[key] {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = true
	}
}
