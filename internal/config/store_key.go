package config

import (
	"fmt"
	"strings"
)

type StoreKeyStruct struct{}

func NewStoreKeyStruct() *StoreKeyStruct {
	return &StoreKeyStruct{}
}

// SnapshotKey returns the store key for a test-taker's session snapshot.
func (r *StoreKeyStruct) SnapshotKey(userID string) string {
	return fmt.Sprintf("taker:%s:snapshot", userID)
}

// BackupKey returns the store key for a test-taker's submission backup.
func (r *StoreKeyStruct) BackupKey(userID string) string {
	return fmt.Sprintf("taker:%s:backup", userID)
}

// BackupPattern returns the scan pattern matching every submission backup.
func (r *StoreKeyStruct) BackupPattern() string {
	return "taker:*:backup"
}

// BackupUserID extracts the user ID back out of a backup key.
// Returns an empty string if the key does not match the backup layout.
func (r *StoreKeyStruct) BackupUserID(key string) string {
	rest, ok := strings.CutPrefix(key, "taker:")
	if !ok {
		return ""
	}
	userID, ok := strings.CutSuffix(rest, ":backup")
	if !ok || userID == "" {
		return ""
	}
	return userID
}

var StoreKey = NewStoreKeyStruct()
