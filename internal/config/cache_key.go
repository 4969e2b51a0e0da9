package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptSnapshotKey returns the snapshot store key for a user's attempt at
// a test. One key per (user, test); concurrent writers are last-write-wins.
func (r *CacheKeyStruct) AttemptSnapshotKey(userID, testID string) string {
	return fmt.Sprintf("user:%s:test:%s:attempt", userID, testID)
}

// TestDefinitionKey returns the cache key for a fetched test definition.
func (r *CacheKeyStruct) TestDefinitionKey(testID string) string {
	return fmt.Sprintf("test:%s:definition", testID)
}

var CacheKey = NewCacheKeyStruct()
