package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session
func (r *CacheKeyStruct) UserSessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// UserAnswersKey returns the cache key for a user's autosaved answers hash
func (r *CacheKeyStruct) UserAnswersKey(testID, userID string) string {
	return fmt.Sprintf("user:%s:test:%s:answers", userID, testID)
}

// SessionDeadlineKey returns the cache key for a live session's submit deadline
func (r *CacheKeyStruct) SessionDeadlineKey(sessionID string) string {
	return fmt.Sprintf("session:%s:deadline", sessionID)
}

// TestMonitorChannel returns the Redis PubSub channel name for a test's proctor monitor
func (r *CacheKeyStruct) TestMonitorChannel(testID string) string {
	return fmt.Sprintf("test:%s:monitor", testID)
}

var CacheKey = NewCacheKeyStruct()
