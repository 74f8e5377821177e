package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserLoginKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserLoginKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// TestQuestionsKey returns the cache key for a test's validated question payload.
func (r *CacheKeyStruct) TestQuestionsKey(testID string) string {
	return fmt.Sprintf("test:%s:questions", testID)
}

// ActiveSessionKey returns the cache key for a user's resumability marker.
// Written when a session starts, cleared when it ends, so a returning client
// can discover that a study session was in flight.
func (r *CacheKeyStruct) ActiveSessionKey(userID int) string {
	return fmt.Sprintf("user:%d:active_session", userID)
}

// StudyStatsKey returns the cache key for a user's cached per-test study
// aggregate statistics.
func (r *CacheKeyStruct) StudyStatsKey(userID int, testID string) string {
	return fmt.Sprintf("user:%d:test:%s:study_stats", userID, testID)
}

var CacheKey = NewCacheKeyStruct()
