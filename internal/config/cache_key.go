package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// RoomSessionKey returns the cache key for an issued room access credential.
func (r *CacheKeyStruct) RoomSessionKey(roomName, identity string) string {
	return fmt.Sprintf("room:%s:session:%s", roomName, identity)
}

// RoomSessionPattern returns the SCAN pattern matching all of a room's sessions.
func (r *CacheKeyStruct) RoomSessionPattern(roomName string) string {
	return fmt.Sprintf("room:%s:session:*", roomName)
}

// QuizMonitorChannel returns the Redis PubSub channel name for a quiz monitor.
func (r *CacheKeyStruct) QuizMonitorChannel(quizID string) string {
	return fmt.Sprintf("quiz:%s:monitor", quizID)
}

var CacheKey = NewCacheKeyStruct()
