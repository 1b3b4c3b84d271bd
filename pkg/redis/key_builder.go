package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = environment
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// KeyPollBySlug builds the cache key for a poll looked up by slug
func (kb *KeyBuilder) KeyPollBySlug(slug string) string {
	return kb.BuildKey(fmt.Sprintf(KeyPollBySlug, slug))
}

// KeyPollResults builds the cache key for a poll's aggregated results
func (kb *KeyBuilder) KeyPollResults(pollID int64) string {
	return kb.BuildKey(fmt.Sprintf(KeyPollResults, pollID))
}
