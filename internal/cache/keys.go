package cache

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const analysisPrefix = "analysis"

// AnalysisKey identifies a cached text analysis by document hash, the
// tokenizer fingerprint and the keyword and sentence counts it was computed
// with.
func AnalysisKey(hash, tokenizer string, keywordCount, sentenceCount int) string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", analysisPrefix, hash, tokenizer, keywordCount, sentenceCount)
}

// AnalysisPattern matches every cached analysis of one document, or of every
// document when hash is empty.
func AnalysisPattern(hash string) string {
	if hash == "" {
		return analysisPrefix + ":*"
	}
	return fmt.Sprintf("%s:%s:*", analysisPrefix, hash)
}

// NewCacheService returns a Redis backed cache when a client is available and
// an in-process cache otherwise.
func NewCacheService(client *redis.Client, logger *slog.Logger) CacheService {
	if client == nil {
		logger.Info("Redis not configured, using in-memory cache")
		return NewMemoryCache(logger)
	}
	return NewRedisCache(client, logger)
}
