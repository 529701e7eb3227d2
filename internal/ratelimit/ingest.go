package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inkhaus/studio/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const (
	keyIngestGlobal  = "ingest:global"
	keyIngestSession = "ingest:session:%s"
)

// IngestLimiter throttles analytics event writes, globally and per session.
// A nil limiter allows everything; the limiter is nil when redis is not
// configured.
type IngestLimiter struct {
	enabled bool

	bucket *TokenBucket

	globalRate   float64
	globalBurst  int
	sessionRate  float64
	sessionBurst int
}

func NewIngestLimiter(cfg config.Config) (*IngestLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.IngestRate <= 0 || limitCfg.IngestBurst <= 0 {
		return nil, errors.New("ingest rate limit must be positive")
	}
	if limitCfg.SessionRate <= 0 || limitCfg.SessionBurst <= 0 {
		return nil, errors.New("ingest session rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &IngestLimiter{
		enabled:      true,
		bucket:       NewTokenBucket(client),
		globalRate:   limitCfg.IngestRate,
		globalBurst:  limitCfg.IngestBurst,
		sessionRate:  limitCfg.SessionRate,
		sessionBurst: limitCfg.SessionBurst,
	}, nil
}

func (l *IngestLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow checks the global bucket, then the per-session bucket. Both must
// have capacity for the event to be admitted.
func (l *IngestLimiter) Allow(ctx context.Context, sessionID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	ok, err := l.bucket.Allow(ctx, keyIngestGlobal, l.globalRate, l.globalBurst)
	if err != nil || !ok {
		return ok, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyIngestSession, sessionID), l.sessionRate, l.sessionBurst)
}
