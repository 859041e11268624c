// Package cache provides the key/value cache used in front of the sensor source.
package cache

import (
	"context"
	"fmt"
	"meteoapi/internal/config"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Cache stores JSON-encoded values under string keys.
type Cache interface {
	// Get decodes the cached value into dest and reports whether the key was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Name() string
}

// New builds the backend selected by CACHE_TYPE. An unreachable redis
// degrades to a disabled cache.
func New(cfg config.Config) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.CacheType)) {
	case "", TypeNone:
		return Noop{}, nil
	case TypeMemory:
		return NewMemory(cfg.CacheTTL()), nil
	case TypeRedis:
		c, err := NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logrus.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unavailable, cache disabled")
			return Noop{}, nil
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error { return nil }
func (Noop) Name() string { return TypeNone }
