package sensor

import (
	"context"
	"fmt"
	"meteoapi/internal/cache"
	"meteoapi/internal/metrics"
	"time"

	"github.com/sirupsen/logrus"
)

// Cached puts a cache in front of Latest and Parameters. History and
// HasStation always hit the inner source.
type Cached struct {
	inner Source
	cache cache.Cache
	ttl   time.Duration
}

type cachedLatest struct {
	Found   bool    `json:"found"`
	Reading Reading `json:"reading"`
}

func NewCached(inner Source, c cache.Cache, ttl time.Duration) *Cached {
	if c == nil {
		c = cache.Noop{}
	}
	return &Cached{inner: inner, cache: c, ttl: ttl}
}

func latestKey(stationNumber, parameterCode string) string {
	return fmt.Sprintf("sensor:latest:%s:%s", stationNumber, parameterCode)
}

func parametersKey(stationNumber string) string {
	return fmt.Sprintf("sensor:params:%s", stationNumber)
}

func (c *Cached) lookup(ctx context.Context, key string, dest interface{}) bool {
	found, err := c.cache.Get(ctx, key, dest)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	if found {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}
	return found
}

func (c *Cached) store(ctx context.Context, key string, value interface{}) {
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func (c *Cached) Latest(ctx context.Context, stationNumber, parameterCode string) (*Reading, error) {
	key := latestKey(stationNumber, parameterCode)
	var hit cachedLatest
	if c.lookup(ctx, key, &hit) {
		if !hit.Found {
			return nil, nil
		}
		reading := hit.Reading
		return &reading, nil
	}

	reading, err := c.inner.Latest(ctx, stationNumber, parameterCode)
	if err != nil {
		return nil, err
	}
	entry := cachedLatest{Found: reading != nil}
	if reading != nil {
		entry.Reading = *reading
	}
	c.store(ctx, key, entry)
	return reading, nil
}

func (c *Cached) History(ctx context.Context, stationNumber, parameterCode string, rng Range) ([]Reading, error) {
	return c.inner.History(ctx, stationNumber, parameterCode, rng)
}

func (c *Cached) Parameters(ctx context.Context, stationNumber string) ([]string, error) {
	key := parametersKey(stationNumber)
	var codes []string
	if c.lookup(ctx, key, &codes) {
		return codes, nil
	}
	codes, err := c.inner.Parameters(ctx, stationNumber)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, codes)
	return codes, nil
}

func (c *Cached) HasStation(ctx context.Context, stationNumber string) (bool, error) {
	return c.inner.HasStation(ctx, stationNumber)
}

// Record writes through to the inner store and drops the affected cache entries.
func (c *Cached) Record(ctx context.Context, measurements []Measurement) error {
	recorder, ok := c.inner.(Recorder)
	if !ok {
		return fmt.Errorf("sensor source is read-only")
	}
	if err := recorder.Record(ctx, measurements); err != nil {
		return err
	}

	seen := make(map[string]struct{})
	keys := make([]string, 0, len(measurements)+1)
	for _, m := range measurements {
		for _, key := range []string{latestKey(m.StationNumber, m.ParameterCode), parametersKey(m.StationNumber)} {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		logrus.WithError(err).Warn("cache invalidation failed")
	}
	return nil
}

var _ Store = (*Cached)(nil)
