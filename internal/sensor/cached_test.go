package sensor_test

import (
	"context"
	"meteoapi/internal/cache"
	"meteoapi/internal/sensor"
	"sync"
	"testing"
	"time"
)

type countingSource struct {
	sensor.Store
	mu      sync.Mutex
	latest  int
	listing int
}

func (c *countingSource) Latest(ctx context.Context, number, code string) (*sensor.Reading, error) {
	c.mu.Lock()
	c.latest++
	c.mu.Unlock()
	return c.Store.Latest(ctx, number, code)
}

func (c *countingSource) Parameters(ctx context.Context, number string) ([]string, error) {
	c.mu.Lock()
	c.listing++
	c.mu.Unlock()
	return c.Store.Parameters(ctx, number)
}

func TestCachedLatest(t *testing.T) {
	inner := &countingSource{Store: openStore(t)}
	cached := sensor.NewCached(inner, cache.NewMemory(time.Minute), time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		reading, err := cached.Latest(ctx, "ST-01", "4402")
		if err != nil || reading != nil {
			t.Fatalf("expected empty reading, got %+v, %v", reading, err)
		}
	}
	if inner.latest != 1 {
		t.Fatalf("expected the empty result to be cached, inner called %d times", inner.latest)
	}

	err := cached.Record(ctx, []sensor.Measurement{{StationNumber: "ST-01", ParameterCode: "4402", ObservedAt: base, Value: 7}})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	reading, err := cached.Latest(ctx, "ST-01", "4402")
	if err != nil || reading == nil || reading.Value != 7 {
		t.Fatalf("expected fresh reading after Record, got %+v, %v", reading, err)
	}
	if inner.latest != 2 {
		t.Fatalf("expected Record to invalidate the cached value, inner called %d times", inner.latest)
	}

	again, err := cached.Latest(ctx, "ST-01", "4402")
	if err != nil || again == nil || again.Value != 7 || !again.ObservedAt.Equal(base) {
		t.Fatalf("unexpected cached reading %+v, %v", again, err)
	}
}

func TestCachedParameters(t *testing.T) {
	inner := &countingSource{Store: openStore(t)}
	cached := sensor.NewCached(inner, cache.NewMemory(time.Minute), time.Minute)
	ctx := context.Background()

	if err := cached.Record(ctx, []sensor.Measurement{{StationNumber: "ST-01", ParameterCode: "4402", ObservedAt: base, Value: 1}}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	for i := 0; i < 2; i++ {
		codes, err := cached.Parameters(ctx, "ST-01")
		if err != nil || len(codes) != 1 {
			t.Fatalf("Parameters: %v, %v", codes, err)
		}
	}
	if inner.listing != 1 {
		t.Fatalf("expected one inner call, got %d", inner.listing)
	}

	if err := cached.Record(ctx, []sensor.Measurement{{StationNumber: "ST-01", ParameterCode: "700", ObservedAt: base, Value: 1}}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	codes, err := cached.Parameters(ctx, "ST-01")
	if err != nil || len(codes) != 2 {
		t.Fatalf("expected invalidated listing with 2 codes, got %v, %v", codes, err)
	}
}

func TestCachedWithoutCacheBackend(t *testing.T) {
	inner := &countingSource{Store: openStore(t)}
	cached := sensor.NewCached(inner, nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cached.Latest(ctx, "ST-01", "4402"); err != nil {
			t.Fatalf("Latest: %v", err)
		}
	}
	if inner.latest != 2 {
		t.Fatalf("expected pass-through, inner called %d times", inner.latest)
	}
}
