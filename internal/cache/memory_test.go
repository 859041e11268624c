package cache

import (
	"context"
	"testing"
	"time"

	"meteoapi/internal/config"
)

type sample struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	var got sample
	found, err := c.Get(ctx, "missing", &got)
	if err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}

	if err := c.Set(ctx, "k", sample{Value: 12.5, Label: "t"}, 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	found, err = c.Get(ctx, "k", &got)
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if got.Value != 12.5 || got.Label != "t" {
		t.Fatalf("unexpected value %+v", got)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if found, _ := c.Get(ctx, "k", &got); found {
		t.Fatal("expected key to be deleted")
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	if err := c.Set(ctx, "short", 1, 10*time.Millisecond); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	var v int
	if found, _ := c.Get(ctx, "short", &v); found {
		t.Fatal("expected entry to expire")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		cacheType string
		want      string
		wantErr   bool
	}{
		{cacheType: "", want: TypeNone},
		{cacheType: "none", want: TypeNone},
		{cacheType: "memory", want: TypeMemory},
		{cacheType: "memcached", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.cacheType, func(t *testing.T) {
			c, err := New(config.Config{CacheType: tt.cacheType, CacheTTLSeconds: 60})
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.Name() != tt.want {
				t.Fatalf("expected %s backend, got %s", tt.want, c.Name())
			}
		})
	}
}
