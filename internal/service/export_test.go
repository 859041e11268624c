package service

import (
	"context"
	"errors"
	"meteoapi/internal/archive"
	"meteoapi/internal/sensor"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExport(t *testing.T) {
	env := newTestEnv(t, testConfig())
	ctx := context.Background()
	env.source.addStation("ST-01", "4402", "700")
	u1 := env.createUser(t, "u1")
	env.link(t, u1, "ST-01")

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	env.source.history[sourceKey("ST-01", "4402")] = []sensor.Reading{
		{ObservedAt: base.Add(time.Hour), Value: 2.5},
		{ObservedAt: base, Value: 1},
	}

	dir := t.TempDir()
	store, err := archive.NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	exporter := NewExporter(env.resolver, store, "/exports")

	start, end := base, base.Add(2*time.Hour)
	resp, err := exporter.Export(ctx, u1.ID, "ST-01", "4402", HistoryRange{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	wantKey := "history/st-01/4402/1714521600-1714528800.csv"
	if resp.Key != wantKey || resp.URL != "/exports/"+wantKey || resp.Count != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(wantKey)))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", data)
	}
	if lines[1] != "ST-01,4402,,2024-05-01T01:00:00Z,2.5" {
		t.Fatalf("unexpected first row %q", lines[1])
	}

	if _, err := env.resolver.SetVisibility(ctx, u1.ID, "ST-01", "700", false); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if _, err := exporter.Export(ctx, u1.ID, "ST-01", "700", HistoryRange{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for hidden parameter, got %v", err)
	}
}
