package archive

import (
	"context"
	"meteoapi/internal/config"
	"os"
	"path/filepath"
	"testing"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name     string
		opts     PutOptions
		expected string
	}{
		{
			name:     "nested name",
			opts:     PutOptions{Category: "history", Name: "ST-01/4402/100-200", Extension: "csv"},
			expected: "history/st-01/4402/100-200.csv",
		},
		{
			name:     "empty category and extension",
			opts:     PutOptions{Name: "dump"},
			expected: "misc/dump.bin",
		},
		{
			name:     "traversal is stripped",
			opts:     PutOptions{Category: "history", Name: "../../etc/passwd", Extension: ".csv"},
			expected: "history/etc/passwd.csv",
		},
		{
			name:     "empty name",
			opts:     PutOptions{Category: "History", Extension: "CSV"},
			expected: "history/export.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectKey(tt.opts); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	if got := PublicURL("/exports/", "history/a.csv"); got != "/exports/history/a.csv" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := PublicURL("", "history/a.csv"); got != "" {
		t.Fatalf("expected empty url, got %q", got)
	}
}

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	opts := PutOptions{Category: "history", Name: "st-01/4402", Extension: "csv"}
	key, err := store.Put(context.Background(), []byte("a,b\n"), opts)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if key != "history/st-01/4402.csv" {
		t.Fatalf("unexpected key %q", key)
	}

	opts.SkipIfExists = true
	if _, err := store.Put(context.Background(), []byte("changed\n"), opts); err != nil {
		t.Fatalf("Put skip: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "history", "st-01", "4402.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "a,b\n" {
		t.Fatalf("existing object was overwritten: %q", data)
	}

	if _, err := store.Put(context.Background(), nil, opts); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestNewRejectsIncompleteRemoteConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "s3 without bucket", cfg: config.Config{ArchiveType: TypeS3}},
		{name: "s3 without credentials", cfg: config.Config{ArchiveType: TypeS3, ArchiveS3Bucket: "b", ArchiveS3Region: "us-east-1"}},
		{name: "oss without endpoint", cfg: config.Config{ArchiveType: TypeOSS}},
		{name: "cos without url", cfg: config.Config{ArchiveType: TypeCOS}},
		{name: "r2 without account", cfg: config.Config{ArchiveType: TypeR2, ArchiveR2Bucket: "b"}},
		{name: "unknown", cfg: config.Config{ArchiveType: "ftp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
