package config

import "testing"

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.InactiveStationPolicy != InactiveStationSkip {
		t.Fatalf("expected skip policy, got %q", cfg.InactiveStationPolicy)
	}
	if cfg.HistoryMaxLimit != 10000 || cfg.HistoryDefaultLimit != 1000 {
		t.Fatalf("unexpected history limits: %d/%d", cfg.HistoryDefaultLimit, cfg.HistoryMaxLimit)
	}
	if _, ok := cfg.SensorDatabase(); ok {
		t.Fatal("sensor database should default to the main database")
	}
}

func TestParseConfigFromEnv(t *testing.T) {
	t.Setenv("INACTIVE_STATION_POLICY", "include")
	t.Setenv("SENSOR_DB_TYPE", "postgres")
	t.Setenv("SENSOR_DSN_URL", "host=sensors")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.InactiveStationPolicy != InactiveStationInclude {
		t.Fatalf("expected include policy, got %q", cfg.InactiveStationPolicy)
	}
	sensor, ok := cfg.SensorDatabase()
	if !ok || sensor.Type != "postgres" || sensor.DSN != "host=sensors" {
		t.Fatalf("unexpected sensor settings: %+v (ok=%v)", sensor, ok)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	base, err := ParseConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad policy", mutate: func(c *Config) { c.InactiveStationPolicy = "hide" }, wantErr: true},
		{name: "default above max", mutate: func(c *Config) { c.HistoryDefaultLimit = c.HistoryMaxLimit + 1 }, wantErr: true},
		{name: "zero fanout", mutate: func(c *Config) { c.SensorFanout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
