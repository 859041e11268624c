package service

import (
	"context"
	"errors"
	"fmt"
	"meteoapi/internal/config"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
	"meteoapi/internal/model"
	sqlrepo "meteoapi/internal/model/sql"
	"meteoapi/internal/sensor"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

var errSourceDown = errors.New("sensor source down")

// fakeSource is an in-memory sensor.Source keyed by "number/code".
type fakeSource struct {
	mu       sync.Mutex
	stations map[string][]string
	latest   map[string]sensor.Reading
	history  map[string][]sensor.Reading
	failing  map[string]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		stations: make(map[string][]string),
		latest:   make(map[string]sensor.Reading),
		history:  make(map[string][]sensor.Reading),
		failing:  make(map[string]bool),
	}
}

func sourceKey(number, code string) string {
	return number + "/" + code
}

func (f *fakeSource) addStation(number string, codes ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stations[number] = append([]string(nil), codes...)
}

func (f *fakeSource) setLatest(number, code string, value float64, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest[sourceKey(number, code)] = sensor.Reading{ObservedAt: at, Value: value}
}

func (f *fakeSource) fail(number, code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[sourceKey(number, code)] = true
}

func (f *fakeSource) Latest(_ context.Context, number, code string) (*sensor.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[sourceKey(number, code)] {
		return nil, errSourceDown
	}
	reading, ok := f.latest[sourceKey(number, code)]
	if !ok {
		return nil, nil
	}
	return &reading, nil
}

func (f *fakeSource) History(_ context.Context, number, code string, rng sensor.Range) ([]sensor.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[sourceKey(number, code)] {
		return nil, errSourceDown
	}
	readings := f.history[sourceKey(number, code)]
	if rng.Limit > 0 && len(readings) > rng.Limit {
		readings = readings[:rng.Limit]
	}
	return append([]sensor.Reading(nil), readings...), nil
}

func (f *fakeSource) Parameters(_ context.Context, number string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[sourceKey(number, "*")] {
		return nil, errSourceDown
	}
	return append([]string(nil), f.stations[number]...), nil
}

func (f *fakeSource) HasStation(_ context.Context, number string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.stations[number]
	return ok, nil
}

type testEnv struct {
	conn      *gorm.DB
	repo      model.Repository
	source    *fakeSource
	sync      *Synchronizer
	access    *Access
	resolver  *Resolver
	stations  *StationService
	discovery *Discovery
}

func testConfig() config.Config {
	return config.Config{
		InactiveStationPolicy: config.InactiveStationSkip,
		SensorFanout:          4,
		SensorTimeoutSeconds:  1,
		HistoryDefaultLimit:   100,
		HistoryMaxLimit:       500,
		StationNumberPattern:  "^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$",
	}
}

func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := model.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := sqlrepo.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := sensor.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate sensor: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repo := sqlrepo.NewGormRepository(conn)
	source := newFakeSource()
	syncer := NewSynchronizer(repo)
	access := NewAccess(repo)
	stations, err := NewStationService(repo, source, syncer, access, cfg.StationNumberPattern)
	if err != nil {
		t.Fatalf("station service: %v", err)
	}
	return &testEnv{
		conn:      conn,
		repo:      repo,
		source:    source,
		sync:      syncer,
		access:    access,
		resolver:  NewResolver(repo, source, access, ResolverOptionsFromConfig(cfg)),
		stations:  stations,
		discovery: NewDiscovery(repo, source, stations),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *db.User {
	t.Helper()
	user := &db.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         db.UserRoleUser,
		IsActive:     true,
	}
	if err := e.repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// link adds the station through the public path, so the station and its
// parameters are registered from the fake source on first use.
func (e *testEnv) link(t *testing.T, user *db.User, number string) *dto.UserStationItem {
	t.Helper()
	item, err := e.stations.AddUserStation(context.Background(), user.ID, dto.UserStationAddRequest{StationNumber: number})
	if err != nil {
		t.Fatalf("link %s to %s: %v", user.Username, number, err)
	}
	return item
}

func (e *testEnv) visibility(t *testing.T, user *db.User, number string) map[string]dto.ParameterVisibilityItem {
	t.Helper()
	resp, err := e.resolver.ListParametersWithVisibility(context.Background(), user.ID, number)
	if err != nil {
		t.Fatalf("list visibility: %v", err)
	}
	out := make(map[string]dto.ParameterVisibilityItem, len(resp.Parameters))
	for _, item := range resp.Parameters {
		out[item.Code] = item
	}
	return out
}

func codesOf(view dto.StationView) []string {
	codes := make([]string, len(view.Parameters))
	for i, p := range view.Parameters {
		codes[i] = p.Code
	}
	return codes
}

func boolPtr(v bool) *bool {
	return &v
}

func strPtr(v string) *string {
	return &v
}
