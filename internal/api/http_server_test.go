package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meteoapi/internal/archive"
	"meteoapi/internal/auth"
	"meteoapi/internal/cache"
	"meteoapi/internal/config"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
	"meteoapi/internal/model"
	sqlrepo "meteoapi/internal/model/sql"
	"meteoapi/internal/sensor"
	"meteoapi/internal/service"

	"github.com/gin-gonic/gin"
)

type testServer struct {
	router  *gin.Engine
	handler *HTTPHandler
	repo    model.Repository
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.ParseConfig()
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.JWTSecret = "test-secret"
	if mutate != nil {
		mutate(&cfg)
	}

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := model.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := sqlrepo.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := sensor.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate sensor: %v", err)
	}

	repo := sqlrepo.NewGormRepository(conn)
	source := sensor.NewCached(sensor.NewSQLSource(conn), cache.NewMemory(time.Minute), time.Minute)
	store, err := archive.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("archive: %v", err)
	}

	access := service.NewAccess(repo)
	sync := service.NewSynchronizer(repo)
	stations, err := service.NewStationService(repo, source, sync, access, cfg.StationNumberPattern)
	if err != nil {
		t.Fatalf("station service: %v", err)
	}
	resolver := service.NewResolver(repo, source, access, service.ResolverOptionsFromConfig(cfg))

	handler, err := NewHTTPHandler(cfg, repo, Services{
		Resolver:  resolver,
		Stations:  stations,
		Discovery: service.NewDiscovery(repo, source, stations),
		Ingestor:  service.NewIngestor(source, stations),
		Exporter:  service.NewExporter(resolver, store, "/exports"),
		Admin:     service.NewAdminService(repo, cache.TypeMemory),
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	router := gin.New()
	router.Use(RequestIDMiddleware(), MetricsMiddleware())
	handler.RegisterRoutes(router)
	return &testServer{router: router, handler: handler, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// createUser 直接写库并签发访问令牌
func (s *testServer) createUser(t *testing.T, username, role string) (*db.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &db.User{Username: username, Email: username + "@example.com", PasswordHash: hash, Role: role, IsActive: true}
	if err := s.repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, _, err := s.handler.authManager.GenerateToken(user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return user, token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice", "email": "Alice@Example.com", "password": "secret123",
	})
	expectStatus(t, w, http.StatusCreated)
	registered := decode[dto.AuthResponse](t, w)
	if registered.User.Role != db.UserRoleUser || registered.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user %+v", registered.User)
	}
	if registered.RefreshToken == "" || registered.TokenType != "Bearer" {
		t.Fatalf("expected a token pair, got %+v", registered)
	}

	w = srv.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "secret123",
	})
	expectStatus(t, w, http.StatusConflict)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice@example.com", "password": "secret123"})
	expectStatus(t, w, http.StatusOK)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "alice", "password": "wrong-password"})
	expectStatus(t, w, http.StatusUnauthorized)

	w = srv.do(t, http.MethodGet, "/api/v1/auth/me", registered.AccessToken, nil)
	expectStatus(t, w, http.StatusOK)
	if me := decode[dto.UserSummary](t, w); me.Username != "alice" {
		t.Fatalf("unexpected profile %+v", me)
	}

	// refresh 令牌不能当作访问令牌使用
	w = srv.do(t, http.MethodGet, "/api/v1/auth/me", registered.RefreshToken, nil)
	expectStatus(t, w, http.StatusUnauthorized)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": registered.RefreshToken})
	expectStatus(t, w, http.StatusOK)
	refreshed := decode[dto.RefreshResponse](t, w)
	if refreshed.AccessToken == "" {
		t.Fatal("expected a new access token")
	}

	w = srv.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{"refresh_token": registered.AccessToken})
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestRegistrationDisabled(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.RegistrationEnabled = false })

	w := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "secret123",
	})
	expectStatus(t, w, http.StatusForbidden)
	if resp := decode[APIError](t, w); resp.Code != ErrCodeRegistrationClosed {
		t.Fatalf("unexpected code %s", resp.Code)
	}
}

func TestAuthRateLimit(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.AuthRateLimitPerMinute = 2 })

	for i := 0; i < 2; i++ {
		w := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "nobody", "password": "secret123"})
		expectStatus(t, w, http.StatusUnauthorized)
	}
	w := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "nobody", "password": "secret123"})
	expectStatus(t, w, http.StatusTooManyRequests)
}

func TestProtectedRoutes(t *testing.T) {
	srv := newTestServer(t, nil)
	_, userToken := srv.createUser(t, "bob", db.UserRoleUser)

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{name: "no token", path: "/api/v1/data/latest", status: http.StatusUnauthorized},
		{name: "garbage token", path: "/api/v1/data/latest", token: "not-a-jwt", status: http.StatusUnauthorized},
		{name: "user on admin route", path: "/api/v1/admin/dashboard", token: userToken, status: http.StatusForbidden},
		{name: "user data", path: "/api/v1/data/latest", token: userToken, status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, http.MethodGet, tt.path, tt.token, nil)
			expectStatus(t, w, tt.status)
			if w.Header().Get(requestIDHeader) == "" {
				t.Fatal("expected a request id header")
			}
		})
	}
}

func TestStationDataFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	_, adminToken := srv.createUser(t, "root", db.UserRoleAdmin)
	_, userToken := srv.createUser(t, "alice", db.UserRoleUser)

	w := srv.do(t, http.MethodPost, "/api/v1/admin/readings", adminToken, gin.H{
		"station_number": "ST-01", "values": gin.H{"4402": 21.5},
	})
	expectStatus(t, w, http.StatusNotFound)

	w = srv.do(t, http.MethodPost, "/api/v1/admin/stations", adminToken, gin.H{"station_number": "ST-01", "name": "Harbor"})
	expectStatus(t, w, http.StatusCreated)

	observed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Unix()
	w = srv.do(t, http.MethodPost, "/api/v1/admin/readings", adminToken, gin.H{
		"station_number": "ST-01", "observed_at": observed, "values": gin.H{"4402": 21.5, "700": 80},
	})
	expectStatus(t, w, http.StatusCreated)
	if ingest := decode[dto.ReadingIngestResponse](t, w); ingest.Stored != 2 || len(ingest.NewParameters) != 2 {
		t.Fatalf("unexpected ingest response %+v", ingest)
	}

	w = srv.do(t, http.MethodPost, "/api/v1/stations", userToken, gin.H{"station_number": "ST-01"})
	expectStatus(t, w, http.StatusCreated)
	w = srv.do(t, http.MethodPost, "/api/v1/stations", userToken, gin.H{"station_number": "ST-01"})
	expectStatus(t, w, http.StatusConflict)
	w = srv.do(t, http.MethodPost, "/api/v1/stations", userToken, gin.H{"station_number": "ST-404"})
	expectStatus(t, w, http.StatusNotFound)
	w = srv.do(t, http.MethodPost, "/api/v1/stations", userToken, gin.H{"station_number": "bad number!"})
	expectStatus(t, w, http.StatusBadRequest)

	w = srv.do(t, http.MethodGet, "/api/v1/data/latest", userToken, nil)
	expectStatus(t, w, http.StatusOK)
	latest := decode[dto.LatestDataResponse](t, w)
	if len(latest.Stations) != 1 || len(latest.Stations[0].Parameters) != 2 {
		t.Fatalf("unexpected latest data %+v", latest)
	}
	for _, p := range latest.Stations[0].Parameters {
		if p.Value == nil {
			t.Fatalf("expected a reading for %s", p.Code)
		}
	}

	w = srv.do(t, http.MethodPatch, "/api/v1/stations/ST-01/parameters/700", userToken, gin.H{"is_visible": false})
	expectStatus(t, w, http.StatusOK)

	w = srv.do(t, http.MethodGet, "/api/v1/data/ST-01/latest", userToken, nil)
	expectStatus(t, w, http.StatusOK)
	if view := decode[dto.StationView](t, w); len(view.Parameters) != 1 || view.Parameters[0].Code != "4402" {
		t.Fatalf("expected only 4402 to stay visible, got %+v", view.Parameters)
	}

	statusTests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{name: "visible history", method: http.MethodGet, path: "/api/v1/data/ST-01/4402/history", status: http.StatusOK},
		{name: "hidden history", method: http.MethodGet, path: "/api/v1/data/ST-01/700/history", status: http.StatusForbidden},
		{name: "unknown code", method: http.MethodGet, path: "/api/v1/data/ST-01/9999/history", status: http.StatusNotFound},
		{name: "unlinked station", method: http.MethodGet, path: "/api/v1/data/ST-02/latest", status: http.StatusNotFound},
		{name: "limit too large", method: http.MethodGet, path: "/api/v1/data/ST-01/4402/history?limit=20000", status: http.StatusBadRequest},
		{name: "export", method: http.MethodPost, path: fmt.Sprintf("/api/v1/data/ST-01/4402/export?start_time=%d&end_time=%d", observed-3600, observed+3600), status: http.StatusCreated},
		{name: "hidden export", method: http.MethodPost, path: "/api/v1/data/ST-01/700/export", status: http.StatusForbidden},
	}
	for _, tt := range statusTests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, tt.method, tt.path, userToken, nil)
			expectStatus(t, w, tt.status)
		})
	}

	w = srv.do(t, http.MethodPatch, "/api/v1/stations/ST-01/parameters", userToken, gin.H{
		"parameters": []gin.H{{"code": "700", "is_visible": true}, {"code": "9999", "is_visible": false}},
	})
	expectStatus(t, w, http.StatusNotFound)

	w = srv.do(t, http.MethodGet, "/api/v1/stations/ST-01/parameters", userToken, nil)
	expectStatus(t, w, http.StatusOK)
	for _, p := range decode[dto.ParameterVisibilityListResponse](t, w).Parameters {
		if p.Code == "700" && p.IsVisible {
			t.Fatal("rejected bulk update must not change visibility")
		}
	}

	w = srv.do(t, http.MethodDelete, "/api/v1/stations/ST-01", userToken, nil)
	expectStatus(t, w, http.StatusNoContent)
	w = srv.do(t, http.MethodGet, "/api/v1/data/ST-01/latest", userToken, nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestAdminUsers(t *testing.T) {
	srv := newTestServer(t, nil)
	admin, adminToken := srv.createUser(t, "root", db.UserRoleAdmin)

	w := srv.do(t, http.MethodPost, "/api/v1/admin/users", adminToken, gin.H{
		"username": "carol", "email": "carol@example.com", "password": "secret123", "role": "user",
	})
	expectStatus(t, w, http.StatusCreated)
	carol := decode[dto.UserSummary](t, w)

	w = srv.do(t, http.MethodPost, "/api/v1/admin/users", adminToken, gin.H{
		"username": "dave", "email": "dave@example.com", "password": "secret123", "role": "owner",
	})
	expectStatus(t, w, http.StatusBadRequest)

	w = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", admin.ID), adminToken, nil)
	expectStatus(t, w, http.StatusBadRequest)

	w = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/users/%d", carol.ID), adminToken, nil)
	expectStatus(t, w, http.StatusNoContent)

	w = srv.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "carol", "password": "secret123"})
	expectStatus(t, w, http.StatusForbidden)

	w = srv.do(t, http.MethodGet, "/api/v1/admin/users?page_size=500", adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	list := decode[dto.UserListResponse](t, w)
	if len(list.Users) != 2 || list.Meta == nil || list.Meta.PageSize != 100 {
		t.Fatalf("unexpected user list %+v", list)
	}

	w = srv.do(t, http.MethodPatch, "/api/v1/admin/users/9999", adminToken, gin.H{"is_active": true})
	expectStatus(t, w, http.StatusNotFound)

	w = srv.do(t, http.MethodGet, "/api/v1/admin/dashboard", adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	if stats := decode[dto.DashboardStats](t, w); stats.Users.Total != 2 || stats.Users.Active != 1 || stats.Cache != cache.TypeMemory {
		t.Fatalf("unexpected dashboard %+v", stats)
	}
}
