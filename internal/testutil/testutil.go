package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/restaurant-manager/internal/api"
	"github.com/dom/restaurant-manager/internal/config"
	"github.com/dom/restaurant-manager/internal/metrics"
	"github.com/dom/restaurant-manager/internal/repository"
	"github.com/dom/restaurant-manager/internal/repository/memory"
	repoPostgres "github.com/dom/restaurant-manager/internal/repository/postgres"
	"github.com/dom/restaurant-manager/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer, applies the embedded
// migrations and returns a connection. Skipped in -short mode.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres-backed test in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_restaurant_manager"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := repoPostgres.RunMigrations(dsn); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation. Seeded roles are kept.
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"restaurant_photos",
		"restaurant_timings",
		"restaurants",
		"user_sessions",
		"role_user",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:             "0", // Random port
		Environment:      "test",
		AppKey:           "test-app-key-for-testing-only",
		SessionLifetime:  time.Hour,
		HomePath:         "/dashboard",
		LoginMaxAttempts: 5,
		LoginDecay:       time.Minute,
		APIRateLimit:     600,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	Repos    *repository.Repositories
	Services *service.Services
	Registry *prometheus.Registry
	Config   *config.Config
}

// NewTestServer creates a test server backed by in-memory repositories.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	return NewTestServerWithRepos(t, memory.NewRepositories())
}

// NewTestServerWithDB creates a test server backed by a postgres testcontainer.
func NewTestServerWithDB(t *testing.T) (*TestServer, *TestDB) {
	t.Helper()

	testDB := NewTestDB(t)
	return NewTestServerWithRepos(t, repoPostgres.NewRepositories(testDB.DB)), testDB
}

// NewTestServerWithRepos wires services and the router over repos.
func NewTestServerWithRepos(t *testing.T, repos *repository.Repositories) *TestServer {
	t.Helper()

	cfg := TestConfig()
	registry := prometheus.NewRegistry()

	services, err := service.NewServices(repos, cfg, metrics.NewCollector(registry))
	if err != nil {
		t.Fatalf("failed to build services: %v", err)
	}

	router := api.NewRouter(services, cfg, zap.NewNop(), registry)
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		Repos:    repos,
		Services: services,
		Registry: registry,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// URL returns the full URL for a browser path
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

// BrowserClient returns a client that keeps cookies and does not follow
// redirects, so tests can inspect each 302.
func (ts *TestServer) BrowserClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	// Pick up the CSRF cookie the way a browser would, by visiting a page first
	resp, err := client.Get(ts.URL("/"))
	if err != nil {
		t.Fatalf("failed to prime browser client: %v", err)
	}
	resp.Body.Close()

	return client
}
