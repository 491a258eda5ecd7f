//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestWithMySQL tests the CLI with a MySQL backend.
func TestWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "anamericanday",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/anamericanday?parseTime=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestWithPostgres tests the CLI with a PostgreSQL backend.
func TestWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}

// runBackendScenario drives the cache and run commands against one database.
func runBackendScenario(t *testing.T, backend, connStr string) {
	t.Helper()
	dataDir := writeFixtures(t)
	env := []string{
		"HOME=" + t.TempDir(),
		"ANAMERICANDAY_CACHE_BACKEND=" + backend,
		"ANAMERICANDAY_CACHE_DB_CONNECT=" + connStr,
		"ANAMERICANDAY_RUN_BACKEND=" + backend,
		"ANAMERICANDAY_RUN_DB_CONNECT=" + connStr,
	}

	steps := [][]string{
		{"cache", "clear"},
		{"runs", "migrate"},
		{"extract", dataDir, "--output", "json"},
		{"extract", dataDir, "--output", "json"},
		{"labels", dataDir, "--timescale", "week", "--output", "json"},
		{"cache", "status"},
		{"runs", "status"},
		{"runs", "clear"},
	}
	for _, args := range steps {
		_, err := runCommand(t, env, args...)
		require.NoError(t, err, "step %v", args)
	}
}
