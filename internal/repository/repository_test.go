package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/field-schedule/backend/internal/config"
)

func testConfig(dsn string) *config.Config {
	cfg := &config.Config{}
	cfg.Database.Driver = DriverSQLite
	cfg.Database.DSN = dsn
	cfg.Database.ConnectTimeout = 5
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10
	// 与生产环境的默认值一致
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 10
	cfg.Database.MaxIdleTime = 60
	return cfg
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	cfg := testConfig(filepath.Join(t.TempDir(), "schedule.db"))
	dbpool, err := OpenDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbpool.Close() })

	repo := NewRepository(cfg, dbpool)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestOpenDBUnsupportedDriver(t *testing.T) {
	cfg := testConfig("whatever")
	cfg.Database.Driver = "mysql"

	_, err := OpenDB(context.Background(), cfg)
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	assert.NoError(t, repo.Migrate(context.Background()))
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"/tmp/a.db", "/tmp/a.db?_pragma=busy_timeout(5000)&_txlock=immediate"},
		{"/tmp/a.db?_pragma=foreign_keys(1)", "/tmp/a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"},
		{"/tmp/a.db?_pragma=busy_timeout(100)", "/tmp/a.db?_pragma=busy_timeout(100)&_txlock=immediate"},
		{"/tmp/a.db?_pragma=busy_timeout(100)&_txlock=deferred", "/tmp/a.db?_pragma=busy_timeout(100)&_txlock=deferred"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteDSN(tt.dsn))
	}
}

func TestOpenDBSerializesSQLite(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "pool.db"))

	dbpool, err := OpenDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbpool.Close() })

	assert.Equal(t, 1, dbpool.Stats().MaxOpenConnections)
}
