package config

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STREAM_TICK_INTERVAL", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.StreamTickInterval)
	assert.Equal(t, 10, cfg.StreamSnapshotSize)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STREAM_TICK_INTERVAL", "2s")
	t.Setenv("STREAM_SNAPSHOT_SIZE", "25")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.StreamTickInterval)
	assert.Equal(t, 25, cfg.StreamSnapshotSize)
	assert.True(t, cfg.MinIOUseSSL)
}

func TestLoad_DatabasePool(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "")
	t.Setenv("DB_CONN_MAX_LIFETIME", "")

	cfg := Load()
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 5, cfg.DBMaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)

	t.Setenv("DB_MAX_OPEN_CONNS", "8")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")

	cfg = Load()
	assert.Equal(t, 8, cfg.DBMaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
}

func TestNewPostgresDB_RequiresURL(t *testing.T) {
	_, err := NewPostgresDB(&Config{})

	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestApplyPoolSettings(t *testing.T) {
	db := sqlx.NewDb(sql.OpenDB(nopConnector{}), "postgres")
	defer db.Close()

	applyPoolSettings(db, &Config{DBMaxOpenConns: 7})

	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}

type nopConnector struct{}

func (nopConnector) Connect(context.Context) (driver.Conn, error) {
	return nil, errors.New("not connected")
}

func (nopConnector) Driver() driver.Driver { return nil }
