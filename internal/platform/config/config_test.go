package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imsse/pkg/domain"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 2*time.Minute, cfg.QueryTimeout)
	assert.True(t, cfg.SystemUser)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, []domain.EntitlementVersion{2, 8}, cfg.Versions().Sorted())
	assert.Equal(t, domain.DefaultUpgradeVersion, cfg.Upgrade())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("IMSSE_STORE", " SQLite ")
	t.Setenv("IMSSE_SUPPORTED_VERSIONS", "8, 9")
	t.Setenv("IMSSE_UPGRADE_VERSION", "9")
	t.Setenv("IMSSE_KAFKA_BROKERS", "b1:9092,b2:9092")
	t.Setenv("IMSSE_SYSTEM_USER", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, []domain.EntitlementVersion{8, 9}, cfg.Versions().Sorted())
	assert.Equal(t, domain.EntitlementVersion(9), cfg.Upgrade())
	assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.SystemUser)
}

func TestFromEnv_Validation(t *testing.T) {
	t.Run("postgres requires url", func(t *testing.T) {
		t.Setenv("IMSSE_STORE", "postgres")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("redis requires url", func(t *testing.T) {
		t.Setenv("IMSSE_STORE", "redis")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("IMSSE_STORE", "etcd")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("bad versions", func(t *testing.T) {
		t.Setenv("IMSSE_SUPPORTED_VERSIONS", "two")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("non-positive upgrade version", func(t *testing.T) {
		t.Setenv("IMSSE_UPGRADE_VERSION", "0")
		_, err := FromEnv()
		require.Error(t, err)
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		t.Setenv("IMSSE_QUERY_TIMEOUT", "0s")
		_, err := FromEnv()
		require.Error(t, err)
	})
}

func TestLoad_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("IMSSE_ADDR=:9191\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("IMSSE_ADDR") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.Server.Addr)
}

func TestLoad_MissingDotenvIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}
