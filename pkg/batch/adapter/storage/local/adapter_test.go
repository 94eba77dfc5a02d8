package local_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageAdapter "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage"
	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage/local"
	coreConfig "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
)

func newConfig(t *testing.T) *coreConfig.Config {
	cfg := coreConfig.NewConfig()
	cfg.Surfin.StorageConfigs["reports"] = map[string]interface{}{
		"type":        "local",
		"base_dir":    t.TempDir(),
		"bucket_name": "default",
	}
	cfg.Surfin.StorageConfigs["remote"] = map[string]interface{}{"type": "gcs", "bucket_name": "b"}
	return cfg
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	provider := local.NewLocalProvider(newConfig(t))
	defer provider.CloseAll()

	conn, err := provider.GetConnection("reports")
	require.NoError(t, err)

	require.NoError(t, conn.Upload(ctx, "", "runs/2026/a.parquet", bytes.NewBufferString("payload"), "application/octet-stream"))
	require.NoError(t, conn.Upload(ctx, "", "other/b.parquet", bytes.NewBufferString("x"), "application/octet-stream"))

	r, err := conn.Download(ctx, "", "runs/2026/a.parquet")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, r.Close())
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	var names []string
	require.NoError(t, conn.ListObjects(ctx, "", "runs/", func(name string) error {
		names = append(names, name)
		return nil
	}))
	assert.Equal(t, []string{"runs/2026/a.parquet"}, names)

	require.NoError(t, conn.DeleteObject(ctx, "", "runs/2026/a.parquet"))
	require.NoError(t, conn.DeleteObject(ctx, "", "runs/2026/a.parquet"))

	_, err = conn.Download(ctx, "", "runs/2026/a.parquet")
	assert.True(t, exception.IsKind(err, exception.KindNotFound))
}

func TestLocalRejectsEscapingPaths(t *testing.T) {
	provider := local.NewLocalProvider(newConfig(t))
	conn, err := provider.GetConnection("reports")
	require.NoError(t, err)

	err = conn.Upload(context.Background(), "", "../../etc/passwd", bytes.NewBufferString("x"), "text/plain")
	assert.True(t, exception.IsKind(err, exception.KindInvalidValue))
}

func TestResolverDispatchesByType(t *testing.T) {
	cfg := newConfig(t)
	r := storageAdapter.NewConnectionResolver(storageAdapter.ResolverParams{
		Providers: []storageAdapter.StorageProvider{local.NewLocalProvider(cfg)},
		Cfg:       cfg,
	})
	defer r.CloseAll()

	conn, err := r.ResolveStorageConnection(context.Background(), "reports")
	require.NoError(t, err)
	assert.Equal(t, "local", conn.Type())

	_, err = r.ResolveStorageConnection(context.Background(), "remote")
	assert.True(t, exception.IsKind(err, exception.KindConfiguration))

	_, err = r.ResolveStorageConnection(context.Background(), "missing")
	assert.True(t, exception.IsKind(err, exception.KindConfiguration))
}

func TestProviderForceReconnect(t *testing.T) {
	provider := local.NewLocalProvider(newConfig(t))
	first, err := provider.GetConnection("reports")
	require.NoError(t, err)
	second, err := provider.ForceReconnect("reports")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
