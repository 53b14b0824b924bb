package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/goran-ethernal/ScanKit/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestServer_Disabled(t *testing.T) {
	s := NewServer(&config.MetricsConfig{Enabled: false}, nil)
	require.NoError(t, s.Start(t.Context()))
	require.Nil(t, s.Addr())
	require.NoError(t, s.Stop(context.Background()))
}

func TestServer_ServesMetrics(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true, ListenAddress: "127.0.0.1:0", Path: "/metrics"}
	s := NewServer(cfg, nil)
	require.NoError(t, s.Start(t.Context()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, s.Stop(ctx))
	}()

	LastSyncedBlockSet("normal", 42)
	RecordsSyncedAdd("normal", 3)

	body := get(t, fmt.Sprintf("http://%s/metrics", s.Addr()))
	require.Contains(t, body, `scankit_sync_last_block{kind="normal"} 42`)
	require.Contains(t, body, "scankit_uptime_seconds")

	require.Equal(t, "OK", get(t, fmt.Sprintf("http://%s/health", s.Addr())))
}

func get(t *testing.T, url string) string {
	t.Helper()

	resp, err := http.Get(url) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}
