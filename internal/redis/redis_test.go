package redis

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralscript/viralscript/internal/config"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr)}

	client, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.NoError(t, HealthCheck(context.Background(), client))

	mr.Close()
	assert.Error(t, HealthCheck(context.Background(), client))
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	var port int
	_, err := fmt.Sscanf(mr.Port(), "%d", &port)
	require.NoError(t, err)
	return port
}
