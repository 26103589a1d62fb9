package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	log := zap.NewNop()

	require.NoError(t, ConnectRedis(context.Background(), mr.Addr(), "", 0, log))
	t.Cleanup(func() { CloseRedis(log); RDB = nil })

	require.NotNil(t, RDB)
	assert.NoError(t, RDB.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	err := ConnectRedis(context.Background(), addr, "", 0, zap.NewNop())
	assert.ErrorContains(t, err, "could not connect to Redis")
}
