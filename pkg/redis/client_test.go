package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewClient(context.Background(), mr.Addr(), "", 0, nil)
	require.NoError(t, err)
	defer c.Close()
	assert.NoError(t, c.Set(context.Background(), "k", "v", 0).Err())
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), addr, "", 0, nil)
	assert.ErrorContains(t, err, "redis ping")
}
