package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := Open(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, c.HealthCheck(context.Background()))
}

func TestOpenFailures(t *testing.T) {
	_, err := Open(context.Background(), "", "", 0)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = Open(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
