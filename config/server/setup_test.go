package server

import (
	"AuthSessionService/config"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := SetupRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	mr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = SetupRedis(ctx, config.RedisConfig{Addr: mr.Addr()})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ошибка подключения к redis")
}

func TestSetupServer(t *testing.T) {
	cfg := config.Default().Server
	cfg.Host, cfg.Port = "127.0.0.1", "8081"

	server, router := SetupServer(cfg)
	assert.Equal(t, "127.0.0.1:8081", server.Addr)
	assert.Same(t, router, server.Handler)
}
