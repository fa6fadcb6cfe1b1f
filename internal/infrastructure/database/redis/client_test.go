package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/crawlmeter/crawlmeter/internal/config"
)

func TestBuildOptions_Defaults(t *testing.T) {
	opts := buildOptions(config.RedisConfig{})

	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.NotZero(t, opts.PoolSize)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)
	assert.Equal(t, 3*time.Second, opts.WriteTimeout)
}

func TestBuildOptions_ExplicitConfig(t *testing.T) {
	cfg := config.RedisConfig{
		Addr:         "cache.internal:6380",
		Password:     "secret",
		DB:           2,
		PoolSize:     50,
		DialTimeout:  time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}
	opts := buildOptions(cfg)

	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 50, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)
}
