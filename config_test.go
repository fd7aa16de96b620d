package ttlcache

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceTTL(t *testing.T) {
	cases := []struct {
		in   interface{}
		want time.Duration
	}{
		{10, 10 * time.Millisecond},
		{int64(250), 250 * time.Millisecond},
		{uint8(3), 3 * time.Millisecond},
		{1.5, 1500 * time.Microsecond},
		{float32(2), 2 * time.Millisecond},
		{-5, -5 * time.Millisecond},
		{"10", 10 * time.Millisecond},
		{" 2.5 ", 2500 * time.Microsecond},
		{"1.5s", 1500 * time.Millisecond},
		{3 * time.Second, 3 * time.Second},
		{nil, 0},
		{"", 0},
		{"soon", 0},
		{"NaN", 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
		{true, 0},
		{struct{}{}, 0},
		{math.MaxFloat64, time.Duration(math.MaxInt64)},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CoerceTTL(tc.in), "input %#v", tc.in)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("ttl: 10\ncapacity: 100\neviction: arc\n"))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, cfg.TTL)
	assert.Equal(t, 100, cfg.Capacity)
	assert.Equal(t, EvictARC, cfg.Eviction)

	cfg, err = ParseConfig([]byte("ttl: 1m\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.TTL)
	assert.Equal(t, 0, cfg.Capacity)

	// missing or invalid ttl means expire immediately
	cfg, err = ParseConfig([]byte("capacity: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.TTL)

	cfg, err = ParseConfig([]byte("ttl: .nan\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.TTL)

	_, err = ParseConfig([]byte("eviction: fifo\n"))
	assert.Error(t, err)

	_, err = ParseConfig([]byte("ttl: [1, 2\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ttl: \"250\"\neviction: expiry\ncapacity: 2\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.TTL)
	assert.Equal(t, EvictExpiry, cfg.Eviction)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
