package ttlcache

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/bluele/gcache"
	"gopkg.in/yaml.v3"
)

// Eviction policies for caches with a capacity.
const (
	// EvictLRU evicts the least recently used entry. It is the default.
	EvictLRU = gcache.TYPE_LRU
	// EvictLFU evicts the least frequently used entry.
	EvictLFU = gcache.TYPE_LFU
	// EvictARC uses adaptive replacement.
	EvictARC = gcache.TYPE_ARC
	// EvictSimple evicts an arbitrary entry.
	EvictSimple = gcache.TYPE_SIMPLE
	// EvictExpiry evicts the entry closest to its deadline.
	EvictExpiry = "expiry"
)

// Config provides all options for a Cache. The zero value is usable, but its
// TTL of zero makes every Put without an explicit TTL expire immediately.
type Config struct {
	// TTL is the time-to-live Put applies. Zero or negative values let
	// entries expire on the next timer tick. For example: 10 * time.Second
	TTL time.Duration
	// Capacity bounds the number of entries. Zero means unbounded.
	Capacity int
	// Eviction selects the policy choosing which entry is dropped when a new
	// key is put into a full cache. Empty means EvictLRU. Ignored without a
	// Capacity.
	Eviction string
	// Clock is the time source for deadlines and timers. Defaults to the
	// wall clock.
	Clock clock.Clock
}

func (c *Config) eviction() (string, error) {
	switch c.Eviction {
	case "":
		return EvictLRU, nil
	case EvictLRU, EvictLFU, EvictARC, EvictSimple, EvictExpiry:
		return c.Eviction, nil
	default:
		return "", fmt.Errorf("ttlcache: unknown eviction policy %q", c.Eviction)
	}
}

// CoerceTTL converts a loosely typed TTL (as found in configuration files) to
// a duration. Numbers are milliseconds, strings are either a number of
// milliseconds or a Go duration like "1.5s". Everything that is not a finite
// number (nil, NaN, ±Inf, unparseable strings, other types) coerces to 0,
// which means "expire immediately".
func CoerceTTL(v interface{}) time.Duration {
	switch t := v.(type) {
	case time.Duration:
		return t
	case int:
		return millis(float64(t))
	case int8:
		return millis(float64(t))
	case int16:
		return millis(float64(t))
	case int32:
		return millis(float64(t))
	case int64:
		return millis(float64(t))
	case uint:
		return millis(float64(t))
	case uint8:
		return millis(float64(t))
	case uint16:
		return millis(float64(t))
	case uint32:
		return millis(float64(t))
	case uint64:
		return millis(float64(t))
	case float32:
		return millis(float64(t))
	case float64:
		return millis(t)
	case string:
		s := strings.TrimSpace(t)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return millis(f)
		}
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
		return 0
	default:
		return 0
	}
}

func millis(f float64) time.Duration {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	ns := f * float64(time.Millisecond)
	switch {
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}

type fileConfig struct {
	TTL      interface{} `yaml:"ttl"`
	Capacity int         `yaml:"capacity"`
	Eviction string      `yaml:"eviction"`
}

// ParseConfig reads a YAML document with the keys ttl, capacity and
// eviction. ttl is coerced with CoerceTTL.
func ParseConfig(b []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("ttlcache: parse yaml: %w", err)
	}

	cfg := &Config{
		TTL:      CoerceTTL(fc.TTL),
		Capacity: fc.Capacity,
		Eviction: fc.Eviction,
	}
	if _, err := cfg.eviction(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is like ParseConfig but reads the document from path.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ttlcache: read config: %w", err)
	}
	return ParseConfig(b)
}
