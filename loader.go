package ttlcache

import (
	"errors"
	"fmt"
	"time"

	logger "github.com/harwoeck/liblog/contract"
)

// ErrNilValue is returned by GetOrLoad when the loader succeeds without a
// value. A nil value cannot be stored.
var ErrNilValue = errors.New("ttlcache: loader returned nil value")

// LoaderFunc produces the value for a key that is not cached, together with
// the time-to-live it should be cached for.
type LoaderFunc func(key string) (value interface{}, ttl time.Duration, err error)

// GetOrLoad returns the cached value for key or loads, stores and returns it.
// Concurrent callers missing the same key share a single loader call. A
// loader error is returned wrapped and nothing is stored. A loader returning a
// nil value without an error yields ErrNilValue, also storing nothing.
func (c *Cache) GetOrLoad(key string, loader LoaderFunc) (interface{}, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err, shared := c.loads.Do(key, func() (interface{}, error) {
		value, ttl, err := loader(key)
		if err != nil {
			return nil, fmt.Errorf("ttlcache: loading %q failed: %w", key, err)
		}
		if value == nil {
			return nil, fmt.Errorf("%w for %q", ErrNilValue, key)
		}

		c.log.Debug("loaded value",
			logger.NewField("key", key),
			logger.NewField("ttl", ttl))

		c.PutTTL(key, value, ttl)
		return value, nil
	})
	if shared {
		c.log.Debug("shared load result", logger.NewField("key", key))
	}
	return value, err
}
