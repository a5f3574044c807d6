package favorites

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chalet/internal/repositories"
)

// DefaultPollInterval is how often [SQLiteCache.Watch] checks for writes by other processes.
const DefaultPollInterval = time.Second

// SQLiteCache stores the favorite set as a JSON array in the local kv_store table.
type SQLiteCache struct {
	kv       *repositories.KVRepository
	key      string
	logger   *log.Logger
	interval time.Duration
}

// NewSQLiteCache creates a [SQLiteCache] under key, defaulting to [DefaultKey].
func NewSQLiteCache(kv *repositories.KVRepository, key string, logger *log.Logger) *SQLiteCache {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &SQLiteCache{kv: kv, key: key, logger: logger, interval: DefaultPollInterval}
}

// SetPollInterval changes how often Watch polls.
func (c *SQLiteCache) SetPollInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

func (c *SQLiteCache) Read(ctx context.Context) Set {
	value, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		c.logger.Debug("favorite cache unreadable", "key", c.key, "err", err)
		return NewSet()
	}
	if !ok {
		return NewSet()
	}
	return decodeOrEmpty(c.logger, c.key, []byte(value))
}

func (c *SQLiteCache) Write(ctx context.Context, s Set) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("failed to encode favorite set: %w", err)
	}
	return c.kv.Set(ctx, c.key, string(data))
}

// Watch polls the stored value and calls fn whenever it differs from the previous poll.
// SQLite has no change notification across connections, so this is the only signal available.
func (c *SQLiteCache) Watch(ctx context.Context, fn func()) error {
	last, _, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", c.key, err)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			value, _, err := c.kv.Get(ctx, c.key)
			if err != nil {
				c.logger.Debug("favorite cache poll failed", "key", c.key, "err", err)
				continue
			}
			if value != last {
				last = value
				fn()
			}
		}
	}
}
