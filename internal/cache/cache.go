package cache

import (
	"context"
	"time"
)

// Cache stores short-lived rendered snippets (the /recent listing, the
// /status repository summary) so repeated commands do not hammer the content
// store. It is a convenience layer, never the system of record.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}
