package appliance

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hive-corporation/casebridge/internal/core/domain"
)

// DeviceCache memoizes device summary lookups. Device identity changes
// rarely compared to how often actions reference the same device, so a
// small LRU avoids re-fetching the summary on every action.
type DeviceCache struct {
	lookup func(ctx context.Context, deviceID int) (domain.Record, error)
	cache  *lru.Cache[int, domain.Record]
}

func NewDeviceCache(lookup func(ctx context.Context, deviceID int) (domain.Record, error), size int) (*DeviceCache, error) {
	cache, err := lru.New[int, domain.Record](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create device cache: %w", err)
	}
	return &DeviceCache{lookup: lookup, cache: cache}, nil
}

// Summary returns the cached device summary, fetching it on a miss.
// Lookup failures are not cached.
func (d *DeviceCache) Summary(ctx context.Context, deviceID int) (domain.Record, error) {
	if summary, ok := d.cache.Get(deviceID); ok {
		return summary, nil
	}

	summary, err := d.lookup(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	d.cache.Add(deviceID, summary)
	return summary, nil
}
