package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const stockKeyPrefix = "stock:"

// Acquire decrements the cached remaining capacity if enough is left.
// Returns 1 on success, 0 when insufficient, -1 when the key is unknown.
var acquireScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return -1
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

// Refund restores capacity only for known keys so a refund never
// resurrects an entry that was deleted or never primed.
var refundScript = redis.NewScript(`
local key = KEYS[1]
if redis.call('EXISTS', key) == 1 then
	redis.call('INCRBY', key, tonumber(ARGV[1]))
end
return 1
`)

type AcquireResult int

const (
	AcquireUnknown      AcquireResult = iota // no cached entry, caller must ask the store
	AcquireInsufficient                      // cached capacity too low
	AcquireOK
)

// StockCache mirrors the remaining capacity of events in Redis as a fast
// advisory gate in front of the database. It is never authoritative: the
// conditional update in the store decides admission.
type StockCache struct {
	client *redis.Client
}

func NewStockCache(client *redis.Client) *StockCache {
	return &StockCache{client: client}
}

func stockKey(eventID uint) string {
	return fmt.Sprintf("%s%d", stockKeyPrefix, eventID)
}

func (c *StockCache) TryAcquire(ctx context.Context, eventID uint, quantity int) (AcquireResult, error) {
	result, err := acquireScript.Run(ctx, c.client, []string{stockKey(eventID)}, quantity).Int()
	if err != nil {
		return AcquireUnknown, err
	}

	switch result {
	case 1:
		return AcquireOK, nil
	case 0:
		return AcquireInsufficient, nil
	default:
		return AcquireUnknown, nil
	}
}

func (c *StockCache) Refund(ctx context.Context, eventID uint, quantity int) error {
	return refundScript.Run(ctx, c.client, []string{stockKey(eventID)}, quantity).Err()
}

// Prime overwrites the cached remaining capacity, e.g. after create or a
// capacity-changing update.
func (c *StockCache) Prime(ctx context.Context, eventID uint, remaining int) error {
	return c.client.Set(ctx, stockKey(eventID), remaining, 0).Err()
}

func (c *StockCache) Forget(ctx context.Context, eventID uint) error {
	return c.client.Del(ctx, stockKey(eventID)).Err()
}
