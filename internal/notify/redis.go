package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pk210607/foodie-hub/internal/domain"
)

const (
	stockKeyPrefix   = "stock:"
	stockStampSuffix = ":at"
	stockChannel     = "stock.updates"
)

// stockSetScript writes the counter only when the update is newer than the
// stored one. Publishes happen after commit and outside the row lock, so two
// operations on the same item can publish out of order.
var stockSetScript = redis.NewScript(`
local at = redis.call('GET', KEYS[2])
if at and tonumber(at) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
return 1
`)

// Redis mirrors committed stock changes into Redis: the current counter is
// kept under stock:<itemID> for cheap availability reads, with the update
// timestamp under stock:<itemID>:at guarding it against stale overwrites,
// and a JSON event goes out on the stock.updates channel for live
// subscribers.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

type stockUpdate struct {
	ItemID    string    `json:"item_id"`
	Available int       `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *Redis) PublishStockUpdate(ctx context.Context, item domain.MenuItem) error {
	// Microseconds match the precision the timestamp is stored with and stay
	// exact in Lua's number type.
	key := stockKeyPrefix + item.ID
	stamp := strconv.FormatInt(item.UpdatedAt.UnixMicro(), 10)
	err := stockSetScript.Run(ctx, n.client, []string{key, key + stockStampSuffix}, item.Available, stamp).Err()
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	payload, err := json.Marshal(stockUpdate{
		ItemID:    item.ID,
		Available: item.Available,
		UpdatedAt: item.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal stock update: %w", err)
	}
	if err := n.client.Publish(ctx, stockChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish stock update: %w", err)
	}
	return nil
}
