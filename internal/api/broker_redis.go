package api

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// RedisBroker implements EventBroker over Redis pub/sub so multiple API
// instances share one dispatch event stream.
type RedisBroker struct {
	rdb *redis.Client
	mu  sync.Mutex
	pss map[chan Event]*redis.PubSub
}

func NewRedisBroker() (*RedisBroker, error) {
	opt, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		return nil, err
	}
	return &RedisBroker{rdb: redis.NewClient(opt), pss: map[chan Event]*redis.PubSub{}}, nil
}

func (b *RedisBroker) Subscribe(orgID string) chan Event {
	ch := make(chan Event, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.chanName(orgID))
	// initial receive ensures the subscription is established
	_, _ = ps.Receive(ctx)
	b.mu.Lock()
	b.pss[ch] = ps
	b.mu.Unlock()
	go func() {
		// the reader owns ch: it closes when the pub/sub closes
		defer close(ch)
		for msg := range ps.Channel() {
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

func (b *RedisBroker) Unsubscribe(orgID string, ch chan Event) {
	b.mu.Lock()
	ps := b.pss[ch]
	delete(b.pss, ch)
	b.mu.Unlock()
	if ps != nil {
		_ = ps.Close()
	}
}

func (b *RedisBroker) Publish(orgID string, evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, b.chanName(orgID), data).Err()
}

func (b *RedisBroker) chanName(orgID string) string {
	return "dispatch:events:" + orgID
}
