package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/oklog/ulid/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bizledger/internal/config"
	"github.com/smallbiznis/bizledger/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Publisher is the handle services use to announce committed changes.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type BusParams struct {
	fx.In

	Lc            fx.Lifecycle `optional:"true"`
	Cfg           config.Config
	Log           *zap.Logger
	Hub           *Hub
	Redis         *redis.Client          `optional:"true"`
	Metrics       *metrics.Metrics       `optional:"true"`
	LedgerMetrics *metrics.LedgerMetrics `optional:"true"`
}

// Bus publishes to the local hub and, when redis is configured, to a
// channel that every other instance relays into its own hub.
type Bus struct {
	hub      *Hub
	redis    *redis.Client
	channel  string
	instance string
	log      *zap.Logger
	metrics  *metrics.Metrics

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewBus(p BusParams) *Bus {
	b := &Bus{
		hub:      p.Hub,
		redis:    p.Redis,
		channel:  p.Cfg.Redis.EventsChannel,
		instance: ulid.Make().String(),
		log:      p.Log.Named("events.bus"),
		metrics:  p.Metrics,
	}
	if p.LedgerMetrics != nil {
		ledger := p.LedgerMetrics
		p.Hub.OnDrop(func(topic Topic) { ledger.IncEventDropped(string(topic)) })
	}

	if b.redis != nil && p.Lc != nil {
		p.Lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				b.start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				b.stop()
				return nil
			},
		})
	}
	return b
}

func (b *Bus) Publish(ctx context.Context, event Event) {
	if b == nil {
		return
	}
	if event.ID == "" {
		fresh := New(event.Type, event.Topic)
		event.ID, event.OccurredAt = fresh.ID, fresh.OccurredAt
	}
	b.metrics.RecordEventPublished(ctx, string(event.Type))

	b.hub.Publish(event)
	if b.redis == nil {
		return
	}

	data, err := json.Marshal(envelope{Origin: b.instance, Event: event})
	if err == nil {
		err = b.redis.Publish(ctx, b.channel, data).Err()
	}
	if err != nil {
		b.log.Warn("redis publish failed, other instances miss this event",
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
}

// envelope tags relayed events with the publishing instance so it does not
// deliver its own events twice.
type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

func (b *Bus) start() {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	sub := b.redis.Subscribe(ctx, b.channel)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer sub.Close()
		b.relay(ctx, sub.Channel())
	}()
	b.log.Info("event relay started", zap.String("channel", b.channel))
}

func (b *Bus) relay(ctx context.Context, messages <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			b.deliver(msg.Payload)
		}
	}
}

func (b *Bus) deliver(payload string) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.log.Warn("dropping malformed event", zap.Error(err))
		return
	}
	if env.Origin == b.instance {
		return
	}
	b.hub.Publish(env.Event)
}

func (b *Bus) stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
}

// Nop discards events; useful where no subscriber exists.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
