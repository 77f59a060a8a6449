package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/VitaminP8/postfeed/graph/model"
)

// DefaultSendTimeout is how long a post waits on a full subscriber channel
// before it is dropped for that subscriber.
const DefaultSendTimeout = 500 * time.Millisecond

var ErrSubscriberStalled = errors.New("subscriber did not take the post in time")

// SubscriptionManager fans posts out to in-process subscribers over a
// watermill GoChannel. Nothing is replayed to late subscribers.
type SubscriptionManager struct {
	pubSub      *gochannel.GoChannel
	logger      watermill.LoggerAdapter
	buffer      int
	sendTimeout time.Duration

	mu   sync.Mutex
	subs map[string]int // topic -> live subscriber count
}

type Option func(*SubscriptionManager)

// WithSendTimeout bounds how long a publish waits for one subscriber.
// Non-positive values keep DefaultSendTimeout.
func WithSendTimeout(d time.Duration) Option {
	return func(m *SubscriptionManager) {
		if d > 0 {
			m.sendTimeout = d
		}
	}
}

func NewSubscriptionManager(logger watermill.LoggerAdapter, buffer int, opts ...Option) *SubscriptionManager {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if buffer < 0 {
		buffer = 0
	}

	m := &SubscriptionManager{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: int64(buffer),
			Persistent:          false,
			// a publish returns only after every subscriber took the message
			// or timed out, which keeps per-subscriber order equal to publish order
			BlockPublishUntilSubscriberAck: true,
		}, logger),
		logger:      logger,
		buffer:      buffer,
		sendTimeout: DefaultSendTimeout,
		subs:        make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SubscriptionManager) Subscribe(ctx context.Context, topic string) (<-chan *model.Post, func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	messages, err := m.pubSub.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	m.mu.Lock()
	m.subs[topic]++
	m.mu.Unlock()

	out := make(chan *model.Post, m.buffer)

	go func() {
		defer func() {
			m.mu.Lock()
			m.subs[topic]--
			m.mu.Unlock()
			close(out)
		}()

		// messages is closed by the pub/sub once ctx is done
		for msg := range messages {
			var post model.Post
			if err := json.Unmarshal(msg.Payload, &post); err != nil {
				m.logger.Error("Dropping undecodable message", err, watermill.LogFields{
					"topic":        topic,
					"message_uuid": msg.UUID,
				})
				// a nack would make the pub/sub redeliver it forever
				msg.Ack()
				continue
			}

			timer := time.NewTimer(m.sendTimeout)
			select {
			case out <- &post:
			case <-ctx.Done():
			case <-timer.C:
				m.logger.Error("Dropping post for stalled subscriber", ErrSubscriberStalled, watermill.LogFields{
					"topic":   topic,
					"post_id": post.ID,
					"timeout": m.sendTimeout.String(),
				})
			}
			timer.Stop()
			msg.Ack()
		}
	}()

	return out, cancel, nil
}

func (m *SubscriptionManager) Publish(topic string, post *model.Post) error {
	payload, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode post %s: %w", post.ID, err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set("post_id", post.ID)

	if err := m.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribers reports how many subscribers are currently registered on topic.
func (m *SubscriptionManager) Subscribers(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.subs[topic]
}

// Close stops the pub/sub and closes every subscriber channel.
func (m *SubscriptionManager) Close() error {
	return m.pubSub.Close()
}
