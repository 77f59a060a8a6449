package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/VitaminP8/postfeed/graph/model"
)

type MockSubscriptionManager struct {
	mu            sync.Mutex
	subs          map[string][]chan *model.Post
	notifications map[string][]*model.Post

	// PublishErr, when set, is returned by Publish after recording the post.
	PublishErr error
}

func NewMockSubscriptionManager() *MockSubscriptionManager {
	return &MockSubscriptionManager{
		subs:          make(map[string][]chan *model.Post),
		notifications: make(map[string][]*model.Post),
	}
}

func (m *MockSubscriptionManager) Subscribe(ctx context.Context, topic string) (<-chan *model.Post, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *model.Post, 1)
	m.subs[topic] = append(m.subs[topic], ch)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			subscribers := m.subs[topic]
			for i, sub := range subscribers {
				if sub == ch {
					m.subs[topic] = append(subscribers[:i], subscribers[i+1:]...)
					close(ch)
					break
				}
			}
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel, nil
}

func (m *MockSubscriptionManager) Publish(topic string, post *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs[topic] {
		select {
		case sub <- post:
		case <-time.After(500 * time.Millisecond):
		}
	}

	m.notifications[topic] = append(m.notifications[topic], post)
	return m.PublishErr
}

func (m *MockSubscriptionManager) Subscribers(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.subs[topic])
}

// GetNotifications returns every post published on topic, for assertions.
func (m *MockSubscriptionManager) GetNotifications(topic string) []*model.Post {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.notifications[topic]
}
