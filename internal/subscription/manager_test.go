package subscription

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/postfeed/graph/model"
)

func newTestPost(n int) *model.Post {
	return &model.Post{
		ID:      strconv.Itoa(n),
		Title:   "Post " + strconv.Itoa(n),
		Content: "Content " + strconv.Itoa(n),
		Author:  "Author " + strconv.Itoa(n),
	}
}

func receive(t *testing.T, ch <-chan *model.Post) *model.Post {
	t.Helper()
	select {
	case post, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return post
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for post")
		return nil
	}
}

func assertNothing(t *testing.T, ch <-chan *model.Post) {
	t.Helper()
	select {
	case post := <-ch:
		t.Fatalf("unexpected post %+v", post)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscriptionManager_Subscribe(t *testing.T) {
	t.Run("Should create a subscription channel", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 1)
		defer manager.Close()

		ch, cancel, err := manager.Subscribe(context.Background(), TopicPostAdded)
		require.NoError(t, err)
		assert.NotNil(t, ch)
		assert.NotNil(t, cancel)
		assert.Equal(t, 1, manager.Subscribers(TopicPostAdded))

		cancel()

		_, ok := <-ch
		assert.False(t, ok, "Channel should be closed after cancel")
		assert.Eventually(t, func() bool {
			return manager.Subscribers(TopicPostAdded) == 0
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Context cancellation removes the subscriber", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 1)
		defer manager.Close()

		ctx, cancelCtx := context.WithCancel(context.Background())
		ch, cancel, err := manager.Subscribe(ctx, TopicPostAdded)
		require.NoError(t, err)
		defer cancel()

		cancelCtx()

		_, ok := <-ch
		assert.False(t, ok)
		assert.Eventually(t, func() bool {
			return manager.Subscribers(TopicPostAdded) == 0
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Subscribe after close fails", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 1)
		require.NoError(t, manager.Close())

		_, _, err := manager.Subscribe(context.Background(), TopicPostAdded)
		assert.Error(t, err)
	})
}

func TestSubscriptionManager_Publish(t *testing.T) {
	t.Run("Subscriber receives the published post", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 1)
		defer manager.Close()

		ch, cancel, err := manager.Subscribe(context.Background(), TopicPostAdded)
		require.NoError(t, err)
		defer cancel()

		post := newTestPost(1)
		require.NoError(t, manager.Publish(TopicPostAdded, post))

		assert.Equal(t, post, receive(t, ch))
		assertNothing(t, ch)
	})

	t.Run("Late subscriber misses earlier posts", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 1)
		defer manager.Close()

		require.NoError(t, manager.Publish(TopicPostAdded, newTestPost(1)))

		ch, cancel, err := manager.Subscribe(context.Background(), TopicPostAdded)
		require.NoError(t, err)
		defer cancel()

		assertNothing(t, ch)

		require.NoError(t, manager.Publish(TopicPostAdded, newTestPost(2)))
		assert.Equal(t, "2", receive(t, ch).ID)
	})

	t.Run("Should only send to subscribers of the specific topic", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 1)
		defer manager.Close()

		ch1, cancel1, err := manager.Subscribe(context.Background(), TopicPostAdded)
		require.NoError(t, err)
		defer cancel1()
		ch2, cancel2, err := manager.Subscribe(context.Background(), "OTHER")
		require.NoError(t, err)
		defer cancel2()

		require.NoError(t, manager.Publish(TopicPostAdded, newTestPost(1)))

		assert.Equal(t, "1", receive(t, ch1).ID)
		assertNothing(t, ch2)
	})

	t.Run("Publishing with no subscribers should not fail", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 1)
		defer manager.Close()

		assert.NoError(t, manager.Publish(TopicPostAdded, newTestPost(1)))
	})

	t.Run("Publishing after close fails", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 1)
		require.NoError(t, manager.Close())

		assert.Error(t, manager.Publish(TopicPostAdded, newTestPost(1)))
	})
}

func TestSubscriptionManager_Ordering(t *testing.T) {
	manager := NewSubscriptionManager(nil, 0)
	defer manager.Close()

	numSubscribers := 2
	numPublications := 20

	received := make([][]string, numSubscribers)
	var wg sync.WaitGroup

	for i := 0; i < numSubscribers; i++ {
		ch, cancel, err := manager.Subscribe(context.Background(), TopicPostAdded)
		require.NoError(t, err)
		defer cancel()

		wg.Add(1)
		go func(idx int, ch <-chan *model.Post) {
			defer wg.Done()
			for len(received[idx]) < numPublications {
				post, ok := <-ch
				if !ok {
					return
				}
				received[idx] = append(received[idx], post.ID)
			}
		}(i, ch)
	}

	expected := make([]string, 0, numPublications)
	for i := 1; i <= numPublications; i++ {
		require.NoError(t, manager.Publish(TopicPostAdded, newTestPost(i)))
		expected = append(expected, strconv.Itoa(i))
	}

	wg.Wait()

	for i := 0; i < numSubscribers; i++ {
		assert.Equal(t, expected, received[i], "Subscriber %d received posts out of order", i)
	}
}

func TestSubscriptionManager_Concurrent(t *testing.T) {
	t.Run("Concurrent subscribes and unsubscribes", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 1)
		defer manager.Close()

		var wg sync.WaitGroup
		numOperations := 50

		for i := 0; i < numOperations; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				ch, cancel, err := manager.Subscribe(context.Background(), TopicPostAdded)
				if !assert.NoError(t, err) {
					return
				}

				time.Sleep(5 * time.Millisecond)
				cancel()

				for range ch {
				}
			}()
		}

		wg.Wait()

		assert.Eventually(t, func() bool {
			return manager.Subscribers(TopicPostAdded) == 0
		}, time.Second, 10*time.Millisecond)
	})
}

func TestSubscriptionManager_StalledSubscriber(t *testing.T) {
	t.Run("Publishing continues past a subscriber that never reads", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 1, WithSendTimeout(50*time.Millisecond))
		defer manager.Close()

		stalled, cancelStalled, err := manager.Subscribe(context.Background(), TopicPostAdded)
		require.NoError(t, err)
		defer cancelStalled()

		healthy, cancelHealthy, err := manager.Subscribe(context.Background(), TopicPostAdded)
		require.NoError(t, err)
		defer cancelHealthy()

		numPublications := 5
		received := make(chan []string, 1)
		go func() {
			ids := make([]string, 0, numPublications)
			for post := range healthy {
				ids = append(ids, post.ID)
				if len(ids) == numPublications {
					break
				}
			}
			received <- ids
		}()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 1; i <= numPublications; i++ {
				assert.NoError(t, manager.Publish(TopicPostAdded, newTestPost(i)))
			}
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Publishing blocked on a stalled subscriber")
		}

		select {
		case ids := <-received:
			assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)
		case <-time.After(time.Second):
			t.Fatal("Healthy subscriber did not receive every post")
		}

		// only what fit in the buffer reached the stalled subscriber
		assert.Equal(t, "1", receive(t, stalled).ID)
	})

	t.Run("Close releases a publish waiting on a stalled subscriber", func(t *testing.T) {
		manager := NewSubscriptionManager(nil, 0, WithSendTimeout(time.Hour))

		_, cancel, err := manager.Subscribe(context.Background(), TopicPostAdded)
		require.NoError(t, err)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = manager.Publish(TopicPostAdded, newTestPost(1))
		}()

		select {
		case <-done:
			t.Fatal("Publish returned before the subscriber took the post")
		case <-time.After(100 * time.Millisecond):
		}

		require.NoError(t, manager.Close())

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Close did not release the in-flight publish")
		}
	})
}

func TestWithSendTimeout(t *testing.T) {
	assert.Equal(t, DefaultSendTimeout, NewSubscriptionManager(nil, 0).sendTimeout)
	assert.Equal(t, time.Second, NewSubscriptionManager(nil, 0, WithSendTimeout(time.Second)).sendTimeout)
	assert.Equal(t, DefaultSendTimeout, NewSubscriptionManager(nil, 0, WithSendTimeout(0)).sendTimeout)
}
