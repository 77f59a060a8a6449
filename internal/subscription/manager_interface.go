package subscription

import (
	"context"

	"github.com/VitaminP8/postfeed/graph/model"
)

// TopicPostAdded carries every post created through the API.
const TopicPostAdded = "POST_ADDED"

type Manager interface {
	// Subscribe registers a subscriber on topic. The returned channel is closed
	// once cancel is called or ctx is done.
	Subscribe(ctx context.Context, topic string) (<-chan *model.Post, func(), error)
	// Publish delivers post to the subscribers registered on topic right now.
	Publish(topic string, post *model.Post) error
	Subscribers(topic string) int
}
