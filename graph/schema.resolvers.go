package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/VitaminP8/postfeed/graph/generated"
	"github.com/VitaminP8/postfeed/graph/model"
	"github.com/VitaminP8/postfeed/internal/post"
	"github.com/VitaminP8/postfeed/internal/subscription"
)

// CreatePost is the resolver for the createPost field.
func (r *mutationResolver) CreatePost(ctx context.Context, input model.PostInput) (*model.Post, error) {
	created, err := r.PostStore.CreatePost(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	event := *created
	if err := r.SubscriptionManager.Publish(subscription.TopicPostAdded, &event); err != nil {
		r.log().WithError(err).WithField("post_id", created.ID).Error("Failed to publish new post")
		return created, nil
	}

	r.log().WithField("post_id", created.ID).Debug("Post created")
	return created, nil
}

// DeletePost is the resolver for the deletePost field.
func (r *mutationResolver) DeletePost(ctx context.Context, id string) (*bool, error) {
	deleted := false
	err := r.PostStore.DeletePostById(id)
	if errors.Is(err, post.ErrPostNotFound) {
		return &deleted, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete post %s: %w", id, err)
	}

	deleted = true
	r.log().WithField("post_id", id).Debug("Post deleted")
	return &deleted, nil
}

// Posts is the resolver for the posts field.
func (r *queryResolver) Posts(ctx context.Context) ([]*model.Post, error) {
	posts, err := r.PostStore.GetAllPosts()
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Post is the resolver for the post field.
func (r *queryResolver) Post(ctx context.Context, id string) (*model.Post, error) {
	found, err := r.PostStore.GetPostById(id)
	if errors.Is(err, post.ErrPostNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", id, err)
	}
	return found, nil
}

// Rates is the resolver for the rates field. An empty currency lists every rate.
func (r *queryResolver) Rates(ctx context.Context, currency string) ([]*model.Rate, error) {
	var (
		rates []*model.Rate
		err   error
	)
	if currency == "" {
		rates, err = r.RateStore.GetAllRates()
	} else {
		rates, err = r.RateStore.GetRatesByCurrency(currency)
	}
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	return rates, nil
}

// PostAdded is the resolver for the postAdded field. The stream ends when
// the client operation context is cancelled.
func (r *subscriptionResolver) PostAdded(ctx context.Context) (<-chan *model.Post, error) {
	ch, cancel, err := r.SubscriptionManager.Subscribe(ctx, subscription.TopicPostAdded)
	if err != nil {
		return nil, fmt.Errorf("subscribe to new posts: %w", err)
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, nil
}

// Mutation returns generated.MutationResolver implementation.
func (r *Resolver) Mutation() generated.MutationResolver { return &mutationResolver{r} }

// Query returns generated.QueryResolver implementation.
func (r *Resolver) Query() generated.QueryResolver { return &queryResolver{r} }

// Subscription returns generated.SubscriptionResolver implementation.
func (r *Resolver) Subscription() generated.SubscriptionResolver { return &subscriptionResolver{r} }

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
type subscriptionResolver struct{ *Resolver }
