package graph

//go:generate go run github.com/99designs/gqlgen generate

import (
	"github.com/sirupsen/logrus"

	"github.com/VitaminP8/postfeed/internal/post"
	"github.com/VitaminP8/postfeed/internal/rate"
	"github.com/VitaminP8/postfeed/internal/subscription"
)

// Resolver is the root of every resolver. Stores and the event bus are
// injected here and owned by the caller.
type Resolver struct {
	PostStore           post.PostStorage
	RateStore           rate.RateStorage
	SubscriptionManager subscription.Manager
	Logger              *logrus.Logger
}

func NewResolver(postStore post.PostStorage, rateStore rate.RateStorage, manager subscription.Manager, logger *logrus.Logger) *Resolver {
	return &Resolver{
		PostStore:           postStore,
		RateStore:           rateStore,
		SubscriptionManager: manager,
		Logger:              logger,
	}
}

func (r *Resolver) log() *logrus.Entry {
	logger := r.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return logger.WithField("component", "resolver")
}
