package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"github.com/VitaminP8/postfeed/graph"
	"github.com/VitaminP8/postfeed/graph/generated"
	"github.com/VitaminP8/postfeed/internal/config"
	"github.com/VitaminP8/postfeed/internal/logging"
	"github.com/VitaminP8/postfeed/internal/post"
	"github.com/VitaminP8/postfeed/internal/rate"
	"github.com/VitaminP8/postfeed/internal/server"
	"github.com/VitaminP8/postfeed/internal/storage/memory"
	"github.com/VitaminP8/postfeed/internal/storage/sqlite"
	"github.com/VitaminP8/postfeed/internal/subscription"
)

func main() {
	logger := logging.NewLoggerWithService(server.ServiceName, logrus.InfoLevel)

	// .env is applied before flags so the flag default can come from it
	config.LoadEnv(logger)
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	storageType := flag.String("storage", cfg.Storage, "storage backend: memory or sqlite")
	flag.Parse()
	cfg.Storage = *storageType

	var (
		postStore post.PostStorage
		rateStore rate.RateStorage
		db        *gorm.DB
	)

	switch cfg.Storage {
	case config.StorageSQLite:
		var err error
		db, err = sqlite.Open(sqlite.MemoryDSN, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open SQLite storage")
		}
		if err := sqlite.SeedPosts(db, post.DefaultPosts()); err != nil {
			logger.WithError(err).Fatal("Failed to seed posts")
		}
		if err := sqlite.SeedRates(db, rate.DefaultRates()); err != nil {
			logger.WithError(err).Fatal("Failed to seed rates")
		}
		postStore = sqlite.NewPostSQLiteStorage(db)
		rateStore = sqlite.NewRateSQLiteStorage(db)

	case config.StorageMemory:
		postStore = memory.NewPostMemoryStorage(post.DefaultPosts()...)
		rateStore = memory.NewRateMemoryStorage(rate.DefaultRates())

	default:
		logger.Fatalf("Unknown storage type: %s", cfg.Storage)
	}
	logger.WithField("storage", cfg.Storage).Info("Storage initialized")

	manager := subscription.NewSubscriptionManager(
		logging.NewWatermillAdapter(logger),
		cfg.SubscriptionBuffer,
		subscription.WithSendTimeout(cfg.SubscriptionSendTimeout),
	)

	resolver := graph.NewResolver(postStore, rateStore, manager, logger)
	gqlConfig := generated.Config{Resolvers: resolver}
	graph.SetupComplexity(&gqlConfig.Complexity)

	metrics := server.NewMetrics(server.ServiceName, func() int {
		return manager.Subscribers(subscription.TopicPostAdded)
	})

	router := server.NewRouter(server.Dependencies{
		Config:        cfg,
		Schema:        generated.NewExecutableSchema(gqlConfig),
		Subscriptions: manager,
		Metrics:       metrics,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("Server running at http://localhost:%s%s", cfg.Port, server.GraphQLPath)
	logger.Infof("Subscriptions ready at ws://localhost:%s%s", cfg.Port, server.GraphQLPath)

	if err := server.Run(ctx, server.DefaultConfig(cfg.Port), router, logger); err != nil {
		logger.WithError(err).Fatal("Failed to start server")
	}

	if err := manager.Close(); err != nil {
		logger.WithError(err).Error("Error closing subscription manager")
	}
	if err := sqlite.Close(db, logger); err != nil {
		logger.WithError(err).Error("Error closing database")
	}
}
