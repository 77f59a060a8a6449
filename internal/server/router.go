package server

import (
	"net/http"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/VitaminP8/postfeed/internal/config"
	"github.com/VitaminP8/postfeed/internal/subscription"
)

const (
	ServiceName  = "postfeed"
	GraphQLPath  = "/graphql"
	queryCache   = 1000
	apqCacheSize = 100
)

// Dependencies is everything the router serves.
type Dependencies struct {
	Config        config.Config
	Schema        graphql.ExecutableSchema
	Subscriptions subscription.Manager
	Metrics       *Metrics
	Logger        *logrus.Logger
}

// NewRouter creates the gin engine with common middleware, the GraphQL
// endpoint and the operational routes.
func NewRouter(deps Dependencies) *gin.Engine {
	switch deps.Config.GinMode {
	case gin.ReleaseMode, gin.TestMode, gin.DebugMode:
		gin.SetMode(deps.Config.GinMode)
	}

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(deps.Logger))
	router.Use(RecoveryMiddleware(deps.Logger))
	router.Use(CORSMiddleware())
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	gql := NewGraphQLHandler(deps.Schema, GraphQLOptions{
		Introspection:   deps.Config.PlaygroundEnabled,
		ComplexityLimit: deps.Config.ComplexityLimit,
		MaxDepth:        deps.Config.MaxDepth,
		KeepAlive:       deps.Config.KeepAlive,
		QueryCacheSize:  queryCache,
		APQCacheSize:    apqCacheSize,
	}, deps.Metrics, deps.Logger)
	router.Any(GraphQLPath, gin.WrapH(gql))

	if deps.Config.PlaygroundEnabled {
		router.GET("/", gin.WrapH(playground.Handler("GraphQL Playground", GraphQLPath)))
		deps.Logger.Info("GraphQL Playground enabled at /")
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"service":     ServiceName,
			"storage":     deps.Config.Storage,
			"subscribers": deps.Subscriptions.Subscribers(subscription.TopicPostAdded),
		})
	})

	if deps.Metrics != nil {
		router.GET("/metrics", deps.Metrics.Handler())
	}

	return router
}
