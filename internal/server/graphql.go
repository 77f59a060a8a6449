package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// GraphQLOptions tunes the gqlgen handler.
type GraphQLOptions struct {
	Introspection   bool
	ComplexityLimit int
	MaxDepth        int
	KeepAlive       time.Duration
	QueryCacheSize  int
	APQCacheSize    int
}

// NewGraphQLHandler serves queries and mutations over POST and GET and
// subscriptions over websocket on the same endpoint.
func NewGraphQLHandler(schema graphql.ExecutableSchema, opts GraphQLOptions, metrics *Metrics, logger *logrus.Logger) *handler.Server {
	srv := handler.New(schema)

	srv.AddTransport(transport.Websocket{
		KeepAlivePingInterval: opts.KeepAlive,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		ErrorFunc: func(ctx context.Context, err error) {
			logger.WithError(err).Warn("GraphQL websocket error")
		},
	})
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})

	if opts.QueryCacheSize > 0 {
		srv.SetQueryCache(lru.New[*ast.QueryDocument](opts.QueryCacheSize))
	}
	if opts.Introspection {
		srv.Use(extension.Introspection{})
	}
	if opts.APQCacheSize > 0 {
		srv.Use(extension.AutomaticPersistedQuery{
			Cache: lru.New[string](opts.APQCacheSize),
		})
	}

	if opts.ComplexityLimit > 0 {
		srv.Use(extension.FixedComplexityLimit(opts.ComplexityLimit))
		logger.WithField("limit", opts.ComplexityLimit).Info("GraphQL complexity limit enabled")
	}

	if opts.MaxDepth > 0 {
		maxDepth := opts.MaxDepth
		srv.AroundOperations(func(ctx context.Context, next graphql.OperationHandler) graphql.ResponseHandler {
			opCtx := graphql.GetOperationContext(ctx)
			depth := calculateQueryDepth(opCtx.Doc.Operations)
			if depth > maxDepth {
				return graphql.OneShot(graphql.ErrorResponse(ctx, "query exceeds maximum depth of %d (got %d)", maxDepth, depth))
			}
			return next(ctx)
		})
		logger.WithField("max_depth", maxDepth).Info("GraphQL depth limit enabled")
	}

	if metrics != nil {
		srv.AroundOperations(metrics.AroundOperations)
	}

	srv.SetRecoverFunc(func(ctx context.Context, err any) error {
		logger.WithField("panic", err).Error("GraphQL resolver panic")
		return gqlerror.Errorf("internal server error")
	})

	return srv
}

// calculateQueryDepth returns the deepest field selection across operations.
func calculateQueryDepth(operations ast.OperationList) int {
	maxDepth := 0
	for _, op := range operations {
		if d := selectionSetDepth(op.SelectionSet); d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

func selectionSetDepth(set ast.SelectionSet) int {
	maxDepth := 0
	for _, sel := range set {
		var childDepth int
		switch s := sel.(type) {
		case *ast.Field:
			// introspection is bounded by the schema, not the client
			if strings.HasPrefix(s.Name, "__") {
				continue
			}
			childDepth = 1 + selectionSetDepth(s.SelectionSet)
		case *ast.InlineFragment:
			childDepth = selectionSetDepth(s.SelectionSet)
		case *ast.FragmentSpread:
			// validation has already rejected fragment cycles
			if s.Definition != nil {
				childDepth = selectionSetDepth(s.Definition.SelectionSet)
			}
		}
		if childDepth > maxDepth {
			maxDepth = childDepth
		}
	}
	return maxDepth
}
