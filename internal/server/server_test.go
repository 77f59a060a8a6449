package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/99designs/gqlgen/client"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/VitaminP8/postfeed/graph"
	"github.com/VitaminP8/postfeed/graph/generated"
	"github.com/VitaminP8/postfeed/internal/config"
	"github.com/VitaminP8/postfeed/internal/logging"
	"github.com/VitaminP8/postfeed/internal/rate"
	"github.com/VitaminP8/postfeed/internal/storage/memory"
	"github.com/VitaminP8/postfeed/internal/subscription"
)

type testServer struct {
	router  *gin.Engine
	manager *subscription.SubscriptionManager
	client  *client.Client
}

func testConfig() config.Config {
	return config.Config{
		Port:                    "0",
		Storage:                 config.StorageMemory,
		GinMode:                 gin.TestMode,
		PlaygroundEnabled:       true,
		ComplexityLimit:         200,
		MaxDepth:                10,
		SubscriptionBuffer:      16,
		SubscriptionSendTimeout: 500 * time.Millisecond,
		KeepAlive:               10 * time.Second,
	}
}

func newTestServer(t *testing.T, cfg config.Config) *testServer {
	t.Helper()

	logger := logging.NewLogger(logrus.ErrorLevel)
	logger.SetOutput(io.Discard)

	manager := subscription.NewSubscriptionManager(
		logging.NewWatermillAdapter(logger),
		cfg.SubscriptionBuffer,
		subscription.WithSendTimeout(cfg.SubscriptionSendTimeout),
	)
	t.Cleanup(func() { manager.Close() })

	resolver := graph.NewResolver(
		memory.NewPostMemoryStorage(),
		memory.NewRateMemoryStorage(rate.DefaultRates()),
		manager,
		logger,
	)
	gqlConfig := generated.Config{Resolvers: resolver}
	graph.SetupComplexity(&gqlConfig.Complexity)

	router := NewRouter(Dependencies{
		Config:        cfg,
		Schema:        generated.NewExecutableSchema(gqlConfig),
		Subscriptions: manager,
		Metrics: NewMetrics(ServiceName, func() int {
			return manager.Subscribers(subscription.TopicPostAdded)
		}),
		Logger: logger,
	})

	return &testServer{
		router:  router,
		manager: manager,
		client:  client.New(router, client.Path(GraphQLPath)),
	}
}

type rawResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Path    []any  `json:"path"`
	} `json:"errors"`
}

func (s *testServer) rawQuery(t *testing.T, query string) rawResponse {
	t.Helper()

	body, err := json.Marshal(map[string]string{"query": query})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, GraphQLPath, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out rawResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type postResult struct {
	ID      string
	Title   string
	Content string
	Author  string
}

const createPostMutation = `mutation($input: PostInput!) {
	createPost(input: $input) { id title content author }
}`

func (s *testServer) createPost(t *testing.T, title, content, author string) postResult {
	t.Helper()

	var resp struct{ CreatePost postResult }
	s.client.MustPost(createPostMutation, &resp, client.Var("input", map[string]any{
		"title":   title,
		"content": content,
		"author":  author,
	}))
	return resp.CreatePost
}

func TestGraphQL_ExampleScenario(t *testing.T) {
	s := newTestServer(t, testConfig())

	first := s.createPost(t, "A", "x", "u")
	assert.Equal(t, postResult{ID: "1", Title: "A", Content: "x", Author: "u"}, first)

	second := s.createPost(t, "B", "y", "v")
	assert.Equal(t, "2", second.ID)

	var deleted struct{ DeletePost bool }
	s.client.MustPost(`mutation { deletePost(id: "1") }`, &deleted)
	assert.True(t, deleted.DeletePost)

	var posts struct{ Posts []postResult }
	s.client.MustPost(`{ posts { id title content author } }`, &posts)
	assert.Equal(t, []postResult{{ID: "2", Title: "B", Content: "y", Author: "v"}}, posts.Posts)

	var missing struct{ Post *postResult }
	s.client.MustPost(`{ post(id: "1") { id title content author } }`, &missing)
	assert.Nil(t, missing.Post)

	var rates struct {
		Rates []struct {
			Currency string
			Rate     float64
		}
	}
	s.client.MustPost(`{ rates(currency: "USD") { currency rate } }`, &rates)
	require.Len(t, rates.Rates, 1)
	assert.Equal(t, "USD", rates.Rates[0].Currency)
	assert.Equal(t, 1.0, rates.Rates[0].Rate)
}

func TestGraphQL_Queries(t *testing.T) {
	s := newTestServer(t, testConfig())

	t.Run("Empty store lists no posts", func(t *testing.T) {
		var resp struct{ Posts []postResult }
		s.client.MustPost(`{ posts { id } }`, &resp)
		assert.Empty(t, resp.Posts)
	})

	t.Run("Deleting an unknown post returns false", func(t *testing.T) {
		var resp struct{ DeletePost bool }
		s.client.MustPost(`mutation { deletePost(id: "999") }`, &resp)
		assert.False(t, resp.DeletePost)
	})

	t.Run("Rates without a match is an empty list", func(t *testing.T) {
		var resp struct{ Rates []struct{ Currency string } }
		s.client.MustPost(`{ rates(currency: "usd") { currency } }`, &resp)
		assert.Empty(t, resp.Rates)
	})

	t.Run("Empty currency lists every rate", func(t *testing.T) {
		var resp struct{ Rates []struct{ Currency string } }
		s.client.MustPost(`{ rates(currency: "") { currency } }`, &resp)
		require.Len(t, resp.Rates, 3)
		assert.Equal(t, "GBP", resp.Rates[2].Currency)
	})

	t.Run("Typename is resolved", func(t *testing.T) {
		var resp struct {
			Typename string `json:"__typename"`
		}
		s.client.MustPost(`{ __typename }`, &resp)
		assert.Equal(t, "Query", resp.Typename)
	})

	t.Run("GET transport serves queries", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, GraphQLPath+"?query=%7Bposts%7Bid%7D%7D", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":{"posts":[]}}`, w.Body.String())
	})
}

func TestGraphQL_ValidationErrors(t *testing.T) {
	s := newTestServer(t, testConfig())

	t.Run("Missing required argument", func(t *testing.T) {
		resp := s.rawQuery(t, `{ post { id } }`)
		assert.NotEmpty(t, resp.Errors)
	})

	t.Run("Missing required input field leaves the store untouched", func(t *testing.T) {
		resp := s.rawQuery(t, `mutation { createPost(input: {title: "A", content: "x"}) { id } }`)
		assert.NotEmpty(t, resp.Errors)

		var posts struct{ Posts []postResult }
		s.client.MustPost(`{ posts { id } }`, &posts)
		assert.Empty(t, posts.Posts)
	})

	t.Run("Ill-typed argument", func(t *testing.T) {
		resp := s.rawQuery(t, `{ rates(currency: 12) { currency } }`)
		assert.NotEmpty(t, resp.Errors)
	})

	t.Run("Unknown field", func(t *testing.T) {
		resp := s.rawQuery(t, `{ posts { id likes } }`)
		assert.NotEmpty(t, resp.Errors)
	})
}

func TestGraphQL_Limits(t *testing.T) {
	t.Run("Depth limit", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxDepth = 1
		s := newTestServer(t, cfg)

		resp := s.rawQuery(t, `{ posts { id } }`)
		require.NotEmpty(t, resp.Errors)
		assert.Contains(t, resp.Errors[0].Message, "maximum depth")

		resp = s.rawQuery(t, `{ __typename }`)
		assert.Empty(t, resp.Errors)
	})

	t.Run("Complexity limit", func(t *testing.T) {
		cfg := testConfig()
		cfg.ComplexityLimit = 10
		s := newTestServer(t, cfg)

		resp := s.rawQuery(t, `{ posts { id title } }`)
		require.NotEmpty(t, resp.Errors)
		assert.Contains(t, resp.Errors[0].Message, "complexity")

		resp = s.rawQuery(t, `{ post(id: "1") { id } }`)
		assert.Empty(t, resp.Errors)
	})
}

func TestGraphQL_Introspection(t *testing.T) {
	t.Run("Enabled with the playground", func(t *testing.T) {
		s := newTestServer(t, testConfig())

		var resp struct {
			Type struct {
				Name   string
				Fields []struct{ Name string }
			} `json:"__type"`
		}
		s.client.MustPost(`{ __type(name: "Post") { name fields { name } } }`, &resp)
		assert.Equal(t, "Post", resp.Type.Name)

		names := make([]string, 0, len(resp.Type.Fields))
		for _, f := range resp.Type.Fields {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"id", "title", "content", "author"}, names)

		var roots struct {
			Schema struct {
				QueryType        struct{ Name string }
				MutationType     struct{ Name string }
				SubscriptionType struct{ Name string }
			} `json:"__schema"`
		}
		s.client.MustPost(`{ __schema { queryType { name } mutationType { name } subscriptionType { name } } }`, &roots)
		assert.Equal(t, "Query", roots.Schema.QueryType.Name)
		assert.Equal(t, "Mutation", roots.Schema.MutationType.Name)
		assert.Equal(t, "Subscription", roots.Schema.SubscriptionType.Name)

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Disabled without the playground", func(t *testing.T) {
		cfg := testConfig()
		cfg.PlaygroundEnabled = false
		s := newTestServer(t, cfg)

		resp := s.rawQuery(t, `{ __schema { queryType { name } } }`)
		assert.NotEmpty(t, resp.Errors)

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGraphQL_Subscription(t *testing.T) {
	s := newTestServer(t, testConfig())

	sub := s.client.Websocket(`subscription { postAdded { id title content author } }`)

	require.Eventually(t, func() bool {
		return s.manager.Subscribers(subscription.TopicPostAdded) == 1
	}, 2*time.Second, 10*time.Millisecond)

	created := s.createPost(t, "A", "x", "u")

	var msg struct{ PostAdded postResult }
	require.NoError(t, sub.Next(&msg))
	assert.Equal(t, created, msg.PostAdded)

	s.createPost(t, "B", "y", "v")
	require.NoError(t, sub.Next(&msg))
	assert.Equal(t, "2", msg.PostAdded.ID)

	require.NoError(t, sub.Close())

	assert.Eventually(t, func() bool {
		return s.manager.Subscribers(subscription.TopicPostAdded) == 0
	}, 2*time.Second, 10*time.Millisecond)

	// nobody is listening any more
	s.createPost(t, "C", "z", "w")
}

func TestRouter_OperationalRoutes(t *testing.T) {
	s := newTestServer(t, testConfig())

	t.Run("Health", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, config.StorageMemory, body["storage"])
		assert.Equal(t, float64(0), body["subscribers"])
	})

	t.Run("Request ID is echoed or generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "abc")
		s.router.ServeHTTP(w, req)
		assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))

		w = httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("CORS preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, GraphQLPath, nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Metrics", func(t *testing.T) {
		s.createPost(t, "A", "x", "u")

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "postfeed_http_requests_total")
		assert.Contains(t, body, "postfeed_graphql_operations_total")
		assert.Contains(t, body, "postfeed_subscriptions_active 0")
	})
}

func TestRun(t *testing.T) {
	logger := logging.NewLogger(logrus.ErrorLevel)
	logger.SetOutput(io.Discard)

	t.Run("Stops when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- Run(ctx, DefaultConfig("0"), http.NotFoundHandler(), logger)
		}()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	})

	t.Run("Invalid port fails", func(t *testing.T) {
		err := Run(context.Background(), DefaultConfig("-1"), http.NotFoundHandler(), logger)
		assert.Error(t, err)
	})
}

func TestCalculateQueryDepth(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"scalar root", `{ __typename }`, 0},
		{"one level", `{ post(id: "1") { id } }`, 2},
		{"fragment spread", `query { ...P } fragment P on Query { posts { id } }`, 2},
		{"introspection is ignored", `{ __schema { types { fields { type { ofType { name } } } } } }`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseQuery(t, tt.query)
			assert.Equal(t, tt.want, calculateQueryDepth(doc.Operations))
		})
	}
}

func parseQuery(t *testing.T, query string) *ast.QueryDocument {
	t.Helper()

	doc, errs := gqlparser.LoadQuery(generated.NewExecutableSchema(generated.Config{}).Schema(), query)
	require.Empty(t, errs)
	return doc
}
