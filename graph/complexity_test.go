package graph

import (
	"testing"

	"github.com/VitaminP8/postfeed/graph/generated"
	"github.com/VitaminP8/postfeed/graph/model"
)

func TestListComplexity(t *testing.T) {
	tests := []struct {
		name            string
		childComplexity int
		want            int
	}{
		{"single scalar per item", 1, ListBaseCost + ListMultiplier},
		{"full post selection", 4, ListBaseCost + 4*ListMultiplier},
		{"empty selection floors to one", 0, ListBaseCost + ListMultiplier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listComplexity(tt.childComplexity); got != tt.want {
				t.Errorf("listComplexity(%d) = %d, want %d", tt.childComplexity, got, tt.want)
			}
		})
	}
}

func TestSetupComplexity(t *testing.T) {
	var c generated.ComplexityRoot
	SetupComplexity(&c)

	if c.Query.Posts == nil || c.Query.Rates == nil || c.Query.Post == nil {
		t.Fatal("query complexity functions not installed")
	}
	if c.Mutation.CreatePost == nil || c.Mutation.DeletePost == nil {
		t.Fatal("mutation complexity functions not installed")
	}
	if c.Subscription.PostAdded == nil {
		t.Fatal("subscription complexity function not installed")
	}

	if got := c.Query.Posts(4); got != 42 {
		t.Errorf("Query.Posts(4) = %d, want 42", got)
	}
	if got := c.Query.Rates(2, "USD"); got != 22 {
		t.Errorf("Query.Rates(2) = %d, want 22", got)
	}
	if got := c.Query.Post(4, "1"); got != 5 {
		t.Errorf("Query.Post(4) = %d, want 5", got)
	}
	if got := c.Mutation.CreatePost(4, model.PostInput{}); got != MutationCost+4 {
		t.Errorf("Mutation.CreatePost(4) = %d, want %d", got, MutationCost+4)
	}
	if got := c.Mutation.DeletePost(0, "1"); got != MutationCost {
		t.Errorf("Mutation.DeletePost = %d, want %d", got, MutationCost)
	}
}

func TestExecutableSchema_Complexity(t *testing.T) {
	var c generated.ComplexityRoot
	SetupComplexity(&c)
	es := generated.NewExecutableSchema(generated.Config{Resolvers: &Resolver{}, Complexity: c})

	tests := []struct {
		name      string
		typeName  string
		field     string
		child     int
		args      map[string]any
		want      int
		wantFound bool
	}{
		{"posts list", "Query", "posts", 4, nil, 42, true},
		{"rates list", "Query", "rates", 2, map[string]any{"currency": "USD"}, 22, true},
		{"single post", "Query", "post", 4, map[string]any{"id": "1"}, 5, true},
		{"create post", "Mutation", "createPost", 4, map[string]any{
			"input": map[string]any{"title": "t", "content": "c", "author": "a"},
		}, MutationCost + 4, true},
		{"delete post", "Mutation", "deletePost", 0, map[string]any{"id": "1"}, MutationCost, true},
		{"scalar field uses the default", "Post", "title", 0, nil, 0, false},
		{"unknown field", "Query", "missing", 0, nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := es.Complexity(tt.typeName, tt.field, tt.child, tt.args)
			if found != tt.wantFound || got != tt.want {
				t.Errorf("Complexity(%s.%s) = (%d, %v), want (%d, %v)", tt.typeName, tt.field, got, found, tt.want, tt.wantFound)
			}
		})
	}

	if es.Schema().Query.Name != "Query" || es.Schema().Subscription == nil {
		t.Error("executable schema is missing its root operation types")
	}
}
