package graph

import (
	"github.com/VitaminP8/postfeed/graph/generated"
	"github.com/VitaminP8/postfeed/graph/model"
)

// ListMultiplier is the assumed number of items in an unpaginated list field.
const ListMultiplier = 10

// ListBaseCost is the fixed cost of resolving any list field.
const ListBaseCost = 2

// MutationCost is charged on top of the selection for every write.
const MutationCost = 5

// listComplexity charges a list field as base + (items × per-item selection).
func listComplexity(childComplexity int) int {
	if childComplexity < 1 {
		childComplexity = 1
	}
	return ListBaseCost + ListMultiplier*childComplexity
}

// SetupComplexity installs list-aware complexity functions on the given
// ComplexityRoot. Fields left unset fall back to gqlgen's default of
// 1 + childComplexity.
func SetupComplexity(c *generated.ComplexityRoot) {
	c.Query.Posts = func(childComplexity int) int {
		return listComplexity(childComplexity)
	}
	c.Query.Rates = func(childComplexity int, _ string) int {
		return listComplexity(childComplexity)
	}
	c.Query.Post = func(childComplexity int, _ string) int {
		return 1 + childComplexity
	}

	c.Mutation.CreatePost = func(childComplexity int, _ model.PostInput) int {
		return MutationCost + childComplexity
	}
	c.Mutation.DeletePost = func(childComplexity int, _ string) int {
		return MutationCost
	}

	c.Subscription.PostAdded = func(childComplexity int) int {
		return 1 + childComplexity
	}
}
