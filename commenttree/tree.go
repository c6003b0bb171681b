// Package commenttree turns a blog's flat comment list into a forest of threaded replies.
package commenttree

import (
	"github.com/google/uuid"
	"github.com/zakdoc/blog-backend/models"
)

// Node is a comment with its direct replies. Replies is never nil so it serializes as [].
type Node struct {
	models.Comment
	User    *models.UserSummary `json:"user,omitempty"`
	Replies []*Node             `json:"replies"`
}

// Build links comments to their parents and returns the root nodes.
//
// A comment whose parent is absent from the input (or which names itself as parent) is
// promoted to a root. Input order is preserved both among roots and within every Replies
// slice, so callers that want chronological threads should pass comments oldest first.
// With duplicate IDs the last occurrence receives the replies; every occurrence is still emitted.
func Build(comments []models.Comment) []*Node {
	nodes := make([]*Node, len(comments))
	byID := make(map[uuid.UUID]*Node, len(comments))
	for i := range comments {
		n := &Node{Comment: comments[i], Replies: []*Node{}}
		if comments[i].User != nil {
			summary := comments[i].User.Summary()
			n.User = &summary
		}
		nodes[i] = n
		byID[n.ID] = n
	}

	roots := []*Node{}
	for _, n := range nodes {
		if n.ParentCommentID != nil && *n.ParentCommentID != n.ID {
			if parent, ok := byID[*n.ParentCommentID]; ok {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

// Count returns the number of nodes in the forest, replies included.
func Count(nodes []*Node) int {
	total := 0
	Walk(nodes, func(*Node, int) { total++ })
	return total
}

// Walk visits every node depth-first, parents before their replies. depth is 0 for roots.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(*Node, int)) {
	for _, n := range nodes {
		fn(n, depth)
		walk(n.Replies, depth+1, fn)
	}
}
