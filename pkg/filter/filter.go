// Package filter trims Figma document trees down to the fields needed for
// code generation. It is a pure transformation: inputs are never mutated and
// no I/O is performed.
package filter

import (
	"github.com/hellenic-development/figma-meta/pkg/figma"
)

// allowlist is the fixed set of node fields kept by Prune, in the order they
// are documented by Allowlist.
var allowlist = [...]string{
	"type",
	"name",
	"id",
	"absoluteBoundingBox",
	"fills",
	"strokes",
	"cornerRadius",
	"opacity",
	"characters",
	"style",
	"children",
	"constraints",
	"layoutMode",
	"componentProperties",
	"componentPropertyDefinitions",
	"imageRef",
}

var allowed = func() map[string]struct{} {
	m := make(map[string]struct{}, len(allowlist))
	for _, k := range allowlist {
		m[k] = struct{}{}
	}
	return m
}()

// NodeMap maps a requested node ID to its pruned document subtree.
type NodeMap map[string]figma.Node

// Allowlist returns a copy of the fields retained by Prune.
func Allowlist() []string {
	out := make([]string, len(allowlist))
	copy(out, allowlist[:])
	return out
}

// Allowed reports whether key survives pruning.
func Allowed(key string) bool {
	_, ok := allowed[key]
	return ok
}

// Prune returns a copy of node restricted to the allowlisted fields, with its
// children pruned recursively at depth+1. The second result is false when
// depth exceeds maxDepth: the node is then absent from its parent's children.
//
// A node within depth is always returned, even if none of its fields are
// allowlisted. A "children" value that is not an array is dropped, and array
// elements that are not objects are skipped.
func Prune(node figma.Node, depth, maxDepth int) (figma.Node, bool) {
	if depth > maxDepth {
		return nil, false
	}

	out := make(figma.Node, len(allowlist))
	for k, v := range node {
		if !Allowed(k) || k == "children" {
			continue
		}
		out[k] = v
	}

	if children, ok := node.Children(); ok {
		kept := make([]any, 0, len(children))
		for _, child := range children {
			if pruned, ok := Prune(child, depth+1, maxDepth); ok {
				kept = append(kept, map[string]any(pruned))
			}
		}
		out["children"] = kept
	}

	return out, true
}

// PruneNodes prunes the document of every entry in nodes, starting each root
// at depth 0. Entries without a document (IDs Figma could not resolve) are
// skipped, as are roots cut by a negative maxDepth. Roots that end up as
// empty objects are kept: they exist in the file and lie within depth.
func PruneNodes(nodes map[string]figma.NodeData, maxDepth int) NodeMap {
	out := make(NodeMap, len(nodes))
	for id, data := range nodes {
		if data.Document == nil {
			continue
		}
		if pruned, ok := Prune(data.Document, 0, maxDepth); ok {
			out[id] = pruned
		}
	}

	return out
}

// Depth returns the number of levels below node, following "children".
// A leaf has depth 0.
func Depth(node figma.Node) int {
	children, _ := node.Children()

	deepest := -1
	for _, child := range children {
		if d := Depth(child); d > deepest {
			deepest = d
		}
	}

	return deepest + 1
}

// Count returns the number of nodes in the tree rooted at node.
func Count(node figma.Node) int {
	children, _ := node.Children()

	n := 1
	for _, child := range children {
		n += Count(child)
	}

	return n
}
