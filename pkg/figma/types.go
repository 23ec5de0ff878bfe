package figma

// Node is a single element of the Figma document tree as returned by the API.
// Frames, text, components, vectors and the rest all share this generic shape:
// a JSON object whose "children" key, when present, holds the child nodes.
type Node map[string]any

// Children returns the child nodes of n in document order.
// Besides the []any produced by encoding/json, []Node and []map[string]any
// are accepted for trees built in Go. Elements that are not JSON objects are
// skipped. The second result is false when n has no "children" key or its
// value is not an array.
func (n Node) Children() ([]Node, bool) {
	var raw []any
	switch v := n["children"].(type) {
	case []any:
		raw = v
	case []Node:
		out := make([]Node, 0, len(v))
		for _, child := range v {
			if child != nil {
				out = append(out, child)
			}
		}
		return out, true
	case []map[string]any:
		out := make([]Node, 0, len(v))
		for _, child := range v {
			if child != nil {
				out = append(out, Node(child))
			}
		}
		return out, true
	default:
		return nil, false
	}

	children := make([]Node, 0, len(raw))
	for _, c := range raw {
		switch child := c.(type) {
		case map[string]any:
			children = append(children, Node(child))
		case Node:
			children = append(children, child)
		}
	}

	return children, true
}

// ID returns the node's "id" field, or "" if absent.
func (n Node) ID() string {
	s, _ := n["id"].(string)
	return s
}

// Name returns the node's "name" field, or "" if absent.
func (n Node) Name() string {
	s, _ := n["name"].(string)
	return s
}

// Type returns the node's "type" field (FRAME, TEXT, COMPONENT, ...), or "" if absent.
func (n Node) Type() string {
	s, _ := n["type"].(string)
	return s
}

// NodesResponse represents the response from the Figma nodes API endpoint when fetching specific nodes.
// It contains file metadata and a map of node IDs to their corresponding NodeData.
type NodesResponse struct {
	Name         string              `json:"name"`
	LastModified string              `json:"lastModified"`
	Version      string              `json:"version"`
	Nodes        map[string]NodeData `json:"nodes"`
}

// NodeData wraps a requested node. Document is nil when Figma could not
// resolve the node ID; the wrapper is still present in the response.
type NodeData struct {
	Document Node `json:"document,omitempty"`
}
