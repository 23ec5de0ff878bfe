package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hellenic-development/figma-meta/pkg/figma"
	"github.com/hellenic-development/figma-meta/pkg/filter"
)

// FileName returns the download name for the metadata of fileKey.
func FileName(fileKey string) string {
	return fmt.Sprintf("figma_%s_meta.json", fileKey)
}

// ToJSON serializes the pruned node map as JSON indented with two spaces.
// Object keys are emitted in sorted order, so equal maps produce equal bytes.
func ToJSON(nodes filter.NodeMap) ([]byte, error) {
	if nodes == nil {
		nodes = filter.NodeMap{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(nodes); err != nil {
		return nil, fmt.Errorf("encode nodes: %w", err)
	}

	return buf.Bytes(), nil
}

// ToOutline renders the pruned node map as an indented plain-text tree,
// one line per node: "TYPE  Name  (id)". Roots are listed by requested ID.
func ToOutline(nodes filter.NodeMap) string {
	var sb strings.Builder

	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		sb.WriteString(fmt.Sprintf("%s\n", id))
		writeOutline(&sb, nodes[id], 1)
	}

	return sb.String()
}

func writeOutline(sb *strings.Builder, node figma.Node, level int) {
	indent := strings.Repeat("  ", level)

	label := node.Type()
	if label == "" {
		label = "NODE"
	}
	if name := node.Name(); name != "" {
		label += fmt.Sprintf("  %q", name)
	}
	if id := node.ID(); id != "" {
		label += fmt.Sprintf("  (%s)", id)
	}

	sb.WriteString(indent + "- " + label + "\n")

	children, _ := node.Children()
	for _, child := range children {
		writeOutline(sb, child, level+1)
	}
}
