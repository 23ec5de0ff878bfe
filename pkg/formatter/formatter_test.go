package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hellenic-development/figma-meta/pkg/figma"
	"github.com/hellenic-development/figma-meta/pkg/filter"
)

func TestFileName(t *testing.T) {
	if got, want := FileName("ABC123"), "figma_ABC123_meta.json"; got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
}

func TestToJSON(t *testing.T) {
	nodes := filter.NodeMap{
		"1:1": figma.Node{
			"type": "FRAME",
			"id":   "1:1",
			"children": []any{
				map[string]any{"id": "1:2", "name": "<Title>"},
			},
		},
	}

	data, err := ToJSON(nodes)
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	want := `{
  "1:1": {
    "children": [
      {
        "id": "1:2",
        "name": "<Title>"
      }
    ],
    "id": "1:1",
    "type": "FRAME"
  }
}
`
	if string(data) != want {
		t.Errorf("ToJSON() =\n%s\nwant\n%s", data, want)
	}

	var back map[string]any
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestToJSONEmpty(t *testing.T) {
	for _, nodes := range []filter.NodeMap{nil, {}} {
		data, err := ToJSON(nodes)
		if err != nil {
			t.Fatalf("ToJSON() error = %v", err)
		}
		if got := string(data); got != "{}\n" {
			t.Errorf("ToJSON() = %q, want %q", got, "{}\n")
		}
	}
}

func TestToOutline(t *testing.T) {
	nodes := filter.NodeMap{
		"2:1": figma.Node{"type": "TEXT", "id": "2:1", "name": "Label"},
		"1:1": figma.Node{
			"type": "FRAME",
			"name": "Card",
			"id":   "1:1",
			"children": []any{
				map[string]any{"type": "RECTANGLE", "id": "1:2"},
				map[string]any{},
			},
		},
	}

	got := ToOutline(nodes)
	want := strings.Join([]string{
		"1:1",
		`  - FRAME  "Card"  (1:1)`,
		"    - RECTANGLE  (1:2)",
		"    - NODE",
		"2:1",
		`  - TEXT  "Label"  (2:1)`,
		"",
	}, "\n")

	if got != want {
		t.Errorf("ToOutline() =\n%s\nwant\n%s", got, want)
	}
}
