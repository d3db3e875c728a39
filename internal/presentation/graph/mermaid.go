package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Overlay carries dispatch data to visualize on the state graph.
type Overlay struct {
	// Resolve maps a dotted key to the registered dispatcher key.
	Resolve func(key string) (string, bool)
	// Removed lists the dotted keys a transition would clean up.
	Removed []string
}

// GenerateMermaid produces a Mermaid flowchart of a state tree.
// It applies semantic styling:
// - Root: ((Circle))
// - Branch: [Rectangle]
// - Leaf: [/Parallelogram/] labelled key = value
// With an overlay, the node of every resolved dispatcher is marked handled,
// unmatched leaves are marked, and removed keys hang off the root with a
// dotted edge.
func GenerateMermaid(state domain.Tree, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    state((\"state\"))\n")

	var handled, unmatched []string
	var walk func(node domain.Tree, parentID string, prefix []string)
	walk = func(node domain.Tree, parentID string, prefix []string) {
		for _, key := range sortedKeys(node) {
			path := append(append([]string(nil), prefix...), key)
			dotted := strings.Join(path, domain.PathSeparator)
			id := sanitizeMermaidID(dotted)

			if sub := node.Sub(key); sub != nil {
				sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, key))
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", parentID, id))
				walk(sub, id, path)
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s[/\"%s = %s\"/]\n", id, key, label(node[key])))
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", parentID, id))

			if overlay != nil && overlay.Resolve != nil {
				if resolved, ok := overlay.Resolve(dotted); ok {
					handled = append(handled, sanitizeMermaidID(resolved))
				} else {
					unmatched = append(unmatched, id)
				}
			}
		}
	}
	walk(state, "state", nil)

	if overlay == nil {
		return sb.String()
	}

	for _, key := range overlay.Removed {
		id := "removed_" + sanitizeMermaidID(key)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, key))
		sb.WriteString(fmt.Sprintf("    state -.-> %s\n", id))
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
	sb.WriteString("    classDef handled fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef unmatched fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef removed fill:#ffcdd2,stroke:#b71c1c,stroke-dasharray:4,color:#000;\n")

	seen := make(map[string]bool)
	for _, id := range handled {
		if !seen[id] {
			seen[id] = true
			sb.WriteString(fmt.Sprintf("    class %s handled;\n", id))
		}
	}
	for _, id := range unmatched {
		sb.WriteString(fmt.Sprintf("    class %s unmatched;\n", id))
	}
	for _, key := range overlay.Removed {
		sb.WriteString(fmt.Sprintf("    class removed_%s removed;\n", sanitizeMermaidID(key)))
	}
	return sb.String()
}

func label(v any) string {
	var s string
	switch val := v.(type) {
	case []string:
		s = strings.Join(val, ",")
	case string:
		s = val
	default:
		s = fmt.Sprint(val)
	}
	// Escape double quotes for Mermaid labels
	return strings.ReplaceAll(s, "\"", "'")
}

func sortedKeys(t domain.Tree) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
