package tui

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// KeyInfo describes how one flattened state key is dispatched.
type KeyInfo struct {
	Key      string
	Value    any
	Resolved string
	Matched  bool
}

// Explanation is everything the explain command knows about a URL.
// InspectorPath is the location that shows the inspector on its own.
type Explanation struct {
	URL           string
	Path          string
	State         domain.Tree
	Err           error
	Keys          []KeyInfo
	Inspector     *domain.Inspector
	InspectorPath string
	Mermaid       string
}

// StateYAML renders the state as YAML.
func StateYAML(state domain.Tree) (string, error) {
	data, err := yaml.Marshal(map[string]any(state))
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}
	return string(data), nil
}

// Markdown renders the explanation as a markdown report.
func (e Explanation) Markdown() (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", e.URL)

	if e.Err != nil {
		fmt.Fprintf(&sb, "> **Parse error:** %s\n>\n> The state below is what could be parsed before the failure.\n\n", e.Err)
	}

	sb.WriteString("## State\n\n")
	if len(e.State) == 0 {
		sb.WriteString("_empty_\n\n")
	} else {
		y, err := StateYAML(e.State)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "```yaml\n%s```\n\n", y)
	}

	if len(e.Keys) > 0 {
		sb.WriteString("## Dispatch\n\n")
		sb.WriteString("| key | value | dispatcher |\n|---|---|---|\n")
		for _, k := range e.Keys {
			dispatcher := "`" + k.Resolved + "`"
			if !k.Matched {
				dispatcher = "_none_"
			}
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", k.Key, cell(k.Value), dispatcher)
		}
		sb.WriteString("\n")
	}

	if e.Inspector != nil {
		sb.WriteString("## Inspector\n\n")
		if e.Inspector.ID != "" {
			fmt.Fprintf(&sb, "- **application:** %s\n", e.Inspector.ID)
		}
		if e.Inspector.LocalType != "" {
			fmt.Fprintf(&sb, "- **local upload:** %s\n", e.Inspector.LocalType)
		}
		if e.Inspector.ActiveComponent != "" {
			fmt.Fprintf(&sb, "- **component:** %s (%s)\n", e.Inspector.ActiveComponent, cell(e.Inspector.ActiveValue()))
		}
		if e.InspectorPath != "" {
			fmt.Fprintf(&sb, "- **path:** `%s`\n", e.InspectorPath)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## Canonical URL\n\n`%s`\n", e.Path)

	if e.Mermaid != "" {
		fmt.Fprintf(&sb, "\n## Graph\n\n```mermaid\n%s```\n", e.Mermaid)
	}
	return sb.String(), nil
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if val == "" {
			return `""`
		}
		return strings.ReplaceAll(val, "|", `\|`)
	case []string:
		return strings.Join(val, ", ")
	}
	return fmt.Sprint(v)
}
