package codec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Generate produces the canonical URL for a state tree. It is the best-effort
// inverse of Parse: trees produced by Parse round-trip, hand-built trees with
// redundant branches may not.
func (c *Codec) Generate(state domain.Tree) string {
	d := c.grammar.Delimiters
	var path, query []string

	if root, _ := state[domain.KeyRoot].(string); root != "" {
		path = append(path, root)
	}

	if search := state.Sub(domain.KeySearch); search != nil {
		path = append(path, d.Search)
		if text, _ := search[domain.KeySearchText].(string); text != "" {
			path = append(path, strings.ReplaceAll(text, " ", "/"))
		}
		for _, key := range sortedKeys(search) {
			if key == domain.KeySearchText {
				continue
			}
			query = append(query, key+"="+formatLeaf(search[key]))
		}
	} else if text, _ := state[domain.KeySearch].(string); text != "" {
		path = append(path, d.Search, text)
	}

	if user, _ := state[domain.KeyUser].(string); user != "" {
		path = append(path, d.User, user)
	}
	if profile, _ := state[domain.KeyProfile].(string); profile != "" {
		path = append(path, d.User, profile)
	}
	if model := state.Sub(domain.KeyModel); model != nil {
		if modelPath, _ := model[domain.KeyModelPath].(string); modelPath != "" {
			path = append(path, d.User, modelPath)
		}
	}

	if store, ok := state[domain.KeyStore]; ok {
		switch s := formatLeaf(store); s {
		case "":
			path = append(path, c.grammar.StoreRoot)
		default:
			path = append(path, s)
		}
	}

	if gui := state.Sub(domain.KeyGUI); gui != nil {
		path = append(path, d.GUI)
		for _, section := range c.guiOrder(gui) {
			path = append(path, section)
			path = append(path, c.guiValue(section, gui[section])...)
		}
	}

	out := c.baseURL + strings.Join(path, "/")
	if len(query) > 0 {
		out += "?" + strings.Join(query, "&")
	}
	if hash, _ := state[domain.KeyHash].(string); hash != "" {
		out += "#" + hash
	}
	return out
}

// guiOrder lists known sections in grammar order, then unknown ones sorted.
func (c *Codec) guiOrder(gui domain.Tree) []string {
	var known, unknown []string
	for _, section := range c.grammar.GUISections {
		if _, ok := gui[section]; ok {
			known = append(known, section)
		}
	}
	for _, key := range sortedKeys(gui) {
		if c.grammar.GUIOrder(key) < 0 {
			unknown = append(unknown, key)
		}
	}
	return append(known, unknown...)
}

func (c *Codec) guiValue(section string, value any) []string {
	if section == domain.KeyInspector {
		if inspector, ok := value.(domain.Tree); ok {
			return inspectorPath(inspector)
		}
		if inspector, ok := value.(map[string]any); ok {
			return inspectorPath(inspector)
		}
	}
	// The deploy section carries a structured payload that never goes in the URL.
	if section == domain.KeyDeploy || domain.IsTree(value) {
		return nil
	}
	if _, isBool := value.(bool); isBool {
		return nil
	}
	if s := formatLeaf(value); s != "" {
		return []string{s}
	}
	return nil
}

func inspectorPath(inspector domain.Tree) []string {
	var out []string
	if id, _ := inspector[domain.KeyID].(string); id != "" {
		out = append(out, id)
	}
	active, _ := inspector[domain.KeyActiveComponent].(string)
	if active != "" {
		out = append(out, active)
		if v, ok := inspector[active]; ok {
			if _, isBool := v.(bool); !isBool {
				if s := formatLeaf(v); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	if localType, _ := inspector[domain.KeyLocalType].(string); localType != "" {
		out = append(out, domain.KeyInspectorLocal, localType)
	}
	return out
}

func formatLeaf(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case []any:
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = formatLeaf(item)
		}
		return strings.Join(items, ",")
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

func sortedKeys(t domain.Tree) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
