package codec

import (
	"slices"
	"sort"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Special query parameters. They are side channels, not search filters.
const (
	QueryDeployTarget = "deploy-target"
	QueryDirectDeploy = "dd"
	QueryNext         = "next"
)

// Parse turns a URL into a state tree.
//
// The returned tree is never nil: on failure it holds as much state as could
// be parsed before the malformed section, and the error is a *ParseError.
func (c *Codec) Parse(href string) (domain.Tree, error) {
	u := c.split(href)
	state := domain.Tree{}
	if u.hash != "" {
		state[domain.KeyHash] = u.hash
	}
	parseSpecial(u.query, state)

	parts := u.parts
	if len(parts) == 0 && u.query == nil {
		return state, nil
	}

	if len(parts) > 0 && c.grammar.IsRoot(parts[0]) {
		root := parts[0]
		state[domain.KeyRoot] = root
		parts = parts[1:]
		if len(parts) > 0 && root != c.grammar.GrandfatheredRoot {
			return state, parseErr(SectionRoot, msgInvalidRoot)
		}
	}

	d := c.grammar.Delimiters
	if len(parts) > 0 && parts[0] == d.Search {
		parts = parts[1:]
		// Only a trailing user block may follow the search text.
		far := slices.Index(parts, d.User)
		if far < 0 {
			far = len(parts)
		}
		parseSearch(strings.Join(parts[:far], "/"), u, state)
		parts = parts[far:]
	}
	if len(parts) == 0 {
		return state, nil
	}

	if idx := slices.Index(parts, d.GUI); idx > -1 {
		gui, err := c.parseGUI(parts[idx:])
		parts = parts[:idx]
		if err != nil {
			return state, err
		}
		state[domain.KeyGUI] = gui
	}

	if slices.Contains(parts, d.User) {
		var err error
		parts, err = c.parseUser(parts, state)
		if err != nil {
			return state, err
		}
	}

	if len(parts) == 0 {
		return state, nil
	}
	if store, _ := state[domain.KeyStore].(string); store != "" {
		state[domain.KeyStore] = strings.Join(parts, "/")
		return state, parseErr(SectionStore, msgInvalidStore)
	}
	switch {
	case len(parts) > 3:
		return state, parseErr(SectionStore, msgInvalidStore)
	case parts[0] == c.grammar.StoreRoot:
		state[domain.KeyStore] = ""
	default:
		state[domain.KeyStore] = strings.Join(parts, "/")
	}
	return state, nil
}

func parseSpecial(query map[string]string, state domain.Tree) {
	if query == nil {
		return
	}
	special := domain.Tree{}
	if dd := query[QueryDirectDeploy]; dd != "" {
		special[domain.KeyDirectDeploy] = domain.Tree{domain.KeyDirectDeployID: dd}
	}
	if target := query[QueryDeployTarget]; target != "" {
		special[domain.KeyDeployTarget] = target
	}
	if next := query[QueryNext]; next != "" {
		special[domain.KeyNext] = next
	}
	if len(special) > 0 {
		state[domain.KeySpecial] = special
	}
}

func parseSearch(text string, u splitURL, state domain.Tree) {
	search := domain.Tree{}
	if text != "" {
		search[domain.KeySearchText] = text
	}
	for _, key := range u.keys {
		if isSpecialQuery(key) {
			continue
		}
		value := u.query[key]
		if strings.Contains(value, ",") {
			search[key] = strings.Split(value, ",")
			continue
		}
		search[key] = value
	}
	if len(search) > 0 {
		state[domain.KeySearch] = search
	}
}

func isSpecialQuery(key string) bool {
	return key == QueryDeployTarget || key == QueryDirectDeploy || key == QueryNext
}

// parseGUI reads the gui block, delimiter included.
func (c *Codec) parseGUI(parts []string) (domain.Tree, error) {
	var indexes []int
	for _, section := range c.grammar.GUISections {
		if idx := slices.Index(parts, section); idx > -1 {
			indexes = append(indexes, idx)
		}
	}
	if len(indexes) == 0 {
		return nil, parseErr(SectionGUI, msgInvalidGUI)
	}
	sort.Ints(indexes)

	gui := domain.Tree{}
	for i, idx := range indexes {
		end := len(parts)
		if i+1 < len(indexes) {
			end = indexes[i+1]
		}
		gui[parts[idx]] = strings.Join(parts[idx+1:end], "/")
	}
	// A bare "local" has no type to read and stays a plain string.
	if inspector, _ := gui[domain.KeyInspector].(string); inspector != "" && inspector != domain.KeyInspectorLocal {
		gui[domain.KeyInspector] = parseInspector(inspector)
	}
	return gui, nil
}

// parseInspector reads "local/<type>" or "<id>[/<component>[/<value>]]".
func parseInspector(value string) domain.Tree {
	parts := strings.Split(value, "/")
	state := domain.Tree{}
	if parts[0] == domain.KeyInspectorLocal {
		if len(parts) > 1 && parts[1] != "" {
			state[domain.KeyLocalType] = parts[1]
		}
		return state
	}
	state[domain.KeyID] = parts[0]
	if len(parts) > 1 && parts[1] != "" {
		state[domain.KeyActiveComponent] = parts[1]
		if len(parts) > 2 && parts[2] != "" {
			state[parts[1]] = parts[2]
		} else {
			state[parts[1]] = true
		}
	}
	return state
}

// parseUser consumes the user delimited blocks and returns the segments that
// are left for the store stage.
func (c *Codec) parseUser(parts []string, state domain.Tree) ([]string, error) {
	delim := c.grammar.Delimiters.User
	var indexes []int
	for i, part := range parts {
		if part == delim {
			indexes = append(indexes, i)
		}
	}
	if len(indexes) == 0 {
		return parts, nil
	}
	if indexes[0] != 0 {
		return parts, parseErr(SectionUser, msgInvalidUser)
	}

	switch len(indexes) {
	case 1:
		block := append([]string(nil), parts[1:]...)
		if len(block) == 0 {
			return nil, parseErr(SectionUser, msgInvalidUser)
		}
		// A user block has at most two tokens; a third numeric or series
		// token makes the whole block a user store reference.
		if len(block) > 2 && (isNumeric(block[2]) || c.grammar.IsSeries(block[2])) {
			state[domain.KeyStore] = delim + "/" + strings.Join(block, "/")
			return nil, nil
		}
		n := min(2, len(block))
		c.addUserOrProfile(block[:n], state)
		return block[n:], nil
	case 2:
		first := parts[1:indexes[1]]
		second := parts[indexes[1]+1:]
		if len(first) == 0 || len(first) > 2 {
			return parts[indexes[1]:], parseErr(SectionUser, msgInvalidUser)
		}
		c.addUserOrProfile(first, state)
		if len(second) < 2 || len(second) > 4 {
			return nil, parseErr(SectionUser, msgInvalidUserStore)
		}
		state[domain.KeyStore] = delim + "/" + strings.Join(second, "/")
		return nil, nil
	}
	return parts, parseErr(SectionUser, msgInvalidUser)
}

func (c *Codec) addUserOrProfile(block []string, state domain.Tree) {
	if len(block) == 1 || c.grammar.IsProfileSection(block[1]) {
		state[domain.KeyProfile] = strings.Join(block, "/")
		return
	}
	state[domain.KeyUser] = strings.Join(block, "/")
}

// isNumeric reports whether s starts like an integer, the way revision
// numbers appear in store paths.
func isNumeric(s string) bool {
	s = strings.TrimLeft(s, " \t")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
