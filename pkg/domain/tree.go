package domain

import (
	"sort"
	"strings"
)

// Tree is a nested application state: "where the console currently is".
// Values are primitives (string, bool, numbers), string lists, nil
// (a tombstone in deltas) or nested trees.
type Tree map[string]any

// PathSeparator joins the keys of a flattened path.
const PathSeparator = "."

// Wildcard is the dispatcher key that runs on every pass.
const Wildcard = "*"

// asTree reports whether v is a nested mapping and returns it as a Tree.
func asTree(v any) (Tree, bool) {
	switch m := v.(type) {
	case Tree:
		return m, true
	case map[string]any:
		return Tree(m), true
	}
	return nil, false
}

// IsTree reports whether v is a nested mapping.
func IsTree(v any) bool {
	_, ok := asTree(v)
	return ok
}

// Clone returns a deep copy of the tree. Nested mappings are normalized to Tree.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	if sub, ok := asTree(v); ok {
		return sub.Clone()
	}
	switch l := v.(type) {
	case []string:
		return append([]string(nil), l...)
	case []any:
		out := make([]any, len(l))
		for i, item := range l {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}

// Merge deep-merges delta into t in place. Nested mappings recurse, nil values
// delete the key and every other value overwrites. It returns the dotted paths
// of the tombstoned keys, in delta order (sorted per level).
func (t Tree) Merge(delta Tree) []string {
	var nullKeys []string
	mergeInto(t, delta, nil, &nullKeys)
	return nullKeys
}

func mergeInto(target, source Tree, prefix []string, nullKeys *[]string) {
	for _, key := range sortedKeys(source) {
		value := source[key]
		path := append(append([]string(nil), prefix...), key)
		if sub, ok := asTree(value); ok {
			existing, ok := asTree(target[key])
			if !ok {
				existing = Tree{}
			}
			mergeInto(existing, sub, path, nullKeys)
			target[key] = existing
			continue
		}
		if value == nil {
			*nullKeys = append(*nullKeys, strings.Join(path, PathSeparator))
			delete(target, key)
			continue
		}
		target[key] = cloneValue(value)
	}
}

// Prune removes nil values and nested mappings that are empty once their own
// children have been pruned. It modifies t in place and returns it.
func (t Tree) Prune() Tree {
	for k, v := range t {
		if v == nil {
			delete(t, k)
			continue
		}
		if sub, ok := asTree(v); ok {
			if len(sub.Prune()) == 0 {
				delete(t, k)
				continue
			}
			t[k] = sub
		}
	}
	return t
}

// Flatten returns the sorted dot-joined paths of every leaf in the tree.
//
//	Tree{"gui": Tree{"inspector": Tree{"id": "x"}}}.Flatten() == []string{"gui.inspector.id"}
func (t Tree) Flatten() []string {
	var keys []string
	var walk func(Tree, []string)
	walk = func(node Tree, prefix []string) {
		for k, v := range node {
			path := append(append([]string(nil), prefix...), k)
			if sub, ok := asTree(v); ok {
				walk(sub, path)
				continue
			}
			keys = append(keys, strings.Join(path, PathSeparator))
		}
	}
	walk(t, nil)
	sort.Strings(keys)
	return keys
}

// Lookup walks a dotted path and returns the value found there.
func (t Tree) Lookup(path string) (any, bool) {
	var node any = t
	for _, part := range strings.Split(path, PathSeparator) {
		sub, ok := asTree(node)
		if !ok {
			return nil, false
		}
		node, ok = sub[part]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// IsSet reports whether the dotted path holds a value. Empty strings count as
// set; nil and false do not.
func (t Tree) IsSet(path string) bool {
	v, ok := t.Lookup(path)
	if !ok || v == nil {
		return false
	}
	if b, isBool := v.(bool); isBool {
		return b
	}
	return true
}

// StringAt returns the leaf at path when it is a string.
func (t Tree) StringAt(path string) string {
	v, _ := t.Lookup(path)
	s, _ := v.(string)
	return s
}

// Sub returns the nested tree at key, or nil.
func (t Tree) Sub(key string) Tree {
	sub, _ := asTree(t[key])
	return sub
}

// HasPathPrefix reports whether key equals prefix or lies below it.
func HasPathPrefix(key, prefix string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+PathSeparator)
}

func sortedKeys(t Tree) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
