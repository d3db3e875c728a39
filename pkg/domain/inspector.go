package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Inspector is the typed view of the gui.inspector branch.
type Inspector struct {
	ID              string `mapstructure:"id" json:"id,omitempty"`
	ActiveComponent string `mapstructure:"activeComponent" json:"activeComponent,omitempty"`
	LocalType       string `mapstructure:"localType" json:"localType,omitempty"`

	// Rest holds the remaining keys, including the value of the active component.
	Rest map[string]any `mapstructure:",remain" json:"-"`
}

// ActiveValue returns the value stored under the active component, which is
// either a string or true when the URL carried no value.
func (i Inspector) ActiveValue() any {
	if i.ActiveComponent == "" {
		return nil
	}
	return i.Rest[i.ActiveComponent]
}

// DecodeInspector reads gui.inspector from the tree. ok is false when the
// branch is absent or is a plain string.
func DecodeInspector(t Tree) (Inspector, bool, error) {
	raw, found := t.Lookup(KeyGUI + PathSeparator + KeyInspector)
	if !found {
		return Inspector{}, false, nil
	}
	sub, isTree := asTree(raw)
	if !isTree {
		return Inspector{}, false, nil
	}
	var out Inspector
	if err := mapstructure.Decode(map[string]any(sub), &out); err != nil {
		return Inspector{}, false, fmt.Errorf("failed to decode inspector state: %w", err)
	}
	return out, true, nil
}

// Tree converts the inspector back into its state representation.
func (i Inspector) Tree() Tree {
	out := Tree{}
	for k, v := range i.Rest {
		out[k] = v
	}
	if i.LocalType != "" {
		out[KeyLocalType] = i.LocalType
	}
	if i.ID != "" {
		out[KeyID] = i.ID
	}
	if i.ActiveComponent != "" {
		out[KeyActiveComponent] = i.ActiveComponent
	}
	return out
}
