package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		old      Tree
		new      Tree
		wantDiff *StateDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  Tree{"root": "new"},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Changed:   map[string]any{"root": "new"},
			},
		},
		{
			name:     "No Changes",
			old:      Tree{"gui": Tree{"machines": ""}},
			new:      Tree{"gui": Tree{"machines": ""}},
			wantDiff: nil,
		},
		{
			name: "Leaf Removed",
			old:  Tree{"a": 1, "b": 2},
			new:  Tree{"a": 1},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Removed:   []string{"b"},
			},
		},
		{
			name: "Nested Change",
			old:  Tree{"gui": Tree{"inspector": Tree{"id": "x"}}},
			new:  Tree{"gui": Tree{"inspector": Tree{"id": "y", "activeComponent": "units"}}},
			wantDiff: &StateDiff{
				SessionID: "sess-1",
				Changed: map[string]any{
					"gui.inspector.id":              "y",
					"gui.inspector.activeComponent": "units",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff("sess-1", tt.old, tt.new)
			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Expected nil diff, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Expected diff, got nil")
			}

			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(tt.wantDiff)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("Diff mismatch.\nGot:  %s\nWant: %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestDiff_Serialization(t *testing.T) {
	diff := Diff("s", Tree{"a": "x"}, Tree{"b": "y"})
	data, err := json.Marshal(diff)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"removed":["a"]`) || !strings.Contains(s, `"changed":{"b":"y"}`) {
		t.Errorf("unexpected payload: %s", s)
	}
}
