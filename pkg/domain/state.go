package domain

import "time"

// Entry is one record of a console session's browser history.
type Entry struct {
	Href  string    `json:"href"`
	Title string    `json:"title,omitempty"`
	Time  time.Time `json:"time"`
}

// Entries is the browser history of a single console session.
// Cursor points at the entry the browser is currently showing.
type Entries struct {
	SessionID string  `json:"session_id"`
	Items     []Entry `json:"items"`
	Cursor    int     `json:"cursor"`
}

// NewEntries creates an empty history for a session.
func NewEntries(sessionID string) *Entries {
	return &Entries{
		SessionID: sessionID,
		Items:     []Entry{},
		Cursor:    -1,
	}
}

// Current returns the entry under the cursor.
func (e *Entries) Current() (Entry, bool) {
	if e == nil || e.Cursor < 0 || e.Cursor >= len(e.Items) {
		return Entry{}, false
	}
	return e.Items[e.Cursor], true
}

// Snapshot returns a deep copy of the entries.
func (e *Entries) Snapshot() *Entries {
	if e == nil {
		return nil
	}
	out := *e
	out.Items = append([]Entry(nil), e.Items...)
	return &out
}
