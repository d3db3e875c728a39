package codec

import (
	"errors"
	"fmt"
)

// ErrInvalidPath is wrapped by every ParseError.
var ErrInvalidPath = errors.New("invalid path")

// Messages for the failing path shapes.
const (
	msgInvalidRoot      = "invalid root path."
	msgInvalidStore     = "invalid store path."
	msgInvalidGUI       = "invalid GUI path."
	msgInvalidUser      = "invalid user path."
	msgInvalidUserStore = "invalid user store path."
)

// Section names the part of the path that failed to parse.
type Section string

const (
	SectionRoot  Section = "root"
	SectionStore Section = "store"
	SectionGUI   Section = "GUI"
	SectionUser  Section = "User"
)

// ParseError describes a malformed path. It is returned alongside the partial
// state that could be parsed before the failure.
type ParseError struct {
	Section Section
	Reason  string
}

func (e *ParseError) Error() string {
	switch e.Section {
	case SectionGUI, SectionUser:
		return fmt.Sprintf("cannot parse the %s path: %s", e.Section, e.Reason)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidPath
}

func parseErr(section Section, reason string) *ParseError {
	return &ParseError{Section: section, Reason: reason}
}
