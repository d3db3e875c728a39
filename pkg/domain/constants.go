package domain

import (
	"fmt"
	"strings"
)

// Top-level state keys understood by the codec.
const (
	KeyRoot    = "root"
	KeySearch  = "search"
	KeyUser    = "user"
	KeyProfile = "profile"
	KeyModel   = "model"
	KeyStore   = "store"
	KeyGUI     = "gui"
	KeySpecial = "special"
	KeyHash    = "hash"
)

// Nested keys.
const (
	KeySearchText      = "text"
	KeyModelPath       = "path"
	KeyModelUUID       = "uuid"
	KeyInspector       = "inspector"
	KeyDeploy          = "deploy"
	KeyDeployTarget    = "deployTarget"
	KeyDirectDeploy    = "dd"
	KeyDirectDeployID  = "id"
	KeyNext            = "next"
	KeyInspectorLocal  = "local"
	KeyLocalType       = "localType"
	KeyActiveComponent = "activeComponent"
	KeyID              = "id"
)

// ConnectionStatus tracks the model connection driven by the "model" key.
type ConnectionStatus string

const (
	ConnectionNone       ConnectionStatus = ""
	ConnectionConnecting ConnectionStatus = "connecting"
	ConnectionReady      ConnectionStatus = "ready"
)

var validStatuses = []ConnectionStatus{ConnectionNone, ConnectionReady, ConnectionConnecting}

// MustConnectionStatus returns s as a ConnectionStatus and panics when it is
// not one of the enumerated values. Assigning an unknown status is a
// programming error, not a runtime condition.
func MustConnectionStatus(s string) ConnectionStatus {
	for _, v := range validStatuses {
		if string(v) == s {
			return v
		}
	}
	names := make([]string, len(validStatuses))
	for i, v := range validStatuses {
		names[i] = fmt.Sprintf("%q", string(v))
	}
	panic(fmt.Sprintf("invalid connection status %q, valid values are [%s]", s, strings.Join(names, ", ")))
}
