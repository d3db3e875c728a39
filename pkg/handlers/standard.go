package handlers

import (
	"github.com/aretw0/wayfinder/pkg/dispatch"
	"github.com/aretw0/wayfinder/pkg/domain"
)

// StandardKeys are handled by the view layer on every render. They are
// registered without handlers so dispatch does not warn about them.
var StandardKeys = []string{
	domain.KeyProfile,
	domain.KeyStore,
	domain.KeySearch,
	"help",
	domain.KeyGUI,
	"postDeploymentPanel",
	"terminal",
	domain.KeyHash,
	domain.KeySpecial + domain.PathSeparator + domain.KeyDirectDeploy,
}

// Standard returns an empty entry for each of StandardKeys.
func Standard() []dispatch.Entry {
	entries := make([]dispatch.Entry, len(StandardKeys))
	for i, key := range StandardKeys {
		entries[i] = dispatch.Entry{Key: key}
	}
	return entries
}
