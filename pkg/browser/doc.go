// Package browser emulates the browser's session history on top of an
// EntryStore, so a router can run server side for each console session.
//
// PushState truncates the forward entries like a real browser does. Back and
// Forward move the cursor and fire the pop-state callback.
package browser
