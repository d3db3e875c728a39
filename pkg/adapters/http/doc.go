// Package http exposes console sessions over a JSON API served with chi.
//
// Every session is a wayfinder.Router owned by a session.Manager. Dispatch
// and state change events of a session are streamed to subscribers with
// Server-Sent Events.
package http
