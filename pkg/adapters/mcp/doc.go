// Package mcp exposes the URL codec and dispatch table of a router to
// Model Context Protocol clients, over stdio or SSE.
package mcp
