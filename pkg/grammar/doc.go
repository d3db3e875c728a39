// Package grammar holds the fixed path vocabulary shared by both directions of
// the URL codec: reserved root words, positional delimiters, profile sections,
// gui sections and the series tokens used to recognise store references.
package grammar
