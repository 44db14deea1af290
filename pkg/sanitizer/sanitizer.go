package sanitizer

import (
	"regexp"
	"strings"
	"time"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNonAlnum        = regexp.MustCompile(`[^0-9A-Za-z]+`)
	reMultiUnderscore = regexp.MustCompile(`_+`)
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func collapseUnderscores(s string) string {
	s = reMultiUnderscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SlotKey canonicalizes a slot start instant into a token that is safe to use
// as an upstream tag or note-attribute name. Tag and attribute names reject
// most punctuation, so everything outside [0-9A-Za-z] becomes an underscore.
//
// 2025-07-20T10:00:00Z -> 2025_07_20T10_00_00Z
func SlotKey(start time.Time) string {
	return SlotKeyString(start.UTC().Format(time.RFC3339))
}

// SlotKeyString sanitizes an already-formatted slot key. Keys arriving over
// the API are RFC3339 strings; keys decoded from stored markers are already
// sanitized and pass through unchanged.
func SlotKeyString(key string) string {
	p := Pipeline{
		trim,
		func(s string) string { return reNonAlnum.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(key)
}
