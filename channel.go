package main

import (
	"regexp"
	"strings"
)

var (
	roomBadChars = regexp.MustCompile(`[^a-z0-9-]`)
	roomDashRuns = regexp.MustCompile(`-+`)
)

// sanitizeRoom canonicalizes a human-entered room name: lowercase, anything
// outside [a-z0-9-] becomes a dash, runs of dashes collapse to one.
func sanitizeRoom(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = roomBadChars.ReplaceAllString(s, "-")
	return roomDashRuns.ReplaceAllString(s, "-")
}

// buildChannel maps a room name to its transport channel identifier.
func buildChannel(prefix, room string) string {
	return prefix + "." + sanitizeRoom(room)
}

// shortID returns the first 8 characters of an opaque id for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
