package main

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// stringField reads a string value out of a raw transport payload.
func stringField(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}

// normalizeMessage derives a ChatMessage from a raw transport payload.
// Returns false for anything that isn't a chat message. Missing fields get
// placeholders; a missing id gets a fresh one (senders always assign one in
// practice, so this never conflates two distinct messages).
func normalizeMessage(payload map[string]any, timetoken string) (ChatMessage, bool) {
	if payload == nil || stringField(payload, "type") != "chat" {
		return ChatMessage{}, false
	}

	id := stringField(payload, "id")
	if id == "" {
		id = uuid.NewString()
	}
	senderID := stringField(payload, "senderId")
	if senderID == "" {
		senderID = "unknown"
	}
	senderName := stringField(payload, "senderName")
	if senderName == "" {
		senderName = "Unknown"
	}
	createdAt := stringField(payload, "createdAt")
	if createdAt == "" {
		createdAt = time.Now().UTC().Format(time.RFC3339)
	}

	return ChatMessage{
		ID:         id,
		Text:       stringField(payload, "text"),
		SenderID:   senderID,
		SenderName: senderName,
		CreatedAt:  createdAt,
		Timetoken:  timetoken,
	}, true
}

func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// lessByTimetoken orders two messages for the merged timeline. When both
// carry a timetoken, a shorter token sorts first and equal-length tokens
// compare lexicographically — timetokens are decimal strings of varying
// digit count, so this is a numeric-ish compare without parsing. Messages
// missing a token fall back to their creation timestamps.
func lessByTimetoken(a, b ChatMessage) bool {
	if a.Timetoken != "" && b.Timetoken != "" {
		if len(a.Timetoken) != len(b.Timetoken) {
			return len(a.Timetoken) < len(b.Timetoken)
		}
		return a.Timetoken < b.Timetoken
	}
	return parseCreatedAt(a.CreatedAt).Before(parseCreatedAt(b.CreatedAt))
}

// sortByTimetoken returns a sorted copy; the stable sort keeps arrival order
// for messages the comparison can't distinguish.
func sortByTimetoken(msgs []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return lessByTimetoken(out[i], out[j])
	})
	return out
}
