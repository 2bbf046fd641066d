package main

import "testing"

func chatMsg(id, tt, createdAt string) ChatMessage {
	return ChatMessage{ID: id, Timetoken: tt, CreatedAt: createdAt}
}

func TestNormalizeMessage(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		msg, ok := normalizeMessage(map[string]any{
			"type":       "chat",
			"id":         "m1",
			"text":       "hello",
			"senderId":   "u1",
			"senderName": "Ada",
			"createdAt":  "2026-08-29T10:00:00Z",
		}, "17000000000000001")
		if !ok {
			t.Fatal("expected ok")
		}
		if msg.ID != "m1" || msg.Text != "hello" || msg.SenderID != "u1" || msg.SenderName != "Ada" {
			t.Errorf("unexpected message: %+v", msg)
		}
		if msg.Timetoken != "17000000000000001" {
			t.Errorf("Timetoken = %q", msg.Timetoken)
		}
	})

	t.Run("non-chat type rejected", func(t *testing.T) {
		if _, ok := normalizeMessage(map[string]any{"type": "typing"}, ""); ok {
			t.Error("expected typing payload to be rejected")
		}
	})

	t.Run("missing type rejected", func(t *testing.T) {
		if _, ok := normalizeMessage(map[string]any{"text": "hi"}, ""); ok {
			t.Error("expected untyped payload to be rejected")
		}
	})

	t.Run("nil payload rejected", func(t *testing.T) {
		if _, ok := normalizeMessage(nil, ""); ok {
			t.Error("expected nil payload to be rejected")
		}
	})

	t.Run("missing fields get placeholders", func(t *testing.T) {
		msg, ok := normalizeMessage(map[string]any{"type": "chat", "text": "hi"}, "")
		if !ok {
			t.Fatal("expected ok")
		}
		if msg.ID == "" {
			t.Error("expected synthesized id")
		}
		if msg.SenderID != "unknown" {
			t.Errorf("SenderID = %q, want %q", msg.SenderID, "unknown")
		}
		if msg.SenderName != "Unknown" {
			t.Errorf("SenderName = %q, want %q", msg.SenderName, "Unknown")
		}
		if msg.CreatedAt == "" {
			t.Error("expected synthesized createdAt")
		}
	})

	t.Run("non-string fields ignored", func(t *testing.T) {
		msg, ok := normalizeMessage(map[string]any{"type": "chat", "id": 42, "text": "hi"}, "")
		if !ok {
			t.Fatal("expected ok")
		}
		if msg.ID == "" || msg.ID == "42" {
			t.Errorf("ID = %q, want a synthesized id", msg.ID)
		}
	})
}

func TestSortByTimetoken(t *testing.T) {
	t.Run("shorter token sorts first", func(t *testing.T) {
		got := sortByTimetoken([]ChatMessage{
			chatMsg("a", "10", ""),
			chatMsg("b", "9", ""),
		})
		if got[0].ID != "b" || got[1].ID != "a" {
			t.Errorf("order = [%s %s], want [b a]", got[0].ID, got[1].ID)
		}
	})

	t.Run("equal length compares lexicographically", func(t *testing.T) {
		got := sortByTimetoken([]ChatMessage{
			chatMsg("a", "100", ""),
			chatMsg("b", "020", ""),
		})
		if got[0].ID != "b" || got[1].ID != "a" {
			t.Errorf("order = [%s %s], want [b a]", got[0].ID, got[1].ID)
		}
	})

	t.Run("missing tokens fall back to createdAt", func(t *testing.T) {
		got := sortByTimetoken([]ChatMessage{
			chatMsg("a", "", "2026-08-29T10:05:00Z"),
			chatMsg("b", "", "2026-08-29T10:00:00Z"),
		})
		if got[0].ID != "b" || got[1].ID != "a" {
			t.Errorf("order = [%s %s], want [b a]", got[0].ID, got[1].ID)
		}
	})

	t.Run("stable for indistinguishable messages", func(t *testing.T) {
		got := sortByTimetoken([]ChatMessage{
			chatMsg("a", "", "bad"),
			chatMsg("b", "", "also-bad"),
		})
		if got[0].ID != "a" || got[1].ID != "b" {
			t.Errorf("order = [%s %s], want arrival order [a b]", got[0].ID, got[1].ID)
		}
	})

	t.Run("input not mutated", func(t *testing.T) {
		in := []ChatMessage{
			chatMsg("a", "10", ""),
			chatMsg("b", "9", ""),
		}
		sortByTimetoken(in)
		if in[0].ID != "a" {
			t.Error("input slice was reordered")
		}
	})
}
