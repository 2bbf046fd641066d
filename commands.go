package main

import (
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *model) handleCommand(text string) (tea.Model, tea.Cmd) {
	parts := strings.SplitN(text, " ", 2)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/join":
		if arg == "" {
			m.notice = "usage: /join <room-name>"
			return m, nil
		}
		return m, m.joinRoomByName(arg)

	case "/rooms":
		var b strings.Builder
		b.WriteString("Rooms:")
		for i, r := range m.rooms {
			b.WriteString(" #" + r)
			if i == m.activeRoom {
				b.WriteString(" (current)")
			}
		}
		m.rec.noteActivity(b.String())
		m.updateViewport()
		return m, nil

	case "/room":
		room := m.rooms[m.activeRoom]
		m.qrOverlay = renderQR("#"+room, "pulseline:"+room)
		return m, nil

	case "/me":
		m.qrOverlay = renderQR(m.session.DisplayName, m.session.UserID)
		return m, nil

	case "/tip":
		return m, fetchTipCmd(m.cfg.TipURL)

	case "/logout":
		if err := ClearSession(m.cfgFlagPath); err != nil {
			log.Printf("logout: %v", err)
		}
		return m, tea.Sequence(
			unsubscribeCmd(m.transport, m.channel()),
			tea.Quit,
		)

	case "/help":
		m.rec.noteActivity("Commands: /join <room>, /rooms, /room, /me, /tip, /logout, /help")
		m.updateViewport()
		return m, nil
	}

	m.notice = "unknown command: " + cmd
	return m, nil
}
