package main

import (
	"log"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

type model struct {
	cfg         Config
	cfgFlagPath string
	session     Session
	transport   Transport

	// Per-room reconciliation state; rebuilt from scratch on every join.
	rec      *Reconciler
	throttle typingThrottle

	rooms      []string
	activeRoom int

	// roomGen is bumped on every room join. Async results (history,
	// presence) and scheduled timers carry the generation they were issued
	// under; anything stale is discarded instead of overwriting fresher
	// room state.
	roomGen int

	// TUI dimensions
	width  int
	height int

	// Components
	viewport viewport.Model
	input    textarea.Model
	mdRender *glamour.TermRenderer
	mdStyle  string

	tip            Tip
	notice         string // inline recoverable error, cleared on room switch
	loadingHistory bool

	// Stop-typing timer: re-armed per keystroke, invalidated by generation.
	stopGen   int
	stopArmed bool

	// Input history
	inputHistory []string // sent messages, newest last
	historyIndex int      // -1 = current input, 0..len-1 = history position
	historySaved string   // unsent input saved when entering history

	lastInputHeight int

	// QR overlay (non-empty = show full-screen QR)
	qrOverlay string
}

func newModel(cfg Config, cfgFlagPath string, session Session, transport Transport, mdRender *glamour.TermRenderer, mdStyle string) model {
	ta := textarea.New()
	ta.Placeholder = "Write a message... (/help for commands)"
	ta.Prompt = "> "
	ta.CharLimit = 2000
	ta.SetHeight(inputMinHeight)
	ta.MaxHeight = inputMaxHeight
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	vp := viewport.New(80, 20)

	rooms := make([]string, 0, len(cfg.Rooms)+1)
	for _, r := range cfg.Rooms {
		rooms = append(rooms, sanitizeRoom(r))
	}
	sessionRoom := sanitizeRoom(session.Room)
	active := -1
	for i, r := range rooms {
		if r == sessionRoom {
			active = i
			break
		}
	}
	if active < 0 {
		rooms = append(rooms, sessionRoom)
		active = len(rooms) - 1
	}

	return model{
		cfg:             cfg,
		cfgFlagPath:     cfgFlagPath,
		session:         session,
		transport:       transport,
		rec:             newReconciler(session.UserID, session.DisplayName, cfg.MaxMessages),
		rooms:           rooms,
		activeRoom:      active,
		width:           80,
		height:          24,
		viewport:        vp,
		input:           ta,
		mdRender:        mdRender,
		mdStyle:         mdStyle,
		historyIndex:    -1,
		lastInputHeight: inputMinHeight,
	}
}

func (m *model) Init() tea.Cmd {
	log.Println("Init() called")
	return tea.Batch(
		textarea.Blink,
		waitForEvent(m.transport.Events()),
		fetchTipCmd(m.cfg.TipURL),
		m.joinActiveRoom(),
	)
}

// channel returns the transport channel for the active room.
func (m *model) channel() string {
	return buildChannel(m.cfg.ChannelPrefix, m.rooms[m.activeRoom])
}

func (m *model) transcriptDir() string {
	if !m.cfg.TranscriptsEnabled() {
		return ""
	}
	if m.cfg.TranscriptDir != "" {
		return m.cfg.TranscriptDir
	}
	return filepath.Join(filepath.Dir(configPath(m.cfgFlagPath)), "transcripts")
}

// joinActiveRoom tears down all per-room state and starts the join sequence
// for the active room: subscribe with presence, attach display-name state,
// fetch backlog and occupancy, and schedule the delayed occupancy resync.
func (m *model) joinActiveRoom() tea.Cmd {
	room := m.rooms[m.activeRoom]
	m.roomGen++
	gen := m.roomGen
	m.rec = newReconciler(m.session.UserID, m.session.DisplayName, m.cfg.MaxMessages)
	m.notice = ""
	m.loadingHistory = true
	m.stopArmed = false
	m.stopGen++

	if dir := m.transcriptDir(); dir != "" {
		items, err := loadTranscript(dir, room, historyCount)
		if err != nil {
			log.Printf("joinActiveRoom: %v", err)
		} else if len(items) > 0 {
			m.rec.mergeHistory(items)
		}
	}
	m.updateViewport()

	ch := m.channel()
	log.Printf("joinActiveRoom: room=%s channel=%s gen=%d", room, ch, gen)
	return tea.Batch(
		subscribeCmd(m.transport, ch),
		setStateCmd(m.transport, ch, m.session.DisplayName),
		loadHistoryCmd(m.transport, ch, gen),
		fetchPresenceCmd(m.transport, ch, gen),
		presenceLaterCmd(gen),
	)
}

// switchRoom moves to the room at idx: unsubscribe the old channel, persist
// the selection, and run the join sequence for the new one.
func (m *model) switchRoom(idx int) tea.Cmd {
	if idx == m.activeRoom || idx < 0 || idx >= len(m.rooms) {
		return nil
	}
	oldChannel := m.channel()
	m.activeRoom = idx
	m.session.Room = m.rooms[idx]
	if err := SaveSession(m.cfgFlagPath, m.session); err != nil {
		log.Printf("switchRoom: failed to save session: %v", err)
	}
	return tea.Batch(
		unsubscribeCmd(m.transport, oldChannel),
		m.joinActiveRoom(),
	)
}

// joinRoomByName switches to a room by human-entered name, adding it to the
// room list if it isn't there yet.
func (m *model) joinRoomByName(name string) tea.Cmd {
	room := sanitizeRoom(name)
	if room == "" || room == "-" {
		m.notice = "usage: /join <room-name>"
		return nil
	}
	for i, r := range m.rooms {
		if r == room {
			if i == m.activeRoom {
				m.rec.noteActivity("Already in #" + room + ".")
				return nil
			}
			return m.switchRoom(i)
		}
	}
	m.rooms = append(m.rooms, room)
	return m.switchRoom(len(m.rooms) - 1)
}

// chatPayload builds the wire payload for an outgoing chat message.
func chatPayload(s Session, text string) map[string]any {
	return map[string]any{
		"type":       "chat",
		"id":         uuid.NewString(),
		"text":       text,
		"senderId":   s.UserID,
		"senderName": s.DisplayName,
		"createdAt":  time.Now().UTC().Format(time.RFC3339),
	}
}

// typingPayload builds the wire payload for a typing-intent signal.
func typingPayload(s Session, isTyping bool) map[string]any {
	return map[string]any{
		"type":       "typing",
		"isTyping":   isTyping,
		"senderId":   s.UserID,
		"senderName": s.DisplayName,
	}
}

// sendMessage publishes a chat message with an optimistic local echo. The
// echo is never rolled back on publish failure; real delivery is the
// transport's concern. A stop-typing signal rides along so other clients
// clear the indicator immediately.
func (m *model) sendMessage(text string) tea.Cmd {
	payload := chatPayload(m.session, text)
	if msg, ok := m.rec.applyMessage(payload, ""); ok {
		if dir := m.transcriptDir(); dir != "" {
			appendTranscript(dir, m.rooms[m.activeRoom], msg)
		}
	}
	m.updateViewport()

	m.stopArmed = false
	cmds := []tea.Cmd{publishCmd(m.transport, m.channel(), payload)}
	if m.throttle.allow(false, time.Now()) {
		cmds = append(cmds, signalCmd(m.transport, m.channel(), typingPayload(m.session, false)))
	}
	return tea.Batch(cmds...)
}

// composerTyping broadcasts typing intent for a keystroke (throttled) and
// re-arms the stop-typing timer.
func (m *model) composerTyping() tea.Cmd {
	var cmds []tea.Cmd
	if m.throttle.allow(true, time.Now()) {
		cmds = append(cmds, signalCmd(m.transport, m.channel(), typingPayload(m.session, true)))
	}
	m.stopGen++
	m.stopArmed = true
	cmds = append(cmds, typingStopLaterCmd(m.stopGen))
	return tea.Batch(cmds...)
}

// syncInputHeight grows or shrinks the textarea with its line count.
func (m *model) syncInputHeight() {
	target := m.input.LineCount()
	if target < inputMinHeight {
		target = inputMinHeight
	}
	if target > inputMaxHeight {
		target = inputMaxHeight
	}
	if target != m.lastInputHeight {
		m.input.SetHeight(target)
		m.lastInputHeight = target
		m.updateLayout()
	}
}
