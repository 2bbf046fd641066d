package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	configFlag := flag.String("config", "", "path to config file")
	debugFlag := flag.Bool("debug", false, "enable debug logging to debug.log")
	flag.Parse()

	if *debugFlag {
		f, err := tea.LogToFile("debug.log", "pulseline")
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not open debug log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.Println("debug logging enabled")
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if !cfg.KeysReady() {
		fmt.Fprintln(os.Stderr, "missing PubNub keys: set publish_key and subscribe_key in the config file,")
		fmt.Fprintln(os.Stderr, "or export PUBNUB_PUBLISH_KEY and PUBNUB_SUBSCRIBE_KEY")
		os.Exit(1)
	}
	log.Printf("config loaded: %d rooms", len(cfg.Rooms))

	session, ok := LoadSession(*configFlag)
	if !ok {
		session = newSession(cfg.DisplayName, cfg.Rooms[0])
		if err := SaveSession(*configFlag, session); err != nil {
			fmt.Fprintf(os.Stderr, "session error: %v\n", err)
			os.Exit(1)
		}
		log.Printf("new session: userId=%s", session.UserID)
	} else {
		log.Printf("session restored: userId=%s room=%s", session.UserID, session.Room)
	}

	// Create the markdown renderer before the TUI starts so the terminal
	// background-color query (OSC 11) completes while stdio is still normal.
	// Detect style once, store it for re-creation on resize.
	mdStyle := detectGlamourStyle()
	mdRender := newMarkdownRenderer(80, mdStyle)

	transport := newPubNubTransport(cfg, session.UserID)

	m := newModel(cfg, *configFlag, session, transport, mdRender, mdStyle)

	log.Println("starting TUI")
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	transport.Close()
}
