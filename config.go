package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

type Config struct {
	PublishKey    string   `toml:"publish_key"`
	SubscribeKey  string   `toml:"subscribe_key"`
	Rooms         []string `toml:"rooms"`
	ChannelPrefix string   `toml:"channel_prefix"`
	DisplayName   string   `toml:"display_name"`
	MaxMessages   int      `toml:"max_messages"`
	TipURL        string   `toml:"tip_url"`
	Transcripts   *bool    `toml:"transcripts"` // nil = default (true)
	TranscriptDir string   `toml:"transcript_dir"`
}

// KeysReady reports whether both pub/sub keys are configured.
func (c Config) KeysReady() bool {
	return c.PublishKey != "" && c.SubscribeKey != ""
}

// TranscriptsEnabled returns whether per-room transcript files are written.
func (c Config) TranscriptsEnabled() bool {
	if c.Transcripts == nil {
		return true // enabled by default
	}
	return *c.Transcripts
}

func defaultConfig() Config {
	return Config{
		Rooms:         []string{"care-team", "admissions", "pharmacy", "billing", "support"},
		ChannelPrefix: "pulseline",
		MaxMessages:   500,
		TipURL:        defaultTipURL,
	}
}

func configPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv("PULSELINE_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "pulseline", "config.toml")
}

func LoadConfig(flagPath string) (Config, error) {
	cfg := defaultConfig()

	path := configPath(flagPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if cfg.PublishKey == "" {
		cfg.PublishKey = os.Getenv("PUBNUB_PUBLISH_KEY")
	}
	if cfg.SubscribeKey == "" {
		cfg.SubscribeKey = os.Getenv("PUBNUB_SUBSCRIBE_KEY")
	}
	if len(cfg.Rooms) == 0 {
		cfg.Rooms = defaultConfig().Rooms
	}
	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = "pulseline"
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 500
	}
	if cfg.TipURL == "" {
		cfg.TipURL = defaultTipURL
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = os.Getenv("USER")
	}
	if cfg.DisplayName == "" {
		cfg.DisplayName = "Anonymous"
	}

	return cfg, nil
}

// Session is the local user's durable identity plus current room selection.
// The userId is generated once and survives restarts until logout.
type Session struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Room        string `json:"room"`
}

func newSession(displayName, room string) Session {
	return Session{
		UserID:      uuid.NewString(),
		DisplayName: displayName,
		Room:        sanitizeRoom(room),
	}
}

// sessionPath returns the path to the persisted session file, kept next to
// the config file.
func sessionPath(cfgFlagPath string) string {
	dir := filepath.Dir(configPath(cfgFlagPath))
	return filepath.Join(dir, "session.json")
}

// LoadSession reads the persisted session. A session missing any of its
// three fields is treated as absent.
func LoadSession(cfgFlagPath string) (Session, bool) {
	data, err := os.ReadFile(sessionPath(cfgFlagPath))
	if err != nil {
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, false
	}
	if s.UserID == "" || s.DisplayName == "" || s.Room == "" {
		return Session{}, false
	}
	return s, true
}

func SaveSession(cfgFlagPath string, s Session) error {
	path := sessionPath(cfgFlagPath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// ClearSession removes the persisted session (logout).
func ClearSession(cfgFlagPath string) error {
	err := os.Remove(sessionPath(cfgFlagPath))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
