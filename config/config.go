package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// DeckDriver selects which hardware surface to open
type DeckDriver string

const (
	DriverAuto       DeckDriver = "auto"
	DriverStreamDeck DeckDriver = "streamdeck"
	DriverLaunchpad  DeckDriver = "launchpad"
	DriverVirtual    DeckDriver = "virtual"
	DriverNone       DeckDriver = "none"
)

// SlotKeys is the number of keys reserved for slots (0-8)
const SlotKeys = 9

// EnvPrefix is prepended to every environment override (DECKPLAYER_DECK_BRIGHTNESS)
const EnvPrefix = "DECKPLAYER"

// EnvKeyReplacer maps config keys to environment variable names
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// DeckConfig describes the hardware button surface
type DeckConfig struct {
	Driver      DeckDriver    `mapstructure:"driver" json:"driver"`
	Serial      string        `mapstructure:"serial" json:"serial,omitempty"`
	Brightness  int           `mapstructure:"brightness" json:"brightness"`
	PauseKey    int           `mapstructure:"pause_key" json:"pause_key"`
	TimeKey     int           `mapstructure:"time_key" json:"time_key"`
	OpenTimeout time.Duration `mapstructure:"open_timeout" json:"open_timeout"`
}

// PlayerConfig describes how the playback engine is launched
type PlayerConfig struct {
	Binary       string        `mapstructure:"binary" json:"binary"`
	Args         []string      `mapstructure:"args" json:"args,omitempty"`
	SocketDir    string        `mapstructure:"socket_dir" json:"socket_dir,omitempty"`
	Screens      int           `mapstructure:"screens" json:"screens"`
	AudioDevices []string      `mapstructure:"audio_devices" json:"audio_devices"`
	StartTimeout time.Duration `mapstructure:"start_timeout" json:"start_timeout"`
}

// RenderConfig tunes key rasters
type RenderConfig struct {
	FontPath    string `mapstructure:"font_path" json:"font_path,omitempty"`
	LabelWidth  int    `mapstructure:"label_width" json:"label_width"`
	LabelBudget int    `mapstructure:"label_budget" json:"label_budget"`
}

// ThemeConfig points at an optional GPL palette
type ThemeConfig struct {
	Palette string `mapstructure:"palette" json:"palette,omitempty"`
}

// LogConfig controls the debug log
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Level   string `mapstructure:"level" json:"level"`
	Path    string `mapstructure:"path" json:"path,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Deck   DeckConfig   `mapstructure:"deck" json:"deck"`
	Player PlayerConfig `mapstructure:"player" json:"player"`
	Render RenderConfig `mapstructure:"render" json:"render"`
	Theme  ThemeConfig  `mapstructure:"theme" json:"theme"`
	Log    LogConfig    `mapstructure:"log" json:"log"`
}

// Default holds the factory value of every key
var Default = map[string]any{
	"deck.driver":          string(DriverAuto),
	"deck.serial":          "",
	"deck.brightness":      50,
	"deck.pause_key":       12,
	"deck.time_key":        14,
	"deck.open_timeout":    3 * time.Second,
	"player.binary":        "mpv",
	"player.args":          []string{},
	"player.socket_dir":    "",
	"player.screens":       2,
	"player.audio_devices": []string{"auto"},
	"player.start_timeout": 3 * time.Second,
	"render.font_path":     "",
	"render.label_width":   12,
	"render.label_budget":  25,
	"theme.palette":        "",
	"log.enabled":          false,
	"log.level":            "debug",
	"log.path":             "",
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	cfg, err := decode(newViper(afero.NewMemMapFs()))
	if err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "deck-player"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func newViper(fs afero.Fs) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("json")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()

	v.SetTypeByDefaultValue(true)
	for name, value := range Default {
		v.SetDefault(name, value)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path, or returns defaults (plus environment
// overrides) if the file does not exist.
func Load(fs afero.Fs, path string) (*Config, error) {
	v := newViper(fs)

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, err
	}
	if exists {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path, creating the directory if needed
func (c *Config) Save(fs afero.Fs, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return afero.WriteFile(fs, path, data, 0644)
}

// Validate rejects settings the rest of the program cannot work with
func (c *Config) Validate() error {
	drivers := []DeckDriver{DriverAuto, DriverStreamDeck, DriverLaunchpad, DriverVirtual, DriverNone}
	if !lo.Contains(drivers, c.Deck.Driver) {
		return fmt.Errorf("deck.driver %q: want one of %v", c.Deck.Driver, drivers)
	}
	if c.Deck.Brightness < 0 || c.Deck.Brightness > 100 {
		return fmt.Errorf("deck.brightness %d out of range 0-100", c.Deck.Brightness)
	}
	for name, key := range map[string]int{"deck.pause_key": c.Deck.PauseKey, "deck.time_key": c.Deck.TimeKey} {
		if key < SlotKeys {
			return fmt.Errorf("%s %d collides with slot keys 0-%d", name, key, SlotKeys-1)
		}
	}
	if c.Deck.PauseKey == c.Deck.TimeKey {
		return fmt.Errorf("deck.pause_key and deck.time_key are both %d", c.Deck.PauseKey)
	}
	if c.Player.Screens < 1 {
		return fmt.Errorf("player.screens must be at least 1")
	}
	if len(c.Player.AudioDevices) == 0 {
		c.Player.AudioDevices = []string{"auto"}
	}
	if c.Render.LabelWidth <= 0 {
		return fmt.Errorf("render.label_width must be positive")
	}
	if c.Render.LabelBudget < 4 {
		return fmt.Errorf("render.label_budget must be at least 4")
	}
	return nil
}

// LogPath resolves where the debug log goes
func (c *Config) LogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "deck-player-debug.log")
	}
	return filepath.Join(dir, "debug.log")
}

// SocketPath returns a per-process socket path for the engine
func (c *Config) SocketPath() string {
	dir := c.Player.SocketDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("deck-player-%d.sock", os.Getpid()))
}
