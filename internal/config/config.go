package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"checkable/internal/checkable"
	"checkable/internal/eventbus"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the application configuration
type Config struct {
	Version    int              `toml:"version"`
	Appearance AppearanceConfig `toml:"appearance"`
	Tiles      []TileConfig     `toml:"tiles"` // standalone tiles, not in any group
	Group      GroupConfig      `toml:"group"`
	UISettings UISettings       `toml:"ui"`
}

// AppearanceConfig is the shared look of every tile
type AppearanceConfig struct {
	AnimationMS       int                     `toml:"animation_ms"`
	BorderColor       string                  `toml:"border_color"`
	BorderWidth       int                     `toml:"border_width"`
	BorderRadius      int                     `toml:"border_radius"`
	NormalBackground  string                  `toml:"normal_background"`
	CheckedBackground string                  `toml:"checked_background"`
	CheckmarkColor    string                  `toml:"checkmark_color"`
	LabelColor        string                  `toml:"label_color"`
	NormalGlyphColor  string                  `toml:"normal_glyph_color"`
	CheckedGlyphColor string                  `toml:"checked_glyph_color"`
	CheckmarkPosition checkable.CheckPosition `toml:"checkmark_position"`
}

// TileConfig describes one tile
type TileConfig struct {
	ID           string `toml:"id"`
	Label        string `toml:"label,omitempty"`
	Glyph        string `toml:"glyph"`
	CheckedGlyph string `toml:"checked_glyph,omitempty"`
	Checked      bool   `toml:"checked,omitempty"`
	Panel        string `toml:"panel,omitempty"` // nests the tile in a named panel (permissive groups)
}

// GroupConfig describes the single-selection group
type GroupConfig struct {
	ID    string         `toml:"id"`
	Title string         `toml:"title,omitempty"`
	Mode  checkable.Mode `toml:"mode"`
	Tiles []TileConfig   `toml:"tiles"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	Columns   int    `toml:"columns"`
	StateFile string `toml:"state_file,omitempty"`
	Autosave  bool   `toml:"autosave"`
	Mouse     bool   `toml:"mouse"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// DefaultDir returns the per-user directory holding config and state
func DefaultDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "checkable")
}

// NewConfigService creates a config service for the default config file
func NewConfigService() ConfigService {
	return &configService{
		filePath: filepath.Join(DefaultDir(), "config.toml"),
	}
}

// NewConfigServiceWithBus creates a config service with event bus support.
// An empty path selects the default config file.
func NewConfigServiceWithBus(bus eventbus.EventBus, path string) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	if path != "" {
		cs.filePath = path
	}
	return cs
}

// Path returns the config file this service reads and writes
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from file, falling back to DefaultConfig when
// the file does not exist
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		log.Info("No config file, using defaults", "path", cs.filePath)
		cfg = DefaultConfig()
	} else {
		cfg, err = cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:  cs.filePath,
			Tiles: len(cfg.Tiles) + len(cfg.Group.Tiles),
		})
	}

	return cfg, nil
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}

	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Parse decodes and validates a TOML config. Missing values take their defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Tiles = nil
	cfg.Group.Tiles = nil

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ids and numeric settings
func (c *Config) Validate() error {
	if c.Version > CurrentVersion {
		return fmt.Errorf("%w: version %d is newer than supported %d", ErrInvalidConfig, c.Version, CurrentVersion)
	}
	if c.UISettings.Columns < 1 {
		return fmt.Errorf("%w: ui.columns must be at least 1", ErrInvalidConfig)
	}
	if c.Appearance.AnimationMS < 0 {
		return fmt.Errorf("%w: appearance.animation_ms must not be negative", ErrInvalidConfig)
	}
	if c.Group.ID == "" && len(c.Group.Tiles) > 0 {
		return fmt.Errorf("%w: group.id is required", ErrInvalidConfig)
	}

	seen := make(map[string]bool)
	all := append(append([]TileConfig{}, c.Tiles...), c.Group.Tiles...)
	for i, tile := range all {
		if tile.ID == "" {
			return fmt.Errorf("%w: tile %d has no id", ErrInvalidConfig, i)
		}
		if seen[tile.ID] {
			return fmt.Errorf("%w: duplicate tile id %q", ErrInvalidConfig, tile.ID)
		}
		seen[tile.ID] = true
	}
	for _, tile := range c.Tiles {
		if tile.Panel != "" {
			return fmt.Errorf("%w: standalone tile %q cannot be placed in a panel", ErrInvalidConfig, tile.ID)
		}
	}
	return nil
}

// ToAppearance converts the config section into tile appearance settings
func (a AppearanceConfig) ToAppearance() checkable.Appearance {
	return checkable.Appearance{
		AnimationDuration: time.Duration(a.AnimationMS) * time.Millisecond,
		BorderColor:       a.BorderColor,
		BorderWidth:       a.BorderWidth,
		BorderRadius:      a.BorderRadius,
		NormalBackground:  a.NormalBackground,
		CheckedBackground: a.CheckedBackground,
		CheckmarkColor:    a.CheckmarkColor,
		LabelColor:        a.LabelColor,
		NormalGlyphColor:  a.NormalGlyphColor,
		CheckedGlyphColor: a.CheckedGlyphColor,
		CheckmarkPosition: a.CheckmarkPosition,
	}
}

// DefaultConfig returns the default configuration, a small gallery matching the
// stock tile look
func DefaultConfig() *Config {
	def := checkable.DefaultAppearance()

	return &Config{
		Version: CurrentVersion,
		Appearance: AppearanceConfig{
			AnimationMS:       int(def.AnimationDuration / time.Millisecond),
			BorderColor:       def.BorderColor,
			BorderWidth:       def.BorderWidth,
			BorderRadius:      def.BorderRadius,
			NormalBackground:  def.NormalBackground,
			CheckedBackground: def.CheckedBackground,
			CheckmarkColor:    def.CheckmarkColor,
			LabelColor:        def.LabelColor,
			NormalGlyphColor:  def.NormalGlyphColor,
			CheckedGlyphColor: def.CheckedGlyphColor,
			CheckmarkPosition: def.CheckmarkPosition,
		},
		Tiles: []TileConfig{
			{ID: "coffee", Label: "Coffee", Glyph: "☕"},
			{ID: "music", Glyph: "♪", CheckedGlyph: "♫"},
		},
		Group: GroupConfig{
			ID:    "weather",
			Title: "Pick one",
			Mode:  checkable.Permissive,
			Tiles: []TileConfig{
				{ID: "sun", Label: "Sunny", Glyph: "☀"},
				{ID: "cloud", Label: "Cloudy", Glyph: "☁", Checked: true},
				{ID: "rain", Label: "Rain", Glyph: "☂", Panel: "wet"},
				{ID: "snow", Label: "Snow", Glyph: "❄", Panel: "wet"},
			},
		},
		UISettings: UISettings{
			Columns:  4,
			Autosave: true,
			Mouse:    true,
		},
	}
}
