package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkable/internal/checkable"
	"checkable/internal/eventbus"
)

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
version = 1

[appearance]
animation_ms = 120
checkmark_position = "bottom-left"

[[tiles]]
id = "solo"
glyph = "*"

[group]
id = "sizes"
mode = "strict"

[[group.tiles]]
id = "s"
label = "Small"
glyph = "s"

[[group.tiles]]
id = "m"
label = "Medium"
glyph = "m"
checked = true

[ui]
columns = 2
`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 120, cfg.Appearance.AnimationMS)
	assert.Equal(t, checkable.BottomLeft, cfg.Appearance.CheckmarkPosition)
	assert.Equal(t, DefaultConfig().Appearance.BorderColor, cfg.Appearance.BorderColor, "unset keys keep defaults")
	require.Len(t, cfg.Tiles, 1)
	assert.Equal(t, "solo", cfg.Tiles[0].ID)
	assert.Equal(t, checkable.Strict, cfg.Group.Mode)
	require.Len(t, cfg.Group.Tiles, 2)
	assert.True(t, cfg.Group.Tiles[1].Checked)
	assert.Equal(t, 2, cfg.UISettings.Columns)

	appearance := cfg.Appearance.ToAppearance()
	assert.Equal(t, 120*time.Millisecond, appearance.AnimationDuration)
	assert.Equal(t, checkable.BottomLeft, appearance.CheckmarkPosition)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad mode":        "[group]\nid = \"g\"\nmode = \"loose\"\n",
		"bad position":    "[appearance]\ncheckmark_position = \"middle\"\n",
		"unknown key":     "colour = \"red\"\n",
		"duplicate id":    "[[tiles]]\nid = \"a\"\nglyph = \"a\"\n[[tiles]]\nid = \"a\"\nglyph = \"b\"\n",
		"missing id":      "[[tiles]]\nglyph = \"a\"\n",
		"zero columns":    "[ui]\ncolumns = 0\n",
		"newer version":   "version = 99\n",
		"standalone pane": "[[tiles]]\nid = \"a\"\nglyph = \"a\"\npanel = \"p\"\n",
		"negative anim":   "[appearance]\nanimation_ms = -1\n",
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}

	_, err := Parse([]byte("[[tiles]]\nglyph = \"a\"\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	checked := 0
	for _, tile := range cfg.Group.Tiles {
		if tile.Checked {
			checked++
		}
	}
	assert.Equal(t, 1, checked)
	assert.Equal(t, checkable.DefaultAnimationDuration, cfg.Appearance.ToAppearance().AnimationDuration)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	svc := NewConfigServiceWithBus(nil, path)
	require.Equal(t, path, svc.Path())

	cfg := DefaultConfig()
	cfg.Group.Mode = checkable.Strict
	cfg.Group.Tiles = cfg.Group.Tiles[:2]
	require.NoError(t, svc.Save(cfg))

	loaded, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	got := make(chan eventbus.DomainEvent, 1)
	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) { got <- e })

	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, err := NewConfigServiceWithBus(bus, path).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	select {
	case e := <-got:
		loaded := e.(eventbus.ConfigLoadedEvent)
		assert.Equal(t, path, loaded.Path)
		assert.Equal(t, 6, loaded.Tiles)
	case <-time.After(2 * time.Second):
		t.Fatal("no ConfigLoaded event")
	}
}

func TestLoadFromPathErrors(t *testing.T) {
	svc := NewConfigService()

	_, err := svc.LoadFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("version = \"one\""), 0644))
	_, err = svc.LoadFromPath(bad)
	assert.ErrorContains(t, err, "failed to parse config")
}
