//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// galleryConfig uses ASCII glyphs so the pty output is easy to match
const galleryConfig = `version = 1

[appearance]
animation_ms = 0

[[tiles]]
id = "coffee"
label = "Coffee"
glyph = "C"

[group]
id = "weather"
title = "Pick one"
mode = "permissive"

[[group.tiles]]
id = "sun"
label = "Sunny"
glyph = "S"

[[group.tiles]]
id = "cloud"
label = "Cloudy"
glyph = "O"
checked = true

[[group.tiles]]
id = "rain"
label = "Rain"
glyph = "R"
panel = "wet"

[ui]
columns = 4
autosave = true
mouse = false
`

// CreateTestWorkspace creates a temporary home for config, state and logs
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	return tmpDir, nil
}

// WriteConfig writes a config file into the workspace and returns its path
func (tf *TUITestFramework) WriteConfig(content string) (string, error) {
	if tf.workspace == "" {
		return "", fmt.Errorf("workspace not created")
	}
	path := filepath.Join(tf.workspace, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// StartGallery creates a workspace with galleryConfig and starts the app on it
func (tf *TUITestFramework) StartGallery() (workspace string, err error) {
	return tf.StartGalleryWith(galleryConfig)
}

// StartGalleryWith is StartGallery with a different config
func (tf *TUITestFramework) StartGalleryWith(config string) (workspace string, err error) {
	workspace, err = tf.CreateTestWorkspace()
	if err != nil {
		return "", err
	}
	configPath, err := tf.WriteConfig(config)
	if err != nil {
		return "", err
	}
	return workspace, tf.StartApp(
		"--config", configPath,
		"--state", filepath.Join(workspace, "state.toml"),
		"--log-file", filepath.Join(workspace, "checkable.log"),
	)
}
