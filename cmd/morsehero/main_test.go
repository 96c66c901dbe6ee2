package main

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/morsehero/internal/config"
	"github.com/verte-zerg/morsehero/internal/engine"
)

var commentedKey = regexp.MustCompile(`(?m)^# ([a-z-]+ = )`)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	tmpl := defaultConfigTemplate()

	var empty config.FileConfig
	_, err := toml.Decode(tmpl, &empty)
	require.NoError(t, err)
	require.Nil(t, empty.Game.WPM)

	var cfg config.FileConfig
	_, err = toml.Decode(commentedKey.ReplaceAllString(tmpl, "$1"), &cfg)
	require.NoError(t, err)
	require.Equal(t, engine.DefaultWPM, *cfg.Game.WPM)
	require.Equal(t, 300*time.Millisecond, *cfg.Game.RevealDelay)
	require.Equal(t, 2*time.Second, *cfg.Game.AdvanceIncorrect)
	require.Equal(t, defaultAddr, *cfg.Serve.Addr)
}

func TestValidateConfig(t *testing.T) {
	newRootCmd()
	cfg := currentGameConfig()
	require.NoError(t, validateConfig(cfg))

	bad := cfg
	bad.WPM = 12
	require.Error(t, validateConfig(bad))

	bad = cfg
	bad.ToneHz = 0
	require.Error(t, validateConfig(bad))

	bad = cfg
	bad.WeakTop = -1
	require.Error(t, validateConfig(bad))
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Set("wpm", "25"))

	wpm, hints := 15, true
	applyGameConfig(cmd, config.GameConfig{WPM: &wpm, Hints: &hints})

	cfg := currentGameConfig()
	require.Equal(t, 25, cfg.WPM)
	require.True(t, cfg.Hints)
}

func TestExportWritesWAV(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"export", "a", "--log-level", "error"})
	require.NoError(t, cmd.Execute())
	require.True(t, bytes.HasPrefix(out.Bytes(), []byte("RIFF")))
}

func TestExportRejectsUnsupportedChar(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", "#", "--log-level", "error"})
	require.Error(t, cmd.Execute())
}
