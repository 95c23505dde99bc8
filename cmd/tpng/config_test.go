package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tpng.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig([]string{})
	require.NoError(t, err)

	assert.Equal(t, "print", cfg.Command())
	assert.Equal(t, []string{"./test_images"}, cfg.CLI.Print.Paths)
	assert.Equal(t, DefaultResample, cfg.CLI.Print.Resample)
	assert.Equal(t, 0, cfg.CLI.Print.Width)
	assert.False(t, cfg.CLI.Strict)
}

func TestNewConfigPrintArgs(t *testing.T) {
	cfg, err := NewConfig([]string{"print", "-w", "40", "-r", "nearest", "--strict", "a.png", "dir"})
	require.NoError(t, err)

	assert.Equal(t, "print", cfg.Command())
	assert.Equal(t, []string{"a.png", "dir"}, cfg.CLI.Print.Paths)
	assert.Equal(t, 40, cfg.CLI.Print.Width)
	assert.Equal(t, "nearest", cfg.CLI.Print.Resample)
	assert.True(t, cfg.CLI.Strict)
}

func TestNewConfigDefaultCommandWithArgs(t *testing.T) {
	cfg, err := NewConfig([]string{"one.png"})
	require.NoError(t, err)

	assert.Equal(t, "print", cfg.Command())
	assert.Equal(t, []string{"one.png"}, cfg.CLI.Print.Paths)
}

func TestNewConfigInflate(t *testing.T) {
	cfg, err := NewConfig([]string{"inflate", "--raw"})
	require.NoError(t, err)

	assert.Equal(t, "inflate", cfg.Command())
	assert.True(t, cfg.CLI.Inflate.Raw)
}

func TestNewConfigTOML(t *testing.T) {
	p := writeTOML(t, `
[render]
width = 60
resample = "nearest"

[decode]
strict = true
`)

	cfg, err := NewConfig([]string{"-c", p})
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.CLI.Print.Width)
	assert.Equal(t, "nearest", cfg.CLI.Print.Resample)
	assert.True(t, cfg.CLI.Strict)

	// flags win over the file
	cfg, err = NewConfig([]string{"-c", p, "print", "-w", "30", "-r", "area"})
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.CLI.Print.Width)
	assert.Equal(t, "area", cfg.CLI.Print.Resample)
}

func TestNewConfigTOMLDefaults(t *testing.T) {
	p := writeTOML(t, "[decode]\nstrict = false\n")

	cfg, err := NewConfig([]string{"-c", p})
	require.NoError(t, err)
	assert.Equal(t, DefaultResample, cfg.TOML.Render.Resample)
	assert.Equal(t, DefaultResample, cfg.CLI.Print.Resample)
}

func TestNewConfigInvalid(t *testing.T) {
	_, err := NewConfig([]string{"print", "-r", "bicubic"})
	assert.Error(t, err)

	_, err = NewConfig([]string{"print", "-w", "100000"})
	assert.Error(t, err)

	_, err = NewConfig([]string{"-c", writeTOML(t, "[render]\nresample = \"lanczos\"\n")})
	assert.Error(t, err)

	_, err = NewConfig([]string{"-c", writeTOML(t, "[render]\nwidth = -1\n")})
	assert.Error(t, err)

	_, err = NewConfig([]string{"-c", writeTOML(t, "not toml at all = = =")})
	assert.Error(t, err)

	_, err = NewConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.toml")})
	assert.Error(t, err)
}

func TestValidateNil(t *testing.T) {
	assert.Error(t, Validate(nil))
	assert.Error(t, validateTOML(nil))
	assert.Error(t, setTOMLDefaults(nil))
}
