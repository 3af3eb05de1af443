package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liangyou/nodeswitch/pkg/models"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	cfg, err := Load(Options{Getenv: envOf(map[string]string{
		"HOME": home,
		"PATH": "/usr/bin:/bin",
	})})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".nvm"), cfg.NVMDir)
	assert.Equal(t, "/usr/bin:/bin", cfg.Path)
	assert.Equal(t, models.DefaultRoots(), cfg.Roots)
	assert.Equal(t, ".nvmrc", cfg.PinFileName)
	assert.EqualValues(t, 32, cfg.MaxPinSize)
	assert.Equal(t, 5, cfg.MaxAliasDepth)
}

func TestLoadRequiresHomeOrNVMDir(t *testing.T) {
	t.Parallel()

	_, err := Load(Options{Getenv: envOf(nil)})
	assert.Error(t, err)
}

func TestLoadNVMDirOverride(t *testing.T) {
	t.Parallel()

	cfg, err := Load(Options{Getenv: envOf(map[string]string{
		"HOME":    "/home/dev",
		"NVM_DIR": "/opt/nvm/",
	})})
	require.NoError(t, err)
	assert.Equal(t, "/opt/nvm", cfg.NVMDir)
}

func TestLoadEnvFileOverlay(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	envFile := filepath.Join(dir, "nodeswitch.env")
	require.NoError(t, os.WriteFile(envFile, []byte("NVM_DIR=/srv/nvm\n# comment\n"), 0o644))

	cfg, err := Load(Options{
		EnvFile: envFile,
		Getenv:  envOf(map[string]string{"HOME": "/home/dev", "NVM_DIR": "/ignored", "PATH": "/usr/bin"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "/srv/nvm", cfg.NVMDir)
	assert.Equal(t, "/usr/bin", cfg.Path)
}

func TestLoadMissingEnvFile(t *testing.T) {
	t.Parallel()

	_, err := Load(Options{
		Getenv: envOf(map[string]string{"HOME": "/home/dev", "NODESWITCH_ENV_FILE": "/nonexistent/env"}),
	})
	assert.Error(t, err)
}

func TestLoadYAMLFromNVMDir(t *testing.T) {
	t.Parallel()

	nvmDir := t.TempDir()
	yamlBody := `
roots:
  - dir: versions/node
  - dir: versions/io.js
    runtime: io.js
pin_file: .node-version
max_pin_size: 64
max_alias_depth: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(nvmDir, "nodeswitch.yaml"), []byte(yamlBody), 0o644))

	cfg, err := Load(Options{Getenv: envOf(map[string]string{"NVM_DIR": nvmDir})})
	require.NoError(t, err)
	assert.Equal(t, []models.RootDir{
		{Dir: "versions/node", Runtime: "node", Pattern: "v*"},
		{Dir: "versions/io.js", Runtime: "io.js", Pattern: "v*"},
	}, cfg.Roots)
	assert.Equal(t, ".node-version", cfg.PinFileName)
	assert.EqualValues(t, 64, cfg.MaxPinSize)
	assert.Equal(t, 8, cfg.MaxAliasDepth)
}

func TestLoadExplicitConfigMustExist(t *testing.T) {
	t.Parallel()

	_, err := Load(Options{
		ConfigFile: filepath.Join(t.TempDir(), "missing.yaml"),
		Getenv:     envOf(map[string]string{"HOME": "/home/dev"}),
	})
	assert.Error(t, err)
}

func TestLoadRejectsEscapingRoot(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(file, []byte("roots:\n  - dir: ../elsewhere\n"), 0o644))

	_, err := Load(Options{ConfigFile: file, Getenv: envOf(map[string]string{"HOME": "/home/dev"})})
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(file, []byte("roots: [unterminated\n"), 0o644))

	_, err := Load(Options{ConfigFile: file, Getenv: envOf(map[string]string{"HOME": "/home/dev"})})
	assert.Error(t, err)
}
