package version

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liangyou/nodeswitch/pkg/models"
)

func writeExecutable(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
}

func writeNPM(t *testing.T, prefix, version string) string {
	t.Helper()
	pkgDir := filepath.Join(prefix, "lib", "node_modules", "npm")
	writeExecutable(t, filepath.Join(pkgDir, "bin", "npm-cli.js"))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(`{"name":"npm","version":"`+version+`"}`), 0o644))
	link := filepath.Join(prefix, "bin", "npm")
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(pkgDir, "bin", "npm-cli.js"), link))
	return link
}

func TestSystemNodeVersionUsesStrippedPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nvmDir := filepath.Join(root, ".nvm")
	managedBin := filepath.Join(nvmDir, "versions", "node", "v20.1.0", "bin")
	systemBin := filepath.Join(root, "usr", "bin")
	writeExecutable(t, filepath.Join(managedBin, "node"))
	writeExecutable(t, filepath.Join(systemBin, "node"))

	q := NewSystemQuery(models.Config{NVMDir: nvmDir, Path: managedBin + ":" + systemBin})
	var ran string
	var environ []string
	q.output = func(_ context.Context, env []string, name string, args ...string) ([]byte, error) {
		ran, environ = name, env
		return []byte("v18.19.1\n"), nil
	}

	got := q.NodeVersion(context.Background())
	require.NotNil(t, got)
	assert.Equal(t, "v18.19.1", got.String())
	assert.Equal(t, filepath.Join(systemBin, "node"), ran)
	assert.Equal(t, []string{"PATH=" + systemBin}, environ)
}

func TestSystemNodeVersionNotFound(t *testing.T) {
	t.Parallel()

	q := NewSystemQuery(models.Config{NVMDir: "/nonexistent/.nvm", Path: t.TempDir()})
	assert.Nil(t, q.NodeVersion(context.Background()))
}

func TestSystemNodeVersionInvalidOutput(t *testing.T) {
	t.Parallel()

	bin := t.TempDir()
	writeExecutable(t, filepath.Join(bin, "node"))
	q := NewSystemQuery(models.Config{NVMDir: "/nonexistent/.nvm", Path: bin})

	for _, out := range []string{"", "garbage", "v18.x", "v18.2.0-nightly2023"} {
		q.output = func(context.Context, []string, string, ...string) ([]byte, error) {
			return []byte(out), nil
		}
		assert.Nil(t, q.NodeVersion(context.Background()), "output %q", out)
	}

	q.output = func(context.Context, []string, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}
	assert.Nil(t, q.NodeVersion(context.Background()))
}

func TestParseReportedVersion(t *testing.T) {
	t.Parallel()

	got := parseReportedVersion("18.2.0\n")
	require.NotNil(t, got)
	assert.Equal(t, "v18.2.0", got.String())
}

func TestNPMVersion(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	systemPrefix := filepath.Join(root, "usr")
	writeNPM(t, systemPrefix, "9.8.1")

	nvmDir := filepath.Join(root, ".nvm")
	managed := filepath.Join(nvmDir, "versions", "node", "v20.1.0")
	writeNPM(t, managed, "10.2.0")

	q := NewSystemQuery(models.Config{
		NVMDir: nvmDir,
		Path:   filepath.Join(managed, "bin") + ":" + filepath.Join(systemPrefix, "bin"),
	})

	system, err := q.NPMVersion(nil)
	require.NoError(t, err)
	assert.Equal(t, "v9.8.1", system.String())

	v := models.NewVersion(20, 1, 0).WithLocation(managed)
	own, err := q.NPMVersion(&v)
	require.NoError(t, err)
	assert.Equal(t, "v10.2.0", own.String())
}

func TestNPMVersionMissing(t *testing.T) {
	t.Parallel()

	q := NewSystemQuery(models.Config{NVMDir: "/nonexistent/.nvm", Path: t.TempDir()})
	_, err := q.NPMVersion(nil)
	assert.True(t, errors.Is(err, ErrNoSystemRuntime))
}
