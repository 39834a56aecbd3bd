package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	resolved, err := ResolvePath("/tmp/custom.jsonc")
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.jsonc", resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "vox", "config.jsonc"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "vox", "config.jsonc"), resolved)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	clearSecretEnv(t)
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.Len(t, loaded.Warnings, 1)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadReadsConfigAndDotenvSecrets(t *testing.T) {
	clearSecretEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.jsonc")

	require.NoError(t, os.WriteFile(path, []byte(`{"paste": {"enable": false}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DEEPGRAM_API_KEY=dg-from-file\nGROQ_API_KEY=gq-from-file\n"), 0o600))
	t.Setenv("VOX_FORMATTER_API_KEY", "vox-from-env")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.False(t, loaded.Config.Paste.Enable)
	require.Equal(t, "dg-from-file", loaded.Config.Secrets.Recognizer())
	require.Equal(t, "vox-from-env", loaded.Config.Secrets.Formatter())
}

func TestLoadSecretsSeesDotenvEdits(t *testing.T) {
	clearSecretEnv(t)
	dotenv := filepath.Join(t.TempDir(), ".env")

	require.NoError(t, os.WriteFile(dotenv, []byte("GROQ_API_KEY=first\n"), 0o600))
	secrets, err := LoadSecrets(dotenv)
	require.NoError(t, err)
	require.Equal(t, "first", secrets.Formatter())
	_, leaked := os.LookupEnv("GROQ_API_KEY")
	require.False(t, leaked)

	require.NoError(t, os.WriteFile(dotenv, []byte("GROQ_API_KEY=second\n"), 0o600))
	secrets, err = LoadSecrets(dotenv)
	require.NoError(t, err)
	require.Equal(t, "second", secrets.Formatter())

	require.NoError(t, os.Remove(dotenv))
	secrets, err = LoadSecrets(dotenv)
	require.NoError(t, err)
	require.Empty(t, secrets.Formatter())
}

func TestLoadInvalidConfigFails(t *testing.T) {
	clearSecretEnv(t)
	path := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"paste": {"settle_ms": -5}}`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "paste.settle_ms")
}

// clearSecretEnv unsets credential variables for the duration of the test,
// since a set variable always wins over the dotenv file.
func clearSecretEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"VOX_RECOGNIZER_API_KEY", "VOX_FORMATTER_API_KEY", "DEEPGRAM_API_KEY", "GROQ_API_KEY"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}
