package settings

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/vox/internal/config"
	"github.com/rbright/vox/internal/formatting"
	"github.com/rbright/vox/internal/gesture"
	"github.com/rbright/vox/internal/llm"
)

type scriptedLoader struct {
	loads []config.Loaded
	errs  []error
	calls int
}

func (l *scriptedLoader) load(path string) (config.Loaded, error) {
	i := min(l.calls, len(l.loads)-1)
	l.calls++
	if i < len(l.errs) && l.errs[i] != nil {
		return config.Loaded{}, l.errs[i]
	}
	loaded := l.loads[i]
	loaded.Path = path
	return loaded, nil
}

func loadedWith(mutate func(*config.Config)) config.Loaded {
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return config.Loaded{Config: cfg, Exists: true}
}

func TestNewStoreBuildsInitialSnapshot(t *testing.T) {
	loader := &scriptedLoader{loads: []config.Loaded{loadedWith(func(c *config.Config) {
		c.Profile = config.ProfileConfig{CasualName: " Sam ", FormalName: "Samuel Reed", Formality: 2}
	})}}

	store, err := NewStore("/tmp/vox.jsonc", loader.load, NewFormatter, nil)
	require.NoError(t, err)

	snap := store.Current()
	require.Equal(t, "/tmp/vox.jsonc", snap.Path)
	require.Equal(t, formatting.Names{Casual: "Sam", Formal: "Samuel Reed"}, snap.Names())
	require.Equal(t, formatting.Formal, snap.Formality())
	require.Equal(t, gesture.CtrlR, snap.Binding.Trigger)
	require.Equal(t, formatting.None{}, snap.Formatter)
	require.EqualValues(t, 1, snap.CredentialGeneration)
}

func TestNewStoreRejectsBadBinding(t *testing.T) {
	loader := &scriptedLoader{loads: []config.Loaded{loadedWith(func(c *config.Config) {
		c.Gesture.Trigger = "hyper"
	})}}

	_, err := NewStore("", loader.load, NewFormatter, nil)
	require.ErrorContains(t, err, "gesture")
}

func TestReloadPublishesAndBumpsCredentialGeneration(t *testing.T) {
	loader := &scriptedLoader{loads: []config.Loaded{
		loadedWith(nil),
		loadedWith(func(c *config.Config) { c.Secrets.GroqAPIKey = "gq" }),
		loadedWith(func(c *config.Config) {
			c.Secrets.GroqAPIKey = "gq"
			c.Paste.SettleMS = 250
		}),
	}}

	store, err := NewStore("", loader.load, NewFormatter, nil)
	require.NoError(t, err)
	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()

	snap, err := store.Reload()
	require.NoError(t, err)
	require.IsType(t, &llm.Remote{}, snap.Formatter)
	require.EqualValues(t, 2, snap.CredentialGeneration)
	require.Equal(t, snap.CredentialGeneration, (<-updates).CredentialGeneration)

	snap, err = store.Reload()
	require.NoError(t, err)
	require.Equal(t, 250, snap.Config.Paste.SettleMS)
	require.EqualValues(t, 2, snap.CredentialGeneration, "unchanged key keeps the generation")
}

func TestReloadFailureKeepsCurrentSnapshot(t *testing.T) {
	loader := &scriptedLoader{
		loads: []config.Loaded{loadedWith(nil), loadedWith(nil)},
		errs:  []error{nil, errors.New("parse config: line 3")},
	}

	store, err := NewStore("", loader.load, NewFormatter, nil)
	require.NoError(t, err)
	before := store.Current()

	updates, unsubscribe := store.Subscribe()
	defer unsubscribe()

	snap, err := store.Reload()
	require.ErrorContains(t, err, "line 3")
	require.Equal(t, before, snap)
	require.Empty(t, updates)
}

func TestSubscriberSeesOnlyLatestSnapshot(t *testing.T) {
	loader := &scriptedLoader{loads: []config.Loaded{
		loadedWith(nil),
		loadedWith(func(c *config.Config) { c.Paste.SettleMS = 1 }),
		loadedWith(func(c *config.Config) { c.Paste.SettleMS = 2 }),
	}}

	store, err := NewStore("", loader.load, func(config.Config, *slog.Logger) formatting.TextFormatter { return nil }, nil)
	require.NoError(t, err)
	require.Equal(t, formatting.None{}, store.Current().Formatter)

	updates, unsubscribe := store.Subscribe()
	_, err = store.Reload()
	require.NoError(t, err)
	_, err = store.Reload()
	require.NoError(t, err)

	require.Len(t, updates, 1)
	require.Equal(t, 2, (<-updates).Config.Paste.SettleMS)

	unsubscribe()
	_, err = store.Reload()
	require.NoError(t, err)
	require.Empty(t, updates)
}
