package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildPasteShortcut(t *testing.T) {
	t.Parallel()

	got, err := buildPasteShortcut(" CTRL,V ", " 0xabc ")
	require.NoError(t, err)
	require.Equal(t, "CTRL,V,address:0xabc", got)

	_, err = buildPasteShortcut("", "0xabc")
	require.ErrorContains(t, err, "shortcut")

	_, err = buildPasteShortcut("CTRL,V", "")
	require.ErrorContains(t, err, "address")
}

func TestHyprPasterDispatchesShortcutToActiveWindow(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)
	t.Setenv("HYPR_ACTIVEWINDOW_JSON", `{"address":"0xabc","class":"kitty"}`)
	installHyprctlPasteStub(t)

	require.NoError(t, HyprPaster{Shortcut: "CTRL_SHIFT,V"}.Paste(context.Background()))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "--quiet dispatch sendshortcut CTRL_SHIFT,V,address:0xabc")
}

func TestHyprPasterFailsWithoutFocusedWindow(t *testing.T) {
	t.Setenv("HYPR_ARGS_FILE", filepath.Join(t.TempDir(), "hypr-args.log"))
	t.Setenv("HYPR_ACTIVEWINDOW_JSON", `{"address":"","class":""}`)
	installHyprctlPasteStub(t)

	err := HyprPaster{Shortcut: "CTRL,V"}.Paste(context.Background())
	require.ErrorContains(t, err, "empty address")
}

func TestCommandPasterRunsArgv(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "pasted")
	script := filepath.Join(t.TempDir(), "paste.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/usr/bin/env bash\ntouch \""+marker+"\"\n"), 0o755))

	require.NoError(t, CommandPaster{Argv: []string{script}}.Paste(context.Background()))
	_, err := os.Stat(marker)
	require.NoError(t, err)
}

func TestActiveWindowWithRetryHonorsContextCancel(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := activeWindowWithRetry(ctx, 3, 10*time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
}

func installHyprctlPasteStub(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "hyprctl")
	script := `#!/usr/bin/env bash
set -euo pipefail
if [[ "${1:-}" == "-j" && "${2:-}" == "activewindow" ]]; then
  echo "${HYPR_ACTIVEWINDOW_JSON}"
  exit 0
fi
printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"
`
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(script)+"\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}
