package packager

import (
	"bytes"
	"text/template"

	"github.com/google/renameio/v2"

	"claudepack/internal/build"
)

// launcherTemplate is the generated entry point installed at
// usr/bin/<package>. X11 compatibility mode is the default because native
// Wayland loses global hotkeys to an Electron portal limitation; setting
// CLAUDE_USE_WAYLAND=1 opts into native Wayland anyway. Platform flags must
// come before the positional app.asar argument or Electron treats them as
// file arguments. CLAUDE_APP_DIR overrides the install prefix so the AppImage
// AppRun can point the launcher at the mounted payload.
var launcherTemplate = template.Must(template.New("launcher").Parse(`#!/bin/sh
set -u

APP_NAME="{{.PackageName}}"
APP_DIR="${CLAUDE_APP_DIR:-/usr/lib/{{.PackageName}}}"

LOG_DIR="${XDG_CACHE_HOME:-$HOME/.cache}/$APP_NAME"
mkdir -p "$LOG_DIR"
LOG_FILE="$LOG_DIR/launch-$(date +%Y%m%d-%H%M%S).log"

log() {
    echo "$1" >>"$LOG_FILE"
}

fail() {
    echo "$APP_NAME: $1" >&2
    log "ERROR: $1"
    if command -v zenity >/dev/null 2>&1; then
        zenity --error --title="Claude Desktop" --text="$1" 2>/dev/null || true
    elif command -v notify-send >/dev/null 2>&1; then
        notify-send "Claude Desktop" "$1" 2>/dev/null || true
    fi
    exit 1
}

if [ -z "${DISPLAY:-}" ] && [ -z "${WAYLAND_DISPLAY:-}" ]; then
    echo "$APP_NAME: no display environment (neither DISPLAY nor WAYLAND_DISPLAY is set)" >&2
    log "ERROR: no display environment"
    exit 1
fi

ELECTRON="$APP_DIR/node_modules/electron/dist/electron"
if [ ! -x "$ELECTRON" ]; then
    ELECTRON="$(command -v electron 2>/dev/null || true)"
fi
if [ -z "$ELECTRON" ] || [ ! -x "$ELECTRON" ]; then
    fail "Electron runtime not found: no bundled copy under $APP_DIR and none on PATH"
fi

set --
if [ "${CLAUDE_USE_WAYLAND:-0}" = "1" ]; then
    log "mode: native wayland (global hotkeys unavailable)"
    set -- "$@" --ozone-platform=wayland --enable-features=UseOzonePlatform,WaylandWindowDecorations
else
    log "mode: x11 compatibility"
    set -- "$@" --ozone-platform=x11
fi
set -- "$@" "$APP_DIR/app.asar"

log "exec: $ELECTRON $*"
exec "$ELECTRON" "$@" >>"$LOG_FILE" 2>&1
`))

// writeLauncher renders the launcher script into the staging bin directory.
func writeLauncher(path string, bctx *build.Context) error {
	var buf bytes.Buffer
	if err := launcherTemplate.Execute(&buf, bctx); err != nil {
		return err
	}
	return renameio.WriteFile(path, buf.Bytes(), 0o755)
}
