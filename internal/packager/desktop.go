package packager

import (
	"bytes"
	"text/template"

	"github.com/google/renameio/v2"

	"claudepack/internal/build"
)

// desktopTemplate registers the application with the desktop environment,
// including the x-scheme-handler MIME type claude:// links activate through.
var desktopTemplate = template.Must(template.New("desktop").Parse(`[Desktop Entry]
Name=Claude
Comment={{.Description}}
GenericName=AI Assistant
Exec={{.PackageName}} %u
Icon={{.PackageName}}
Type=Application
Terminal=false
Categories=Office;Utility;Network;
MimeType=x-scheme-handler/claude;
StartupWMClass=Claude
`))

// postInstallTemplate grants the Chromium sandbox helper its setuid root
// bits. Every step is best effort: the application still runs, with reduced
// sandboxing, when the helper is missing or the permissions cannot be set.
var postInstallTemplate = template.Must(template.New("postinstall").Parse(`#!/bin/sh

SANDBOX="/usr/lib/{{.PackageName}}/chrome-sandbox"
if [ -f "$SANDBOX" ]; then
    chown root:root "$SANDBOX" || echo "warning: could not chown $SANDBOX" >&2
    chmod 4755 "$SANDBOX" || echo "warning: could not set setuid on $SANDBOX" >&2
else
    echo "warning: $SANDBOX not found, continuing without the sandbox helper" >&2
fi
exit 0
`))

func writeDesktopEntry(path string, bctx *build.Context) error {
	var buf bytes.Buffer
	if err := desktopTemplate.Execute(&buf, bctx); err != nil {
		return err
	}
	return renameio.WriteFile(path, buf.Bytes(), 0o644)
}

func writePostInstall(path string, bctx *build.Context) error {
	var buf bytes.Buffer
	if err := postInstallTemplate.Execute(&buf, bctx); err != nil {
		return err
	}
	return renameio.WriteFile(path, buf.Bytes(), 0o755)
}

// postInstallBody renders the hook without its shebang line for embedding in
// the RPM %post scriptlet.
func postInstallBody(bctx *build.Context) (string, error) {
	var buf bytes.Buffer
	if err := postInstallTemplate.Execute(&buf, bctx); err != nil {
		return "", err
	}
	body := buf.String()
	if idx := bytes.IndexByte(buf.Bytes(), '\n'); idx >= 0 {
		body = body[idx+1:]
	}
	return body, nil
}
