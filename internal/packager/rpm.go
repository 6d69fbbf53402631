package packager

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/google/renameio/v2"

	"claudepack/internal/build"
	"claudepack/internal/fileutil"
	"claudepack/internal/logging"
)

// AutoReqProv is off because the bundled Electron payload would otherwise
// drag in provides/requires scanning over thousands of vendored files.
var rpmSpecTemplate = template.Must(template.New("spec").Parse(`Name: {{.Name}}
Version: {{.Version}}
Release: {{.Release}}
Summary: {{.Summary}}
License: {{.License}}
URL: {{.Homepage}}
BuildArch: {{.Arch}}
AutoReqProv: no

%description
{{.Summary}}

%install
cp -a {{.InstallRoot}}/. %{buildroot}/

%post
{{.PostInstall}}
%files
{{- range .Files}}
{{.}}
{{- end}}

%changelog
* {{.Date}} {{.Maintainer}} - {{.Version}}-{{.Release}}
- Repackaged the upstream Windows build for Linux
`))

type rpmSpecData struct {
	Name        string
	Version     string
	Release     string
	Summary     string
	License     string
	Homepage    string
	Arch        string
	Maintainer  string
	InstallRoot string
	PostInstall string
	Date        string
	Files       []string
}

// writeRPMSpec renders the spec with a full %files manifest walked from the
// staging tree. The changelog date comes from the injected clock so repeated
// builds of the same inputs produce identical specs.
func writeRPMSpec(path string, bctx *build.Context, now time.Time) error {
	files, err := manifestFiles(bctx.InstallRoot())
	if err != nil {
		return err
	}
	post, err := postInstallBody(bctx)
	if err != nil {
		return err
	}

	data := rpmSpecData{
		Name:        bctx.PackageName,
		Version:     bctx.Version,
		Release:     bctx.Release,
		Summary:     bctx.Description,
		License:     bctx.License,
		Homepage:    bctx.Homepage,
		Arch:        string(bctx.Arch),
		Maintainer:  bctx.Maintainer,
		InstallRoot: bctx.InstallRoot(),
		PostInstall: post,
		Date:        now.Format("Mon Jan 02 2006"),
		Files:       files,
	}

	var buf bytes.Buffer
	if err := rpmSpecTemplate.Execute(&buf, data); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return renameio.WriteFile(path, buf.Bytes(), 0o644)
}

// manifestFiles lists every staged file as an absolute install path for the
// %files section.
func manifestFiles(installRoot string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(installRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(installRoot, path)
		if err != nil {
			return err
		}
		files = append(files, "/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("staging tree %s is empty", installRoot)
	}
	return files, nil
}

// buildRPM runs rpmbuild against the staging tree and moves the produced
// artifact to its canonical name in the work directory.
func (p *Packager) buildRPM(ctx context.Context, logger *slog.Logger, bctx *build.Context, desc Descriptor) error {
	topDir := filepath.Join(bctx.StagingDir, "rpmbuild")
	buildRoot := filepath.Join(topDir, "BUILDROOT",
		fmt.Sprintf("%s-%s-%s.%s", bctx.PackageName, bctx.Version, bctx.Release, bctx.Arch))

	logger.Info("invoking rpmbuild", logging.String("spec", desc.SpecPath))
	if err := p.rpm.Build(ctx, desc.SpecPath, topDir, buildRoot, p.toolLogger(logger, "rpmbuild")); err != nil {
		return wrapBuild("rpmbuild", desc.SpecPath, err)
	}

	artifact, err := p.rpm.LocateArtifact(topDir, string(bctx.Arch), bctx.ArtifactName())
	if err != nil {
		return wrapArtifact(bctx.ArtifactName(), err)
	}
	if base := filepath.Base(artifact); base != bctx.ArtifactName() {
		logger.Warn("rpmbuild produced an unexpected artifact name",
			logging.String("got", base),
			logging.String("expected", bctx.ArtifactName()),
		)
	}

	final := filepath.Join(bctx.WorkDir, bctx.ArtifactName())
	if err := fileutil.CopyFileVerified(artifact, final); err != nil {
		return wrapArtifact(strings.Join([]string{artifact, final}, " -> "), err)
	}
	return nil
}
