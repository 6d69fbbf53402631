package config

const (
	defaultWorkDir   = "~/.cache/claudepack/work"
	defaultOutputDir = "~/claudepack"
	defaultLogDir    = "~/.local/share/claudepack/logs"

	defaultPackageName        = "claude-desktop"
	defaultPackageVersion     = "1.0.0"
	defaultPackageRelease     = "1"
	defaultPackageMaintainer  = "claudepack"
	defaultPackageDescription = "Claude Desktop for Linux, repackaged from the official Windows installer"
	defaultPackageLicense     = "Proprietary"
	defaultPackageHomepage    = "https://claude.ai"

	defaultDownloadURLx8664   = "https://storage.googleapis.com/osprey-downloads-c02f6a0d-347c-492b-a752-3e0651722e97/nest-win-x64/Claude-Setup-x64.exe"
	defaultDownloadURLaarch64 = "https://storage.googleapis.com/osprey-downloads-c02f6a0d-347c-492b-a752-3e0651722e97/nest-win-arm64/Claude-Setup-arm64.exe"

	defaultSevenZip     = "7z"
	defaultRPMBuild     = "rpmbuild"
	defaultAppImageTool = "appimagetool"

	defaultHistoryEnabled = true
	defaultHistoryPath    = "~/.local/share/claudepack/history.db"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Package: Package{
			Name:        defaultPackageName,
			Version:     defaultPackageVersion,
			Release:     defaultPackageRelease,
			Maintainer:  defaultPackageMaintainer,
			Description: defaultPackageDescription,
			License:     defaultPackageLicense,
			Homepage:    defaultPackageHomepage,
		},
		Download: Download{
			URLx8664:   defaultDownloadURLx8664,
			URLaarch64: defaultDownloadURLaarch64,
		},
		Tools: Tools{
			SevenZip:     defaultSevenZip,
			RPMBuild:     defaultRPMBuild,
			AppImageTool: defaultAppImageTool,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
