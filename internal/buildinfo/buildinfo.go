// Package buildinfo holds build-time metadata injected via -ldflags.
//
//	-X github.com/garyellow/itdept-site/internal/buildinfo.Version=v1.2.0
//	-X github.com/garyellow/itdept-site/internal/buildinfo.Commit=$(git rev-parse HEAD)
//	-X github.com/garyellow/itdept-site/internal/buildinfo.BuildDate=$(date -u +%FT%TZ)
package buildinfo

// Build metadata. Empty values mean a local (non-release) build.
var (
	Version   = ""
	Commit    = ""
	BuildDate = ""
)

// Release returns the identifier reported to Sentry and /livez.
// It prefers the version tag and falls back to the short commit, then "dev".
func Release() string {
	if Version != "" {
		return Version
	}
	if len(Commit) >= 7 {
		return Commit[:7]
	}
	if Commit != "" {
		return Commit
	}
	return "dev"
}
