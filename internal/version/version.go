// Package version holds build metadata injected via ldflags:
//
//	-X 'github.com/janekbaraniewski/credkit/internal/version.Version=...'
//	-X 'github.com/janekbaraniewski/credkit/internal/version.CommitHash=...'
package version

var (
	Version    = "dev"
	CommitHash = "unknown"
)

func String() string {
	return Version + " (" + CommitHash + ")"
}
