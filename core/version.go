package core

// Build metadata, injected with:
//
//	go build -ldflags "-X imagestudio/core.Version=$(git describe --tags --always) \
//	  -X imagestudio/core.GitCommit=$(git rev-parse --short HEAD) \
//	  -X imagestudio/core.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" .
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// GetVersionInfo returns "<version> (commit <hash>, built <time>)".
func GetVersionInfo() string {
	return Version + " (commit " + GitCommit + ", built " + BuildTime + ")"
}
