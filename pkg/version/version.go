package version

import "fmt"

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/ieee8021/tsn-cnc/pkg/version.Version=v1.0.0 \
//	  -X github.com/ieee8021/tsn-cnc/pkg/version.GitCommit=abc1234"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns a human-readable summary of the build's version, commit,
// and build date.
func Info() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", Version, GitCommit, BuildDate)
}
