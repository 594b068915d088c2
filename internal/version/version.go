package version

import "fmt"

var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GoVersion = "unknown"
)

func SetInfo(v, bt, gc, gv string) {
	if v != "" {
		Version = v
	}
	if bt != "" {
		BuildTime = bt
	}
	if gc != "" {
		GitCommit = gc
	}
	if gv != "" {
		GoVersion = gv
	}
}

// UserAgent is sent with every Discord REST request.
func UserAgent() string {
	return fmt.Sprintf("DiscordBot (https://github.com/aatumaykin/janitor, %s)", Version)
}

func Summary() string {
	return fmt.Sprintf("janitor %s (commit %s, built %s, %s)", Version, GitCommit, BuildTime, GoVersion)
}
