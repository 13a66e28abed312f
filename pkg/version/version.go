package version

var (
	// Version is set at build time with -ldflags.
	Version = "v0.0.0-dev"
	// GitCommit is set at build time with -ldflags.
	GitCommit = "unknown"
)

// Info is the version reported by the daemon.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
}

func Get() Info {
	return Info{Version: Version, GitCommit: GitCommit}
}
