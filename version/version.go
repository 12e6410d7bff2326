package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = ""
	Branch    = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Branch    string `json:"branch,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get returns build information. Values missing from ldflags are filled
// from the module build info embedded by the Go toolchain.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Branch:    Branch,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// Short returns "version-commit" with the commit cut to seven characters.
func (i Info) Short() string {
	if i.Commit == "" {
		return i.Version
	}
	commit := i.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if i.Dirty {
		commit += "-dirty"
	}
	return i.Version + "-" + commit
}

// String renders the one-line form printed by "longscribe version".
func (i Info) String() string {
	var b strings.Builder
	b.WriteString(i.Short())
	if i.Branch != "" && i.Branch != "main" && i.Branch != "master" {
		fmt.Fprintf(&b, " (%s)", i.Branch)
	}
	if i.BuildTime != "" {
		fmt.Fprintf(&b, ", built at %s", i.BuildTime)
	}
	fmt.Fprintf(&b, ", %s", i.GoVersion)
	return b.String()
}

// Full returns the version line used by the root command.
func Full() string {
	return "longscribe " + Get().String()
}
