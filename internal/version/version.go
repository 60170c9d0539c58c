// Package version reports which cymirs build is running. The version is
// recorded with every run in the history database and exported as the
// cymirs_build_info metric, so results can be traced back to a binary.
package version

import (
	_ "embed"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionFile string

// Set with -ldflags "-X github.com/leefowlercu/cymirs/internal/version.gitCommit=..."
var (
	gitCommit string
	buildDate string
)

const unknown = "unknown"

// Info describes a cymirs build.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// String formats Info for the version command.
func (i Info) String() string {
	return fmt.Sprintf("Version:    %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s",
		i.Version, i.Commit, i.BuildDate, i.GoVersion)
}

// Short returns the version with its commit, e.g. "0.1.0 (abc1234)".
func (i Info) Short() string {
	if i.Commit == unknown {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, i.Commit)
}

// Get returns the running build's Info.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(gitCommit, buildDate, bi)
}

// resolve prefers linker-injected values and falls back to the VCS stamps
// go build records in bi.
func resolve(commit, date string, bi *debug.BuildInfo) Info {
	info := Info{
		Version:   strings.TrimSpace(versionFile),
		Commit:    commit,
		BuildDate: date,
		GoVersion: runtime.Version(),
	}

	var revision, vcsTime string
	var dirty bool
	if bi != nil {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.time":
				vcsTime = s.Value
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
	}

	if info.Commit == "" && revision != "" {
		if len(revision) > 7 {
			revision = revision[:7]
		}
		if dirty {
			revision += "-dirty"
		}
		info.Commit = revision
	}
	if info.BuildDate == "" {
		info.BuildDate = vcsTime
	}

	if info.Commit == "" {
		info.Commit = unknown
	}
	if info.BuildDate == "" {
		info.BuildDate = unknown
	}
	return info
}
