// Package version contains all identifiable versioning info for
// describing the testpiper project.
package version

import (
	"fmt"

	"github.com/blang/semver"
)

var (
	projectName = "github.com/nandakiran-r/TestPiper"
	version     = "unknown"
	commit      = "unknown"
)

var Version = VersionContext{
	Name:    projectName,
	Version: version,
	Commit:  commit,
}

type VersionContext struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func (vc *VersionContext) String() string {
	return fmt.Sprintf("%s <commit: %s>", vc.Version, vc.Commit)
}

// Semver parses the injected version string. Builds without version
// metadata (dev builds, go run) report an error here.
func (vc *VersionContext) Semver() (semver.Version, error) {
	v, err := semver.ParseTolerant(vc.Version)
	if err != nil {
		return semver.Version{}, fmt.Errorf("version %q is not semver: %v", vc.Version, err)
	}
	return v, nil
}
