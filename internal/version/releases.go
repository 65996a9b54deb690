// SPDX-License-Identifier: Apache-2.0

package version

import (
	_ "embed"
	"strings"
)

const (
	BuildModeRelease = "release"
	BuildModeDev     = "dev"

	unknownCommit = "unknown"
	shortCommit   = 7
)

// COMMIT and VERSION are rewritten by the release pipeline before building.
//
//go:embed COMMIT
var commit string

//go:embed VERSION
var number string

// buildMode is stamped into release binaries:
// -ldflags="-X 'github.com/hashgraph/pkgview/internal/version.buildMode=release'"
var buildMode string

// Commit returns the commit the binary was built from, abbreviated to seven characters.
func Commit() string {
	c := strings.TrimSpace(commit)
	switch {
	case c == "":
		return unknownCommit
	case len(c) > shortCommit && c != unknownCommit:
		return c[:shortCommit]
	default:
		return c
	}
}

func Number() string {
	return strings.TrimSpace(number)
}

// IsReleaseBuild reports whether buildMode was stamped as a release. Local builds are dev builds.
func IsReleaseBuild() bool {
	return strings.TrimSpace(buildMode) == BuildModeRelease
}

func BuildMode() string {
	if IsReleaseBuild() {
		return BuildModeRelease
	}
	return BuildModeDev
}
