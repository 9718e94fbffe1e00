package build

import (
	"fmt"
	"strings"
)

// Target is one os/arch pair a release binary is compiled for.
type Target struct {
	OS   string
	Arch string
}

// ParseTarget parses an "os/arch" pair such as "linux/amd64".
func ParseTarget(spec string) (Target, error) {
	osPart, archPart, found := strings.Cut(spec, "/")
	if !found || osPart == "" || archPart == "" || strings.Contains(archPart, "/") {
		return Target{}, fmt.Errorf("invalid target %q: expected os/arch", spec)
	}
	return Target{OS: osPart, Arch: archPart}, nil
}

// ParseTargets parses a target matrix, failing on the first invalid entry.
func ParseTargets(specs []string) ([]Target, error) {
	targets := make([]Target, 0, len(specs))
	for _, spec := range specs {
		target, err := ParseTarget(spec)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func (t Target) String() string {
	return t.OS + "/" + t.Arch
}

// ExeSuffix returns the binary suffix for the target platform.
func (t Target) ExeSuffix() string {
	if t.OS == "windows" {
		return ".exe"
	}
	return ""
}

// ArtifactName returns the canonical binary name for a project build,
// project_version_os_arch with an .exe suffix on windows.
func ArtifactName(project, version string, target Target) string {
	return fmt.Sprintf("%s_%s_%s_%s%s", project, version, target.OS, target.Arch, target.ExeSuffix())
}
