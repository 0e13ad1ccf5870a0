package models

import "fmt"

// ProjectType represents the kind of project.
//
// The type selects the default compiler hook when a configuration does not
// carry an explicit build command.
type ProjectType string

const (
	ProjectTypeGo      ProjectType = "go"
	ProjectTypeGeneric ProjectType = "generic"
)

// IsValid checks if the project type is known
func (t ProjectType) IsValid() bool {
	switch t {
	case ProjectTypeGo, ProjectTypeGeneric:
		return true
	default:
		return false
	}
}

// ParseProjectType parses a string into a ProjectType. Empty means generic.
func ParseProjectType(s string) (ProjectType, error) {
	if s == "" {
		return ProjectTypeGeneric, nil
	}
	pt := ProjectType(s)
	if !pt.IsValid() {
		return "", fmt.Errorf("invalid project type: %s (must be go or generic)", s)
	}
	return pt, nil
}
