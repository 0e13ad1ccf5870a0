package models

import "fmt"

// ReferenceType represents what a project reference points at.
type ReferenceType string

const (
	// ReferenceAssembly is a path to a prebuilt binary
	ReferenceAssembly ReferenceType = "assembly"

	// ReferenceProject names another project in the same workspace
	ReferenceProject ReferenceType = "project"

	// ReferenceGAC is a system library that is never deployed
	ReferenceGAC ReferenceType = "gac"
)

// IsValid checks if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceAssembly, ReferenceProject, ReferenceGAC:
		return true
	default:
		return false
	}
}

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// ParseReferenceType parses a string into a ReferenceType
func ParseReferenceType(s string) (ReferenceType, error) {
	rt := ReferenceType(s)
	if !rt.IsValid() {
		return "", fmt.Errorf("invalid reference type: %s (must be assembly, project, or gac)", s)
	}
	return rt, nil
}

// ProjectReference is an outbound reference of a project.
//
// Project references hold the referenced project's name, not a pointer: the
// target is looked up in the workspace every time it is needed, because it
// may not be loaded yet or may be reloaded.
type ProjectReference struct {
	Type      ReferenceType `json:"type"`
	Reference string        `json:"reference"`
	LocalCopy bool          `json:"localCopy"`
}

// NewProjectReference creates a reference. Project and assembly references
// default to local copy, GAC references never copy.
func NewProjectReference(refType ReferenceType, target string) *ProjectReference {
	return &ProjectReference{
		Type:      refType,
		Reference: target,
		LocalCopy: refType != ReferenceGAC,
	}
}

// String returns a "type:target" label
func (r *ProjectReference) String() string {
	return fmt.Sprintf("%s:%s", r.Type, r.Reference)
}
