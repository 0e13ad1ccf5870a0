package models

import "fmt"

// BuildAction tells the build what to do with a project file.
type BuildAction string

const (
	BuildActionCompile          BuildAction = "compile"
	BuildActionFileCopy         BuildAction = "copy"
	BuildActionExclude          BuildAction = "exclude"
	BuildActionEmbeddedResource BuildAction = "embed"
	BuildActionNothing          BuildAction = "none"
)

// IsValid checks if the build action is valid
func (a BuildAction) IsValid() bool {
	switch a {
	case BuildActionCompile, BuildActionFileCopy, BuildActionExclude, BuildActionEmbeddedResource, BuildActionNothing:
		return true
	default:
		return false
	}
}

// String returns the string representation of BuildAction
func (a BuildAction) String() string {
	return string(a)
}

// ParseBuildAction parses a string into a BuildAction. Empty means compile.
func ParseBuildAction(s string) (BuildAction, error) {
	if s == "" {
		return BuildActionCompile, nil
	}
	ba := BuildAction(s)
	if !ba.IsValid() {
		return "", fmt.Errorf("invalid build action: %s (must be compile, copy, exclude, embed, or none)", s)
	}
	return ba, nil
}

// ProjectFile is a file owned by exactly one project.
type ProjectFile struct {
	// Path is the absolute path to the file
	Path string `json:"path"`

	// RelativePath is Path relative to the project base directory
	RelativePath string `json:"relativePath"`

	// BuildAction decides how the build treats the file
	BuildAction BuildAction `json:"buildAction"`
}

// IsBuildInput reports whether changes to the file make the project stale.
func (f *ProjectFile) IsBuildInput() bool {
	return f.BuildAction != BuildActionExclude
}
