package models

// ProjectStatus is the machine-readable state of a project as printed by
// 'combine status --format json'.
type ProjectStatus struct {
	// Project is the project name
	Project string `json:"project"`

	// ProjectPath is the absolute path to the project directory
	ProjectPath string `json:"projectPath"`

	// Type is the project type
	Type ProjectType `json:"type"`

	// Configuration is the active configuration name
	Configuration string `json:"configuration"`

	// OutputFile is the expanded output path (empty if none configured)
	OutputFile string `json:"outputFile"`

	// HasOutput indicates the output file exists
	HasOutput bool `json:"hasOutput"`

	// NeedsBuilding is the result of the dirty-state check
	NeedsBuilding bool `json:"needsBuilding"`

	// Files is the number of files that feed the build
	Files int `json:"files"`

	// References lists outbound references as "type:target"
	References []string `json:"references"`
}
