package models

// Configuration is a named build profile.
//
// String fields are templates: they are expanded with text/template and the
// sprig function map before use, with the project name, configuration name,
// base directory, output directory and output file available as fields.
type Configuration struct {
	// Name is the configuration identifier (e.g. "Debug")
	Name string `json:"name"`

	// OutputDirectory is where build output is written, relative to the project
	OutputDirectory string `json:"outputDirectory"`

	// OutputName is the file name of the primary build output
	OutputName string `json:"outputName"`

	// BuildCommand replaces the project type's compiler when set
	BuildCommand string `json:"buildCommand,omitempty"`

	// ExecuteCommand replaces running the output file when set
	ExecuteCommand string `json:"executeCommand,omitempty"`

	// Arguments are passed to the program on execution
	Arguments []string `json:"arguments,omitempty"`

	// Env is added to the environment of build and execute commands
	Env map[string]string `json:"env,omitempty"`
}

// Clone returns a deep copy of the configuration.
func (c *Configuration) Clone() *Configuration {
	clone := *c
	clone.Arguments = append([]string(nil), c.Arguments...)
	if c.Env != nil {
		clone.Env = make(map[string]string, len(c.Env))
		for k, v := range c.Env {
			clone.Env[k] = v
		}
	}
	return &clone
}

// DefaultConfigurations returns the Debug and Release profiles used when a
// project does not declare any.
func DefaultConfigurations() []*Configuration {
	return []*Configuration{
		{
			Name:            "Debug",
			OutputDirectory: "bin/{{ .Configuration | lower }}",
			OutputName:      "{{ .Project }}",
		},
		{
			Name:            "Release",
			OutputDirectory: "bin/{{ .Configuration | lower }}",
			OutputName:      "{{ .Project }}",
		},
	}
}
