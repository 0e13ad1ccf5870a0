package projectfile

// hclProjectFile is the top-level structure of a project.hcl file.
type hclProjectFile struct {
	Project *hclProject `hcl:"project,block"`
}

type hclProject struct {
	Name                string              `hcl:"name,label"`
	Type                string              `hcl:"type,optional"`
	Description         string              `hcl:"description,optional"`
	Namespace           string              `hcl:"namespace,optional"`
	ActiveConfiguration string              `hcl:"active_configuration,optional"`
	Files               []*hclFile          `hcl:"file,block"`
	References          []*hclReference     `hcl:"reference,block"`
	Configurations      []*hclConfiguration `hcl:"configuration,block"`
}

type hclFile struct {
	Path   string `hcl:"path,label"`
	Action string `hcl:"action,optional"`
}

type hclReference struct {
	Type      string `hcl:"type,label"`
	Target    string `hcl:"target,label"`
	LocalCopy *bool  `hcl:"local_copy,optional"`
}

type hclConfiguration struct {
	Name            string            `hcl:"name,label"`
	OutputDirectory string            `hcl:"output_directory,optional"`
	OutputName      string            `hcl:"output_name,optional"`
	BuildCommand    string            `hcl:"build_command,optional"`
	ExecuteCommand  string            `hcl:"execute_command,optional"`
	Arguments       []string          `hcl:"arguments,optional"`
	Env             map[string]string `hcl:"env,optional"`
}

// hclWorkspaceFile is the structure of combine.hcl.
type hclWorkspaceFile struct {
	Name     string   `hcl:"name,optional"`
	Projects []string `hcl:"projects,optional"`
}
