package projectfile

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/zclconf/go-cty/cty"
)

// Serialize renders the project as a project.hcl manifest. File paths are
// written relative to the project directory.
func Serialize(p *project.Project) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body().AppendNewBlock("project", []string{p.Name()}).Body()

	body.SetAttributeValue("type", cty.StringVal(string(p.Type())))
	setString(body, "description", p.Description())
	setString(body, "namespace", p.Namespace())
	setString(body, "active_configuration", p.ActiveConfigurationName())

	for _, file := range p.Files() {
		body.AppendNewline()
		fb := body.AppendNewBlock("file", []string{file.RelativePath}).Body()
		fb.SetAttributeValue("action", cty.StringVal(string(file.BuildAction)))
	}

	for _, ref := range p.References() {
		body.AppendNewline()
		rb := body.AppendNewBlock("reference", []string{string(ref.Type), ref.Reference}).Body()
		if ref.LocalCopy != models.NewProjectReference(ref.Type, ref.Reference).LocalCopy {
			rb.SetAttributeValue("local_copy", cty.BoolVal(ref.LocalCopy))
		}
	}

	for _, cfg := range p.Configurations() {
		body.AppendNewline()
		writeConfiguration(body.AppendNewBlock("configuration", []string{cfg.Name}).Body(), cfg)
	}

	return hclwrite.Format(f.Bytes())
}

func writeConfiguration(body *hclwrite.Body, cfg *models.Configuration) {
	setString(body, "output_directory", cfg.OutputDirectory)
	setString(body, "output_name", cfg.OutputName)
	setString(body, "build_command", cfg.BuildCommand)
	setString(body, "execute_command", cfg.ExecuteCommand)

	if len(cfg.Arguments) > 0 {
		args := make([]cty.Value, len(cfg.Arguments))
		for i, a := range cfg.Arguments {
			args[i] = cty.StringVal(a)
		}
		body.SetAttributeValue("arguments", cty.ListVal(args))
	}

	if len(cfg.Env) > 0 {
		keys := make([]string, 0, len(cfg.Env))
		for k := range cfg.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		env := make(map[string]cty.Value, len(keys))
		for _, k := range keys {
			env[k] = cty.StringVal(cfg.Env[k])
		}
		body.SetAttributeValue("env", cty.MapVal(env))
	}
}

func setString(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}

// Save writes the project manifest to the project's file path.
func Save(fs filesystem.FileSystem, p *project.Project) error {
	if err := fs.WriteFile(p.FilePath(), Serialize(p), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.FilePath(), err)
	}
	return nil
}
