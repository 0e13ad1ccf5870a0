package project

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jakoblorz/go-combine/internal/models"
)

// TemplateData is available to configuration templates.
type TemplateData struct {
	Project         string
	Configuration   string
	BaseDir         string
	OutputDirectory string
	OutputFile      string
}

// ResolvedConfiguration is a configuration with every template expanded and
// every path made absolute.
type ResolvedConfiguration struct {
	Name            string
	OutputDirectory string
	OutputFile      string
	BuildCommand    string
	ExecuteCommand  string
	Arguments       []string
	Env             map[string]string
}

// EnvList returns Env as KEY=VALUE pairs, sorted by key.
func (c *ResolvedConfiguration) EnvList() []string {
	out := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Configurations returns the project configurations
func (p *Project) Configurations() []*models.Configuration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*models.Configuration, len(p.configurations))
	copy(out, p.configurations)
	return out
}

// AddConfiguration adds cfg, replacing a configuration with the same name.
// The first configuration added becomes active.
func (p *Project) AddConfiguration(cfg *models.Configuration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, c := range p.configurations {
		if c.Name == cfg.Name {
			p.configurations[i] = cfg
			return
		}
	}
	p.configurations = append(p.configurations, cfg)
	if p.active == "" {
		p.active = cfg.Name
	}
}

// ActiveConfigurationName returns the name of the active configuration,
// which may be empty.
func (p *Project) ActiveConfigurationName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.active
}

// ActiveConfiguration returns the active configuration.
func (p *Project) ActiveConfiguration() (*models.Configuration, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.active == "" {
		return nil, fmt.Errorf("project %s: %w", p.name, ErrNoActiveConfiguration)
	}
	for _, c := range p.configurations {
		if c.Name == p.active {
			return c, nil
		}
	}
	return nil, fmt.Errorf("project %s: %w: configuration %q does not exist", p.name, ErrNoActiveConfiguration, p.active)
}

// SetActiveConfiguration selects the configuration used for builds.
func (p *Project) SetActiveConfiguration(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, c := range p.configurations {
		if c.Name == name {
			p.active = name
			return nil
		}
	}
	return fmt.Errorf("project %s: %w: %s", p.name, ErrConfigurationNotFound, name)
}

// ResolveConfiguration expands the active configuration.
func (p *Project) ResolveConfiguration() (*ResolvedConfiguration, error) {
	cfg, err := p.ActiveConfiguration()
	if err != nil {
		return nil, err
	}

	data := TemplateData{
		Project:       p.Name(),
		Configuration: cfg.Name,
		BaseDir:       p.BaseDir(),
	}
	resolved := &ResolvedConfiguration{Name: cfg.Name}

	outDir, err := expand("output_directory", cfg.OutputDirectory, data)
	if err != nil {
		return nil, err
	}
	if outDir == "" {
		outDir = "."
	}
	resolved.OutputDirectory = p.absPath(outDir)
	data.OutputDirectory = resolved.OutputDirectory

	outName, err := expand("output_name", cfg.OutputName, data)
	if err != nil {
		return nil, err
	}
	if outName != "" {
		resolved.OutputFile = filepath.Join(resolved.OutputDirectory, outName)
	}
	data.OutputFile = resolved.OutputFile

	if resolved.BuildCommand, err = expand("build_command", cfg.BuildCommand, data); err != nil {
		return nil, err
	}
	if resolved.ExecuteCommand, err = expand("execute_command", cfg.ExecuteCommand, data); err != nil {
		return nil, err
	}

	for i, arg := range cfg.Arguments {
		expanded, err := expand(fmt.Sprintf("arguments[%d]", i), arg, data)
		if err != nil {
			return nil, err
		}
		resolved.Arguments = append(resolved.Arguments, expanded)
	}

	if len(cfg.Env) > 0 {
		resolved.Env = make(map[string]string, len(cfg.Env))
		for k, v := range cfg.Env {
			expanded, err := expand("env."+k, v, data)
			if err != nil {
				return nil, err
			}
			resolved.Env[k] = expanded
		}
	}

	return resolved, nil
}

// OutputDirectory returns the expanded output directory of the active
// configuration.
func (p *Project) OutputDirectory() (string, error) {
	resolved, err := p.ResolveConfiguration()
	if err != nil {
		return "", err
	}
	return resolved.OutputDirectory, nil
}

// OutputFile returns the primary build output, or "" when the project has
// no active configuration or no output name.
func (p *Project) OutputFile() string {
	resolved, err := p.ResolveConfiguration()
	if err != nil {
		return ""
	}
	return resolved.OutputFile
}

func expand(name, text string, data TemplateData) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to expand %s template: %w", name, err)
	}
	return buf.String(), nil
}
