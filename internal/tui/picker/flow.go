// Package picker asks the user which project and configuration to work on.
package picker

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	huh "github.com/charmbracelet/huh"
	"github.com/jakoblorz/go-combine/internal/project"
	"github.com/jakoblorz/go-combine/internal/tui"
)

// Flow orchestrates the selection using huh forms.
type Flow struct {
	projects []*project.Project
	theme    *huh.Theme
}

// Result captures the successful output of the flow.
type Result struct {
	Project       string
	Configuration string
}

// NewFlow constructs a Flow over projects.
func NewFlow(projects []*project.Project) *Flow {
	return &Flow{
		projects: projects,
		theme:    tui.NewHuhTheme(),
	}
}

// Run executes the forms sequentially; returns nil result on user abort.
func (f *Flow) Run() (*Result, error) {
	if len(f.projects) == 0 {
		return nil, fmt.Errorf("no projects to choose from")
	}

	name, err := f.selectProject()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	var selected *project.Project
	for _, p := range f.projects {
		if p.Name() == name {
			selected = p
			break
		}
	}
	if selected == nil {
		return nil, fmt.Errorf("project %s not found", name)
	}

	cfg, err := f.selectConfiguration(selected)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, err
	}

	return &Result{Project: name, Configuration: cfg}, nil
}

func (f *Flow) selectProject() (string, error) {
	if len(f.projects) == 1 {
		return f.projects[0].Name(), nil
	}

	selected := ""

	keyMap := huh.NewDefaultKeyMap()
	keyMap.Select.Filter.SetEnabled(true)
	keyMap.Select.Submit.SetKeys("enter", " ")
	keyMap.Select.Submit.SetHelp("space/enter", "continue")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(projectOptions(f.projects)...).
				Value(&selected),
		).
			Title("Project Selection").
			Description("Select the project to build."),
	).
		WithTheme(f.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen()).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		return "", err
	}

	return selected, nil
}

func (f *Flow) selectConfiguration(p *project.Project) (string, error) {
	opts := configurationOptions(p)
	if len(opts) <= 1 {
		return p.ActiveConfigurationName(), nil
	}

	selected := p.ActiveConfigurationName()

	keyMap := huh.NewDefaultKeyMap()
	keyMap.Select.Filter.SetEnabled(false)
	keyMap.Select.Prev.SetEnabled(true)
	keyMap.Select.Submit.SetKeys("enter", " ")
	keyMap.Select.Submit.SetHelp("space/enter", "continue")

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Options(opts...).
				Value(&selected),
		).
			Title("Configuration").
			Description(fmt.Sprintf("Applies to %s", p.Name())),
	).
		WithTheme(f.theme).
		WithShowHelp(true).
		WithProgramOptions(tea.WithAltScreen()).
		WithKeyMap(keyMap)

	if err := form.Run(); err != nil {
		return "", err
	}

	return selected, nil
}

// projectOptions labels every project with its build state, stale projects
// first.
func projectOptions(projects []*project.Project) []huh.Option[string] {
	var stale, current []huh.Option[string]
	for _, p := range projects {
		if p.NeedsBuilding() {
			stale = append(stale, huh.NewOption(p.Name()+"  (needs build)", p.Name()))
		} else {
			current = append(current, huh.NewOption(p.Name()+"  (up to date)", p.Name()))
		}
	}
	return append(stale, current...)
}

func configurationOptions(p *project.Project) []huh.Option[string] {
	active := p.ActiveConfigurationName()
	var opts []huh.Option[string]
	for _, cfg := range p.Configurations() {
		opt := huh.NewOption(cfg.Name, cfg.Name)
		if cfg.Name == active {
			opt = opt.Selected(true)
		}
		opts = append(opts, opt)
	}
	return opts
}
