package compiler

import (
	"context"

	"github.com/jakoblorz/go-combine/internal/models"
	"github.com/jakoblorz/go-combine/internal/progress"
	"github.com/jakoblorz/go-combine/internal/project"
)

// ForType returns the default compiler for a project type.
func ForType(t models.ProjectType) project.Compiler {
	switch t {
	case models.ProjectTypeGo:
		return NewGoCompiler()
	default:
		return NopCompiler{}
	}
}

// Auto picks a compiler per build: the configuration's build command when it
// has one, otherwise the compiler registered for the project type.
type Auto struct {
	Command project.Compiler
	ByType  map[models.ProjectType]project.Compiler
}

// NewAuto creates an Auto compiler with the default compilers.
func NewAuto() *Auto {
	return &Auto{
		Command: NewCommandCompiler(),
		ByType: map[models.ProjectType]project.Compiler{
			models.ProjectTypeGo:      ForType(models.ProjectTypeGo),
			models.ProjectTypeGeneric: ForType(models.ProjectTypeGeneric),
		},
	}
}

func (a *Auto) Compile(ctx context.Context, p *project.Project, monitor progress.Monitor) (*models.CompilerResult, error) {
	return a.pick(p).Compile(ctx, p, monitor)
}

func (a *Auto) pick(p *project.Project) project.Compiler {
	if cfg, err := p.ActiveConfiguration(); err == nil && cfg.BuildCommand != "" {
		return a.Command
	}
	if c, ok := a.ByType[p.Type()]; ok {
		return c
	}
	return NopCompiler{}
}
