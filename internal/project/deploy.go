package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/jakoblorz/go-combine/internal/ctxlog"
	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/models"
)

// GetReferenceDeployFiles lists the files that have to be copied next to the
// project output so it can run: the binaries of local-copy references (all
// non-GAC references when force is set), their debug symbols when present,
// and recursively the deploy files of referenced projects. The result is not
// de-duplicated.
func (p *Project) GetReferenceDeployFiles(force bool) []models.DeployFile {
	return p.referenceDeployFiles(force, map[*Project]bool{})
}

func (p *Project) referenceDeployFiles(force bool, visiting map[*Project]bool) []models.DeployFile {
	visiting[p] = true
	defer delete(visiting, p)

	var files []models.DeployFile
	for _, ref := range p.References() {
		if (ref.LocalCopy || force) && ref.Type != models.ReferenceGAC {
			for _, src := range p.referencedFileNames(ref) {
				files = append(files, models.DeployFile{
					SourcePath:         src,
					RelativeTargetPath: filepath.Base(src),
					TargetDirectory:    models.TargetProgramFiles,
				})
				for _, suffix := range models.DebugSymbolSuffixes {
					if p.fs.Exists(src + suffix) {
						files = append(files, models.DeployFile{
							SourcePath:         src + suffix,
							RelativeTargetPath: filepath.Base(src) + suffix,
							TargetDirectory:    models.TargetProgramFiles,
						})
					}
				}
			}
		}

		if ref.Type == models.ReferenceProject {
			rp := p.resolve(ref.Reference)
			if rp != nil && !visiting[rp] {
				files = append(files, rp.referenceDeployFiles(force, visiting)...)
			}
		}
	}
	return files
}

// referencedFileNames returns the binaries a reference stands for.
func (p *Project) referencedFileNames(ref *models.ProjectReference) []string {
	switch ref.Type {
	case models.ReferenceAssembly:
		return []string{p.absPath(ref.Reference)}
	case models.ReferenceProject:
		rp := p.resolve(ref.Reference)
		if rp == nil {
			return nil
		}
		if out := rp.OutputFile(); out != "" {
			return []string{out}
		}
		return nil
	default:
		return nil
	}
}

// GetDeployFiles lists everything needed to deploy the project: files with
// the copy action, local-copy references and the output file itself.
func (p *Project) GetDeployFiles() []models.DeployFile {
	var files []models.DeployFile
	for _, f := range p.Files() {
		if f.BuildAction == models.BuildActionFileCopy {
			files = append(files, models.DeployFile{
				SourcePath:         f.Path,
				RelativeTargetPath: f.RelativePath,
				TargetDirectory:    models.TargetProgramFiles,
			})
		}
	}

	files = append(files, p.GetReferenceDeployFiles(false)...)

	if out := p.OutputFile(); out != "" {
		files = append(files, models.DeployFile{
			SourcePath:         out,
			RelativeTargetPath: filepath.Base(out),
			TargetDirectory:    models.TargetProgramFiles,
		})
	}
	return files
}

// CopyReferencesToOutputPath copies the reference deploy files into the
// active output directory. Failures are logged and skipped. It returns the
// number of files copied.
func (p *Project) CopyReferencesToOutputPath(ctx context.Context, force bool) int {
	logger := ctxlog.FromContext(ctx)

	outDir, err := p.OutputDirectory()
	if err != nil {
		logger.Debug("skipping reference copy", "project", p.Name(), "error", err)
		return 0
	}

	copied := 0
	for _, df := range p.GetReferenceDeployFiles(force) {
		dst := filepath.Join(outDir, df.RelativeTargetPath)
		if dst == df.SourcePath {
			continue
		}
		if err := filesystem.CopyFile(p.fs, df.SourcePath, dst); err != nil {
			logger.Error("can't copy reference file",
				"project", p.Name(),
				"from", df.SourcePath,
				"to", dst,
				"error", err)
			continue
		}
		copied++
	}
	return copied
}

// CleanReferencesInOutputPath deletes copied reference files from the active
// output directory. Failures are logged and skipped.
func (p *Project) CleanReferencesInOutputPath(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	outDir, err := p.OutputDirectory()
	if err != nil {
		return
	}

	for _, df := range p.GetReferenceDeployFiles(true) {
		dst := filepath.Join(outDir, df.RelativeTargetPath)
		if dst == df.SourcePath || !p.fs.Exists(dst) {
			continue
		}
		if err := p.fs.Remove(dst); err != nil {
			logger.Error("can't delete reference file", "project", p.Name(), "path", dst, "error", err)
		}
	}
}

// Clean deletes the build output, its debug symbols and the copied reference
// files, and marks the project dirty.
func (p *Project) Clean(ctx context.Context) error {
	p.Invalidate()

	if out := p.OutputFile(); out != "" {
		for _, path := range append([]string{out}, withSuffixes(out)...) {
			if err := p.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to delete %s: %w", path, err)
			}
		}
	}

	p.CleanReferencesInOutputPath(ctx)
	return nil
}

func withSuffixes(path string) []string {
	out := make([]string, 0, len(models.DebugSymbolSuffixes))
	for _, suffix := range models.DebugSymbolSuffixes {
		out = append(out, path+suffix)
	}
	return out
}
