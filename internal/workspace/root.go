package workspace

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jakoblorz/go-combine/internal/filesystem"
	"github.com/jakoblorz/go-combine/internal/projectfile"
)

// rootMarkers identify a workspace root, in order of precedence.
var rootMarkers = []string{projectfile.WorkspaceFileName, "go.work"}

// RootLocator proposes a workspace root before the directories above the
// working directory are searched.
type RootLocator interface {
	// Locate returns the root directory, or "" when it has no opinion.
	Locate() (string, error)
}

// GoWorkLocator asks the go command for the active go.work file, so GOWORK
// overrides work the same way they do for go build.
type GoWorkLocator struct {
	fs  filesystem.FileSystem
	run func(dir string) ([]byte, error)
}

// NewGoWorkLocator creates a locator running 'go env GOWORK'.
func NewGoWorkLocator(fs filesystem.FileSystem) *GoWorkLocator {
	return &GoWorkLocator{fs: fs, run: goEnvGOWORK}
}

func (l *GoWorkLocator) Locate() (string, error) {
	cwd, err := l.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	out, err := l.run(cwd)
	if err != nil {
		return "", err
	}

	goWork := normalizeGoWork(string(out))
	if goWork == "" {
		return "", nil
	}
	return filepath.Dir(goWork), nil
}

func goEnvGOWORK(dir string) ([]byte, error) {
	cmd := exec.Command("go", "env", "GOWORK")
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("go env failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("go env failed: %w", err)
	}
	return out, nil
}

// normalizeGoWork maps the disabled forms of GOWORK to "".
func normalizeGoWork(goWork string) string {
	goWork = strings.TrimSpace(goWork)
	if goWork == "" || strings.EqualFold(goWork, "off") || goWork == os.DevNull || strings.EqualFold(goWork, "NUL") {
		return ""
	}
	return filepath.Clean(goWork)
}

// findRootUp returns the nearest directory at or above startDir containing
// one of the root markers.
func findRootUp(fs filesystem.FileSystem, startDir string) (string, bool) {
	dir := filepath.Clean(startDir)

	for {
		for _, marker := range rootMarkers {
			if fs.Exists(filepath.Join(dir, marker)) {
				return dir, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
