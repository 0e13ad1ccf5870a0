package filesystem

import (
	"io/fs"
	"time"
)

// FileSystem provides an abstraction over file operations for testability.
//
// The build core only ever touches the disk through this interface: timestamps
// for the dirty-state check, MkdirAll for output directories, and copy/remove
// for reference deployment.
type FileSystem interface {
	// File operations
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error
	Rename(oldPath, newPath string) error

	// Directory operations
	ReadDir(path string) ([]fs.DirEntry, error)
	MkdirAll(path string, perm fs.FileMode) error

	// Path operations
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) bool
	Getwd() (string, error)

	// Timestamps
	Chtimes(path string, atime, mtime time.Time) error

	// File walking
	WalkDir(root string, fn fs.WalkDirFunc) error

	// Glob patterns
	Glob(pattern string) ([]string, error)
}
