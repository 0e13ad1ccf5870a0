package filesystem

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// mockEpoch is the first timestamp handed out by the mock clock.
var mockEpoch = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// MockFileSystem provides in-memory filesystem for testing.
//
// Every write advances a logical clock by one second, so a file written after
// another one is always strictly newer. Tests rely on this to reason about
// build output staleness without sleeping.
type MockFileSystem struct {
	mu         sync.RWMutex
	files      map[string]*MockFile
	currentDir string
	clock      time.Time

	mkdirErrors map[string]error
	writeErrors map[string]error
}

// MockFile represents a file in the mock filesystem
type MockFile struct {
	Content []byte
	Mode    fs.FileMode
	ModTime time.Time
	IsDir   bool
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// mockDirEntry implements fs.DirEntry
type mockDirEntry struct {
	info fs.FileInfo
}

func (m *mockDirEntry) Name() string               { return m.info.Name() }
func (m *mockDirEntry) IsDir() bool                { return m.info.IsDir() }
func (m *mockDirEntry) Type() fs.FileMode          { return m.info.Mode().Type() }
func (m *mockDirEntry) Info() (fs.FileInfo, error) { return m.info, nil }

// NewMockFileSystem creates a new MockFileSystem
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:       make(map[string]*MockFile),
		currentDir:  "/workspace",
		clock:       mockEpoch,
		mkdirErrors: make(map[string]error),
		writeErrors: make(map[string]error),
	}
}

// tick advances the logical clock. Callers must hold mu.
func (mfs *MockFileSystem) tick() time.Time {
	mfs.clock = mfs.clock.Add(time.Second)
	return mfs.clock
}

// Now returns the current value of the logical clock.
func (mfs *MockFileSystem) Now() time.Time {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.clock
}

// AddFile adds a file to the mock filesystem, stamped with the next clock tick.
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.addFile(filepath.Clean(path), content, mfs.tick())
}

// AddFileWithModTime adds a file with an explicit modification time.
func (mfs *MockFileSystem) AddFileWithModTime(path string, content []byte, modTime time.Time) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.addFile(filepath.Clean(path), content, modTime)
}

func (mfs *MockFileSystem) addFile(cleanPath string, content []byte, modTime time.Time) {
	mfs.files[cleanPath] = &MockFile{
		Content: content,
		Mode:    0644,
		ModTime: modTime,
		IsDir:   false,
	}
	mfs.addParents(cleanPath)
}

// AddDir adds a directory to the mock filesystem
func (mfs *MockFileSystem) AddDir(path string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.addDir(filepath.Clean(path))
}

func (mfs *MockFileSystem) addDir(cleanPath string) {
	if _, exists := mfs.files[cleanPath]; !exists {
		mfs.files[cleanPath] = &MockFile{
			Mode:    0755 | fs.ModeDir,
			ModTime: mfs.clock,
			IsDir:   true,
		}
	}
	mfs.addParents(cleanPath)
}

func (mfs *MockFileSystem) addParents(cleanPath string) {
	dir := filepath.Dir(cleanPath)
	for dir != "." && dir != "/" && dir != cleanPath {
		if _, exists := mfs.files[dir]; !exists {
			mfs.files[dir] = &MockFile{
				Mode:    0755 | fs.ModeDir,
				ModTime: mfs.clock,
				IsDir:   true,
			}
		}
		dir = filepath.Dir(dir)
	}
}

// Touch bumps the modification time of an existing file to the next clock tick.
// Missing files are created empty.
func (mfs *MockFileSystem) Touch(path string) time.Time {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	now := mfs.tick()
	if file, exists := mfs.files[cleanPath]; exists {
		file.ModTime = now
		return now
	}
	mfs.addFile(cleanPath, nil, now)
	return now
}

// SetModTime overrides the modification time of an existing path.
func (mfs *MockFileSystem) SetModTime(path string, modTime time.Time) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	if file, exists := mfs.files[filepath.Clean(path)]; exists {
		file.ModTime = modTime
	}
}

// FailMkdir makes MkdirAll return err for the given path.
func (mfs *MockFileSystem) FailMkdir(path string, err error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.mkdirErrors[filepath.Clean(path)] = err
}

// FailWrite makes WriteFile return err for the given path.
func (mfs *MockFileSystem) FailWrite(path string, err error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.writeErrors[filepath.Clean(path)] = err
}

func (mfs *MockFileSystem) ReadFile(path string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	if file.IsDir {
		return nil, errors.New("is a directory")
	}
	return file.Content, nil
}

func (mfs *MockFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err, ok := mfs.writeErrors[cleanPath]; ok {
		return &fs.PathError{Op: "open", Path: path, Err: err}
	}

	// Ensure parent directory exists
	dir := filepath.Dir(cleanPath)
	if dir != "." && dir != "/" {
		if _, exists := mfs.files[dir]; !exists {
			return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
		}
	}

	mfs.files[cleanPath] = &MockFile{
		Content: data,
		Mode:    perm,
		ModTime: mfs.tick(),
		IsDir:   false,
	}
	return nil
}

func (mfs *MockFileSystem) Remove(path string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if _, exists := mfs.files[cleanPath]; !exists {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	delete(mfs.files, cleanPath)
	return nil
}

func (mfs *MockFileSystem) Rename(oldPath, newPath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	oldClean := filepath.Clean(oldPath)
	newClean := filepath.Clean(newPath)
	file, exists := mfs.files[oldClean]
	if !exists {
		return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
	}
	delete(mfs.files, oldClean)
	mfs.files[newClean] = file
	mfs.addParents(newClean)
	return nil
}

func (mfs *MockFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	cleanPath := filepath.Clean(path)

	file, exists := mfs.files[cleanPath]
	if !exists {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}
	if !file.IsDir {
		return nil, errors.New("not a directory")
	}

	var entries []fs.DirEntry
	for p, f := range mfs.files {
		if p == cleanPath || filepath.Dir(p) != cleanPath {
			continue
		}
		entries = append(entries, &mockDirEntry{info: infoFor(p, f)})
	}

	// Sort entries by name for consistent ordering
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	return entries, nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err, ok := mfs.mkdirErrors[cleanPath]; ok {
		return &fs.PathError{Op: "mkdir", Path: path, Err: err}
	}

	parts := strings.Split(cleanPath, string(filepath.Separator))

	current := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if current == "" {
			current = string(filepath.Separator) + part
		} else {
			current = filepath.Join(current, part)
		}

		existing, exists := mfs.files[current]
		if !exists {
			mfs.files[current] = &MockFile{
				Mode:    perm | fs.ModeDir,
				ModTime: mfs.clock,
				IsDir:   true,
			}
			continue
		}
		if !existing.IsDir {
			return &fs.PathError{Op: "mkdir", Path: current, Err: errors.New("not a directory")}
		}
	}
	return nil
}

func (mfs *MockFileSystem) Stat(path string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	cleanPath := filepath.Clean(path)
	file, exists := mfs.files[cleanPath]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}

	return infoFor(cleanPath, file), nil
}

func (mfs *MockFileSystem) Exists(path string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	_, exists := mfs.files[filepath.Clean(path)]
	return exists
}

func (mfs *MockFileSystem) Getwd() (string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.currentDir, nil
}

func (mfs *MockFileSystem) Chtimes(path string, atime, mtime time.Time) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	file, exists := mfs.files[filepath.Clean(path)]
	if !exists {
		return &fs.PathError{Op: "chtimes", Path: path, Err: fs.ErrNotExist}
	}
	file.ModTime = mtime
	return nil
}

func (mfs *MockFileSystem) WalkDir(root string, fn fs.WalkDirFunc) error {
	cleanRoot := filepath.Clean(root)

	mfs.mu.RLock()
	if _, exists := mfs.files[cleanRoot]; !exists {
		mfs.mu.RUnlock()
		return &fs.PathError{Op: "walk", Path: root, Err: fs.ErrNotExist}
	}

	// Collect all paths that are under root
	var paths []string
	infos := make(map[string]fs.FileInfo)
	for p, f := range mfs.files {
		if p == cleanRoot || strings.HasPrefix(p, cleanRoot+string(filepath.Separator)) {
			paths = append(paths, p)
			infos[p] = infoFor(p, f)
		}
	}
	mfs.mu.RUnlock()

	// Sort paths for consistent ordering
	sort.Strings(paths)

	var skipped []string
	for _, p := range paths {
		if underAny(p, skipped) {
			continue
		}

		info := infos[p]
		if err := fn(p, &mockDirEntry{info: info}, nil); err != nil {
			if err == filepath.SkipDir && info.IsDir() {
				skipped = append(skipped, p)
				continue
			}
			if err == filepath.SkipDir || err == filepath.SkipAll {
				return nil
			}
			return err
		}
	}

	return nil
}

func (mfs *MockFileSystem) Glob(pattern string) ([]string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	var matches []string
	for p := range mfs.files {
		matched, err := filepath.Match(pattern, p)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, p)
		}
	}

	sort.Strings(matches)
	return matches, nil
}

// SetCurrentDir sets the current working directory for the mock
func (mfs *MockFileSystem) SetCurrentDir(dir string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.currentDir = dir
}

// Paths returns every path in the mock filesystem, sorted.
func (mfs *MockFileSystem) Paths() []string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	paths := make([]string, 0, len(mfs.files))
	for p := range mfs.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func infoFor(path string, file *MockFile) *mockFileInfo {
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.Content)),
		mode:    file.Mode,
		modTime: file.ModTime,
		isDir:   file.IsDir,
	}
}

func underAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
