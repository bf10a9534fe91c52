package scribefs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	RootDir = ".scribe"
	EnvDir  = "SCRIBE_DIR"

	DataDir    = "data"
	HistoryDir = "history"
	LogDir     = "log"

	IndexFile   = "index.db"
	LatestFile  = "LATEST"
	DebugFile   = "debug.log"
	ConfigFile  = "config.yaml"
	rotatedGlob = "log.*"
)

// ScribeFS is a filesystem rooted at the scribe storage directory
type ScribeFS struct {
	root string
}

// New creates a ScribeFS rooted at $SCRIBE_DIR, or ~/.scribe when unset.
// Nothing is created until Ensure.
func New() (*ScribeFS, error) {
	return NewWithPath(os.Getenv(EnvDir))
}

// NewWithPath creates a ScribeFS with a custom root.
// If path is empty, uses ~/.scribe
// If path is relative, it is resolved against the working directory
func NewWithPath(path string) (*ScribeFS, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to find home directory: %w", err)
		}
		return &ScribeFS{root: filepath.Join(homeDir, RootDir)}, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return &ScribeFS{root: abs}, nil
}

// NewWithRoot creates a ScribeFS with a custom root (for testing)
func NewWithRoot(root string) *ScribeFS {
	return &ScribeFS{root: root}
}

// Ensure creates the root and its data, history and log directories. It
// reports whether the root already existed, which callers use to tell a
// fresh install apart.
func (sfs *ScribeFS) Ensure() (bool, error) {
	existed := true
	if _, err := os.Stat(sfs.root); errors.Is(err, fs.ErrNotExist) {
		existed = false
	} else if err != nil {
		return false, err
	}

	for _, dir := range []string{DataDir, HistoryDir, LogDir} {
		if err := os.MkdirAll(filepath.Join(sfs.root, dir), 0755); err != nil {
			return existed, fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}
	return existed, nil
}

// Open implements fs.FS
func (sfs *ScribeFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	fullPath := filepath.Join(sfs.root, name)
	return os.Open(fullPath)
}

// ReadDir implements fs.ReadDirFS
func (sfs *ScribeFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	fullPath := filepath.Join(sfs.root, name)
	return os.ReadDir(fullPath)
}

// Root returns the root directory path
func (sfs *ScribeFS) Root() string {
	return sfs.root
}

// IndexPath is the SQLite index database.
func (sfs *ScribeFS) IndexPath() string {
	return filepath.Join(sfs.root, DataDir, IndexFile)
}

// ArchivePath is the archive file new commands are appended to.
func (sfs *ScribeFS) ArchivePath() string {
	return filepath.Join(sfs.root, HistoryDir, LatestFile)
}

// LogPath is the debug log.
func (sfs *ScribeFS) LogPath() string {
	return filepath.Join(sfs.root, LogDir, DebugFile)
}

// ConfigPath is the YAML configuration file.
func (sfs *ScribeFS) ConfigPath() string {
	return filepath.Join(sfs.root, ConfigFile)
}

// ArchiveFiles lists every archive file in replay order: rotated log.*
// files by name, then LATEST. LATEST is included only if it exists.
func (sfs *ScribeFS) ArchiveFiles() ([]string, error) {
	entries, err := sfs.ReadDir(HistoryDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list archive files: %w", err)
	}

	var rotated []string
	latest := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case name == LatestFile:
			latest = true
		case matchRotated(name):
			rotated = append(rotated, name)
		}
	}
	sort.Strings(rotated)

	files := make([]string, 0, len(rotated)+1)
	for _, name := range rotated {
		files = append(files, filepath.Join(sfs.root, HistoryDir, name))
	}
	if latest {
		files = append(files, sfs.ArchivePath())
	}
	return files, nil
}

func matchRotated(name string) bool {
	ok, _ := filepath.Match(rotatedGlob, name)
	return ok && strings.TrimPrefix(name, "log.") != ""
}
