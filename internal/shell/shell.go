// Package shell knows the shells scribe hooks into: which one is running,
// the hook script to source into it, and how to read its own history file.
package shell

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

//go:embed scripts
var scripts embed.FS

// Shell is a supported shell.
type Shell string

const (
	Zsh  Shell = "zsh"
	Bash Shell = "bash"
	Fish Shell = "fish"
)

// ErrUnsupported is returned for shells scribe has no hook for.
var ErrUnsupported = errors.New("unsupported shell")

// Detect returns the shell named by path, usually $SHELL.
func Detect(path string) (Shell, error) {
	if path == "" {
		return "", fmt.Errorf("%w: SHELL is not set", ErrUnsupported)
	}

	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "zsh"):
		return Zsh, nil
	case strings.Contains(name, "fish"):
		return Fish, nil
	case strings.Contains(name, "bash"):
		return Bash, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
}

// Parse returns the shell with the given name.
func Parse(name string) (Shell, error) {
	switch s := Shell(strings.ToLower(name)); s {
	case Zsh, Bash, Fish:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
}

// Script returns the hook script that records commands and binds Ctrl-R
// to the interactive search.
func (s Shell) Script() (string, error) {
	data, err := scripts.ReadFile("scripts/init." + string(s))
	if err != nil {
		return "", fmt.Errorf("failed to load %s hook: %w", s, err)
	}
	return string(data), nil
}

// HistoryFile returns where the shell keeps its own history. getenv is
// consulted for HISTFILE (zsh, bash) and XDG_DATA_HOME (fish).
func (s Shell) HistoryFile(home string, getenv func(string) string) string {
	switch s {
	case Zsh:
		if f := getenv("HISTFILE"); f != "" {
			return f
		}
		return filepath.Join(home, ".zsh_history")
	case Bash:
		if f := getenv("HISTFILE"); f != "" {
			return f
		}
		return filepath.Join(home, ".bash_history")
	case Fish:
		data := getenv("XDG_DATA_HOME")
		if data == "" {
			data = filepath.Join(home, ".local", "share")
		}
		return filepath.Join(data, "fish", "fish_history")
	default:
		return ""
	}
}
