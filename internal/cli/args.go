package cli

import (
	"fmt"
	"strings"
)

// Args represents the top-level command structure
type Args struct {
	Dir *string `arg:"--dir,env:SCRIBE_DIR" help:"scribe storage directory (default: ~/.scribe)"`

	Record     *RecordCmd     `arg:"subcommand:record" help:"Record a command line into the history"`
	Search     *SearchCmd     `arg:"subcommand:search" help:"Search the history"`
	Init       *InitCmd       `arg:"subcommand:init" help:"Print the shell hook script"`
	ResetIndex *ResetIndexCmd `arg:"subcommand:reset-index" help:"Rebuild the search index from the archive"`
	Config     *ConfigCmd     `arg:"subcommand:config" help:"Manage configuration"`
}

// RecordCmd represents 'scribe record', called by the shell hook before each command runs
type RecordCmd struct {
	Command []string `arg:"positional" help:"command line to record"`
}

// SearchCmd represents 'scribe search'
type SearchCmd struct {
	Interactive bool     `arg:"-i,--interactive" help:"Incremental search on the terminal"`
	Copy        bool     `arg:"-c,--copy" help:"Also copy the selected command to the clipboard"`
	Limit       int      `arg:"-n,--limit" help:"Maximum number of matches to print (default: list-limit)"`
	Query       []string `arg:"positional" help:"substring to search for"`
}

// InitCmd represents 'scribe init'
type InitCmd struct {
	Shell  *string `arg:"--shell" help:"Shell to print the hook for (default: detected from $SHELL)"`
	Import bool    `arg:"--import" help:"Import the shell's existing history into an empty index"`
}

// ResetIndexCmd represents 'scribe reset-index'
type ResetIndexCmd struct{}

// ConfigCmd represents the 'scribe config' command
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration"`
}

// ConfigGetCmd represents the 'scribe config get' command
type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

// ConfigSetCmd represents the 'scribe config set' command
type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"Configuration value"`
}

// ConfigListCmd represents the 'scribe config list' command
type ConfigListCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "scribe - shell history capture and incremental search"
}

// Version returns the program version
func (Args) Version() string {
	return "scribe 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  # Shell integration (zsh, bash or fish)
  eval "$(scribe init)"             # in ~/.zshrc or ~/.bashrc
  scribe init | source              # in ~/.config/fish/config.fish
  scribe init --import              # also import existing shell history

  # Searching
  scribe search git                 # most recent commands containing "git"
  scribe search -n 5 docker         # only the five newest
  scribe search -i                  # interactive search (bound to Ctrl-R)

  # Maintenance
  scribe reset-index                # rebuild the index from the archive
  scribe config set list-limit 50

Keys in interactive search:
  Up/Down     older/newer match       Enter  accept
  Backspace   delete a character      Ctrl-U clear the query
  Ctrl-C      cancel`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	switch {
	case args.Search != nil:
		return args.Search.Validate()
	case args.Config != nil:
		return args.Config.Validate()
	}
	return nil
}

// Validate validates search command arguments
func (s *SearchCmd) Validate() error {
	if s.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	if s.Copy && !s.Interactive {
		return fmt.Errorf("--copy requires --interactive")
	}
	return nil
}

// Validate validates config command arguments
func (c *ConfigCmd) Validate() error {
	if c.Get == nil && c.Set == nil && c.List == nil {
		return fmt.Errorf("no config subcommand specified")
	}
	return nil
}

// Line returns the recorded command line. Hooks pass it as one argument;
// several arguments are joined with spaces.
func (r *RecordCmd) Line() string {
	return strings.Join(r.Command, " ")
}

// Text returns the query.
func (s *SearchCmd) Text() string {
	return strings.Join(s.Query, " ")
}

// HasCommand reports whether a subcommand was given.
func (args *Args) HasCommand() bool {
	return args.Record != nil || args.Search != nil || args.Init != nil ||
		args.ResetIndex != nil || args.Config != nil
}
