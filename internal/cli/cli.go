package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/scribe/internal/clipboard"
	"github.com/yiblet/scribe/internal/clipboard/sysboard"
	"github.com/yiblet/scribe/internal/config"
	"github.com/yiblet/scribe/internal/debuglog"
	"github.com/yiblet/scribe/internal/record"
	"github.com/yiblet/scribe/internal/scribefs"
	"github.com/yiblet/scribe/internal/search"
	"github.com/yiblet/scribe/internal/shell"
	"github.com/yiblet/scribe/internal/store"
	"github.com/yiblet/scribe/internal/store/dbstore"
	"github.com/yiblet/scribe/internal/term"
	"github.com/yiblet/scribe/internal/tui"
)

// TerminalOpener opens the terminal for an interactive search. The closer
// restores the terminal and is called before the selection is printed.
type TerminalOpener func() (term.Terminal, io.Closer, error)

// Options overrides the process environment of a CLI. Zero values use the
// real one.
type Options struct {
	Stdout       io.Writer
	Stderr       io.Writer
	Getenv       func(string) string
	Now          func() time.Time
	Clipboard    clipboard.Clipboard
	OpenTerminal TerminalOpener
}

// CLI handles the command-line interface
type CLI struct {
	filesystem    *scribefs.ScribeFS
	configManager *config.ConfigManager

	stdout       io.Writer
	stderr       io.Writer
	getenv       func(string) string
	now          func() time.Time
	clipboard    clipboard.Clipboard
	openTerminal TerminalOpener

	// Set by open.
	config  *config.Config
	logger  *slog.Logger
	logFile io.Closer
	history *store.History
}

// NewWithArgs creates a new CLI instance rooted at the --dir argument, or
// the default scribe directory
func NewWithArgs(args *Args) (*CLI, error) {
	return NewWithOptions(args, Options{})
}

// NewWithOptions creates a CLI instance with a custom environment (for testing)
func NewWithOptions(args *Args, opts Options) (*CLI, error) {
	var dir string
	if args != nil && args.Dir != nil {
		dir = *args.Dir
	}

	filesystem, err := scribefs.NewWithPath(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to locate scribe directory: %w", err)
	}

	if _, err := filesystem.Ensure(); err != nil {
		return nil, fmt.Errorf("failed to create scribe directory: %w", err)
	}

	c := &CLI{
		filesystem:    filesystem,
		configManager: config.NewConfigManagerWithPath(filesystem.ConfigPath()),
		stdout:        opts.Stdout,
		stderr:        opts.Stderr,
		getenv:        opts.Getenv,
		now:           opts.Now,
		clipboard:     opts.Clipboard,
		openTerminal:  opts.OpenTerminal,
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.stderr == nil {
		c.stderr = os.Stderr
	}
	if c.getenv == nil {
		c.getenv = os.Getenv
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.clipboard == nil {
		c.clipboard = sysboard.New()
	}
	if c.openTerminal == nil {
		c.openTerminal = openTTY
	}
	return c, nil
}

func openTTY() (term.Terminal, io.Closer, error) {
	tty, err := term.Open()
	if err != nil {
		return nil, nil, err
	}
	return tty, tty, nil
}

// Root returns the scribe directory in use
func (c *CLI) Root() string {
	return c.filesystem.Root()
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(ctx context.Context, args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	// config never opens the history store
	if args.Config != nil {
		return c.executeConfig(args.Config)
	}

	if err := c.open(); err != nil {
		return err
	}

	switch {
	case args.Record != nil:
		return c.executeRecord(ctx, args.Record)
	case args.Search != nil:
		return c.executeSearch(ctx, args.Search)
	case args.Init != nil:
		return c.executeInit(ctx, args.Init)
	case args.ResetIndex != nil:
		return c.executeResetIndex(ctx)
	default:
		return fmt.Errorf("no command specified")
	}
}

// open loads the configuration, the debug log and the history store.
func (c *CLI) open() error {
	if c.history != nil {
		return nil
	}

	cfg, err := c.configManager.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.config = cfg

	logger, logFile, err := debuglog.Open(c.filesystem.LogPath(), cfg.Level())
	if err != nil {
		// a missing debug log never blocks recording
		logger = debuglog.Discard()
	}
	c.logger = logger
	c.logFile = logFile

	index, err := dbstore.NewSQLiteStore(c.filesystem.IndexPath())
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}

	history, err := store.OpenHistory(c.filesystem.ArchivePath(), index)
	if err != nil {
		index.Close()
		return fmt.Errorf("failed to open history: %w", err)
	}
	c.history = history
	return nil
}

// Close releases the history store and the debug log
func (c *CLI) Close() error {
	var err error
	if c.history != nil {
		err = c.history.Close()
		c.history = nil
	}
	if c.logFile != nil {
		c.logFile.Close()
		c.logFile = nil
	}
	return err
}

// executeRecord handles 'scribe record'. It prints nothing.
func (c *CLI) executeRecord(ctx context.Context, cmd *RecordCmd) error {
	recorder := record.NewRecorder(c.history, c.config.IgnoreCommands, c.logger)
	recorder.Now = c.now

	verdict, err := recorder.Record(ctx, cmd.Line())
	if err != nil {
		c.logger.Error("record failed", "error", err)
		return err
	}
	c.logger.Debug("record", "verdict", verdict)
	return nil
}

// executeSearch handles 'scribe search'
func (c *CLI) executeSearch(ctx context.Context, cmd *SearchCmd) error {
	engine := search.New(c.history)

	if cmd.Interactive {
		return c.searchInteractive(ctx, engine, cmd)
	}

	limit := cmd.Limit
	if limit == 0 {
		limit = c.config.ListLimit
	}

	matches, err := engine.RecentMatches(ctx, cmd.Text(), limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for _, match := range matches {
		fmt.Fprintln(c.stdout, match)
	}
	return nil
}

// searchInteractive runs the incremental search on the terminal and prints
// the accepted command, if any.
func (c *CLI) searchInteractive(ctx context.Context, engine *search.Engine, cmd *SearchCmd) error {
	t, closer, err := c.openTerminal()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}

	styles := tui.PlainStyles()
	if tty, ok := t.(*term.TTY); ok {
		styles = tui.DefaultStyles(lipgloss.NewRenderer(tty.File()))
	}

	renderer := tui.NewRenderer(t, engine, tui.Options{
		Prompt:     c.config.Prompt,
		MatchWidth: c.config.MatchWidth,
		Styles:     &styles,
		Logger:     c.logger,
	})

	selection, ok, runErr := renderer.Run(ctx, cmd.Text())
	closeErr := closer.Close()
	if runErr != nil {
		return fmt.Errorf("interactive search failed: %w", runErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to restore terminal: %w", closeErr)
	}
	if !ok {
		return nil
	}

	if cmd.Copy {
		c.writeToClipboard(selection)
	}

	fmt.Fprintln(c.stdout, selection)
	return nil
}

// writeToClipboard copies the selection. Failure only warns: the selection
// is still printed for the shell.
func (c *CLI) writeToClipboard(selection string) {
	if !c.clipboard.IsSupported() {
		c.logger.Warn("clipboard not supported, skipping copy")
		fmt.Fprintln(c.stderr, "Warning: clipboard not supported on this system")
		return
	}
	if err := c.clipboard.Write(strings.NewReader(selection)); err != nil {
		c.logger.Warn("clipboard write failed", "error", err)
		fmt.Fprintf(c.stderr, "Warning: failed to copy to clipboard: %v\n", err)
		return
	}
	c.logger.Debug("copied selection to clipboard", "bytes", len(selection))
}

// executeInit handles 'scribe init'. Only the hook script goes to stdout
// since the shell evaluates it; everything else goes to stderr.
func (c *CLI) executeInit(ctx context.Context, cmd *InitCmd) error {
	var (
		sh  shell.Shell
		err error
	)
	if cmd.Shell != nil {
		sh, err = shell.Parse(*cmd.Shell)
	} else {
		sh, err = shell.Detect(c.getenv("SHELL"))
	}
	if err != nil {
		return err
	}

	if cmd.Import {
		if err := c.importHistory(ctx, sh); err != nil {
			return err
		}
	}

	script, err := sh.Script()
	if err != nil {
		return err
	}
	_, err = io.WriteString(c.stdout, script)
	return err
}

// importHistory loads the shell's own history file into an empty index.
func (c *CLI) importHistory(ctx context.Context, sh shell.Shell) error {
	count, err := c.history.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}
	if count > 0 {
		fmt.Fprintf(c.stderr, "History already has %d commands, skipping import.\n", count)
		return nil
	}

	home := c.getenv("HOME")
	if home == "" {
		if home, err = os.UserHomeDir(); err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
	}
	path := sh.HistoryFile(home, c.getenv)

	entries, err := shell.ReadHistoryFile(sh, path, c.now().Unix(), c.logger)
	if err != nil {
		return fmt.Errorf("failed to import %s history: %w", sh, err)
	}

	imported, err := c.history.Import(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to import %s history: %w", sh, err)
	}

	c.logger.Info("imported shell history", "shell", sh, "path", path, "commands", imported)
	fmt.Fprintf(c.stderr, "Imported %d commands from %s\n", imported, path)
	return nil
}

// executeResetIndex handles 'scribe reset-index'
func (c *CLI) executeResetIndex(ctx context.Context) error {
	files, err := c.filesystem.ArchiveFiles()
	if err != nil {
		return err
	}

	indexed, err := c.history.Rebuild(ctx, files)
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	c.logger.Info("rebuilt index", "files", len(files), "commands", indexed)
	fmt.Fprintf(c.stdout, "Indexed %d commands from %d archive files\n", indexed, len(files))
	return nil
}

// executeConfig handles the 'scribe config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		return c.executeConfigGet(cmd.Get)
	case cmd.Set != nil:
		return c.executeConfigSet(cmd.Set)
	case cmd.List != nil:
		return c.executeConfigList()
	default:
		return fmt.Errorf("no config subcommand specified")
	}
}

// executeConfigGet handles the 'scribe config get' command
func (c *CLI) executeConfigGet(cmd *ConfigGetCmd) error {
	value, err := c.configManager.Get(cmd.Key)
	if err != nil {
		return fmt.Errorf("failed to get config value: %w", err)
	}

	fmt.Fprintf(c.stdout, "%s\n", value)
	return nil
}

// executeConfigSet handles the 'scribe config set' command
func (c *CLI) executeConfigSet(cmd *ConfigSetCmd) error {
	if err := c.configManager.Update(cmd.Key, cmd.Value); err != nil {
		return fmt.Errorf("failed to set config value: %w", err)
	}

	fmt.Fprintf(c.stdout, "Set %s = %s\n", cmd.Key, cmd.Value)
	return nil
}

// executeConfigList handles the 'scribe config list' command
func (c *CLI) executeConfigList() error {
	values, err := c.configManager.List()
	if err != nil {
		return fmt.Errorf("failed to list config values: %w", err)
	}

	fmt.Fprintf(c.stdout, "Current configuration:\n")
	for _, key := range config.Keys() {
		fmt.Fprintf(c.stdout, "  %s = %s\n", key, values[key])
	}
	return nil
}
