package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pablasso/workbench/internal/app"
	"github.com/pablasso/workbench/internal/config"
	"github.com/pablasso/workbench/internal/logging"
	"github.com/pablasso/workbench/internal/store"
	"github.com/pablasso/workbench/internal/tui"
	"github.com/pablasso/workbench/internal/version"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	dataDir    string
	backend    string
	logLevel   string
}

// session is an opened workbench plus the resources to release with it.
type session struct {
	*app.State
	logCloser io.Closer
}

func (s *session) Close() error {
	err := s.State.Close()
	if s.logCloser != nil {
		s.logCloser.Close()
	}
	return err
}

// NewRootCmd builds the workbench command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "workbench",
		Short: "Track features across phases",
		Long: `Workbench keeps a single document of phases and features and saves it after every edit.
Run without a command to open the interactive board.`,
		Version:       fmt.Sprintf("%s (%s, %s)", version.Version, version.CommitSHA, version.BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return tui.Run(s.State)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory holding the saved document")
	flags.StringVar(&opts.backend, "backend", "", "storage backend: file|sqlite|memory")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")

	rootCmd.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newStatusCmd(opts),
		newMoveCmd(opts),
		newOrderCmd(opts),
		newRemoveCmd(opts),
		newPhaseCmd(opts),
		newTitleCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newResetCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// config resolves the config file and applies flag overrides.
func (o *globalOptions) config() (config.Config, error) {
	path, required := o.configPath, true
	if path == "" {
		path, required = config.DefaultPath(), false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return config.Config{}, err
	}

	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.backend != "" {
		backend, err := store.ParseBackend(o.backend)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Backend = backend
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// open starts a session for a command.
func (o *globalOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger = logger.With("cmd", cmd.Name())

	state, err := app.Open(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to open workbench: %w", err)
	}
	// The board shows its own warning.
	if state.SharedSession() && cmd.HasParent() {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: another workbench session is open on this storage; the last save wins")
	}
	return &session{State: state, logCloser: closer}, nil
}

// mutate opens a session, runs fn, and reports a failed save as an error.
func (o *globalOptions) mutate(cmd *cobra.Command, fn func(s *app.State) error) error {
	s, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s.State); err != nil {
		return err
	}
	if err := s.SaveError(); err != nil {
		return fmt.Errorf("change was not saved: %w", err)
	}
	return nil
}
