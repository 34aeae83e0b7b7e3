package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planora/planora/internal/config"
	"github.com/planora/planora/internal/db"
	"github.com/planora/planora/internal/logging"
	"github.com/planora/planora/internal/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	configPath string
	user       string
}

// app holds what a command needs once configuration is loaded
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *db.Store
	flags  *globalFlags
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "planora",
		Short: "An AI-assisted planner for tasks, projects and focus time",
		Long: `planora turns a learning goal into a dated roadmap of tasks, and keeps track of
your tasks, projects, notes and focus sessions from the terminal or over HTTP.

Run 'planora serve' for the API, or 'planora plan "learn Go"' to draft a roadmap.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ./planora.yaml, then ~/.planora/config.yaml)")
	cmd.PersistentFlags().StringVarP(&flags.user, "user", "u", "", "username to act as (default cli.user)")

	cmd.AddCommand(
		newServeCmd(flags),
		newUserCmd(flags),
		newPlanCmd(flags),
		newChatCmd(flags),
		newAddCmd(flags),
		newListCmd(flags),
		newSearchCmd(flags),
		newDoneCmd(flags),
		newUndoneCmd(flags),
		newProjectCmd(flags),
		newFocusCmd(flags),
		newReportCmd(flags),
		newNoteCmd(flags),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// open loads configuration and the store
func (f *globalFlags) open(quiet bool) (*app, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Log
	if quiet && strings.EqualFold(logCfg.Level, "info") {
		// Interactive commands only surface warnings
		logCfg.Level = "warn"
	}
	logger := logging.New(logCfg)

	store, err := db.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: store, flags: f}, nil
}

// withApp wraps a command body that needs the store
func (f *globalFlags) withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := f.open(true)
		if err != nil {
			return err
		}
		defer a.store.Close()
		return fn(cmd, args, a)
	}
}

// withUser wraps a command body that acts on behalf of the selected user
func (f *globalFlags) withUser(fn func(cmd *cobra.Command, args []string, a *app, user *models.User) error) func(*cobra.Command, []string) error {
	return f.withApp(func(cmd *cobra.Command, args []string, a *app) error {
		user, err := a.currentUser(cmd.Context())
		if err != nil {
			return err
		}
		return fn(cmd, args, a, user)
	})
}

// currentUser resolves --user, falling back to cli.user
func (a *app) currentUser(ctx context.Context) (*models.User, error) {
	name := a.flags.user
	if name == "" {
		name = a.cfg.CLI.User
	}
	if name == "" {
		return nil, errors.New("no user selected: pass --user or set cli.user (create one with 'planora user add')")
	}

	user, err := a.store.GetUserByUsername(ctx, name)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("user %q does not exist, create it with 'planora user add %s'", name, name)
	}
	return user, err
}

// parseID parses a record id argument
func parseID(arg, what string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(arg, "#"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s ID '%s'", what, arg)
	}
	return uint(id), nil
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
