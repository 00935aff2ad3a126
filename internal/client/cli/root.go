package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskdesk/internal/buildinfo"
	"github.com/dmitrijs2005/taskdesk/internal/client/config"
	"github.com/dmitrijs2005/taskdesk/internal/client/guard"
	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/logging"
	"github.com/spf13/cobra"
)

type runner struct {
	cfg         *config.Config
	log         logging.Logger
	opts        []AppOption
	checkExpiry bool
}

// withApp opens an App for the duration of one command.
func (r *runner) withApp(fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode := guard.PresenceCheck
		if r.checkExpiry {
			mode = guard.ExpiryCheck
		}
		opts := append([]AppOption{WithIO(cmd.InOrStdin(), cmd.OutOrStdout()), WithGuardMode(mode)}, r.opts...)

		a, err := NewApp(ctx, r.cfg, r.log, opts...)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				r.log.Warn(ctx, "closing local storage", "error", err)
			}
		}()

		a.Start(ctx)
		return fn(ctx, a, args)
	}
}

// NewRootCommand builds the taskdesk command tree. Without a subcommand it
// starts the interactive shell.
func NewRootCommand(cfg *config.Config, log logging.Logger, opts ...AppOption) *cobra.Command {
	if log == nil {
		log = logging.Nop()
	}
	r := &runner{cfg: cfg, log: log, opts: opts}

	root := &cobra.Command{
		Use:   "taskdesk",
		Short: "Terminal client for the taskdesk task tracker",
		Long: `taskdesk talks to the task tracker backend from the terminal.

Run it without arguments for an interactive shell, or use the
subcommands for one-shot operations. The session token is kept in a
local SQLite file and reused until it expires or the server rejects it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.Shell(ctx)
		}),
	}
	root.PersistentFlags().BoolVar(&r.checkExpiry, "check-expiry", false,
		"treat an expired token as signed out before contacting the server")

	root.AddCommand(
		r.loginCmd(),
		r.signupCmd(),
		r.logoutCmd(),
		r.whoamiCmd(),
		r.dashboardCmd(),
		r.tasksCmd(),
		versionCmd(),
	)
	return root
}

func (r *runner) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.Login(ctx, email)
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	return cmd
}

func (r *runner) signupCmd() *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:     "signup",
		Aliases: []string{"register"},
		Short:   "Create an account and sign in",
		Args:    cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.Signup(ctx, email, name)
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func (r *runner) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.Logout(ctx)
		}),
	}
}

func (r *runner) whoamiCmd() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and token expiry",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.Whoami(ctx, refresh)
		}),
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the user from the server")
	return cmd
}

func (r *runner) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show a summary of your tasks",
		Args:  cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.Dashboard(ctx)
		}),
	}
}

func (r *runner) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "Manage tasks",
	}

	var filter string
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: r.withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.ListTasks(ctx, filter)
		}),
	}
	list.Flags().StringVarP(&filter, "filter", "f", FilterAll, "all, active or done")

	var description string
	add := &cobra.Command{
		Use:   "add [title...]",
		Short: "Create a task (prompts when no title is given)",
		RunE: r.withApp(func(ctx context.Context, a *App, args []string) error {
			return a.AddTask(ctx, strings.Join(args, " "), description)
		}),
	}
	add.Flags().StringVarP(&description, "description", "d", "", "task description")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, a *App, args []string) error {
			return a.ShowTask(ctx, args[0])
		}),
	}

	done := &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle a task between done and open",
		Args:    cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, a *App, args []string) error {
			return a.ToggleTask(ctx, args[0])
		}),
	}

	var force bool
	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: r.withApp(func(ctx context.Context, a *App, args []string) error {
			return a.DeleteTask(ctx, args[0], force)
		}),
	}
	rm.Flags().BoolVarP(&force, "force", "f", false, "do not ask for confirmation")

	cmd.AddCommand(list, add, show, r.editCmd(), done, rm)
	return cmd
}

func (r *runner) editCmd() *cobra.Command {
	var (
		title, description string
		completed          bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task (prompts when no flag is given)",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = r.withApp(func(ctx context.Context, a *App, args []string) error {
		var upd models.TaskUpdate
		if cmd.Flags().Changed("title") {
			upd.Title = &title
		}
		if cmd.Flags().Changed("description") {
			upd.Description = &description
		}
		if cmd.Flags().Changed("completed") {
			upd.Completed = &completed
		}
		return a.EditTask(ctx, args[0], upd)
	})
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark done (--completed=false reopens)")
	return cmd
}

func versionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Version)
				return
			}
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
	// no shorthand: -s belongs to the config loader
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
