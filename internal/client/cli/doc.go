// Package cli is the taskdesk terminal front end.
//
// NewRootCommand builds a cobra command tree whose commands each open an
// App: local token storage, the API client, the session controller and the
// task service. Protected commands (tasks, whoami, dashboard) run behind a
// view guard and fail with ErrNotSignedIn when there is no session.
//
// Without a subcommand the App runs an interactive shell (see runREPL) that
// follows the navigator between the login and task views.
package cli
