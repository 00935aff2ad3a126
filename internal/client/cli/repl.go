package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/client/nav"
	"github.com/dmitrijs2005/taskdesk/internal/common"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App implements it.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, email string) error
	Signup(ctx context.Context, email, name string) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context, refresh bool) error
	Dashboard(ctx context.Context) error
	ListTasks(ctx context.Context, filter string) error
	AddTask(ctx context.Context, title, description string) error
	ShowTask(ctx context.Context, ref string) error
	EditTask(ctx context.Context, ref string, upd models.TaskUpdate) error
	ToggleTask(ctx context.Context, ref string) error
	DeleteTask(ctx context.Context, ref string, force bool) error
}

const (
	helpSignedOut = "Available commands: login [email], signup [email], exit"
	helpSignedIn  = "Available commands: (l)ist [all|active|done], add [title], show <id>, edit <id>, done <id>, rm <id>, dashboard, whoami, logout, exit"
)

// runREPL reads commands from reader until EOF, exit or quit.
//
// The first word selects the command; the rest of the line is its argument.
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("td %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}
		case "login":
			report(a.Login(ctx, arg))
		case "signup", "register":
			report(a.Signup(ctx, arg, ""))
		case "logout":
			report(a.Logout(ctx))
		case "whoami":
			report(a.Whoami(ctx, arg == "--refresh"))
		case "dashboard", "home":
			report(a.Dashboard(ctx))
		case "l", "list", "ls":
			report(a.ListTasks(ctx, arg))
		case "add":
			report(a.AddTask(ctx, arg, ""))
		case "show":
			report(a.ShowTask(ctx, arg))
		case "edit":
			report(a.EditTask(ctx, arg, models.TaskUpdate{}))
		case "done", "toggle":
			report(a.ToggleTask(ctx, arg))
		case "rm", "delete":
			report(a.DeleteTask(ctx, arg, false))
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", ErrorText(err))
	}
}

// Shell runs the interactive session until the user leaves.
func (a *App) Shell(ctx context.Context) error {
	unsubscribe := a.nav.Subscribe(func(path string) {
		a.log.Debug(ctx, "view changed", "path", path)
	})
	defer unsubscribe()

	printlnFn("Welcome to taskdesk (type 'help' for commands)")
	if err := a.waitReady(ctx); err != nil {
		return err
	}

	if a.isLoggedIn() {
		a.nav.Navigate(ctx, common.TodosPath, nav.WithReplace())
		report(a.ListTasks(ctx, ""))
	} else {
		a.nav.Navigate(ctx, common.LoginPath, nav.WithReplace())
		printlnFn("You are not signed in. Use 'login' or 'signup'.")
	}

	runREPL(ctx, a, a.status, a.reader)
	return nil
}
