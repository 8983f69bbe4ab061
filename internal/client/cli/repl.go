package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/cryptobulldev/userdash/internal/client/client"
	"github.com/cryptobulldev/userdash/internal/client/guard"
	"github.com/cryptobulldev/userdash/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	hydrate(ctx context.Context) error
	accessCookie() string

	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error

	List(ctx context.Context, args []string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Create(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error

	Ping(ctx context.Context) error
	Stats(ctx context.Context) error
}

type command func(ctx context.Context, a execIface, args []string) error

var commands = map[string]command{
	"login":    func(ctx context.Context, a execIface, _ []string) error { return a.Login(ctx) },
	"register": func(ctx context.Context, a execIface, _ []string) error { return a.Register(ctx) },
	"logout":   func(ctx context.Context, a execIface, _ []string) error { return a.Logout(ctx) },
	"whoami":   func(ctx context.Context, a execIface, _ []string) error { return a.Whoami(ctx) },
	"list":     func(ctx context.Context, a execIface, args []string) error { return a.List(ctx, args) },
	"l":        func(ctx context.Context, a execIface, args []string) error { return a.List(ctx, args) },
	"next":     func(ctx context.Context, a execIface, _ []string) error { return a.Next(ctx) },
	"prev":     func(ctx context.Context, a execIface, _ []string) error { return a.Prev(ctx) },
	"show":     func(ctx context.Context, a execIface, args []string) error { return a.Show(ctx, args) },
	"create":   func(ctx context.Context, a execIface, _ []string) error { return a.Create(ctx) },
	"edit":     func(ctx context.Context, a execIface, args []string) error { return a.Edit(ctx, args) },
	"delete":   func(ctx context.Context, a execIface, args []string) error { return a.Delete(ctx, args) },
	"ping":     func(ctx context.Context, a execIface, _ []string) error { return a.Ping(ctx) },
	"stats":    func(ctx context.Context, a execIface, _ []string) error { return a.Stats(ctx) },
}

const helpText = `Available commands:
  login | register | logout | whoami
  list [page] [search] | next | prev
  show <id> | create | edit <id> | delete <id>
  ping | stats | help | exit`

// commandPath maps a command onto the page it would open in the web
// dashboard. Commands without a page are not guarded.
func commandPath(cmd string, args []string) string {
	switch cmd {
	case "login":
		return guard.LoginPath
	case "register":
		return guard.RegisterPath
	case "list", "l", "next", "prev":
		return guard.DashboardPath + "/users"
	case "create":
		return guard.DashboardPath + "/users/new"
	case "show", "edit", "delete":
		if len(args) > 0 {
			return guard.DashboardPath + "/users/" + url.PathEscape(args[0])
		}
		return guard.DashboardPath + "/users"
	case "whoami":
		return guard.DashboardPath + "/profile"
	}
	return ""
}

// runREPL starts a simple read–eval–print loop for the dashboard CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches it through the guard to a. Errors returned by a command are
// printed and the loop continues. The loop exits on EOF, when ctx is done,
// or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("userdash %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "help":
			printlnFn(helpText)
			continue
		}

		if _, ok := commands[cmd]; !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}

		if err := runGuarded(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", describeError(err))
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// runGuarded waits for the persisted session to be restored and asks the
// guard about the command's page. A redirect to login runs the login flow
// and resumes the command; a redirect away from the login pages means the
// user is already signed in.
func runGuarded(ctx context.Context, a execIface, cmd string, args []string) error {
	run := commands[cmd]

	path := commandPath(cmd, args)
	if path == "" {
		return run(ctx, a, args)
	}

	if err := a.hydrate(ctx); err != nil {
		return err
	}

	d := guard.Decide(path, a.accessCookie())
	if d.Action == guard.Allow {
		return run(ctx, a, args)
	}

	if !strings.HasPrefix(d.Location, guard.LoginPath) {
		printlnFn("Already logged in. Use 'logout' first to switch accounts.")
		return nil
	}

	printlnFn("Please log in to continue.")
	if err := a.Login(ctx); err != nil {
		return err
	}

	target := guard.ReturnTarget(d.Location)
	if guard.Decide(target, a.accessCookie()).Action != guard.Allow {
		return services.ErrNotLoggedIn
	}
	return run(ctx, a, args)
}

// describeError turns an error into a line fit for the terminal.
func describeError(err error) string {
	var se *client.StatusError

	switch {
	case errors.Is(err, client.ErrRefreshRejected), errors.Is(err, client.ErrNoRefreshCredential):
		return "session expired, please log in again"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, services.ErrNotLoggedIn):
		return "not logged in"
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.Is(err, context.Canceled):
		return "cancelled"
	}
	return err.Error()
}
