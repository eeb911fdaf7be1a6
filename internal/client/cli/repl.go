package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	SetupAdmin(ctx context.Context) error
	Status(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Protected(ctx context.Context) error
	Logout(ctx context.Context) error
	Users(ctx context.Context) error
	ShowUser(ctx context.Context, id string) error
	EditUser(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
}

const (
	helpAnonymous     = "Available commands: register, login, setup-admin, status, exit"
	helpAuthenticated = "Available commands: profile, edit, passwd, protected, status, logout, exit"
	helpAdmin         = "Admin commands: users, user <id>, useredit <id>, userdel <id>"
)

// runREPL starts a simple read–eval–print loop for the authdesk CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             show available commands
//	  - register         create an account and sign in
//	  - login            sign in
//	  - setup-admin      create the first admin account
//	  - status           show session and connectivity
//	  - exit | quit      leave the program
//
//	Logged in:
//	  - help             show available commands
//	  - profile          show your profile
//	  - edit             edit your profile
//	  - passwd           change your password
//	  - protected        call the protected test route
//	  - status           show session and connectivity
//	  - logout           sign out
//	  - exit | quit      leave the program
//
//	Admin:
//	  - users            list accounts
//	  - user <id>        show one account
//	  - useredit <id>    edit an account
//	  - userdel <id>     delete an account (asks for confirmation)
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "authdesk %s> \n", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !allowed(a, cmd) {
			fmt.Fprintln(w, "Unknown command:", cmd, "(type 'help')")
			continue
		}

		switch cmd {
		case "help":
			switch {
			case a.isLoggedIn() && a.isAdmin():
				fmt.Fprintln(w, helpAuthenticated)
				fmt.Fprintln(w, helpAdmin)
			case a.isLoggedIn():
				fmt.Fprintln(w, helpAuthenticated)
			default:
				fmt.Fprintln(w, helpAnonymous)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "setup-admin":
			_ = a.SetupAdmin(ctx)

		case "status":
			_ = a.Status(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "edit":
			_ = a.EditProfile(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "protected":
			_ = a.Protected(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "users":
			_ = a.Users(ctx)

		case "user", "useredit", "userdel":
			if len(args) == 0 {
				fmt.Fprintf(w, "Usage: %s <id>\n", cmd)
				continue
			}
			switch cmd {
			case "user":
				_ = a.ShowUser(ctx, args[0])
			case "useredit":
				_ = a.EditUser(ctx, args[0])
			case "userdel":
				_ = a.DeleteUser(ctx, args[0])
			}

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}
	}
}

// allowed reports whether cmd is offered in the current session state.
func allowed(a execIface, cmd string) bool {
	switch cmd {
	case "help", "status", "exit", "quit":
		return true
	case "register", "login", "setup-admin":
		return !a.isLoggedIn()
	case "profile", "edit", "passwd", "protected", "logout":
		return a.isLoggedIn()
	case "users", "user", "useredit", "userdel":
		return a.isLoggedIn() && a.isAdmin()
	default:
		return false
	}
}
