package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	GuestLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	Register(ctx context.Context) error
	Activate(ctx context.Context, uid, token string) error
	ForgotPassword(ctx context.Context) error
	ResetPassword(ctx context.Context, uid, token string) error
	Me(ctx context.Context) error
	Rename(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Videos(ctx context.Context, visibility string) error
	Open(ctx context.Context, rawURL string) error
}

// runREPL starts a simple read–eval–print loop for the Videoflix CLI.
//
// It reads a line from the provided reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current view and user (from statusFn) and accepts:
//
//	Not logged in:
//	  - login, guest                   authenticate
//	  - register                       create an account
//	  - activate <uid> <token>         confirm the email address
//	  - forgot                         request a password reset mail
//	  - reset <uid> <token>            choose a new password
//
//	Logged in:
//	  - videos [public|private]        list videos
//	  - me, rename                     show or edit the profile
//	  - delete                         delete the account
//	  - logout
//
//	Always: help, open <url>, exit | quit
//
// Errors returned by command handlers are ignored here; handlers report them
// to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("vf %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: videos [public|private], me, rename, delete, logout, open <url>, exit")
			} else {
				printlnFn("Available commands: login, guest, register, activate <uid> <token>, forgot, reset <uid> <token>, open <url>, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "guest":
			_ = a.GuestLogin(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "register":
			_ = a.Register(ctx)

		case "activate":
			if len(args) != 2 {
				printlnFn("Usage: activate <uid> <token>")
				continue
			}
			_ = a.Activate(ctx, args[0], args[1])

		case "forgot":
			_ = a.ForgotPassword(ctx)

		case "reset":
			if len(args) != 2 {
				printlnFn("Usage: reset <uid> <token>")
				continue
			}
			_ = a.ResetPassword(ctx, args[0], args[1])

		case "me":
			_ = a.Me(ctx)

		case "rename":
			_ = a.Rename(ctx)

		case "delete":
			_ = a.DeleteAccount(ctx)

		case "v", "videos":
			visibility := ""
			if len(args) > 0 {
				visibility = args[0]
			}
			_ = a.Videos(ctx, visibility)

		case "open":
			if len(args) != 1 {
				printlnFn("Usage: open <url>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
