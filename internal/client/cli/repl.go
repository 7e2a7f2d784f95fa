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
	isSuperadmin() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Airlock(ctx context.Context, args []string) error
	Triage(ctx context.Context, args []string) error
	Registry(ctx context.Context, args []string) error
	Exams(ctx context.Context, args []string) error
	Seats(ctx context.Context, args []string) error
	Admins(ctx context.Context, args []string) error
	Audit(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the admin console.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current session status (from statusFn) and accepts:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - whoami         — show the current identity and role
//	  - dashboard      — pending-work summary
//	  - airlock ...    — ingestion artifact operations
//	  - triage ...     — identity candidate operations
//	  - registry ...   — canonical college registry operations
//	  - exams ...      — exam ingestion switchboard
//	  - seats ...      — seat-policy violation triage
//	  - admins ...     — administrator accounts (superadmin)
//	  - audit [n]      — recent audit events
//	  - logout         — end the session
//	  - exit | quit    — leave the program
//
// Role checks live in the command handlers: the REPL dispatches everything
// and lets the handlers refuse what the current role cannot do.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("console %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if !a.isLoggedIn() {
				printlnFn("Available commands: login, exit")
			} else if a.isSuperadmin() {
				printlnFn("Available commands: whoami, dashboard, airlock, triage, registry, exams, seats, admins, audit, logout, exit")
			} else {
				printlnFn("Available commands: whoami, dashboard, airlock, triage, registry, exams, seats, audit, logout, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.Whoami(ctx)

		case "dashboard":
			err = a.Dashboard(ctx)

		case "airlock":
			err = a.Airlock(ctx, args)

		case "triage":
			err = a.Triage(ctx, args)

		case "registry":
			err = a.Registry(ctx, args)

		case "exams":
			err = a.Exams(ctx, args)

		case "seats":
			err = a.Seats(ctx, args)

		case "admins":
			err = a.Admins(ctx, args)

		case "audit":
			err = a.Audit(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
