package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Use(ctx context.Context, name string) error
	List(ctx context.Context, page int) error
	ChangePage(ctx context.Context, delta int) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Save(ctx context.Context) error
	Cancel(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Profile(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	RemoveImage(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, help, exit"
	helpLoggedIn  = "Available commands: users, items, (l)ist [page], next, prev, add, edit <id>, save, cancel, delete <id>, profile, upload <path>, rmimage, whoami, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the userdesk client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help             — show available commands
//	  - login            — authenticate
//	  - exit | quit      — leave the program
//
//	Logged in:
//	  - users | items    — switch to a collection and load its first page
//	  - list [page]      — show (or load) a page of the current collection
//	  - next | prev      — move one page
//	  - add              — fill in a new record
//	  - edit <id>        — edit a record from the current page
//	  - save | cancel    — submit or discard the pending form
//	  - delete <id>      — delete a record (asks for confirmation)
//	  - profile          — show the profile
//	  - upload <path>    — set the profile image
//	  - rmimage          — delete the profile image (asks for confirmation)
//	  - whoami | logout
//
// Errors returned by command handlers are ignored here; handlers report
// their own failures. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ud %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
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
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "users", "items":
			_ = a.Use(ctx, cmd)

		case "l", "list":
			page := 0
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					printlnFn("Usage: list [page]")
					continue
				}
				page = n
			}
			_ = a.List(ctx, page)

		case "next":
			_ = a.ChangePage(ctx, +1)

		case "prev":
			_ = a.ChangePage(ctx, -1)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.Edit(ctx, args[0])

		case "save":
			_ = a.Save(ctx)

		case "cancel":
			_ = a.Cancel(ctx)

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.Delete(ctx, args[0])

		case "profile":
			_ = a.Profile(ctx)

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <path>")
				continue
			}
			_ = a.Upload(ctx, strings.Join(args, " "))

		case "rmimage":
			_ = a.RemoveImage(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
