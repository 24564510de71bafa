package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App implements
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	ListCars(ctx context.Context, filter string) error
	AddCar(ctx context.Context) error
	EditCar(ctx context.Context, id string) error
	DeleteCar(ctx context.Context, id string) error

	ListUsers(ctx context.Context) error
	AddUser(ctx context.Context) error
	EditUser(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error

	Profile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a until the
// user types "exit"/"quit" or the input ends.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, cars [owner filter], addcar, editcar [id], delcar [id],
//	               profile, passwd, delete-account, logout, exit
//	Admins also:   users, adduser, edituser [id], deluser [id]
//
// Errors returned by handlers are ignored here; handlers report them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		status := statusFn()
		if status != "" {
			status = "(" + status + ") "
		}
		printlnFn(fmt.Sprintf("gk %s>", status))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		arg := strings.Join(args, " ")

		switch cmd {
		case "help":
			printlnFn(helpText(a))

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)

		case "cars", "l":
			_ = a.ListCars(ctx, arg)
		case "addcar":
			_ = a.AddCar(ctx)
		case "editcar":
			_ = a.EditCar(ctx, arg)
		case "delcar":
			_ = a.DeleteCar(ctx, arg)

		case "users":
			_ = a.ListUsers(ctx)
		case "adduser":
			_ = a.AddUser(ctx)
		case "edituser":
			_ = a.EditUser(ctx, arg)
		case "deluser":
			_ = a.DeleteUser(ctx, arg)

		case "profile":
			_ = a.Profile(ctx)
		case "passwd":
			_ = a.ChangePassword(ctx)
		case "delete-account":
			_ = a.DeleteAccount(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func helpText(a execIface) string {
	switch {
	case !a.isLoggedIn():
		return "Available commands: register, login, exit"
	case a.isAdmin():
		return "Available commands: cars [owner], addcar, editcar [id], delcar [id], " +
			"users, adduser, edituser [id], deluser [id], profile, passwd, delete-account, logout, exit"
	default:
		return "Available commands: cars, addcar, editcar [id], delcar [id], profile, passwd, delete-account, logout, exit"
	}
}
