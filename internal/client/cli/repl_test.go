package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	admin    bool

	calls []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) isAdmin() bool    { return f.admin }

func (f *fakeExec) Register(context.Context) error { return f.record("register") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) ListCars(_ context.Context, filter string) error {
	return f.record("cars:" + filter)
}
func (f *fakeExec) AddCar(context.Context) error             { return f.record("addcar") }
func (f *fakeExec) EditCar(_ context.Context, id string) error { return f.record("editcar:" + id) }
func (f *fakeExec) DeleteCar(_ context.Context, id string) error {
	return f.record("delcar:" + id)
}
func (f *fakeExec) ListUsers(context.Context) error { return f.record("users") }
func (f *fakeExec) AddUser(context.Context) error   { return f.record("adduser") }
func (f *fakeExec) EditUser(_ context.Context, id string) error {
	return f.record("edituser:" + id)
}
func (f *fakeExec) DeleteUser(_ context.Context, id string) error {
	return f.record("deluser:" + id)
}
func (f *fakeExec) Profile(context.Context) error        { return f.record("profile") }
func (f *fakeExec) ChangePassword(context.Context) error { return f.record("passwd") }
func (f *fakeExec) DeleteAccount(context.Context) error  { return f.record("delete-account") }

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	capturePrintln(t)

	input := strings.Join([]string{
		"login",
		"cars",
		"cars Ann Smith",
		"addcar",
		"editcar 4",
		"delcar",
		"users",
		"adduser",
		"edituser 2",
		"deluser 3",
		"profile",
		"passwd",
		"delete-account",
		"register",
		"logout",
		"exit",
		"login",
	}, "\n")
	exec := &fakeExec{}

	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{
		"login", "cars:", "cars:Ann Smith", "addcar", "editcar:4", "delcar:",
		"users", "adduser", "edituser:2", "deluser:3",
		"profile", "passwd", "delete-account", "register", "logout",
	}, exec.calls)
}

func TestRunREPL_HelpDependsOnSession(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "ann" }, bufio.NewReader(strings.NewReader("help\nlogin\nhelp\n")))

	var help []string
	for _, l := range *lines {
		if strings.HasPrefix(l, "Available commands") {
			help = append(help, l)
		}
	}
	assert.Len(t, help, 2)
	assert.Equal(t, "Available commands: register, login, exit", help[0])
	assert.Contains(t, help[1], "addcar")
	assert.NotContains(t, help[1], "adduser")
	assert.Contains(t, *lines, "gk (ann) >")
}

func TestRunREPL_UnknownCommandAndEOF(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("\nfoobar\ncars")))

	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Equal(t, []string{"cars:"}, exec.calls, "last line without newline is still executed")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	capturePrintln(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("login\n")))

	assert.Empty(t, exec.calls)
}
