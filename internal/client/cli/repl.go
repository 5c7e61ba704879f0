package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/addressbook/internal/client/client"
	"github.com/dmitrijs2005/addressbook/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Verify(ctx context.Context, args []string) error
	Resend(ctx context.Context, args []string) error
	Forgot(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Me(ctx context.Context, args []string) error
	Avatar(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Birthdays(ctx context.Context, args []string) error
}

type command struct {
	run       func(execIface, context.Context, []string) error
	needLogin bool
}

var commands = map[string]command{
	"register":  {run: execIface.Register},
	"verify":    {run: execIface.Verify},
	"resend":    {run: execIface.Resend},
	"forgot":    {run: execIface.Forgot},
	"reset":     {run: execIface.Reset},
	"login":     {run: execIface.Login},
	"logout":    {run: execIface.Logout, needLogin: true},
	"me":        {run: execIface.Me, needLogin: true},
	"avatar":    {run: execIface.Avatar, needLogin: true},
	"l":         {run: execIface.List, needLogin: true},
	"list":      {run: execIface.List, needLogin: true},
	"search":    {run: execIface.Search, needLogin: true},
	"add":       {run: execIface.Add, needLogin: true},
	"show":      {run: execIface.Show, needLogin: true},
	"edit":      {run: execIface.Edit, needLogin: true},
	"delete":    {run: execIface.Delete, needLogin: true},
	"birthdays": {run: execIface.Birthdays, needLogin: true},
}

const (
	helpLoggedOut = `Available commands:
  register            create an account
  verify <token>      confirm your email
  resend              resend the confirmation email
  forgot              request a password reset email
  reset               set a new password with a reset token
  login               authenticate
  exit                leave the program`

	helpLoggedIn = `Available commands:
  (l)ist [page]       list contacts (all, or one page of 20)
  search <term>       find contacts by name, or by email when term has '@'
  add                 add a contact
  show <id>           show a contact
  edit <id>           edit a contact
  delete <id>         delete a contact
  birthdays [days]    upcoming birthdays (default 7 days)
  me                  show your account
  avatar <path>       upload a new avatar image
  logout              log out
  exit                leave the program`
)

// runREPL starts a read–eval–print loop for the address book CLI.
//
// It reads a line from reader, parses the first token as the command and
// passes the remaining tokens to the matching method on a. Commands that
// need a session are refused while logged out. Errors returned by commands
// are printed and the loop continues. The loop exits on EOF or when the user
// types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ab %s> ", statusFn()))
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
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		c, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if c.needLogin && !a.isLoggedIn() {
			printlnFn("Please log in first")
			continue
		}
		if err := c.run(a, ctx, args); err != nil {
			printlnFn("Error:", describeError(err))
		}
	}
}

// errUsage marks a command invoked with wrong arguments.
var errUsage = errors.New("usage")

func usage(text string) error {
	return fmt.Errorf("%w: %s", errUsage, text)
}

// describeError turns err into a message for the user.
func describeError(err error) string {
	var apiErr *client.APIError

	switch {
	case errors.Is(err, errUsage):
		return strings.TrimPrefix(err.Error(), errUsage.Error()+": ")
	case errors.Is(err, common.ErrEmailNotConfirmed):
		return "email is not confirmed yet; use 'resend' to get a new link"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, client.ErrNotLoggedIn),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return "session expired, please log in again"
	case errors.Is(err, common.ErrRateLimited) && errors.As(err, &apiErr) && apiErr.RetryAfter > 0:
		return fmt.Sprintf("too many requests, retry in %s", apiErr.RetryAfter)
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	default:
		return err.Error()
	}
}
