// Package cli runs one controller action per invocation and prints the
// outcome, for scripts and quick checks without the terminal UI.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/patric-chuzhbe/linkshrink/internal/controller"
	"github.com/patric-chuzhbe/linkshrink/internal/models"
	"github.com/patric-chuzhbe/linkshrink/internal/session"
)

// PasswordEnv is read when -password is not given.
const PasswordEnv = "LINKSHRINK_PASSWORD"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrFailed         = errors.New("command failed")
)

type gatewayAPI interface {
	CreateUser(ctx context.Context, credentials models.Credentials) error
	IssueToken(ctx context.Context, credentials models.Credentials) (string, error)
	ListLinks(ctx context.Context, token string) (models.Links, error)
	CreateLink(ctx context.Context, token, originalURL string) error
}

type sessionKeeper interface {
	Token(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	Claims(ctx context.Context) (*session.Claims, error)
}

type CLI struct {
	out       io.Writer
	view      *consoleView
	session   sessionKeeper
	auth      *controller.Auth
	dashboard *controller.Dashboard
}

func New(api gatewayAPI, sess sessionKeeper, out io.Writer) *CLI {
	view := &consoleView{out: out}

	return &CLI{
		out:       out,
		view:      view,
		session:   sess,
		auth:      controller.NewAuth(api, sess, view),
		dashboard: controller.NewDashboard(api, sess, view),
	}
}

// Commands lists the subcommands Run understands.
func Commands() []string {
	return []string{"signup", "login", "links", "create", "logout", "whoami"}
}

// Run executes one subcommand: args[0] is its name.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: none given", ErrUnknownCommand)
	}
	c.view.reset()

	switch args[0] {
	case "signup":
		credentials, err := parseCredentials(args)
		if err != nil {
			return err
		}
		c.auth.SubmitSignup(ctx, credentials.Email, credentials.Password)
		return c.result()

	case "login":
		credentials, err := parseCredentials(args)
		if err != nil {
			return err
		}
		c.auth.SubmitLogin(ctx, credentials.Email, credentials.Password)
		if c.view.page != models.PageDashboard {
			return c.result()
		}
		fmt.Fprintln(c.out, "Logged in.")
		return c.load(ctx)

	case "links":
		return c.load(ctx)

	case "create":
		if len(args) != 2 {
			return fmt.Errorf("usage: create <url>")
		}
		if !c.dashboard.Guard(ctx) {
			return ErrNotLoggedIn
		}
		c.dashboard.SubmitCreateLink(ctx, args[1])
		return c.result()

	case "logout":
		c.dashboard.Logout(ctx)
		fmt.Fprintln(c.out, "Logged out.")
		return nil

	case "whoami":
		claims, err := c.session.Claims(ctx)
		if errors.Is(err, session.ErrNoToken) {
			return ErrNotLoggedIn
		}
		if err != nil {
			fmt.Fprintln(c.out, "Logged in (token carries no readable identity).")
			return nil
		}
		fmt.Fprintf(c.out, "Logged in as %s\n", claims.Subject)
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
}

func (c *CLI) load(ctx context.Context) error {
	if !c.dashboard.Load(ctx) {
		return ErrNotLoggedIn
	}

	return c.result()
}

// result maps what the controllers showed into an exit status.
func (c *CLI) result() error {
	if c.view.page == models.PageLogin {
		return ErrNotLoggedIn
	}
	if c.view.failed() {
		return ErrFailed
	}

	return nil
}

func parseCredentials(args []string) (models.Credentials, error) {
	var credentials models.Credentials
	flagSet := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flagSet.StringVar(&credentials.Email, "email", "", "account email")
	flagSet.StringVar(&credentials.Password, "password", "", "account password (or $"+PasswordEnv+")")
	if err := flagSet.Parse(args[1:]); err != nil {
		return models.Credentials{}, err
	}
	if credentials.Password == "" {
		credentials.Password = os.Getenv(PasswordEnv)
	}

	return credentials, nil
}
