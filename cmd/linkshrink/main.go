// Command linkshrink is the link shortener client. Without a command it
// opens the terminal UI; with one (signup, login, links, create, logout,
// whoami) it runs that single action and exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/patric-chuzhbe/linkshrink/internal/cli"
	"github.com/patric-chuzhbe/linkshrink/internal/config"
	"github.com/patric-chuzhbe/linkshrink/internal/gateway"
	"github.com/patric-chuzhbe/linkshrink/internal/logger"
	"github.com/patric-chuzhbe/linkshrink/internal/session"
	"github.com/patric-chuzhbe/linkshrink/internal/session/jsonfile"
	"github.com/patric-chuzhbe/linkshrink/internal/session/memorystorage"
	"github.com/patric-chuzhbe/linkshrink/internal/session/storage"
	"github.com/patric-chuzhbe/linkshrink/internal/tui"
)

var errUsage = errors.New("usage: linkshrink [flags] [" + strings.Join(cli.Commands(), "|") + "]")

// runTUI is swapped out in tests.
var runTUI = func(ctx context.Context, api *gateway.Client, sess *session.Session) error {
	return tui.Run(ctx, api, sess)
}

// openStore picks the session store. An empty SessionFile only happens
// when the home directory is unknown and no file was configured.
func openStore(cfg *config.Config) (storage.Storage, error) {
	if cfg.SessionFile == "" || cfg.SessionFile == config.InMemorySession {
		return memorystorage.New()
	}

	return jsonfile.New(cfg.SessionFile)
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.Errorw("session store close", "error", err)
		}
	}()

	origin, err := session.OriginOf(cfg.GatewayURL)
	if err != nil {
		return err
	}
	sess := session.New(store, origin)
	api := gateway.New(cfg.GatewayURL, cfg.RequestTimeout)

	if len(cfg.Args) == 0 {
		return runTUI(ctx, api, sess)
	}

	err = cli.New(api, sess, out).Run(ctx, cfg.Args)
	if errors.Is(err, cli.ErrUnknownCommand) {
		return fmt.Errorf("%w: %w", err, errUsage)
	}

	return err
}

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("linkshrink config: %v", err)
	}

	logFile := cfg.LogFile
	if logFile == "" && len(cfg.Args) == 0 {
		logFile = os.DevNull
	}
	if err := logger.InitWithOutput(cfg.LogLevel, logFile); err != nil {
		log.Fatalf("linkshrink logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, os.Stdout)
	stop()
	_ = logger.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
