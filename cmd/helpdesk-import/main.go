// Command helpdesk-import migrates the threads of a local mbox archive
// into a helpdesk as tickets, one ticket per thread, resuming cleanly
// after interruptions.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/nhle/helpdesk-import/internal/credential"
	"github.com/nhle/helpdesk-import/internal/helpdesk"
	"github.com/nhle/helpdesk-import/internal/mbox"
	"github.com/nhle/helpdesk-import/internal/model"
	"github.com/nhle/helpdesk-import/internal/retry"
	"github.com/nhle/helpdesk-import/internal/sync"
	"github.com/nhle/helpdesk-import/internal/ui"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", model.DefaultConfigPath(),
		"path to the YAML configuration file")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return exitError
	}

	switch args[0] {
	case "run":
		return runImport(*configPath, args[1:])
	case "init":
		return runInit(*configPath)
	case "set-key":
		return runSetKey()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		return exitError
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: helpdesk-import [-config path] <command>

Commands:
  run [--purge] [--yes]  import the mbox archive into the helpdesk
  init                   write a default configuration file
  set-key                store the helpdesk API key in the system keyring

Run flags:
  --purge  discard previously recorded progress before importing
  --yes    never prompt; keep progress and fail on missing preconditions
`)
}

// runImport executes the import pipeline and maps its outcome onto an
// exit code.
func runImport(configPath string, args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	purge := fs.Bool("purge", false, "discard previously recorded progress")
	yes := fs.Bool("yes", false, "never prompt")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(err.Error()))
		return exitError
	}
	if *yes {
		cfg.NonInteractive = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(err.Error()))
		return exitError
	}

	logger := newLogger(cfg.LogLevel)

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey, err = credential.Get(credential.APIKeyItem)
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(
				"no API key: set api_key in the config or run `helpdesk-import set-key`"))
			return exitError
		}
	}

	client := helpdesk.NewClient(cfg.APIBaseURL(), apiKey)
	pusher := helpdesk.NewPusher(client, retry.Policy{
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
		MaxAttempts: cfg.Retry.MaxAttempts,
	}, nil, logger)

	var prompter ui.Prompter = ui.Interactive{}
	if cfg.NonInteractive {
		prompter = ui.Scripted{ConfirmAnswer: false}
	}

	runner := &sync.Runner{
		Config:   cfg,
		Source:   mbox.NewReader(cfg.MboxPath, logger),
		API:      client,
		Pusher:   pusher,
		Prompter: prompter,
		Logger:   logger,
	}
	if *purge {
		runner.Purge = purge
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := runner.Run(ctx)
	if err != nil {
		var preflightErr *sync.PreflightError
		if errors.As(err, &preflightErr) {
			fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(preflightErr.Reason))
			fmt.Fprintln(os.Stderr, ui.SubtleStyle.Render(
				"To fix: "+preflightErr.Remediation))
		} else {
			fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(err.Error()))
		}
		return exitError
	}

	if outcome == sync.OutcomeInterrupted {
		return exitInterrupted
	}
	return exitOK
}

// runInit writes a default configuration file for the operator to edit.
func runInit(configPath string) int {
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(os.Stderr, "config already exists at %s\n", configPath)
		return exitError
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(err.Error()))
		return exitError
	}
	if err := model.SaveConfig(configPath, cfg); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(err.Error()))
		return exitError
	}

	fmt.Printf("wrote %s — fill in domain and mbox_path before running\n", configPath)
	return exitOK
}

// runSetKey stores the API key in the system keyring, reading it
// without echo when stdin is a terminal.
func runSetKey() int {
	var key string

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Helpdesk API key: ")
		data, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(err.Error()))
			return exitError
		}
		key = string(data)
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("reading API key: "+err.Error()))
			return exitError
		}
		key = line
	}

	key = strings.TrimSpace(key)
	if key == "" {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("empty API key"))
		return exitError
	}

	if err := credential.Set(credential.APIKeyItem, key); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render(err.Error()))
		return exitError
	}

	fmt.Println("API key stored in system keyring")
	return exitOK
}

// newLogger builds the process logger writing to stderr at the
// configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	}))
}
