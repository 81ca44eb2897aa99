// Command lista is a terminal client for the shopping list. It keeps the
// list in a local data directory and talks to the list server when one is
// configured (CLIENT_SERVER_URL).
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lista-zakupow/internal/config"
	"lista-zakupow/internal/logger"
	"lista-zakupow/internal/persistence"
	"lista-zakupow/internal/remote"
	"lista-zakupow/internal/shoppinglist"
	"lista-zakupow/internal/storage"
)

const usage = `usage: lista <command> [args]

commands:
  show                               print the owned list
  recipes <file>                     print recipes from a JSON file
  add <file> <recipeId> [line]       add one ingredient line, or all of them
  toggle <itemId>                    check or uncheck an item
  remove <itemId>                    remove an item
  clear                              remove every item
  share                              create a share link for the owned list
  open <url>                         open a shared list
  toggle-shared <url> <itemId>       toggle an item on a shared list
  watch <url>                        follow a shared list until interrupted
  tasks                              print timeline task flags
  task <taskId> done|undone          set a timeline task flag`

type app struct {
	machine *shoppinglist.Machine
	store   *persistence.Store
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs one command and returns the process exit code. Deferred
// cleanup runs before main exits.
func execute(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stderr)

	kv, err := storage.NewLocalStorage(cfg.Client.DataDir)
	if err != nil {
		log.Error("Failed to open data directory", "path", cfg.Client.DataDir, "error", err)
		return 1
	}
	store := persistence.New(kv, persistence.WithLogger(log))

	client, err := remote.New(cfg.Client.ServerURL, store,
		remote.WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout}),
		remote.WithLogger(log),
	)
	if err != nil {
		log.Error("Failed to create list server client", "error", err)
		return 1
	}
	if client.BaseURL() == "" {
		log.Debug("No list server configured, working offline")
	}

	machine, err := shoppinglist.New(client, store,
		shoppinglist.WithAppURL(cfg.AppURL),
		shoppinglist.WithLogger(log),
	)
	if err != nil {
		log.Error("Failed to create shopping list", "error", err)
		return 1
	}
	defer machine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{machine: machine, store: store}
	if err := a.run(ctx, args[0], args[1:]); err != nil {
		if msg := errorMessage(err); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		log.Debug("Command failed", "command", args[0], "error", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}
