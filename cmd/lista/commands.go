package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"lista-zakupow/internal/models"
	"lista-zakupow/internal/sharecodec"
	"lista-zakupow/internal/shoppinglist"
)

var errUsage = errors.New("invalid arguments")

// commandError carries text meant for the terminal as is. err, when set,
// is the cause kept for the debug log.
type commandError struct {
	msg string
	err error
}

func (e *commandError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *commandError) Unwrap() error { return e.err }

func failf(format string, args ...any) error {
	return &commandError{msg: fmt.Sprintf(format, args...)}
}

// errorMessage is what the user sees for err; usage errors print nothing
// more since the usage text is already out.
func errorMessage(err error) string {
	var cmdErr *commandError
	switch {
	case errors.Is(err, errUsage):
		return ""
	case errors.As(err, &cmdErr):
		return cmdErr.msg
	default:
		return shoppinglist.UserMessage(err)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	out := os.Stdout
	switch cmd {
	case "show":
		printList(out, a.machine)
		return nil
	case "recipes":
		if len(args) != 1 {
			return usageError()
		}
		recipes, err := loadRecipes(args[0])
		if err != nil {
			return err
		}
		for _, r := range recipes {
			fmt.Fprintf(out, "%s\t%s (%d)\n", r.ID, r.Name, len(r.Ingredients))
		}
		return nil
	case "add":
		return a.add(ctx, out, args)
	case "toggle":
		if len(args) != 1 {
			return usageError()
		}
		return a.report(out, a.machine.ToggleItem(ctx, args[0]), "Item "+args[0]+" not found on the list")
	case "remove":
		if len(args) != 1 {
			return usageError()
		}
		return a.report(out, a.machine.RemoveItem(ctx, args[0]), "Item "+args[0]+" not found on the list")
	case "clear":
		a.machine.ClearList(ctx)
		printList(out, a.machine)
		return nil
	case "share":
		meta, err := a.machine.CreateShareLink(ctx)
		if err != nil {
			return err
		}
		if err := a.machine.Flush(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\nexpires %s\n", meta.URL, time.UnixMilli(meta.ExpiresAt).Format(time.DateOnly))
		return nil
	case "open":
		if len(args) != 1 {
			return usageError()
		}
		if err := a.open(ctx, args[0]); err != nil {
			return err
		}
		printList(out, a.machine)
		return nil
	case "toggle-shared":
		if len(args) != 2 {
			return usageError()
		}
		if err := a.open(ctx, args[0]); err != nil {
			return err
		}
		if !a.machine.ToggleItem(ctx, args[1]) {
			return failf("Item %s not found on the list", args[1])
		}
		if err := a.machine.Flush(ctx); err != nil {
			return err
		}
		printList(out, a.machine)
		return nil
	case "watch":
		if len(args) != 1 {
			return usageError()
		}
		return a.watch(ctx, out, args[0])
	case "tasks":
		tasks := a.store.LoadTasks()
		ids := make([]string, 0, len(tasks))
		for id := range tasks {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(out, "%s\t%t\n", id, tasks[id])
		}
		return nil
	case "task":
		if len(args) != 2 || (args[1] != "done" && args[1] != "undone") {
			return usageError()
		}
		return a.store.SetTaskDone(args[0], args[1] == "done")
	default:
		return usageError()
	}
}

func usageError() error {
	fmt.Fprintln(os.Stderr, usage)
	return errUsage
}

func (a *app) report(out io.Writer, changed bool, miss string) error {
	if !changed {
		return &commandError{msg: miss}
	}
	printList(out, a.machine)
	return nil
}

func (a *app) add(ctx context.Context, out io.Writer, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usageError()
	}
	recipes, err := loadRecipes(args[0])
	if err != nil {
		return err
	}
	idx := -1
	for i, r := range recipes {
		if r.ID == args[1] {
			idx = i
			break
		}
	}
	if idx < 0 {
		return failf("Recipe %s not found in %s", args[1], args[0])
	}

	var changed bool
	if len(args) == 3 {
		changed = a.machine.AddIngredient(ctx, recipes[idx], args[2])
	} else {
		changed = a.machine.AddAllIngredients(ctx, recipes[idx])
	}
	return a.report(out, changed, "Ingredient is not part of the recipe")
}

func (a *app) open(ctx context.Context, rawURL string) error {
	shareID, token, err := sharecodec.ParseShareURL(rawURL)
	if err != nil {
		return shoppinglist.ErrNotFound
	}
	return a.machine.LoadSharedList(ctx, shareID, token)
}

func (a *app) watch(ctx context.Context, out io.Writer, rawURL string) error {
	if err := a.open(ctx, rawURL); err != nil {
		return err
	}
	if err := a.machine.StartSync(ctx); err != nil {
		return err
	}
	defer a.machine.StopSync()

	printList(out, a.machine)
	last := a.machine.Snapshot().LastSyncTimestamp

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ts := a.machine.Snapshot().LastSyncTimestamp; ts != last {
				last = ts
				printList(out, a.machine)
			}
		}
	}
}

func loadRecipes(path string) ([]models.Recipe, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &commandError{msg: "Cannot read recipes from " + path, err: err}
	}
	var recipes []models.Recipe
	if err := json.Unmarshal(raw, &recipes); err != nil {
		return nil, &commandError{msg: "Recipes file " + path + " is not valid JSON", err: err}
	}
	return recipes, nil
}

func printList(out io.Writer, m *shoppinglist.Machine) {
	state := m.Snapshot()
	stats := m.Stats()

	header := "Shopping list"
	if state.IsShared {
		header = fmt.Sprintf("Shared list %s", state.ShareID)
		if state.IsOwner {
			header += " (owner)"
		}
	}
	fmt.Fprintf(out, "%s: %d/%d checked, %d recipes, %.0f%%\n", header, stats.Checked, stats.Items, stats.Recipes, stats.Progress)

	for _, group := range m.GroupedItems() {
		fmt.Fprintf(out, "\n%s\n", group.RecipeName)
		for _, item := range group.Items {
			mark := " "
			if item.Checked {
				mark = "x"
			}
			fmt.Fprintf(out, "  [%s] %s %s  (%s)\n", mark, item.IngredientName, item.Amount, item.ID)
		}
	}
}
