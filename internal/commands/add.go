package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"viraflow/internal/config"
	"viraflow/internal/exitcode"
	"viraflow/internal/store"
)

func init() {
	Register(&AddCmd{})
	Register(&EditCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	category string
	date     string
}

// SetCategory sets the category (for testing).
func (c *AddCmd) SetCategory(category string) {
	c.category = category
}

// SetDate sets the date (for testing).
func (c *AddCmd) SetDate(date string) {
	c.date = date
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "viraflow add [--category <c>] [--date <d>] <title...>"
}
func (c *AddCmd) NeedsStore() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
	fs.StringVar(&c.date, "date", "", "")
	fs.StringVar(&c.date, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	st.AddTask(title, strings.TrimSpace(c.category), strings.TrimSpace(c.date))
	printOK(cfg, out)
	return exitcode.Success
}

// EditCmd implements the edit command. Omitted fields keep their
// current values.
type EditCmd struct {
	category optString
	date     optString
}

// SetCategory sets the category (for testing).
func (c *EditCmd) SetCategory(category string) {
	_ = c.category.Set(category)
}

// SetDate sets the date (for testing).
func (c *EditCmd) SetDate(date string) {
	_ = c.date.Set(date)
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task's title, category or date" }
func (c *EditCmd) Usage() string {
	return "viraflow edit [--category <c>] [--date <d>] <ref> [<title...>]"
}
func (c *EditCmd) NeedsStore() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.category, c.date = optString{}, optString{}
	fs.Var(&c.category, "category", "")
	fs.Var(&c.category, "c", "")
	fs.Var(&c.date, "date", "")
	fs.Var(&c.date, "d", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	t, ok := lookupTask(st, args, errOut)
	if !ok {
		return exitcode.UserError
	}

	title := t.Title
	if len(args) > 1 {
		title = strings.TrimSpace(strings.Join(args[1:], " "))
		if title == "" {
			fmt.Fprintln(errOut, "error: title required")
			return exitcode.UserError
		}
	}
	if len(args) == 1 && !c.category.set && !c.date.set {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	category := strings.TrimSpace(c.category.or(t.Category))
	date := strings.TrimSpace(c.date.or(t.Date))
	if !st.EditTask(t.ID, title, category, date) {
		fmt.Fprintf(errOut, "error: task not found: %s\n", t.ID)
		return exitcode.UserError
	}

	printOK(cfg, out)
	return exitcode.Success
}
