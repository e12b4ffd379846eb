package commands

import (
	"context"
	"flag"
	"io"

	"viraflow/internal/config"
	"viraflow/internal/exitcode"
	"viraflow/internal/store"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command. Completing a task moves it to
// done; un-completing it moves it back to todo.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Mark a task completed, or reopen it" }
func (c *ToggleCmd) Usage() string     { return "viraflow toggle <ref>" }
func (c *ToggleCmd) NeedsStore() bool  { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	t, ok := lookupTask(st, args, errOut)
	if !ok {
		return exitcode.UserError
	}

	st.ToggleTaskCompletion(t.ID)
	printOK(cfg, out)
	return exitcode.Success
}
