package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"viraflow/internal/config"
	"viraflow/internal/exitcode"
	"viraflow/internal/output"
	"viraflow/internal/store"
	"viraflow/internal/task"
)

func init() {
	Register(&MoveCmd{})
}

// MoveCmd implements the move command. Moving never changes the
// completed flag.
type MoveCmd struct{}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Move a task on the board" }
func (c *MoveCmd) Usage() string {
	return "viraflow move <ref> <next|prev|todo|in-progress|done>"
}
func (c *MoveCmd) NeedsStore() bool { return true }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	t, ok := lookupTask(st, args, errOut)
	if !ok {
		return exitcode.UserError
	}
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: target status required")
		return exitcode.UserError
	}

	var target task.Status
	switch dir := strings.ToLower(strings.TrimSpace(args[1])); dir {
	case "next", "prev":
		step := t.Status.Next
		if dir == "prev" {
			step = t.Status.Prev
		}
		next, ok := step()
		if !ok {
			fmt.Fprintf(errOut, "error: cannot move %s from %s\n", dir, output.StatusLabel(t.Status))
			return exitcode.UserError
		}
		target = next
	default:
		s, err := task.ParseStatus(dir)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		target = s
	}

	st.UpdateTaskStatus(t.ID, target)
	printOK(cfg, out)
	return exitcode.Success
}
