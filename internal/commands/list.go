package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"viraflow/internal/config"
	"viraflow/internal/exitcode"
	"viraflow/internal/output"
	"viraflow/internal/store"
	"viraflow/internal/task"
)

func init() {
	Register(&ListCmd{})
	Register(&BoardCmd{})
	Register(&StatsCmd{})
}

// ListCmd implements the list command.
// Handles both `viraflow` (no args) and `viraflow list`.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks, newest first" }
func (c *ListCmd) Usage() string     { return "viraflow list" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	tasks := st.Tasks()
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "Hello, %s\n", st.UserName())
	}
	for i, t := range tasks {
		output.FormatTask(out, i+1, t)
	}
	return exitcode.Success
}

// BoardCmd implements the board command.
type BoardCmd struct{}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return nil }
func (c *BoardCmd) Synopsis() string  { return "Show tasks by status" }
func (c *BoardCmd) Usage() string     { return "viraflow board" }
func (c *BoardCmd) NeedsStore() bool  { return true }

func (c *BoardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	output.FormatBoard(out, st.Tasks())
	return exitcode.Success
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string      { return "stats" }
func (c *StatsCmd) Aliases() []string { return nil }
func (c *StatsCmd) Synopsis() string  { return "Show progress and categories" }
func (c *StatsCmd) Usage() string     { return "viraflow stats" }
func (c *StatsCmd) NeedsStore() bool  { return true }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	output.FormatStats(out, task.Summarize(st.Tasks()))
	return exitcode.Success
}
