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
	Register(&NameCmd{})
	Register(&ResetCmd{})
}

// NameCmd prints or sets the display name.
type NameCmd struct{}

func (c *NameCmd) Name() string      { return "name" }
func (c *NameCmd) Aliases() []string { return nil }
func (c *NameCmd) Synopsis() string  { return "Print or set your display name" }
func (c *NameCmd) Usage() string     { return "viraflow name [<name...>]" }
func (c *NameCmd) NeedsStore() bool  { return true }

func (c *NameCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *NameCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(out, st.UserName())
		return exitcode.Success
	}

	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: name required")
		return exitcode.UserError
	}
	st.SetUserName(name)
	printOK(cfg, out)
	return exitcode.Success
}

// ResetCmd wipes all tasks and the display name.
type ResetCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *ResetCmd) SetForce(force bool) {
	c.force = force
}

func (c *ResetCmd) Name() string      { return "reset" }
func (c *ResetCmd) Aliases() []string { return nil }
func (c *ResetCmd) Synopsis() string  { return "Delete all tasks and the user name" }
func (c *ResetCmd) Usage() string     { return "viraflow reset --force" }
func (c *ResetCmd) NeedsStore() bool  { return true }

func (c *ResetCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
	fs.BoolVar(&c.force, "f", false, "")
}

func (c *ResetCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if !c.force {
		fmt.Fprintln(errOut, "error: reset deletes every task; rerun with --force")
		return exitcode.UserError
	}

	// A cancelled context would fail the deletes after memory is cleared.
	st.ClearAllData(context.WithoutCancel(ctx))
	printOK(cfg, out)
	return exitcode.Success
}
