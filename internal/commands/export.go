package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"viraflow/internal/backend/googletasks"
	"viraflow/internal/config"
	"viraflow/internal/exitcode"
	"viraflow/internal/export"
	"viraflow/internal/store"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd pushes local tasks to Google Tasks. It never reads remote
// tasks back.
type ExportCmd struct {
	listName string
	all      bool
	target   export.Target
}

// SetTarget sets the export target (for testing).
func (c *ExportCmd) SetTarget(t export.Target) {
	c.target = t
}

// SetListName sets the list name (for testing).
func (c *ExportCmd) SetListName(name string) {
	c.listName = name
}

// SetAll includes completed tasks (for testing).
func (c *ExportCmd) SetAll(all bool) {
	c.all = all
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Copy tasks to Google Tasks" }
func (c *ExportCmd) Usage() string     { return "viraflow export [--list <list-name>] [--all]" }
func (c *ExportCmd) NeedsStore() bool  { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	// Remote inserts land at the top, so push oldest first to keep the
	// newest task on top there too.
	tasks := st.Tasks()
	slices.Reverse(tasks)
	items := export.Items(tasks, c.all)
	if len(items) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "nothing to export")
		}
		return exitcode.Success
	}

	target := c.target
	if target == nil {
		if !cfg.HasOAuthClient() {
			fmt.Fprintf(errOut, "error: %s not found in %s\n", config.OAuthClientFile, cfg.Dir)
			return exitcode.AuthError
		}
		if !cfg.HasToken() {
			fmt.Fprintln(errOut, "error: not logged in (run: viraflow login)")
			return exitcode.AuthError
		}
		client, err := googletasks.New(ctx, cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: auth error: %v\n", err)
			return exitcode.AuthError
		}
		target = client
	}

	var list export.List
	var err error
	if c.listName != "" {
		list, err = target.ResolveList(ctx, c.listName)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				fmt.Fprintf(errOut, "error: list not found: %s\n", c.listName)
				return exitcode.UserError
			}
			if strings.Contains(err.Error(), "ambiguous") {
				fmt.Fprintf(errOut, "error: ambiguous list name: %s\n", c.listName)
				return exitcode.UserError
			}
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
	} else {
		list, err = target.DefaultList(ctx)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
	}

	n, err := export.Push(ctx, target, list.ID, items)
	if err != nil {
		fmt.Fprintf(errOut, "error: exported %d of %d tasks: %v\n", n, len(items), err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "exported %d tasks to %s\n", n, list.Title)
	}
	return exitcode.Success
}
