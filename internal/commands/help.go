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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "viraflow help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range DefaultRegistry.All() {
		name := cmd.Name()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			name += ", " + strings.Join(aliases, ", ")
		}
		fmt.Fprintf(out, "  %-20s %s\n", name, cmd.Synopsis())
	}
	return exitcode.Success
}

const helpText = `Usage:
  viraflow
  viraflow list [common flags]
  viraflow board [common flags]
  viraflow stats [common flags]
  viraflow add [common flags] [--category <c>] [--date <d>] <title...>
  viraflow edit [common flags] [--category <c>] [--date <d>] <ref> [<title...>]
  viraflow move [common flags] <ref> <next|prev|todo|in-progress|done>
  viraflow toggle [common flags] <ref>
  viraflow rm [common flags] <ref>
  viraflow name [common flags] [<name...>]
  viraflow reset [common flags] --force
  viraflow capture [common flags] [--image <file>] <text...>
  viraflow split [common flags] <ref>
  viraflow coach [common flags]
  viraflow export [common flags] [--list <list-name>] [--all]
  viraflow config [common flags] [set <key> <value>]
  viraflow login [common flags]
  viraflow logout [common flags]
  viraflow help
  viraflow version

<ref> is a task number from the list view or a full task id.
config keys: backend, endpoint, model, api_key, timeout.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
