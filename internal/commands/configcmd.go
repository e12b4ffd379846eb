package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"viraflow/internal/config"
	"viraflow/internal/exitcode"
	"viraflow/internal/store"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd shows the effective extractor settings or changes one of them
// in config.yaml.
type ConfigCmd struct{}

func (c *ConfigCmd) Name() string      { return "config" }
func (c *ConfigCmd) Aliases() []string { return nil }
func (c *ConfigCmd) Synopsis() string  { return "Show or change extractor settings" }
func (c *ConfigCmd) Usage() string     { return "viraflow config [set <key> <value>]" }
func (c *ConfigCmd) NeedsStore() bool  { return false }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ConfigCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		s, err := cfg.LoadSettings()
		if err != nil {
			fmt.Fprintf(errOut, "error: config error: %v\n", err)
			return exitcode.AuthError
		}
		apiKey := "(not set)"
		if s.Extractor.APIKey != "" {
			apiKey = "(set)"
		}
		e := s.Extractor
		for _, kv := range [][2]string{
			{"backend", e.Backend},
			{"endpoint", e.Endpoint},
			{"model", e.Model},
			{"api_key", apiKey},
			{"timeout", e.Timeout},
		} {
			fmt.Fprintf(out, "%-10s %s\n", kv[0]+":", kv[1])
		}
		return exitcode.Success
	}

	if args[0] != "set" {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if len(args) != 3 {
		fmt.Fprintln(errOut, "error: usage: viraflow config set <key> <value>")
		return exitcode.UserError
	}

	// Env overrides stay out of the file.
	s, err := cfg.ReadSettingsFile()
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.AuthError
	}
	if err := s.Set(args[1], args[2]); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := s.Validate(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if err := cfg.SaveSettings(s); err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.AuthError
	}

	printOK(cfg, out)
	return exitcode.Success
}
