package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"viraflow/internal/commands"
	"viraflow/internal/config"
	"viraflow/internal/exitcode"
	"viraflow/internal/logging"
	"viraflow/internal/store"
)

// closeTimeout bounds how long the dispatcher waits for pending writes
// after a command returns.
const closeTimeout = 5 * time.Second

// StoreFactory opens the task store for cfg. The returned store must be
// Uninitialized; the dispatcher hydrates and closes it.
type StoreFactory func(ctx context.Context, cfg *config.Config) (*store.Store, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  StoreFactory
}

// NewDispatcher creates a new dispatcher with the given registry and store factory.
func NewDispatcher(registry *commands.Registry, factory StoreFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return flagError(err, errOut)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	log, err := logging.New(errOut, debug)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	defer func() { _ = log.Sync() }()
	cfg.Logger = log.With(zap.String("command", cmd.Name()))

	if !cmd.NeedsStore() {
		return cmd.Run(ctx, cfg, nil, positionalArgs, out, errOut)
	}

	if d.factory == nil {
		fmt.Fprintln(errOut, "error: storage error: no store configured")
		return exitcode.StorageError
	}
	st, err := d.factory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: storage error: %v\n", err)
		return exitcode.StorageError
	}
	code := exitcode.StorageError
	if err := st.Hydrate(ctx); err != nil {
		fmt.Fprintf(errOut, "error: storage error: %v\n", err)
	} else {
		code = cmd.Run(ctx, cfg, st, positionalArgs, out, errOut)
	}
	return closeStore(ctx, cfg, st, code, errOut)
}

// closeStore flushes and closes st, turning a successful code into
// StorageError when that fails.
func closeStore(ctx context.Context, cfg *config.Config, st *store.Store, code int, errOut io.Writer) int {
	// Pending writes must land even if ctx was cancelled by a signal.
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := st.Close(closeCtx); err != nil {
		cfg.Log().Debug("store close failed", zap.Error(err))
		fmt.Fprintf(errOut, "error: storage error: %v\n", err)
		if code == exitcode.Success {
			code = exitcode.StorageError
		}
	}
	return code
}

// flagError maps flag parse errors to user-facing messages.
func flagError(err error, errOut io.Writer) int {
	errStr := err.Error()

	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(errOut, "error: unknown flag: -help (run: viraflow help)")
		return exitcode.UserError
	}

	// Check for missing flag value
	if strings.Contains(errStr, "flag needs an argument") {
		flagPart := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagPart)
		return exitcode.UserError
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
