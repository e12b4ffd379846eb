package cli_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"viraflow/internal/cli"
	"viraflow/internal/commands"
	"viraflow/internal/config"
	"viraflow/internal/exitcode"
	"viraflow/internal/securestore"
	"viraflow/internal/store"
)

// testFactory returns a store factory backed by kv, so state survives
// across dispatches like it does on disk.
func testFactory(kv securestore.Store) cli.StoreFactory {
	return func(ctx context.Context, cfg *config.Config) (*store.Store, error) {
		return store.New(kv, store.WithLogger(cfg.Log())), nil
	}
}

// closeFailKV fails when the store closes it.
type closeFailKV struct {
	*securestore.Memory
}

func (closeFailKV) Close() error { return errors.New("disk full") }

// countCloseKV counts Close calls.
type countCloseKV struct {
	*securestore.Memory
	closed int
}

func (k *countCloseKV) Close() error {
	k.closed++
	return nil
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func newDispatcher() *cli.Dispatcher {
	return cli.NewDispatcher(commands.DefaultRegistry, testFactory(securestore.NewMemory()))
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, newDispatcher(), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, stderr, code := run(t, newDispatcher(), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, newDispatcher(), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !bytes.Contains([]byte(stdout), []byte("Usage:")) {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, stderr, code := run(t, newDispatcher(), "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "viraflow 0.1.0\n" {
		t.Errorf("expected 'viraflow 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := run(t, newDispatcher(), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	_, stderr, code := run(t, newDispatcher(), "add", "--category")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -category\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	stdout, stderr, code := run(t, newDispatcher())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("expected 'no tasks found\\n', got %q", stdout)
	}
}

func TestDispatcher_StatePersistsAcrossRuns(t *testing.T) {
	d := newDispatcher()
	dir := t.TempDir()

	steps := []struct {
		args []string
		out  string
	}{
		{[]string{"add", "--config", dir, "-c", "Home", "Buy", "milk"}, "ok\n"},
		{[]string{"add", "--config", dir, "--quiet", "Write report"}, ""},
		{[]string{"name", "--config", dir, "Ada"}, "ok\n"},
		{[]string{"toggle", "--config", dir, "2"}, "ok\n"},
		{[]string{"list", "--config", dir}, "Hello, Ada\n   1  [ ] Write report  (General)\n   2  [x] Buy milk  (Home)\n"},
	}
	for _, step := range steps {
		stdout, stderr, code := run(t, d, step.args...)
		if code != exitcode.Success {
			t.Fatalf("%v: expected success, got %d (%s)", step.args, code, stderr)
		}
		if stdout != step.out {
			t.Errorf("%v: expected %q, got %q", step.args, step.out, stdout)
		}
	}
}

func TestDispatcher_EditFlagsDoNotLeak(t *testing.T) {
	d := newDispatcher()
	run(t, d, "add", "-c", "Work", "Report")
	run(t, d, "edit", "-c", "School", "1")

	_, stderr, code := run(t, d, "edit", "1")
	if code != exitcode.UserError || stderr != "error: nothing to change\n" {
		t.Errorf("expected nothing to change, got %d %q", code, stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (*store.Store, error) {
		return nil, errors.New("identity.txt: permission denied")
	})

	_, stderr, code := run(t, d, "list")
	if code != exitcode.StorageError {
		t.Errorf("expected exit code %d, got %d", exitcode.StorageError, code)
	}
	expected := "error: storage error: identity.txt: permission denied\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}

	// Commands that do not touch tasks never open the store.
	if _, _, code := run(t, d, "version"); code != exitcode.Success {
		t.Errorf("version should not need the store, got %d", code)
	}
}

func TestDispatcher_CloseError(t *testing.T) {
	kv := closeFailKV{securestore.NewMemory()}
	d := cli.NewDispatcher(commands.DefaultRegistry, testFactory(kv))

	stdout, stderr, code := run(t, d, "add", "Buy milk")
	if code != exitcode.StorageError {
		t.Errorf("expected exit code %d, got %d", exitcode.StorageError, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if stderr != "error: storage error: disk full\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestDispatcher_HydrateErrorClosesStore(t *testing.T) {
	kv := &countCloseKV{Memory: securestore.NewMemory()}
	d := cli.NewDispatcher(commands.DefaultRegistry, func(ctx context.Context, cfg *config.Config) (*store.Store, error) {
		st := store.New(kv)
		if err := st.Hydrate(ctx); err != nil {
			return nil, err
		}
		return st, nil // hydrated twice by the dispatcher
	})

	stdout, stderr, code := run(t, d, "list")
	if code != exitcode.StorageError {
		t.Errorf("expected exit code %d, got %d", exitcode.StorageError, code)
	}
	if stdout != "" {
		t.Errorf("command must not run, got %q", stdout)
	}
	if stderr != "error: storage error: store: already hydrated\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if kv.closed != 1 {
		t.Errorf("expected the store to be closed once, got %d", kv.closed)
	}
}
