package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"viraflow/internal/config"
	"viraflow/internal/exitcode"
	"viraflow/internal/extract"
	"viraflow/internal/output"
	"viraflow/internal/store"
	"viraflow/internal/task"
)

// maxImageBytes caps the size of a captured image.
const maxImageBytes = 10 << 20

func init() {
	Register(&CaptureCmd{})
	Register(&SplitCmd{})
	Register(&CoachCmd{})
}

// newExtractor builds the extractor configured in config.yaml.
func newExtractor(ctx context.Context, cfg *config.Config) (extract.Extractor, error) {
	settings, err := cfg.LoadSettings()
	if err != nil {
		return nil, err
	}
	cfg.Log().Debug("extractor", zap.String("backend", settings.Extractor.Backend))
	return extract.New(ctx, settings.Extractor, cfg.Log())
}

// extractorOrDefault returns ex, or the configured extractor when ex is
// nil. Errors are printed and mapped to an exit code.
func extractorOrDefault(ctx context.Context, cfg *config.Config, ex extract.Extractor, errOut io.Writer) (extract.Extractor, int) {
	if ex != nil {
		return ex, exitcode.Success
	}
	ex, err := newExtractor(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return nil, exitcode.AuthError
	}
	return ex, exitcode.Success
}

// printAdded lists newly created tasks with their list positions.
func printAdded(cfg *config.Config, st *store.Store, added []task.Task, out io.Writer) {
	if cfg.Quiet {
		return
	}
	if len(added) == 0 {
		fmt.Fprintln(out, "no tasks found in input")
		return
	}
	tasks := st.Tasks()
	for _, t := range added {
		output.FormatTask(out, position(tasks, t.ID), t)
	}
}

// CaptureCmd turns a free-form note and/or an image into tasks.
type CaptureCmd struct {
	image     string
	extractor extract.Extractor
}

// SetExtractor sets the extractor (for testing).
func (c *CaptureCmd) SetExtractor(ex extract.Extractor) {
	c.extractor = ex
}

// SetImage sets the image path (for testing).
func (c *CaptureCmd) SetImage(path string) {
	c.image = path
}

func (c *CaptureCmd) Name() string      { return "capture" }
func (c *CaptureCmd) Aliases() []string { return []string{"brain-dump"} }
func (c *CaptureCmd) Synopsis() string  { return "Extract tasks from a note or image" }
func (c *CaptureCmd) Usage() string     { return "viraflow capture [--image <file>] <text...>" }
func (c *CaptureCmd) NeedsStore() bool  { return true }

func (c *CaptureCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.image, "image", "", "")
	fs.StringVar(&c.image, "i", "", "")
}

func (c *CaptureCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	req := extract.Request{Text: strings.TrimSpace(strings.Join(args, " "))}
	if c.image != "" {
		data, err := readImage(c.image)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		req.Image = data
		req.ImageMIME = http.DetectContentType(data)
	}
	if req.Empty() {
		fmt.Fprintln(errOut, "error: text or --image required")
		return exitcode.UserError
	}

	ex, code := extractorOrDefault(ctx, cfg, c.extractor, errOut)
	if code != exitcode.Success {
		return code
	}

	proposals, err := ex.Analyze(ctx, req)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyRequest) {
			fmt.Fprintln(errOut, "error: text or --image required")
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: analyze failed: %v\n", err)
		return exitcode.BackendError
	}

	printAdded(cfg, st, extract.Apply(st, proposals), out)
	return exitcode.Success
}

func readImage(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return nil, fmt.Errorf("image too large: %d bytes (max %d)", info.Size(), maxImageBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty: %s", path)
	}
	return data, nil
}

// SplitCmd breaks one task into sub-tasks. The original task is kept.
type SplitCmd struct {
	extractor extract.Extractor
}

// SetExtractor sets the extractor (for testing).
func (c *SplitCmd) SetExtractor(ex extract.Extractor) {
	c.extractor = ex
}

func (c *SplitCmd) Name() string      { return "split" }
func (c *SplitCmd) Aliases() []string { return []string{"decompose"} }
func (c *SplitCmd) Synopsis() string  { return "Break a task into smaller steps" }
func (c *SplitCmd) Usage() string     { return "viraflow split <ref>" }
func (c *SplitCmd) NeedsStore() bool  { return true }

func (c *SplitCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SplitCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	t, ok := lookupTask(st, args, errOut)
	if !ok {
		return exitcode.UserError
	}

	ex, code := extractorOrDefault(ctx, cfg, c.extractor, errOut)
	if code != exitcode.Success {
		return code
	}

	proposals, err := ex.Decompose(ctx, t.Title, t.Category)
	if err != nil {
		fmt.Fprintf(errOut, "error: split failed: %v\n", err)
		return exitcode.BackendError
	}
	// Sub-steps inherit the parent's category unless the service chose one.
	for i := range proposals {
		if strings.TrimSpace(proposals[i].Category) == "" {
			proposals[i].Category = t.Category
		}
	}

	printAdded(cfg, st, extract.Apply(st, proposals), out)
	return exitcode.Success
}

// CoachCmd prints motivational advice about the current task list.
type CoachCmd struct {
	extractor extract.Extractor
}

// SetExtractor sets the extractor (for testing).
func (c *CoachCmd) SetExtractor(ex extract.Extractor) {
	c.extractor = ex
}

func (c *CoachCmd) Name() string      { return "coach" }
func (c *CoachCmd) Aliases() []string { return nil }
func (c *CoachCmd) Synopsis() string  { return "Get advice on your task list" }
func (c *CoachCmd) Usage() string     { return "viraflow coach" }
func (c *CoachCmd) NeedsStore() bool  { return true }

func (c *CoachCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CoachCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	ex, code := extractorOrDefault(ctx, cfg, c.extractor, errOut)
	if code != exitcode.Success {
		return code
	}

	advice, err := ex.Coach(ctx, st.Tasks())
	if err != nil {
		fmt.Fprintf(errOut, "error: coach failed: %v\n", err)
		return exitcode.BackendError
	}
	fmt.Fprintln(out, advice)
	return exitcode.Success
}
