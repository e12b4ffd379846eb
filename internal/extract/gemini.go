package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"viraflow/internal/task"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const analyzePrompt = `You are a professional project manager.
Analyze the user's input and turn it into clear, actionable tasks.
Reply ONLY with JSON in this exact shape and nothing else:
{
  "extracted_tasks": [
    {"task": "short, clear task title", "category": "Work, School, Personal, Project, ...", "date": "when, as written by the user, or empty"}
  ]
}`

const decomposePrompt = `Task: %q (category: %s)
List the 3 to 5 concrete sub-steps needed to finish this task.
Reply ONLY with JSON:
{"extracted_tasks": [{"task": "sub-step", "category": %q, "date": ""}]}`

const coachPrompt = `Below is the user's task list as JSON. Act like a blunt but motivating coach
named Vira Flow. In a single paragraph, sum up where they stand and push them to act.
Reply with the advice text only.

Tasks: %s`

// Gemini calls the Gemini API directly, without the hosted service.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// GeminiConfig configures NewGemini.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string        // overrides the API endpoint (for testing)
	Timeout time.Duration // per call; DefaultTimeout when zero
	Logger  *zap.Logger
}

// NewGemini creates a Gemini-backed extractor.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	g := &Gemini{client: client, model: cfg.Model, timeout: cfg.Timeout, log: cfg.Logger}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	return g, nil
}

// Analyze implements Extractor.
func (g *Gemini) Analyze(ctx context.Context, req Request) ([]Proposal, error) {
	if req.Empty() {
		return nil, ErrEmptyRequest
	}
	parts := []*genai.Part{genai.NewPartFromText(analyzePrompt)}
	if strings.TrimSpace(req.Text) != "" {
		parts = append(parts, genai.NewPartFromText(req.Text))
	}
	if len(req.Image) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, genai.NewPartFromBytes(req.Image, mime))
	}

	text, err := g.generate(ctx, parts, true)
	if err != nil {
		return nil, err
	}
	return decodeProposals([]byte(cleanJSON(text)))
}

// Decompose implements Extractor.
func (g *Gemini) Decompose(ctx context.Context, title, category string) ([]Proposal, error) {
	prompt := fmt.Sprintf(decomposePrompt, title, category, category)
	text, err := g.generate(ctx, []*genai.Part{genai.NewPartFromText(prompt)}, true)
	if err != nil {
		return nil, err
	}
	return decodeProposals([]byte(cleanJSON(text)))
}

// Coach implements Extractor.
func (g *Gemini) Coach(ctx context.Context, tasks []task.Task) (string, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	text, err := g.generate(ctx, []*genai.Part{genai.NewPartFromText(fmt.Sprintf(coachPrompt, data))}, false)
	if err != nil {
		return "", err
	}
	advice := strings.TrimSpace(text)
	if advice == "" {
		return "", fmt.Errorf("empty advice")
	}
	return advice, nil
}

func (g *Gemini) generate(ctx context.Context, parts []*genai.Part, jsonOut bool) (string, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	var cfg *genai.GenerateContentConfig
	if jsonOut {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(callCtx, g.model, contents, cfg)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("request timed out")
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	g.log.Debug("gemini response", zap.String("model", g.model), zap.Int("bytes", len(text)))
	return text, nil
}
