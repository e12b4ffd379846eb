package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"viraflow/internal/task"
)

const (
	// DefaultEndpoint is the hosted extraction service.
	DefaultEndpoint = "https://viraflow.onrender.com"

	// DefaultTimeout bounds one service call. The hosted service may
	// cold-start.
	DefaultTimeout = 60 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20

	maxSnippetRunes = 200
)

// HTTP talks to the extraction service over JSON/HTTP.
type HTTP struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	log     *zap.Logger
}

// HTTPOption configures an HTTP extractor.
type HTTPOption func(*HTTP)

// WithHTTPClient sets the HTTP client (for testing).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(log *zap.Logger) HTTPOption {
	return func(h *HTTP) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHTTP creates a client for the service rooted at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	if baseURL == "" {
		baseURL = DefaultEndpoint
	}
	h := &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type analyzeRequest struct {
	Text        string  `json:"text"`
	ImageBase64 *string `json:"image_base64"`
}

type decomposeRequest struct {
	MainTask string `json:"main_task"`
	Category string `json:"category"`
}

type coachRequest struct {
	Tasks []task.Task `json:"tasks"`
}

type coachResponse struct {
	Advice string `json:"advice"`
	Error  string `json:"error"`
}

// Analyze implements Extractor via POST /analyze-mixed.
func (h *HTTP) Analyze(ctx context.Context, req Request) ([]Proposal, error) {
	if req.Empty() {
		return nil, ErrEmptyRequest
	}
	body := analyzeRequest{Text: req.Text}
	if len(req.Image) > 0 {
		mime := req.ImageMIME
		if mime == "" {
			mime = "image/jpeg"
		}
		img := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(req.Image)
		body.ImageBase64 = &img
	}

	data, err := h.post(ctx, "/analyze-mixed", body)
	if err != nil {
		return nil, err
	}
	return decodeProposals(data)
}

// Decompose implements Extractor via POST /decompose-task.
func (h *HTTP) Decompose(ctx context.Context, title, category string) ([]Proposal, error) {
	data, err := h.post(ctx, "/decompose-task", decomposeRequest{MainTask: title, Category: category})
	if err != nil {
		return nil, err
	}
	return decodeProposals(data)
}

// Coach implements Extractor via POST /coach-me.
func (h *HTTP) Coach(ctx context.Context, tasks []task.Task) (string, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := h.post(ctx, "/coach-me", coachRequest{Tasks: tasks})
	if err != nil {
		return "", err
	}
	var resp coachResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("malformed response: %w", err)
	}
	// The service answers with fallback advice plus an error field when
	// the model is unreachable.
	if resp.Error != "" {
		h.log.Debug("coach: service reported error", zap.String("error", resp.Error))
	}
	advice := strings.TrimSpace(resp.Advice)
	if advice == "" {
		return "", fmt.Errorf("empty advice")
	}
	return advice, nil
}

func (h *HTTP) post(ctx context.Context, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, wrapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	h.log.Debug("extract call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("service returned %s: %s", resp.Status, snippet(data))
	}
	return data, nil
}

// wrapError shortens transport errors for display.
func wrapError(err error) error {
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("service unreachable: %w", err)
}

// snippet trims b to at most maxSnippetRunes runes for error messages.
func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if utf8.RuneCountInString(s) <= maxSnippetRunes {
		return s
	}
	return string([]rune(s)[:maxSnippetRunes]) + "..."
}
