// Package extract turns free text and images into proposed tasks through
// an AI service, and feeds accepted proposals into the task store.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"viraflow/internal/task"
)

// ErrEmptyRequest is returned when neither text nor an image is given.
var ErrEmptyRequest = errors.New("nothing to analyze")

// Request is the input to Analyze.
type Request struct {
	Text      string
	Image     []byte
	ImageMIME string // defaults to image/jpeg
}

// Empty reports whether the request carries no text and no image.
func (r Request) Empty() bool {
	return strings.TrimSpace(r.Text) == "" && len(r.Image) == 0
}

// Proposal is one task suggested by the service.
type Proposal struct {
	Task     string `json:"task"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

// Extractor is the AI service contract.
type Extractor interface {
	// Analyze extracts tasks from free text and/or an image.
	Analyze(ctx context.Context, req Request) ([]Proposal, error)

	// Decompose splits one task into smaller steps.
	Decompose(ctx context.Context, title, category string) ([]Proposal, error)

	// Coach returns a short motivational summary of the task list.
	Coach(ctx context.Context, tasks []task.Task) (string, error)
}

// TaskAdder is the part of the task store Apply needs.
type TaskAdder interface {
	AddTask(title, category, date string) task.Task
}

// Apply calls AddTask for every proposal with a non-blank title, in
// proposal order, and returns the created tasks. A blank category falls
// back to the store default.
func Apply(store TaskAdder, proposals []Proposal) []task.Task {
	var added []task.Task
	for _, p := range proposals {
		title := strings.TrimSpace(p.Task)
		if title == "" {
			continue
		}
		added = append(added, store.AddTask(title, strings.TrimSpace(p.Category), strings.TrimSpace(p.Date)))
	}
	return added
}

// response is the payload shape of the extraction endpoints. Older
// deployments used "tasks" instead of "extracted_tasks".
type response struct {
	ExtractedTasks []Proposal `json:"extracted_tasks"`
	Tasks          []Proposal `json:"tasks"`
	Error          string     `json:"error"`
}

// decodeProposals parses a service or model payload into proposals.
func decodeProposals(data []byte) ([]Proposal, error) {
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	proposals := resp.ExtractedTasks
	if proposals == nil {
		proposals = resp.Tasks
	}
	if proposals == nil && resp.Error != "" {
		return nil, fmt.Errorf("service error: %s", resp.Error)
	}
	return proposals, nil
}

// cleanJSON strips a markdown code fence around model output.
func cleanJSON(s string) string {
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	return strings.TrimSpace(s)
}
