package testutil

import (
	"context"
	"sync"

	"viraflow/internal/extract"
	"viraflow/internal/task"
)

// FakeExtractor is a scripted extract.Extractor for testing.
type FakeExtractor struct {
	mu sync.Mutex

	Proposals []extract.Proposal
	Advice    string
	Err       error

	// Recorded calls.
	Requests   []extract.Request
	Decomposed []string // titles passed to Decompose
	Coached    [][]task.Task
}

var _ extract.Extractor = (*FakeExtractor)(nil)

// Analyze implements extract.Extractor.
func (f *FakeExtractor) Analyze(ctx context.Context, req extract.Request) ([]extract.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Empty() {
		return nil, extract.ErrEmptyRequest
	}
	f.Requests = append(f.Requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Proposals, nil
}

// Decompose implements extract.Extractor.
func (f *FakeExtractor) Decompose(ctx context.Context, title, category string) ([]extract.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Decomposed = append(f.Decomposed, title)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Proposals, nil
}

// Coach implements extract.Extractor.
func (f *FakeExtractor) Coach(ctx context.Context, tasks []task.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Coached = append(f.Coached, tasks)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Advice, nil
}
