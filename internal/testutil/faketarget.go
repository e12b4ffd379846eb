// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"viraflow/internal/export"
)

// DefaultListID is the ID used for the default list.
const DefaultListID = "@default"

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when multiple matches are found.
var ErrAmbiguous = errors.New("ambiguous")

// FakeTarget is an in-memory implementation of export.Target for testing.
type FakeTarget struct {
	mu    sync.RWMutex
	lists []export.List
	items map[string][]export.Item // listID -> items

	// Error injection for testing
	DefaultListErr error
	ResolveListErr error
	CreateTaskErr  error

	// FailAfter makes CreateTask fail once this many items exist in
	// total. Zero disables it.
	FailAfter int
}

// NewFakeTarget creates a new FakeTarget with a default list.
func NewFakeTarget() *FakeTarget {
	return &FakeTarget{
		lists: []export.List{{ID: DefaultListID, Title: "My Tasks", IsDefault: true}},
		items: map[string][]export.Item{DefaultListID: nil},
	}
}

// AddList adds a list to the fake target.
func (f *FakeTarget) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, export.List{ID: id, Title: title})
	if _, ok := f.items[id]; !ok {
		f.items[id] = nil
	}
}

// Items returns a copy of the items created in a list.
func (f *FakeTarget) Items(listID string) []export.Item {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]export.Item(nil), f.items[listID]...)
}

// DefaultList implements export.Target.
func (f *FakeTarget) DefaultList(ctx context.Context) (export.List, error) {
	if f.DefaultListErr != nil {
		return export.List{}, f.DefaultListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.IsDefault {
			return l, nil
		}
	}
	return export.List{}, errors.New("no default list")
}

// ResolveList implements export.Target.
func (f *FakeTarget) ResolveList(ctx context.Context, name string) (export.List, error) {
	if f.ResolveListErr != nil {
		return export.List{}, f.ResolveListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	name = strings.TrimSpace(name)
	var matches []export.List
	for _, l := range f.lists {
		if strings.EqualFold(strings.TrimSpace(l.Title), name) {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return export.List{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return export.List{}, ErrAmbiguous
	}
}

// CreateTask implements export.Target.
func (f *FakeTarget) CreateTask(ctx context.Context, listID string, item export.Item) error {
	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	items, ok := f.items[listID]
	if !ok {
		return ErrNotFound
	}
	if f.FailAfter > 0 && f.total() >= f.FailAfter {
		return errors.New("quota exceeded")
	}
	f.items[listID] = append(items, item)
	return nil
}

func (f *FakeTarget) total() int {
	n := 0
	for _, items := range f.items {
		n += len(items)
	}
	return n
}
