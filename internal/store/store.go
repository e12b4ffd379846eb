// Package store implements the task store: the in-memory task collection
// and user name, with write-through persistence to a securestore.Store.
//
// Lifecycle: New → Hydrate → Ready. Mutations never block on durable I/O;
// each one snapshots the affected key and writes it on a background
// goroutine. Flush waits for those writes.
package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"viraflow/internal/securestore"
	"viraflow/internal/task"
)

var (
	// ErrNotMounted is the panic value for operations on a store that was
	// not built with New.
	ErrNotMounted = errors.New("store: used without a backing store (construct with store.New)")

	// ErrAlreadyHydrated is returned by a second Hydrate call.
	ErrAlreadyHydrated = errors.New("store: already hydrated")
)

// State is the store lifecycle stage.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for persistence failures.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithIDGenerator replaces task.NewID.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Store owns the task collection and the user name.
// It is safe for concurrent use.
type Store struct {
	kv    securestore.Store
	log   *zap.Logger
	newID func() string

	mu           sync.RWMutex
	state        State
	ready        chan struct{}
	tasks        []task.Task
	userName     string
	dirtyTasks   bool   // collection mutated while Loading
	dirtyName    bool   // name set while Loading
	clearedEarly bool   // ClearAllData ran while Loading
	gen          uint64 // bumped by every scheduled write

	persistMu sync.Mutex
	written   map[string]uint64 // key -> newest generation attempted
	inflight  sync.WaitGroup
}

// New creates an Uninitialized store persisting to kv.
func New(kv securestore.Store, opts ...Option) *Store {
	if kv == nil {
		panic(ErrNotMounted)
	}
	s := &Store{
		kv:       kv,
		log:      zap.NewNop(),
		newID:    task.NewID,
		ready:    make(chan struct{}),
		tasks:    []task.Task{},
		userName: task.DefaultUserName,
		written:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) mustMount() {
	if s == nil || s.kv == nil {
		panic(ErrNotMounted)
	}
}

// State returns the lifecycle stage.
func (s *Store) State() State {
	s.mustMount()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready is closed once hydration has finished.
func (s *Store) Ready() <-chan struct{} {
	s.mustMount()
	return s.ready
}

// Hydrate loads both durable keys and moves the store to Ready.
// Read and parse failures are logged and leave the defaults in place.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mustMount()
	s.mu.Lock()
	if s.state != Uninitialized {
		s.mu.Unlock()
		return ErrAlreadyHydrated
	}
	s.state = Loading
	s.mu.Unlock()

	var (
		rawTasks, rawName   string
		haveTasks, haveName bool
		g                   errgroup.Group
	)
	g.Go(func() error {
		v, ok, err := s.kv.Get(ctx, KeyTasks)
		if err != nil {
			s.log.Warn("hydrate: read tasks failed", zap.Error(err))
			return nil
		}
		rawTasks, haveTasks = v, ok
		return nil
	})
	g.Go(func() error {
		v, ok, err := s.kv.Get(ctx, KeyUserName)
		if err != nil {
			s.log.Warn("hydrate: read user name failed", zap.Error(err))
			return nil
		}
		rawName, haveName = v, ok
		return nil
	})
	_ = g.Wait()

	var loaded []task.Task
	if haveTasks {
		var err error
		loaded, err = DecodeTasks(rawTasks)
		if err != nil {
			s.log.Warn("hydrate: parse tasks failed", zap.Error(err))
			haveTasks = false
		}
	}

	s.mu.Lock()
	if s.clearedEarly {
		// What was read predates the clear and must not come back.
		haveTasks, haveName = false, false
		s.clearedEarly = false
	}
	if haveTasks {
		s.tasks = loaded
	}
	if haveName && rawName != "" {
		s.userName = rawName
	}
	s.state = Ready
	close(s.ready)
	if s.dirtyTasks && !haveTasks {
		s.scheduleTasksLocked()
	}
	if s.dirtyName && !haveName {
		s.gen++
		s.schedule(KeyUserName, s.gen, s.userName)
	}
	s.dirtyTasks, s.dirtyName = false, false
	n := len(s.tasks)
	s.mu.Unlock()

	s.log.Debug("hydrated", zap.Int("tasks", n), zap.Bool("stored_tasks", haveTasks), zap.Bool("stored_name", haveName))
	return nil
}

// Tasks returns a copy of the collection, newest first.
func (s *Store) Tasks() []task.Task {
	s.mustMount()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Task looks a task up by id.
func (s *Store) Task(id string) (task.Task, bool) {
	s.mustMount()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return task.Task{}, false
}

// UserName returns the display name.
func (s *Store) UserName() string {
	s.mustMount()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

// AddTask inserts a new todo at the head of the collection and returns it.
// The title is not validated here; callers reject blank titles.
func (s *Store) AddTask(title, category, date string) task.Task {
	s.mustMount()
	t := task.Task{
		ID:        s.newID(),
		Title:     title,
		Category:  task.CategoryOrDefault(category),
		Status:    task.StatusTodo,
		Completed: false,
		Date:      date,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]task.Task{t}, s.tasks...)
	s.changedTasksLocked()
	return t
}

// EditTask replaces title, category and date. Status and Completed are
// left alone. Reports false, without error, when id is unknown.
func (s *Store) EditTask(id, title, category, date string) bool {
	s.mustMount()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Title = title
	s.tasks[i].Category = task.CategoryOrDefault(category)
	s.tasks[i].Date = date
	s.changedTasksLocked()
	return true
}

// UpdateTaskStatus moves a task on the board. Completed is not touched,
// so a done task may still be uncompleted.
func (s *Store) UpdateTaskStatus(id string, status task.Status) bool {
	s.mustMount()
	if !status.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.tasks[i].Status = status
	s.changedTasksLocked()
	return true
}

// ToggleTaskCompletion flips Completed and derives Status from it:
// done when completed, todo otherwise. An in-progress task therefore
// comes back as todo after two toggles.
func (s *Store) ToggleTaskCompletion(id string) bool {
	s.mustMount()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	t := &s.tasks[i]
	t.Completed = !t.Completed
	if t.Completed {
		t.Status = task.StatusDone
	} else {
		t.Status = task.StatusTodo
	}
	s.changedTasksLocked()
	return true
}

// DeleteTask removes a task. Unknown ids are a no-op.
func (s *Store) DeleteTask(id string) bool {
	s.mustMount()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.changedTasksLocked()
	return true
}

// SetUserName replaces the display name. Empty names are accepted.
func (s *Store) SetUserName(name string) {
	s.mustMount()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userName = name
	if s.state != Ready {
		s.dirtyName = true
		return
	}
	s.gen++
	s.schedule(KeyUserName, s.gen, name)
}

// ClearAllData empties the collection, resets the user name and deletes
// both durable keys. Writes issued before the call are discarded if they
// have not reached the backing store yet. During Loading, whatever
// hydration reads is discarded. Not reversible.
func (s *Store) ClearAllData(ctx context.Context) {
	s.mustMount()
	s.mu.Lock()
	s.tasks = []task.Task{}
	s.userName = task.DefaultUserName
	s.dirtyTasks, s.dirtyName = false, false
	if s.state == Loading {
		s.clearedEarly = true
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	for _, key := range []string{KeyTasks, KeyUserName} {
		if gen > s.written[key] {
			s.written[key] = gen
		}
		if err := s.kv.Delete(ctx, key); err != nil {
			s.log.Warn("clear: delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Flush waits for in-flight writes or for ctx to be done.
func (s *Store) Flush(ctx context.Context) error {
	s.mustMount()
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending writes and closes the backing store when it
// implements io.Closer.
func (s *Store) Close(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	if c, ok := s.kv.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) indexLocked(id string) int {
	if strings.TrimSpace(id) == "" {
		return -1
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// changedTasksLocked records a collection mutation and, once Ready,
// schedules a write of the full collection.
func (s *Store) changedTasksLocked() {
	if s.state != Ready {
		s.dirtyTasks = true
		return
	}
	s.scheduleTasksLocked()
}

func (s *Store) scheduleTasksLocked() {
	data, err := EncodeTasks(s.tasks)
	if err != nil {
		s.log.Warn("persist: encode tasks failed", zap.Error(err))
		return
	}
	s.gen++
	s.schedule(KeyTasks, s.gen, data)
}

// schedule starts a detached write. The caller holds s.mu, so generations
// are handed out in mutation order.
func (s *Store) schedule(key string, gen uint64, value string) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.write(key, gen, value)
	}()
}

// write stores value unless a newer generation for key has already been
// attempted. Failed writes are logged and dropped.
func (s *Store) write(key string, gen uint64, value string) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if gen <= s.written[key] {
		s.log.Debug("persist: stale write skipped", zap.String("key", key), zap.Uint64("gen", gen))
		return
	}
	s.written[key] = gen
	if err := s.kv.Set(context.Background(), key, value); err != nil {
		s.log.Warn("persist: write failed", zap.String("key", key), zap.Error(err))
	}
}
