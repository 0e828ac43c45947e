package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Persister is the document store boundary.
type Persister interface {
	Save(ctx context.Context, designID string, doc Document) error
}

// Timer is the part of *time.Timer the saver needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f on its own goroutine after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Saver debounces automatic saves and runs forced ones. Every write reads
// the document through capture when it runs, and writes never overlap.
type Saver struct {
	// writeMu is held across capture and persist. Taken before mu, and
	// before the session lock that capture takes.
	writeMu sync.Mutex

	mu        sync.Mutex
	persister Persister
	designID  string
	capture   func() (Document, error)
	delay     time.Duration
	retry     time.Duration
	timeout   time.Duration
	afterFunc AfterFunc
	pending   Timer
	gen       uint64
	closed    bool
	log       *slog.Logger
	onSave    func(error)
}

type saverConfig struct {
	persister Persister
	designID  string
	capture   func() (Document, error)
	delay     time.Duration
	retry     time.Duration
	timeout   time.Duration
	afterFunc AfterFunc
	log       *slog.Logger
	onSave    func(error)
}

func newSaver(cfg saverConfig) *Saver {
	if cfg.afterFunc == nil {
		cfg.afterFunc = realAfterFunc
	}
	if cfg.retry <= 0 {
		cfg.retry = cfg.delay
	}
	return &Saver{
		persister: cfg.persister,
		designID:  cfg.designID,
		capture:   cfg.capture,
		delay:     cfg.delay,
		retry:     cfg.retry,
		timeout:   cfg.timeout,
		afterFunc: cfg.afterFunc,
		log:       cfg.log,
		onSave:    cfg.onSave,
	}
}

// Schedule (re)starts the debounce window. Each call pushes the pending
// write back by the full delay.
func (s *Saver) Schedule() {
	if s.persister == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.resetLocked(s.delay)
}

func (s *Saver) resetLocked(d time.Duration) {
	s.stopLocked()
	gen := s.gen
	s.pending = s.afterFunc(d, func() { s.fire(gen) })
}

func (s *Saver) stopLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.gen++
}

func (s *Saver) fire(gen uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// a SaveNow or Schedule that ran while we waited on writeMu wins
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.mu.Unlock()

	doc, err := s.capture()
	if errors.Is(err, ErrClosed) {
		return
	}
	if err == nil {
		err = s.persist(context.Background(), doc)
	}
	if err == nil {
		return
	}

	s.log.Warn("deferred save failed, retrying", "design", s.designID, "retry", s.retry, "error", err)
	s.mu.Lock()
	defer s.mu.Unlock()
	// a newer Schedule already covers the retry
	if !s.closed && gen == s.gen && s.pending == nil {
		s.resetLocked(s.retry)
	}
}

// SaveNow cancels any pending write, waits for one already running, then
// captures and persists the live document. On a store failure a deferred
// retry is left scheduled. The caller must not hold the session lock.
func (s *Saver) SaveNow(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.stopLocked()
	s.mu.Unlock()

	doc, err := s.capture()
	if err != nil {
		return err
	}
	err = s.persist(ctx, doc)
	if err != nil {
		s.mu.Lock()
		if !s.closed && s.pending == nil {
			s.resetLocked(s.retry)
		}
		s.mu.Unlock()
	}
	return err
}

func (s *Saver) persist(ctx context.Context, doc Document) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	err := s.persister.Save(ctx, s.designID, doc)
	if err != nil {
		err = &PersistenceError{DesignID: s.designID, Err: err}
	} else {
		s.log.Debug("design saved", "design", s.designID, "bytes", len(doc))
	}
	if s.onSave != nil {
		s.onSave(err)
	}
	return err
}

// Pending reports whether a deferred write is scheduled.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Close cancels the pending write. Later calls are no-ops.
func (s *Saver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stopLocked()
	s.closed = true
}
