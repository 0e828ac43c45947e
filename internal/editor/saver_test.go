package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeScheduler hands out timers that only fire when the test says so.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) live() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// fire runs every live timer, as if their deadlines had passed.
func (s *fakeScheduler) fire() int {
	timers := s.live()
	for _, t := range timers {
		t.stopped = true
		t.f()
	}
	return len(timers)
}

type memPersister struct {
	mu    sync.Mutex
	saves []Document
	err   error
}

func (p *memPersister) Save(ctx context.Context, designID string, doc Document) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.saves = append(p.saves, doc)
	return nil
}

func (p *memPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saves)
}

func (p *memPersister) last() Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.saves) == 0 {
		return nil
	}
	return p.saves[len(p.saves)-1]
}

func (p *memPersister) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func newTestSaver(p Persister, sched *fakeScheduler, capture func() (Document, error)) *Saver {
	return newSaver(saverConfig{
		persister: p,
		designID:  "tee-1",
		capture:   capture,
		delay:     time.Second,
		retry:     5 * time.Second,
		afterFunc: sched.AfterFunc,
		log:       discardLogger(),
	})
}

func TestSaverDebounces(t *testing.T) {
	sched := &fakeScheduler{}
	p := &memPersister{}
	s := newTestSaver(p, sched, func() (Document, error) { return doc("live"), nil })

	s.Schedule()
	s.Schedule()
	s.Schedule()

	if n := len(sched.live()); n != 1 {
		t.Fatalf("live timers = %d, want 1", n)
	}
	if !s.Pending() {
		t.Error("Pending() = false with a scheduled save")
	}
	sched.fire()
	if p.count() != 1 {
		t.Errorf("saves = %d, want 1", p.count())
	}
	if s.Pending() {
		t.Error("Pending() = true after the save fired")
	}
}

func TestSaverCapturesAtFire(t *testing.T) {
	sched := &fakeScheduler{}
	p := &memPersister{}
	current := "at-schedule"
	s := newTestSaver(p, sched, func() (Document, error) { return doc(current), nil })

	s.Schedule()
	current = "at-fire"
	sched.fire()

	if got := string(p.last()); got != "at-fire" {
		t.Errorf("saved %q, want at-fire", got)
	}
}

func TestSaverRetriesFailedDeferredSave(t *testing.T) {
	sched := &fakeScheduler{}
	p := &memPersister{}
	p.fail(errors.New("store offline"))
	s := newTestSaver(p, sched, func() (Document, error) { return doc("edits"), nil })

	s.Schedule()
	sched.fire()

	live := sched.live()
	if len(live) != 1 || live[0].d != 5*time.Second {
		t.Fatalf("expected one retry timer at 5s, got %d timers", len(live))
	}

	p.fail(nil)
	sched.fire()
	if got := string(p.last()); got != "edits" {
		t.Errorf("saved %q after retry, want edits", got)
	}
	if len(sched.live()) != 0 {
		t.Error("no timer should remain after a successful retry")
	}
}

func TestSaverRetriesWhenSessionBusy(t *testing.T) {
	sched := &fakeScheduler{}
	p := &memPersister{}
	busy := true
	s := newTestSaver(p, sched, func() (Document, error) {
		if busy {
			return nil, ErrBusy
		}
		return doc("done"), nil
	})

	s.Schedule()
	sched.fire()
	if p.count() != 0 {
		t.Fatal("nothing should be saved while busy")
	}
	busy = false
	sched.fire()
	if p.count() != 1 {
		t.Errorf("saves = %d, want 1", p.count())
	}
}

func TestSaverSaveNowCancelsPending(t *testing.T) {
	sched := &fakeScheduler{}
	p := &memPersister{}
	current := "deferred"
	s := newTestSaver(p, sched, func() (Document, error) { return doc(current), nil })

	s.Schedule()
	current = "explicit"
	if err := s.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow: %v", err)
	}
	if sched.fire() != 0 {
		t.Error("pending save should be cancelled by SaveNow")
	}
	if p.count() != 1 || string(p.last()) != "explicit" {
		t.Errorf("saves = %d last %q, want 1 explicit", p.count(), p.last())
	}
}

func TestSaverSaveNowFailureKeepsRetry(t *testing.T) {
	sched := &fakeScheduler{}
	p := &memPersister{}
	boom := errors.New("disk full")
	p.fail(boom)
	s := newTestSaver(p, sched, func() (Document, error) { return doc("live"), nil })

	err := s.SaveNow(context.Background())
	var perr *PersistenceError
	if !errors.As(err, &perr) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want PersistenceError wrapping boom", err)
	}
	if perr.DesignID != "tee-1" {
		t.Errorf("design id = %q", perr.DesignID)
	}
	if !s.Pending() {
		t.Fatal("a failed explicit save must leave a retry scheduled")
	}

	p.fail(nil)
	sched.fire()
	if string(p.last()) != "live" {
		t.Errorf("retry saved %q, want live", p.last())
	}
}

// gatedPersister holds its first Save until release is closed.
type gatedPersister struct {
	memPersister
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *gatedPersister) Save(ctx context.Context, designID string, d Document) error {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.entered)
		<-p.release
	}
	return p.memPersister.Save(ctx, designID, d)
}

func TestSaverExplicitSaveLandsAfterInFlightDeferredSave(t *testing.T) {
	sched := &fakeScheduler{}
	p := &gatedPersister{entered: make(chan struct{}), release: make(chan struct{})}
	var mu sync.Mutex
	current := "v1"
	s := newTestSaver(p, sched, func() (Document, error) {
		mu.Lock()
		defer mu.Unlock()
		return doc(current), nil
	})

	s.Schedule()
	tm := sched.live()[0]
	fired := make(chan struct{})
	go func() {
		tm.f()
		close(fired)
	}()
	<-p.entered

	mu.Lock()
	current = "v2"
	mu.Unlock()
	s.Schedule()
	saved := make(chan error, 1)
	go func() { saved <- s.SaveNow(context.Background()) }()

	close(p.release)
	<-fired
	if err := <-saved; err != nil {
		t.Fatalf("SaveNow: %v", err)
	}
	if got := string(p.last()); got != "v2" {
		t.Errorf("store holds %q, want v2", got)
	}
	if p.count() != 2 {
		t.Errorf("saves = %d, want 2", p.count())
	}
	if s.Pending() {
		t.Error("explicit save should leave nothing pending")
	}
}

func TestSaverCloseCancels(t *testing.T) {
	sched := &fakeScheduler{}
	p := &memPersister{}
	s := newTestSaver(p, sched, func() (Document, error) { return doc("x"), nil })

	s.Schedule()
	timers := sched.live()
	s.Close()
	s.Schedule()

	// a timer that raced past Stop must still do nothing
	for _, tm := range timers {
		tm.f()
	}
	if p.count() != 0 {
		t.Errorf("saves = %d after Close, want 0", p.count())
	}
	if err := s.SaveNow(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("SaveNow after Close = %v, want ErrClosed", err)
	}
}

func TestSaverWithoutPersister(t *testing.T) {
	sched := &fakeScheduler{}
	s := newTestSaver(nil, sched, nil)

	s.Schedule()
	if len(sched.live()) != 0 {
		t.Error("no timer should be scheduled without a persister")
	}
	if err := s.SaveNow(context.Background()); err != nil {
		t.Errorf("SaveNow = %v, want nil", err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
