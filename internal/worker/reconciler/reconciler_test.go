package reconciler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	stuck       []string
	unpublished []string

	stuckCutoff time.Time
	pendCutoff  time.Time
	err         error
}

func (s *fakeStore) RequeueStuck(ctx context.Context, cutoff time.Time) ([]string, error) {
	s.stuckCutoff = cutoff
	return s.stuck, s.err
}

func (s *fakeStore) TouchPendingOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	s.pendCutoff = cutoff
	return s.unpublished, s.err
}

type fakeBus struct {
	published []string
	stranded  int

	publishErr error
}

func (b *fakeBus) Publish(ctx context.Context, jobID string) error {
	if b.publishErr != nil {
		return b.publishErr
	}
	b.published = append(b.published, jobID)
	return nil
}

func (b *fakeBus) RequeuePending(ctx context.Context) (int, error) {
	return b.stranded, nil
}

func TestSweepRepublishesLostWork(t *testing.T) {
	store := &fakeStore{
		stuck:       []string{"a", "b"},
		unpublished: []string{"c"},
	}
	bus := &fakeBus{stranded: 1}

	r := New(Deps{
		Store:        store,
		Bus:          bus,
		StuckAfter:   10 * time.Minute,
		PendingAfter: 2 * time.Minute,
	})

	if err := r.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(bus.published) != len(want) {
		t.Fatalf("published %v, want %v", bus.published, want)
	}
	for i, id := range want {
		if bus.published[i] != id {
			t.Fatalf("published %v, want %v", bus.published, want)
		}
	}

	// Cutoffs must lie the configured distance in the past.
	now := time.Now().UTC()
	if d := now.Sub(store.stuckCutoff); d < 9*time.Minute || d > 11*time.Minute {
		t.Errorf("stuck cutoff %v from now, want ~10m", d)
	}
	if d := now.Sub(store.pendCutoff); d < time.Minute || d > 3*time.Minute {
		t.Errorf("pending cutoff %v from now, want ~2m", d)
	}
}

func TestSweepNothingToDo(t *testing.T) {
	r := New(Deps{Store: &fakeStore{}, Bus: &fakeBus{}})
	if err := r.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
}

func TestSweepStopsOnPublishError(t *testing.T) {
	store := &fakeStore{stuck: []string{"a"}}
	bus := &fakeBus{publishErr: errors.New("redis down")}
	r := New(Deps{Store: store, Bus: bus})

	if err := r.Sweep(context.Background()); err == nil {
		t.Fatal("expected publish error to surface")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := New(Deps{
		Store:    &fakeStore{},
		Bus:      &fakeBus{},
		Interval: 5 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
