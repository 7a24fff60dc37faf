package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type recordingStore struct {
	mu       sync.Mutex
	energies map[string]float64
	err      error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{energies: map[string]float64{}}
}

func (s *recordingStore) UpdateTrackEnergy(ctx context.Context, trackID string, energy float64) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.energies[trackID] = energy
	return nil
}

func (s *recordingStore) TrackEnergies(ctx context.Context, trackIDs []string) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]float64{}
	for _, id := range trackIDs {
		if v, ok := s.energies[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func withAnalyzer(t *testing.T, fn func(previewURL string) (float64, error)) {
	t.Helper()
	orig := AnalyzePreviewFunc
	AnalyzePreviewFunc = fn
	t.Cleanup(func() { AnalyzePreviewFunc = orig })
}

func TestPool_ProcessesSubmittedJobs(t *testing.T) {
	withAnalyzer(t, func(previewURL string) (float64, error) {
		return 0.42, nil
	})

	store := newRecordingStore()
	pool := NewPool(store, 8, nil)
	pool.Start(2)

	pool.Submit("t1", "https://p.example.com/t1.mp3")
	pool.Submit("t2", "https://p.example.com/t2.mp3")
	pool.Stop()

	energies, _ := store.TrackEnergies(context.Background(), []string{"t1", "t2"})
	if len(energies) != 2 {
		t.Fatalf("expected both tracks persisted, got %v", energies)
	}
	if energies["t1"] != 0.42 {
		t.Fatalf("energy: got %v", energies["t1"])
	}
}

func TestPool_AnalysisFailureIsSwallowed(t *testing.T) {
	withAnalyzer(t, func(previewURL string) (float64, error) {
		return 0, errors.New("decode failed")
	})

	store := newRecordingStore()
	pool := NewPool(store, 4, nil)
	pool.Start(1)

	pool.Submit("t1", "https://p.example.com/t1.mp3")
	pool.Stop()

	if len(store.energies) != 0 {
		t.Fatalf("failed analysis must not persist, got %v", store.energies)
	}
}

func TestPool_SkipsJobsWithoutPreview(t *testing.T) {
	called := false
	withAnalyzer(t, func(previewURL string) (float64, error) {
		called = true
		return 0.5, nil
	})

	pool := NewPool(newRecordingStore(), 4, nil)
	pool.Start(1)
	pool.Submit("t1", "")
	pool.Stop()

	if called {
		t.Fatal("analyzer must not run for jobs without a preview URL")
	}
}

func TestPool_SubmitAfterStopIsDropped(t *testing.T) {
	called := false
	withAnalyzer(t, func(previewURL string) (float64, error) {
		called = true
		return 0.5, nil
	})

	pool := NewPool(newRecordingStore(), 4, nil)
	pool.Start(1)
	pool.Stop()

	// Must not panic on the closed queue.
	pool.Submit("t1", "https://p.example.com/t1.mp3")
	pool.Stop()

	if called {
		t.Fatal("job submitted after Stop must be dropped")
	}
}

func TestPool_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	withAnalyzer(t, func(previewURL string) (float64, error) {
		return 0.5, nil
	})

	pool := NewPool(newRecordingStore(), 1, nil)
	// Workers not started: the second submit finds the queue full and must
	// return immediately.
	pool.Submit("t1", "https://p.example.com/t1.mp3")
	pool.Submit("t2", "https://p.example.com/t2.mp3")

	if len(pool.jobs) != 1 {
		t.Fatalf("queue length: got %d, want 1", len(pool.jobs))
	}
}
