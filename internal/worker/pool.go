// Package worker provides background preview-energy analysis.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/cadenza-labs/cadenza/internal/core/ports"
)

// Job identifies one preview to analyze.
type Job struct {
	TrackID    string
	PreviewURL string
}

// Pool runs preview-energy jobs on background workers. Measured energies are
// persisted and picked up by the classifier on the next profile refresh.
type Pool struct {
	store ports.EnergyStore
	log   *zap.Logger
	jobs  chan Job
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewPool creates a worker pool with the given queue size.
func NewPool(store ports.EnergyStore, queueSize int, log *zap.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{store: store, log: log, jobs: make(chan Job, queueSize)}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue. Safe to call more
// than once; submissions arriving after Stop are dropped.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues a job without blocking; a full or stopped queue drops the job.
func (p *Pool) Submit(trackID, previewURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		p.log.Warn("preview pool stopped, dropping job", zap.String("track", trackID))
		return
	}
	select {
	case p.jobs <- Job{TrackID: trackID, PreviewURL: previewURL}:
	default:
		p.log.Warn("preview queue full, dropping job", zap.String("track", trackID))
	}
}

func (p *Pool) processJob(job Job) {
	if job.PreviewURL == "" {
		return
	}

	energy, err := AnalyzePreviewFunc(job.PreviewURL)
	if err != nil {
		p.log.Warn("preview analysis failed", zap.String("track", job.TrackID), zap.Error(err))
		return
	}

	if err := p.store.UpdateTrackEnergy(context.Background(), job.TrackID, energy); err != nil {
		p.log.Warn("failed to persist track energy", zap.String("track", job.TrackID), zap.Error(err))
		return
	}
	p.log.Debug("measured preview energy", zap.String("track", job.TrackID), zap.Float64("energy", energy))
}
