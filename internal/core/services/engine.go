package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
	"github.com/cadenza-labs/cadenza/internal/core/ports"
)

const (
	topTracksLimit      = 50
	recentlyPlayedLimit = 50
	savedTracksLimit    = 50
	followedLimit       = 20
)

// PreviewQueue accepts tracks for background preview-energy analysis.
type PreviewQueue interface {
	Submit(trackID, previewURL string)
}

// Engine coordinates the full profile-generation cycle: sample fetch,
// insights, candidate sourcing, scoring and ranking.
type Engine struct {
	catalog  ports.CatalogProvider
	repo     ports.ProfileRepository
	energy   ports.EnergyStore
	previews PreviewQueue
	scorer   *Scorer
	ranker   *Ranker
	log      *zap.Logger
}

// NewEngine constructs an Engine. energy and previews may be nil when preview
// analysis is disabled.
func NewEngine(catalog ports.CatalogProvider, repo ports.ProfileRepository, energy ports.EnergyStore, previews PreviewQueue, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		catalog:  catalog,
		repo:     repo,
		energy:   energy,
		previews: previews,
		scorer:   NewScorer(),
		ranker:   NewRanker(),
		log:      log,
	}
}

// GenerateProfile builds a fresh taste profile. Only a top-tracks fetch
// failure is fatal; every other upstream failure degrades to an empty sample.
func (e *Engine) GenerateProfile(ctx context.Context, userID string) (domain.TasteProfile, error) {
	topTracks, err := e.catalog.TopTracks(ctx, topTracksLimit)
	if err != nil {
		return domain.TasteProfile{}, fmt.Errorf("service: unable to analyze preferences: %w",
			ports.SampleUnavailableError{Sample: "top tracks", Err: err})
	}

	recentlyPlayed := e.optionalTracks(ctx, "recently played", e.catalog.RecentlyPlayed, recentlyPlayedLimit)
	savedTracks := e.optionalTracks(ctx, "saved tracks", e.catalog.SavedTracks, savedTracksLimit)

	followed, err := e.catalog.FollowedArtists(ctx, followedLimit)
	if err != nil {
		e.log.Warn("followed artists unavailable", zap.Error(err))
		followed = nil
	}

	classifier := NewGenreClassifier(e.energyLookup(ctx, topTracks, recentlyPlayed, savedTracks))
	insights := NewProfileAnalyzer(classifier).Analyze(topTracks, recentlyPlayed, savedTracks)

	sourcer := NewCandidateSourcer(e.catalog, e.log)
	candidates := sourcer.Source(ctx, insights, followed)

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, candidate := range candidates {
		recs = append(recs, e.scorer.Score(candidate, insights))
	}

	profile := domain.TasteProfile{
		ID:              uuid.NewString(),
		UserID:          userID,
		Insights:        insights,
		Recommendations: e.ranker.Rank(recs, insights),
		LastUpdated:     time.Now().UTC(),
	}

	if e.repo != nil {
		if err := e.repo.SaveProfile(ctx, profile); err != nil {
			e.log.Warn("failed to cache profile", zap.String("user", userID), zap.Error(err))
		}
	}

	e.queuePreviews(topTracks, recentlyPlayed, savedTracks)

	return profile, nil
}

// ProfileFor returns a cached profile when one younger than maxAge exists,
// generating a fresh one otherwise.
func (e *Engine) ProfileFor(ctx context.Context, userID string, maxAge time.Duration) (domain.TasteProfile, error) {
	if e.repo != nil {
		cached, err := e.repo.GetProfile(ctx, userID)
		switch {
		case err == nil && time.Since(cached.LastUpdated) <= maxAge:
			return cached, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			e.log.Warn("profile cache read failed", zap.String("user", userID), zap.Error(err))
		}
	}
	return e.GenerateProfile(ctx, userID)
}

func (e *Engine) optionalTracks(ctx context.Context, sample string, fetch func(context.Context, int) ([]domain.Track, error), limit int) []domain.Track {
	tracks, err := fetch(ctx, limit)
	if err != nil {
		e.log.Warn("optional sample unavailable", zap.String("sample", sample), zap.Error(err))
		return nil
	}
	return tracks
}

// energyLookup loads previously measured preview energies for the sample set
// and exposes them to the classifier.
func (e *Engine) energyLookup(ctx context.Context, samples ...[]domain.Track) func(string) (float64, bool) {
	if e.energy == nil {
		return nil
	}

	var ids []string
	for _, sample := range samples {
		for _, track := range sample {
			ids = append(ids, track.ID)
		}
	}
	energies, err := e.energy.TrackEnergies(ctx, ids)
	if err != nil {
		e.log.Warn("track energies unavailable", zap.Error(err))
		return nil
	}
	return func(trackID string) (float64, bool) {
		v, ok := energies[trackID]
		return v, ok
	}
}

func (e *Engine) queuePreviews(samples ...[]domain.Track) {
	if e.previews == nil {
		return
	}
	queued := map[string]bool{}
	for _, sample := range samples {
		for _, track := range sample {
			if track.PreviewURL == "" || queued[track.ID] {
				continue
			}
			queued[track.ID] = true
			e.previews.Submit(track.ID, track.PreviewURL)
		}
	}
}
