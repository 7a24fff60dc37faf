package ports

import (
	"context"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
)

// ProfileRepository caches taste-profile snapshots between generation cycles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (domain.TasteProfile, error)
	SaveProfile(ctx context.Context, profile domain.TasteProfile) error
}

// EnergyStore persists measured preview energy per track. Values are written
// by the background preview worker and read back on the next profile refresh.
type EnergyStore interface {
	UpdateTrackEnergy(ctx context.Context, trackID string, energy float64) error
	TrackEnergies(ctx context.Context, trackIDs []string) (map[string]float64, error)
}
