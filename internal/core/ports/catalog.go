package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
)

// ErrSampleUnavailable indicates a required listening-history sample could not
// be fetched. Only the top-tracks sample is required; optional samples degrade
// to empty lists instead.
var ErrSampleUnavailable = errors.New("sample unavailable")

// SampleUnavailableError carries the sample category that failed.
type SampleUnavailableError struct {
	Sample string
	Err    error
}

func (e SampleUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s sample unavailable", e.Sample)
	}
	return fmt.Sprintf("%s sample unavailable: %v", e.Sample, e.Err)
}

func (e SampleUnavailableError) Is(target error) bool {
	return target == ErrSampleUnavailable
}

func (e SampleUnavailableError) Unwrap() error { return e.Err }

// CatalogProvider is the narrow surface of the external music catalog the
// engine consumes. Every method may return an empty list without error.
type CatalogProvider interface {
	TopTracks(ctx context.Context, limit int) ([]domain.Track, error)
	RecentlyPlayed(ctx context.Context, limit int) ([]domain.Track, error)
	SavedTracks(ctx context.Context, limit int) ([]domain.Track, error)
	FollowedArtists(ctx context.Context, limit int) ([]domain.Artist, error)

	// SearchPlaylists performs an opaque catalog search. Returned candidates
	// are already normalized: malformed raw records are discarded at the
	// adapter boundary and missing fields carry documented defaults.
	SearchPlaylists(ctx context.Context, query string, limit int) ([]domain.CandidatePlaylist, error)
}
