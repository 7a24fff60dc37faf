package spotify

import (
	"context"
	"fmt"

	spotifyapi "github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
)

// TopTracks returns the authenticated user's long-term top tracks.
func (c *Client) TopTracks(ctx context.Context, limit int) ([]domain.Track, error) {
	page, err := c.api.CurrentUsersTopTracks(ctx, spotifyapi.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: top tracks: %w", err)
	}

	tracks := make([]domain.Track, 0, len(page.Tracks))
	for _, ft := range page.Tracks {
		tracks = append(tracks, mapFullTrack(ft))
	}
	return tracks, nil
}

// RecentlyPlayed returns the user's recent plays. The catalog reports these
// as simple tracks without a popularity value; the mapped tracks carry a nil
// Popularity so the analyzer excludes them from the popularity mean.
func (c *Client) RecentlyPlayed(ctx context.Context, limit int) ([]domain.Track, error) {
	items, err := c.api.PlayerRecentlyPlayedOpt(ctx, &spotifyapi.RecentlyPlayedOptions{Limit: spotifyapi.Numeric(limit)})
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: recently played: %w", err)
	}

	tracks := make([]domain.Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, mapSimpleTrack(item.Track, nil))
	}
	return tracks, nil
}

// SavedTracks returns the user's library tracks.
func (c *Client) SavedTracks(ctx context.Context, limit int) ([]domain.Track, error) {
	page, err := c.api.CurrentUsersTracks(ctx, spotifyapi.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: saved tracks: %w", err)
	}

	tracks := make([]domain.Track, 0, len(page.Tracks))
	for _, saved := range page.Tracks {
		tracks = append(tracks, mapFullTrack(saved.FullTrack))
	}
	return tracks, nil
}

// FollowedArtists returns the artists the user follows.
func (c *Client) FollowedArtists(ctx context.Context, limit int) ([]domain.Artist, error) {
	page, err := c.api.CurrentUsersFollowedArtists(ctx, spotifyapi.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: followed artists: %w", err)
	}

	artists := make([]domain.Artist, 0, len(page.Artists))
	for _, artist := range page.Artists {
		artists = append(artists, domain.Artist{ID: string(artist.ID), Name: artist.Name})
	}
	return artists, nil
}

// SearchPlaylists issues an opaque catalog search and returns normalized
// candidates. Malformed raw records are discarded here, never downstream.
func (c *Client) SearchPlaylists(ctx context.Context, query string, limit int) ([]domain.CandidatePlaylist, error) {
	result, err := c.api.Search(ctx, query, spotifyapi.SearchTypePlaylist, spotifyapi.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: search %q: %w", query, err)
	}
	if result == nil || result.Playlists == nil {
		return nil, nil
	}

	candidates := make([]domain.CandidatePlaylist, 0, len(result.Playlists.Playlists))
	for _, sp := range result.Playlists.Playlists {
		candidate, ok := normalizePlaylist(sp)
		if !ok {
			c.log.Debug("discarding malformed playlist record", zap.String("query", query))
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}
