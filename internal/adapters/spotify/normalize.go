package spotify

import (
	"strings"

	spotifyapi "github.com/zmb3/spotify/v2"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
)

const defaultOwnerName = "Unknown"

// normalizePlaylist converts a raw search record into a fully-defaulted
// CandidatePlaylist. Records without an id or name are unusable and are
// dropped; every other missing field gets a documented default so nothing
// partial crosses the boundary. Search responses do not carry follower
// counts, so Followers stays 0 and downstream estimation takes over.
func normalizePlaylist(sp spotifyapi.SimplePlaylist) (domain.CandidatePlaylist, bool) {
	id := strings.TrimSpace(string(sp.ID))
	name := strings.TrimSpace(sp.Name)
	if id == "" || name == "" {
		return domain.CandidatePlaylist{}, false
	}

	owner := strings.TrimSpace(sp.Owner.DisplayName)
	if owner == "" {
		owner = strings.TrimSpace(sp.Owner.ID)
	}
	if owner == "" {
		owner = defaultOwnerName
	}

	trackTotal := int(sp.Tracks.Total)
	if trackTotal < 0 {
		trackTotal = 0
	}

	return domain.CandidatePlaylist{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(sp.Description),
		Followers:   0,
		TrackTotal:  trackTotal,
		Owner:       owner,
		Images:      mapImages(sp.Images),
		URI:         string(sp.URI),
	}, true
}

func mapFullTrack(ft spotifyapi.FullTrack) domain.Track {
	popularity := int(ft.Popularity)
	track := mapSimpleTrack(ft.SimpleTrack, &popularity)
	// FullTrack declares its own Album field that shadows the embedded
	// SimpleTrack.Album during decoding; the embedded copy stays empty, so the
	// album must be taken from the outer struct.
	track.Album = domain.AlbumRef{
		Name:        ft.Album.Name,
		ReleaseDate: ft.Album.ReleaseDate,
		Images:      mapImages(ft.Album.Images),
	}
	return track
}

// mapSimpleTrack converts a raw track. popularity is nil when the source
// endpoint does not report one.
func mapSimpleTrack(st spotifyapi.SimpleTrack, popularity *int) domain.Track {
	artists := make([]domain.Artist, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, domain.Artist{ID: string(a.ID), Name: a.Name})
	}

	return domain.Track{
		ID:      string(st.ID),
		Name:    st.Name,
		Artists: artists,
		Album: domain.AlbumRef{
			Name:        st.Album.Name,
			ReleaseDate: st.Album.ReleaseDate,
			Images:      mapImages(st.Album.Images),
		},
		DurationMs: int(st.Duration),
		Popularity: popularity,
		Explicit:   st.Explicit,
		PreviewURL: st.PreviewURL,
	}
}

func mapImages(images []spotifyapi.Image) []domain.Image {
	if len(images) == 0 {
		return nil
	}
	out := make([]domain.Image, 0, len(images))
	for _, img := range images {
		out = append(out, domain.Image{
			URL:    img.URL,
			Width:  int(img.Width),
			Height: int(img.Height),
		})
	}
	return out
}
