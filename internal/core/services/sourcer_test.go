package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
)

// fakeCatalog routes search queries to scripted results and records every
// query it sees. Safe for the sourcer's concurrent strategies.
type fakeCatalog struct {
	mu      sync.Mutex
	results map[string][]domain.CandidatePlaylist
	errs    map[string]error
	queries []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		results: map[string][]domain.CandidatePlaylist{},
		errs:    map[string]error{},
	}
}

func (f *fakeCatalog) TopTracks(ctx context.Context, limit int) ([]domain.Track, error) {
	return nil, nil
}

func (f *fakeCatalog) RecentlyPlayed(ctx context.Context, limit int) ([]domain.Track, error) {
	return nil, nil
}

func (f *fakeCatalog) SavedTracks(ctx context.Context, limit int) ([]domain.Track, error) {
	return nil, nil
}

func (f *fakeCatalog) FollowedArtists(ctx context.Context, limit int) ([]domain.Artist, error) {
	return nil, nil
}

func (f *fakeCatalog) SearchPlaylists(ctx context.Context, query string, limit int) ([]domain.CandidatePlaylist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	return f.results[query], nil
}

func (f *fakeCatalog) sawQuery(query string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.queries {
		if q == query {
			return true
		}
	}
	return false
}

func popularPlaylist(id, name string, followers int) domain.CandidatePlaylist {
	return domain.CandidatePlaylist{
		ID:         id,
		Name:       name,
		Followers:  followers,
		TrackTotal: 40,
	}
}

func insightsWithGenres(genres ...string) domain.MusicInsights {
	insights := domain.DefaultInsights()
	for _, g := range genres {
		insights.TopGenres = append(insights.TopGenres, domain.GenreCount{Genre: g, Count: 5, Percentage: 25})
	}
	return insights
}

func TestCandidateSourcer_GenreStrategyStopsAtFirstProductiveQuery(t *testing.T) {
	catalog := newFakeCatalog()
	// First query errors, second is empty, third produces a usable candidate.
	catalog.errs[`"electronic" hits charts`] = errors.New("rate limited")
	catalog.results[`best electronic songs`] = []domain.CandidatePlaylist{
		popularPlaylist("e1", "Best Electronic", 5000),
	}
	catalog.results[`electronic mix`] = []domain.CandidatePlaylist{
		popularPlaylist("e2", "Electronic Mix", 9000),
	}

	sourcer := NewCandidateSourcer(catalog, nil)
	got := sourcer.Source(context.Background(), insightsWithGenres("electronic"), nil)

	var genreCandidates []SourcedCandidate
	for _, c := range got {
		if c.Strategy == StrategyGenre {
			genreCandidates = append(genreCandidates, c)
		}
	}
	if len(genreCandidates) != 1 || genreCandidates[0].Playlist.ID != "e1" {
		t.Fatalf("expected only the first productive query's candidate, got %v", genreCandidates)
	}
	if catalog.sawQuery(`electronic mix`) {
		t.Fatal("queries after the first productive one should not run")
	}
}

func TestCandidateSourcer_GenreStrategyFiltersAndCaps(t *testing.T) {
	catalog := newFakeCatalog()
	results := []domain.CandidatePlaylist{
		{ID: "", Name: "malformed"},
		popularPlaylist("low", "Tiny List", 50),
	}
	for i := 0; i < 10; i++ {
		results = append(results, popularPlaylist("p"+string(rune('a'+i)), "Pop Playlist", 2000+i*100))
	}
	// Followerless candidate whose estimate clears the floor: 120 tracks and
	// a "hits" title.
	estimated := domain.CandidatePlaylist{ID: "est", Name: "Greatest Hits 2024", TrackTotal: 120}
	results = append(results, estimated)
	catalog.results[`"pop" hits charts`] = results

	sourcer := NewCandidateSourcer(catalog, nil)
	got := sourcer.Source(context.Background(), insightsWithGenres("pop"), nil)

	var ids []string
	for _, c := range got {
		if c.Strategy == StrategyGenre {
			ids = append(ids, c.Playlist.ID)
		}
	}
	if len(ids) != genreKeepPerGenre {
		t.Fatalf("expected %d genre candidates, got %d (%v)", genreKeepPerGenre, len(ids), ids)
	}
	for _, id := range ids {
		if id == "low" || id == "" {
			t.Fatalf("under-threshold or malformed candidate survived: %v", ids)
		}
	}
}

func TestCandidateSourcer_DefaultsWhenProfileIsEmpty(t *testing.T) {
	catalog := newFakeCatalog()
	sourcer := NewCandidateSourcer(catalog, nil)

	sourcer.Source(context.Background(), domain.DefaultInsights(), nil)

	// Hardcoded genre defaults are queried when insights carry no genres.
	if !catalog.sawQuery(`"pop" hits charts`) || !catalog.sawQuery(`"rock" hits charts`) {
		t.Fatalf("expected default genre queries, saw %v", catalog.queries)
	}
	// Hardcoded example artists are queried when the user follows no one.
	if !catalog.sawQuery(defaultArtists[0]) {
		t.Fatalf("expected default artist query, saw %v", catalog.queries)
	}
}

func TestCandidateSourcer_QueryFailuresAreIsolated(t *testing.T) {
	catalog := newFakeCatalog()
	for _, template := range genreQueryTemplates {
		catalog.errs[strings.Replace(template, "%s", "pop", 1)] = errors.New("boom")
	}
	catalog.results["Taylor Swift"] = []domain.CandidatePlaylist{
		popularPlaylist("a1", "This Is Taylor Swift", 100000),
	}

	sourcer := NewCandidateSourcer(catalog, nil)
	got := sourcer.Source(context.Background(), insightsWithGenres("pop"), []domain.Artist{{ID: "ar1", Name: "Taylor Swift"}})

	var artistCandidates int
	for _, c := range got {
		if c.Strategy == StrategyArtist {
			artistCandidates++
		}
	}
	if artistCandidates != 1 {
		t.Fatalf("artist strategy should survive genre failures, got %d candidates", artistCandidates)
	}
}

func TestCandidateSourcer_SerendipitySkipsKnownGenres(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.results["discover world hidden gems"] = []domain.CandidatePlaylist{
		popularPlaylist("w1", "World Tour", 800),
		popularPlaylist("w2", "Global Sounds", 700),
		popularPlaylist("w3", "Worldwide", 600),
		popularPlaylist("w4", "Around the Globe", 500),
	}
	catalog.results["discover folk hidden gems"] = []domain.CandidatePlaylist{
		popularPlaylist("f1", "Folk Tales", 900),
	}

	sourcer := NewCandidateSourcer(catalog, nil)
	// jazz and classical are known genres; the first two unexplored pool
	// entries are world and folk.
	got := sourcer.Source(context.Background(), insightsWithGenres("jazz", "classical"), nil)

	var serendipity []SourcedCandidate
	for _, c := range got {
		if c.Strategy == StrategySerendipity {
			serendipity = append(serendipity, c)
		}
	}
	if len(serendipity) != serendipityKeepEach+1 {
		t.Fatalf("expected %d serendipity candidates, got %d", serendipityKeepEach+1, len(serendipity))
	}
	if catalog.sawQuery("discover jazz hidden gems") {
		t.Fatal("serendipity must not query genres the user already listens to")
	}
	for _, c := range serendipity {
		if c.SimilarityType() != domain.SimilarityUserPattern {
			t.Fatalf("serendipity similarity type: got %s", c.SimilarityType())
		}
	}
}

func TestMoodKeywords(t *testing.T) {
	tests := []struct {
		name     string
		insights domain.MusicInsights
		want     []string
	}{
		{
			name:     "neutral profile gets fillers only",
			insights: domain.DefaultInsights(),
			want:     []string{"chill", "focus", "workout", "study"},
		},
		{
			name: "mainstream bias leads",
			insights: domain.MusicInsights{
				PopularityBias: domain.BiasMainstream,
			},
			want: []string{"popular", "hits", "trending", "chill"},
		},
		{
			name: "underground explorer",
			insights: domain.MusicInsights{
				PopularityBias: domain.BiasUnderground,
				DiscoveryRate:  80,
			},
			want: []string{"indie", "alternative", "underground", "discovery"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := moodKeywords(tc.insights)
			if len(got) != len(tc.want) {
				t.Fatalf("moods: got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("moods: got %v, want %v", got, tc.want)
				}
			}
		})
	}
}
