package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
	"github.com/cadenza-labs/cadenza/internal/core/ports"
)

// Strategy identifies the generation strategy that produced a candidate.
type Strategy string

const (
	StrategyGenre       Strategy = "genre"
	StrategyArtist      Strategy = "artist"
	StrategyMood        Strategy = "mood"
	StrategySerendipity Strategy = "serendipity"
)

// SourcedCandidate pairs a normalized playlist with its source metadata.
type SourcedCandidate struct {
	Playlist domain.CandidatePlaylist
	Strategy Strategy
	Genre    string // set for genre and serendipity candidates
	Artist   string // set for artist candidates
	Mood     string // set for mood candidates
}

// SimilarityType maps the strategy family onto the recommendation taxonomy;
// mood and serendipity both count as user-pattern similarity.
func (c SourcedCandidate) SimilarityType() domain.SimilarityType {
	switch c.Strategy {
	case StrategyArtist:
		return domain.SimilarityArtist
	case StrategyMood, StrategySerendipity:
		return domain.SimilarityUserPattern
	default:
		return domain.SimilarityGenre
	}
}

// MatchingLabels returns the genre-like labels a candidate matched on, used
// downstream for anti-redundancy grouping.
func (c SourcedCandidate) MatchingLabels() []string {
	switch c.Strategy {
	case StrategyArtist:
		return []string{c.Artist}
	case StrategyMood:
		return []string{c.Mood}
	default:
		return []string{c.Genre}
	}
}

const (
	genreStrategyLimit   = 4
	genreKeepPerGenre    = 8
	artistStrategyLimit  = 6
	artistKeepPerQuery   = 10
	moodStrategyLimit    = 4
	moodKeepPerMood      = 5
	serendipityTopics    = 2
	serendipityKeepEach  = 3
	searchResultsPerCall = 10

	minRealFollowers      = 1000
	minEstimatedFollowers = 5000
)

var defaultGenres = []string{"pop", "rock", "hip-hop", "electronic"}

var defaultArtists = []string{"Taylor Swift", "Bad Bunny", "NewJeans"}

// serendipityPool is the fixed set of genres considered for deliberate
// out-of-profile discovery.
var serendipityPool = []string{"jazz", "classical", "world", "folk", "reggae", "blues", "ambient", "experimental"}

var genreQueryTemplates = []string{
	`"%s" hits charts`,
	`popular %s playlist`,
	`best %s songs`,
	`%s mix`,
}

// CandidateSourcer fans out catalog searches across four generation
// strategies. Any single query failure is logged and skipped; sibling queries
// and strategies always proceed.
type CandidateSourcer struct {
	catalog ports.CatalogProvider
	log     *zap.Logger
}

// NewCandidateSourcer constructs a sourcer.
func NewCandidateSourcer(catalog ports.CatalogProvider, log *zap.Logger) *CandidateSourcer {
	if log == nil {
		log = zap.NewNop()
	}
	return &CandidateSourcer{catalog: catalog, log: log}
}

// Source runs the genre, artist and mood strategies concurrently, then the
// serendipity strategy over their combined coverage, and concatenates all
// results. Deduplication is deliberately left to the ranker.
func (cs *CandidateSourcer) Source(ctx context.Context, insights domain.MusicInsights, followed []domain.Artist) []SourcedCandidate {
	var (
		wg                        sync.WaitGroup
		byGenre, byArtist, byMood []SourcedCandidate
	)

	wg.Add(3)
	go func() { defer wg.Done(); byGenre = cs.genreStrategy(ctx, insights) }()
	go func() { defer wg.Done(); byArtist = cs.artistStrategy(ctx, followed) }()
	go func() { defer wg.Done(); byMood = cs.moodStrategy(ctx, insights) }()
	wg.Wait()

	candidates := make([]SourcedCandidate, 0, len(byGenre)+len(byArtist)+len(byMood))
	candidates = append(candidates, byGenre...)
	candidates = append(candidates, byArtist...)
	candidates = append(candidates, byMood...)

	candidates = append(candidates, cs.serendipityStrategy(ctx, insights, candidates)...)
	return candidates
}

// genreStrategy tries a sequence of differently-worded queries per genre and
// stops at the first query that yields a usable candidate.
func (cs *CandidateSourcer) genreStrategy(ctx context.Context, insights domain.MusicInsights) []SourcedCandidate {
	genres := make([]string, 0, genreStrategyLimit)
	for _, gc := range insights.TopGenres {
		genres = append(genres, gc.Genre)
		if len(genres) == genreStrategyLimit {
			break
		}
	}
	if len(genres) == 0 {
		genres = defaultGenres
	}

	var out []SourcedCandidate
	for _, genre := range genres {
		for _, template := range genreQueryTemplates {
			query := fmt.Sprintf(template, genre)
			results, err := cs.catalog.SearchPlaylists(ctx, query, searchResultsPerCall)
			if err != nil {
				cs.log.Warn("genre query failed", zap.String("query", query), zap.Error(err))
				continue
			}

			kept := filterPopular(results)
			if len(kept) == 0 {
				continue
			}

			// Real follower counts sort first; estimates break ties among the
			// candidates the catalog reported nothing for.
			sort.Slice(kept, func(i, j int) bool {
				if kept[i].Followers != kept[j].Followers {
					return kept[i].Followers > kept[j].Followers
				}
				return EstimateFollowers(kept[i]) > EstimateFollowers(kept[j])
			})
			if len(kept) > genreKeepPerGenre {
				kept = kept[:genreKeepPerGenre]
			}
			for _, p := range kept {
				out = append(out, SourcedCandidate{Playlist: p, Strategy: StrategyGenre, Genre: genre})
			}
			break
		}
	}
	return out
}

// filterPopular keeps candidates with at least 1000 real followers, or an
// estimated 5000 when the catalog reported no follower data.
func filterPopular(playlists []domain.CandidatePlaylist) []domain.CandidatePlaylist {
	kept := make([]domain.CandidatePlaylist, 0, len(playlists))
	for _, p := range playlists {
		if p.ID == "" || p.Name == "" {
			continue
		}
		if p.Followers >= minRealFollowers {
			kept = append(kept, p)
			continue
		}
		if p.Followers == 0 && EstimateFollowers(p) >= minEstimatedFollowers {
			kept = append(kept, p)
		}
	}
	return kept
}

func (cs *CandidateSourcer) artistStrategy(ctx context.Context, followed []domain.Artist) []SourcedCandidate {
	names := make([]string, 0, artistStrategyLimit)
	for _, artist := range followed {
		if artist.Name == "" {
			continue
		}
		names = append(names, artist.Name)
		if len(names) == artistStrategyLimit {
			break
		}
	}
	if len(names) == 0 {
		names = defaultArtists
	}

	var out []SourcedCandidate
	for _, name := range names {
		results, err := cs.catalog.SearchPlaylists(ctx, name, artistKeepPerQuery)
		if err != nil {
			cs.log.Warn("artist query failed", zap.String("artist", name), zap.Error(err))
			continue
		}
		for _, p := range results {
			if p.ID == "" || p.Name == "" {
				continue
			}
			out = append(out, SourcedCandidate{Playlist: p, Strategy: StrategyArtist, Artist: name})
		}
	}
	return out
}

func (cs *CandidateSourcer) moodStrategy(ctx context.Context, insights domain.MusicInsights) []SourcedCandidate {
	var out []SourcedCandidate
	for _, mood := range moodKeywords(insights) {
		query := fmt.Sprintf("%s playlist", mood)
		results, err := cs.catalog.SearchPlaylists(ctx, query, searchResultsPerCall)
		if err != nil {
			cs.log.Warn("mood query failed", zap.String("mood", mood), zap.Error(err))
			continue
		}
		kept := 0
		for _, p := range results {
			if p.ID == "" || p.Name == "" {
				continue
			}
			out = append(out, SourcedCandidate{Playlist: p, Strategy: StrategyMood, Mood: mood})
			kept++
			if kept == moodKeepPerMood {
				break
			}
		}
	}
	return out
}

// moodKeywords derives up to four mood terms from the insights, always padded
// with general-purpose fillers.
func moodKeywords(insights domain.MusicInsights) []string {
	var moods []string
	switch insights.PopularityBias {
	case domain.BiasMainstream:
		moods = append(moods, "popular", "hits", "trending")
	case domain.BiasUnderground:
		moods = append(moods, "indie", "alternative", "underground")
	}
	if insights.DiscoveryRate > 70 {
		moods = append(moods, "discovery", "new music", "fresh")
	}
	if insights.ArtistDiversity > 60 {
		moods = append(moods, "eclectic", "diverse", "variety")
	}
	moods = append(moods, "chill", "focus", "workout", "study")

	if len(moods) > moodStrategyLimit {
		moods = moods[:moodStrategyLimit]
	}
	return moods
}

// serendipityStrategy queries genres the user neither listens to nor already
// received candidates for. Scores for these candidates are discounted later.
func (cs *CandidateSourcer) serendipityStrategy(ctx context.Context, insights domain.MusicInsights, collected []SourcedCandidate) []SourcedCandidate {
	known := map[string]bool{}
	for _, gc := range insights.TopGenres {
		known[strings.ToLower(gc.Genre)] = true
	}

	covered := func(genre string) bool {
		for _, c := range collected {
			text := strings.ToLower(c.Playlist.Name + " " + c.Playlist.Description)
			if strings.Contains(text, genre) {
				return true
			}
		}
		return false
	}

	var out []SourcedCandidate
	queried := 0
	for _, genre := range serendipityPool {
		if queried == serendipityTopics {
			break
		}
		if known[genre] || covered(genre) {
			continue
		}
		queried++

		query := fmt.Sprintf("discover %s hidden gems", genre)
		results, err := cs.catalog.SearchPlaylists(ctx, query, searchResultsPerCall)
		if err != nil {
			cs.log.Warn("serendipity query failed", zap.String("genre", genre), zap.Error(err))
			continue
		}
		kept := 0
		for _, p := range results {
			if p.ID == "" || p.Name == "" {
				continue
			}
			out = append(out, SourcedCandidate{Playlist: p, Strategy: StrategySerendipity, Genre: genre})
			kept++
			if kept == serendipityKeepEach {
				break
			}
		}
	}
	return out
}
