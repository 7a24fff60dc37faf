package services

import (
	"math"
	"sort"
	"time"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
)

const topGenreLimit = 10

// ProfileAnalyzer aggregates listening samples into MusicInsights.
type ProfileAnalyzer struct {
	classifier *GenreClassifier
}

// NewProfileAnalyzer constructs an analyzer around a classifier.
func NewProfileAnalyzer(classifier *GenreClassifier) *ProfileAnalyzer {
	return &ProfileAnalyzer{classifier: classifier}
}

// Analyze concatenates the three sample lists and derives insights. Duplicates
// across lists are kept on purpose: a track appearing in two samples counts
// twice, weighting cross-source agreement. An empty combined set yields the
// documented default insights rather than an error.
func (pa *ProfileAnalyzer) Analyze(topTracks, recentlyPlayed, savedTracks []domain.Track) domain.MusicInsights {
	combined := make([]domain.Track, 0, len(topTracks)+len(recentlyPlayed)+len(savedTracks))
	combined = append(combined, topTracks...)
	combined = append(combined, recentlyPlayed...)
	combined = append(combined, savedTracks...)

	if len(combined) == 0 {
		return domain.DefaultInsights()
	}

	tally := make(map[string]float64)
	for _, track := range combined {
		Accumulate(tally, pa.classifier.Classify(track))
	}
	BoostKPop(tally)

	total := float64(len(combined))
	diversity := artistDiversity(combined)

	return domain.MusicInsights{
		TopGenres:       topGenres(tally, total),
		ArtistDiversity: diversity,
		PopularityBias:  popularityBias(combined),
		// Tracks artist diversity by construction; see domain.MusicInsights.
		DiscoveryRate: diversity,
		ListeningPatterns: domain.ListeningPatterns{
			AverageTrackLengthMs: averageDurationMs(combined),
			ExplicitContentRatio: explicitRatio(combined),
			RecentVsOld:          recencyLean(combined),
		},
	}
}

func topGenres(tally map[string]float64, total float64) []domain.GenreCount {
	counts := make([]domain.GenreCount, 0, len(tally))
	for genre, count := range tally {
		counts = append(counts, domain.GenreCount{
			Genre:      genre,
			Count:      count,
			Percentage: math.Round(count / total * 100),
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Genre < counts[j].Genre
	})
	if len(counts) > topGenreLimit {
		counts = counts[:topGenreLimit]
	}
	return counts
}

func artistDiversity(tracks []domain.Track) float64 {
	unique := map[string]struct{}{}
	for _, track := range tracks {
		for _, artist := range track.Artists {
			if artist.ID != "" {
				unique[artist.ID] = struct{}{}
			}
		}
	}
	ratio := float64(len(unique)) / float64(len(tracks)) * 100
	if ratio > 100 {
		ratio = 100
	}
	return ratio
}

// popularityBias averages popularity over tracks that carry one; tracks
// without a popularity field are excluded from the mean, not counted as zero.
func popularityBias(tracks []domain.Track) domain.PopularityBias {
	sum, counted := 0, 0
	for _, track := range tracks {
		if track.Popularity == nil {
			continue
		}
		sum += *track.Popularity
		counted++
	}
	if counted == 0 {
		return domain.BiasMixed
	}
	mean := float64(sum) / float64(counted)
	switch {
	case mean > 70:
		return domain.BiasMainstream
	case mean < 40:
		return domain.BiasUnderground
	default:
		return domain.BiasMixed
	}
}

func averageDurationMs(tracks []domain.Track) float64 {
	sum := 0
	for _, track := range tracks {
		sum += track.DurationMs
	}
	return float64(sum) / float64(len(tracks))
}

func explicitRatio(tracks []domain.Track) float64 {
	explicit := 0
	for _, track := range tracks {
		if track.Explicit {
			explicit++
		}
	}
	return float64(explicit) / float64(len(tracks)) * 100
}

// recencyLean buckets the sample by release age: mostly released within the
// last five years leans recent, mostly older than fifteen years leans old.
func recencyLean(tracks []domain.Track) domain.RecencyLean {
	nowYear := time.Now().Year()
	recent, old, dated := 0, 0, 0
	for _, track := range tracks {
		year := track.ReleaseYear()
		if year == 0 {
			continue
		}
		dated++
		switch {
		case year >= nowYear-5:
			recent++
		case year < nowYear-15:
			old++
		}
	}
	if dated == 0 {
		return domain.LeanMixed
	}
	switch {
	case float64(recent)/float64(dated) > 0.6:
		return domain.LeanRecent
	case float64(old)/float64(dated) > 0.6:
		return domain.LeanOld
	default:
		return domain.LeanMixed
	}
}
