package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
)

const (
	maxRecommendations = 20

	// Two adjusted scores within this distance count as a tie and are ordered
	// by follower count instead.
	tieBreakWindow = 5

	redundancyThreshold  = 3
	redundancyMultiplier = 0.85

	estimateCap = 100_000
)

var rankingNumberPattern = regexp.MustCompile(`(?i)top\s*\d+`)

// EstimateFollowers produces a heuristic follower count for candidates the
// catalog reported no follower data for. It is used for the popularity filter
// during sourcing and as a sort fallback during ranking, never in place of
// real data.
func EstimateFollowers(p domain.CandidatePlaylist) int {
	estimate := 0

	switch tracks := p.TrackTotal; {
	case tracks > 200:
		estimate += 15_000
	case tracks > 100:
		estimate += 10_000
	case tracks > 50:
		estimate += 5_000
	case tracks > 25:
		estimate += 2_500
	case tracks > 10:
		estimate += 1_000
	}

	title := strings.ToLower(p.Name)
	if containsAny(title, "chart", "billboard") {
		estimate += 25_000
	}
	if containsAny(title, "hits", "best", "top") {
		estimate += 15_000
	}
	if containsAny(title, "popular", "greatest") {
		estimate += 10_000
	}
	if strings.Contains(title, "official") {
		estimate += 8_000
	}
	if containsAny(title, "radio", "mainstream") {
		estimate += 8_000
	}
	if containsAny(title, "2023", "2024") {
		estimate += 5_000
	}
	if rankingNumberPattern.MatchString(p.Name) {
		estimate += 8_000
	}

	if len(p.Description) > 100 {
		estimate += 3_000
	}
	if containsAny(strings.ToLower(p.Owner), "official", "music", "records") {
		estimate += 15_000
	}

	if estimate > estimateCap {
		estimate = estimateCap
	}
	return estimate
}

// Ranker deduplicates, adjusts and orders scored recommendations. It is a
// pure transformation of an in-memory list.
type Ranker struct{}

// NewRanker constructs a Ranker.
func NewRanker() *Ranker { return &Ranker{} }

// Rank produces the final ordered recommendation list: first occurrence per
// playlist id wins, cross-candidate adjustments are applied, then the list is
// sorted with a follower tie-break and truncated to the top 20.
func (r *Ranker) Rank(recs []domain.Recommendation, insights domain.MusicInsights) []domain.Recommendation {
	deduped := dedupe(recs)

	for i := range deduped {
		deduped[i].Score *= adjustment(deduped[i], deduped, insights)
	}

	sort.Slice(deduped, func(i, j int) bool {
		if deduped[i].Score != deduped[j].Score {
			return deduped[i].Score > deduped[j].Score
		}
		return sortFollowers(deduped[i].Playlist) > sortFollowers(deduped[j].Playlist)
	})
	sortTieGroups(deduped)

	if len(deduped) > maxRecommendations {
		deduped = deduped[:maxRecommendations]
	}
	return deduped
}

// sortTieGroups reorders runs of near-tied scores by follower count. The input
// must already be score-sorted descending. Each group is anchored at the
// highest remaining score and extends over every entry within the tie window
// of that anchor; grouping by a fixed anchor rather than pairwise distance
// keeps the ordering well-defined over chains of near-ties.
func sortTieGroups(recs []domain.Recommendation) {
	for start := 0; start < len(recs); {
		end := start + 1
		for end < len(recs) && recs[start].Score-recs[end].Score <= tieBreakWindow {
			end++
		}
		group := recs[start:end]
		sort.Slice(group, func(i, j int) bool {
			return sortFollowers(group[i].Playlist) > sortFollowers(group[j].Playlist)
		})
		start = end
	}
}

func dedupe(recs []domain.Recommendation) []domain.Recommendation {
	seen := map[string]bool{}
	out := make([]domain.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if seen[rec.Playlist.ID] {
			continue
		}
		seen[rec.Playlist.ID] = true
		out = append(out, rec)
	}
	return out
}

// adjustment combines the anti-redundancy penalty, the popularity-bias
// multiplier stack, the universal quality multiplier and the discovery bonus.
// Multipliers are cumulative, not exclusive.
func adjustment(rec domain.Recommendation, all []domain.Recommendation, insights domain.MusicInsights) float64 {
	multiplier := 1.0

	if redundant(rec, all) > redundancyThreshold {
		multiplier *= redundancyMultiplier
	}

	followers := rec.Playlist.Followers
	switch insights.PopularityBias {
	case domain.BiasMainstream:
		switch {
		case followers > 100_000:
			multiplier *= 1.2
		case followers > 50_000:
			multiplier *= 1.15
		case followers > 10_000:
			multiplier *= 1.1
		case followers < 5_000:
			multiplier *= 0.9
		}
	case domain.BiasUnderground:
		switch {
		case followers < 10_000:
			multiplier *= 1.15
		case followers < 50_000:
			multiplier *= 1.1
		case followers > 500_000:
			multiplier *= 0.9
		}
	default:
		switch {
		case followers > 250_000:
			multiplier *= 1.1
		case followers > 50_000:
			multiplier *= 1.05
		}
	}

	switch {
	case followers >= 1_000_000:
		multiplier *= 1.25
	case followers >= 500_000:
		multiplier *= 1.20
	case followers >= 100_000:
		multiplier *= 1.15
	case followers >= 50_000:
		multiplier *= 1.10
	}

	if insights.DiscoveryRate > 70 && rec.SimilarityType == domain.SimilarityUserPattern {
		multiplier *= 1.15
	}

	return multiplier
}

// redundant counts other recommendations sharing both the similarity type and
// at least one matching genre.
func redundant(rec domain.Recommendation, all []domain.Recommendation) int {
	count := 0
	for _, other := range all {
		if other.Playlist.ID == rec.Playlist.ID {
			continue
		}
		if other.SimilarityType != rec.SimilarityType {
			continue
		}
		if sharesGenre(rec.MatchingGenres, other.MatchingGenres) {
			count++
		}
	}
	return count
}

func sharesGenre(a, b []string) bool {
	for _, ga := range a {
		for _, gb := range b {
			if ga == gb {
				return true
			}
		}
	}
	return false
}

// sortFollowers prefers real follower data, falling back to the estimate.
func sortFollowers(p domain.CandidatePlaylist) int {
	if p.Followers > 0 {
		return p.Followers
	}
	return EstimateFollowers(p)
}
