package services

import (
	"fmt"
	"testing"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
)

func recWith(id string, score float64, followers int) domain.Recommendation {
	return domain.Recommendation{
		Playlist: domain.CandidatePlaylist{
			ID:        id,
			Name:      "Playlist " + id,
			Followers: followers,
		},
		Score:          score,
		MatchingGenres: []string{id},
		SimilarityType: domain.SimilarityGenre,
	}
}

func TestRanker_DeduplicationFirstWins(t *testing.T) {
	ranker := NewRanker()
	insights := domain.MusicInsights{PopularityBias: domain.BiasMixed}

	first := recWith("p1", 90, 1000)
	duplicate := recWith("p1", 50, 1000)

	got := ranker.Rank([]domain.Recommendation{first, duplicate}, insights)

	if len(got) != 1 {
		t.Fatalf("expected 1 recommendation after dedup, got %d", len(got))
	}
	if got[0].Score != 90 {
		t.Fatalf("first occurrence should win: got score %.2f, want 90", got[0].Score)
	}
}

func TestRanker_FollowerTieBreak(t *testing.T) {
	ranker := NewRanker()
	insights := domain.MusicInsights{PopularityBias: domain.BiasMixed}

	higher := recWith("p1", 81, 1000)
	lower := recWith("p2", 77, 5000)

	got := ranker.Rank([]domain.Recommendation{higher, lower}, insights)

	// Scores differ by 4 (<= the tie window), so follower count decides.
	if got[0].Playlist.ID != "p2" {
		t.Fatalf("expected p2 (5000 followers) first, got %s", got[0].Playlist.ID)
	}
}

func TestRanker_NearTieChainsAreAnchored(t *testing.T) {
	ranker := NewRanker()
	insights := domain.MusicInsights{PopularityBias: domain.BiasMixed}

	// 18 and 14 tie against the anchor (18); 10 is outside the anchor's window
	// even though it pairwise-ties with 14. The ordering must not depend on
	// input order.
	a := recWith("a", 18, 100)
	b := recWith("b", 14, 9_000)
	c := recWith("c", 10, 50_000)

	inputs := [][]domain.Recommendation{
		{a, b, c},
		{c, b, a},
		{b, c, a},
	}
	for _, input := range inputs {
		got := ranker.Rank(input, insights)
		if got[0].Playlist.ID != "b" || got[1].Playlist.ID != "a" || got[2].Playlist.ID != "c" {
			t.Fatalf("order: got %s,%s,%s, want b,a,c",
				got[0].Playlist.ID, got[1].Playlist.ID, got[2].Playlist.ID)
		}
	}
}

func TestRanker_ScoreOrderOutsideTieWindow(t *testing.T) {
	ranker := NewRanker()
	insights := domain.MusicInsights{PopularityBias: domain.BiasMixed}

	strong := recWith("p1", 90, 100)
	weak := recWith("p2", 40, 40_000)

	got := ranker.Rank([]domain.Recommendation{weak, strong}, insights)
	if got[0].Playlist.ID != "p1" {
		t.Fatalf("expected score order outside tie window, got %s first", got[0].Playlist.ID)
	}
}

func TestRanker_TruncatesToTwenty(t *testing.T) {
	ranker := NewRanker()
	insights := domain.MusicInsights{PopularityBias: domain.BiasMixed}

	recs := make([]domain.Recommendation, 0, 30)
	for i := 0; i < 30; i++ {
		recs = append(recs, recWith(fmt.Sprintf("p%02d", i), float64(30+i*2), 1000))
	}

	got := ranker.Rank(recs, insights)
	if len(got) != maxRecommendations {
		t.Fatalf("expected %d recommendations, got %d", maxRecommendations, len(got))
	}
}

func TestRanker_RedundancyPenalty(t *testing.T) {
	ranker := NewRanker()
	insights := domain.MusicInsights{PopularityBias: domain.BiasMixed}

	// Five genre recommendations sharing the same matching genre exceed the
	// redundancy threshold; a lone one does not.
	var crowded []domain.Recommendation
	for i := 0; i < 5; i++ {
		rec := recWith(fmt.Sprintf("c%d", i), 60, 1000)
		rec.MatchingGenres = []string{"rock"}
		crowded = append(crowded, rec)
	}
	lone := recWith("solo", 60, 1000)
	lone.MatchingGenres = []string{"jazz"}

	got := ranker.Rank(append(crowded, lone), insights)

	for _, rec := range got {
		want := 60.0
		if rec.MatchingGenres[0] == "rock" {
			want = 60 * redundancyMultiplier
		}
		if rec.Score != want {
			t.Fatalf("rec %s: got score %.2f, want %.2f", rec.Playlist.ID, rec.Score, want)
		}
	}
}

func TestRanker_MainstreamBiasMultiplier(t *testing.T) {
	ranker := NewRanker()
	mainstream := domain.MusicInsights{PopularityBias: domain.BiasMainstream}

	big := recWith("big", 50, 200_000)
	small := recWith("small", 50, 1_000)

	got := ranker.Rank([]domain.Recommendation{big, small}, mainstream)

	var bigScore, smallScore float64
	for _, rec := range got {
		switch rec.Playlist.ID {
		case "big":
			bigScore = rec.Score
		case "small":
			smallScore = rec.Score
		}
	}

	// 1.2 bias multiplier stacked with the 1.15 quality multiplier.
	if want := 50 * 1.2 * 1.15; !almostEqual(bigScore, want) {
		t.Fatalf("big playlist score: got %.2f, want %.2f", bigScore, want)
	}
	if want := 50 * 0.9; !almostEqual(smallScore, want) {
		t.Fatalf("small playlist score: got %.2f, want %.2f", smallScore, want)
	}
}

func TestRanker_DiscoveryBonusForUserPattern(t *testing.T) {
	ranker := NewRanker()
	explorer := domain.MusicInsights{PopularityBias: domain.BiasMixed, DiscoveryRate: 80}

	rec := recWith("p1", 50, 1000)
	rec.SimilarityType = domain.SimilarityUserPattern

	got := ranker.Rank([]domain.Recommendation{rec}, explorer)
	if want := 50 * 1.15; !almostEqual(got[0].Score, want) {
		t.Fatalf("discovery bonus: got %.2f, want %.2f", got[0].Score, want)
	}
}

func TestEstimateFollowers(t *testing.T) {
	tests := []struct {
		name     string
		playlist domain.CandidatePlaylist
		atLeast  int
		atMost   int
	}{
		{
			name:     "empty playlist estimates zero",
			playlist: domain.CandidatePlaylist{ID: "p", Name: "Mixtape"},
			atMost:   0,
		},
		{
			name: "big hits playlist clears the sourcing floor",
			playlist: domain.CandidatePlaylist{
				ID:         "p",
				Name:       "Greatest Hits 2024",
				TrackTotal: 120,
			},
			atLeast: minEstimatedFollowers,
		},
		{
			name: "official owner and chart title",
			playlist: domain.CandidatePlaylist{
				ID:         "p",
				Name:       "Billboard Top 100 Chart",
				Owner:      "Acme Records",
				TrackTotal: 100,
			},
			atLeast: 40_000,
		},
		{
			name: "estimate is capped",
			playlist: domain.CandidatePlaylist{
				ID:          "p",
				Name:        "Official Billboard Top 100 Radio Hits 2024 Chart",
				Owner:       "Official Music Records",
				Description: string(make([]byte, 150)),
				TrackTotal:  500,
			},
			atMost: estimateCap,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EstimateFollowers(tc.playlist)
			if tc.atLeast > 0 && got < tc.atLeast {
				t.Fatalf("estimate: got %d, want >= %d", got, tc.atLeast)
			}
			if got > estimateCap {
				t.Fatalf("estimate above cap: %d", got)
			}
			if tc.atLeast == 0 && got > tc.atMost {
				t.Fatalf("estimate: got %d, want <= %d", got, tc.atMost)
			}
		})
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 0.001
}
