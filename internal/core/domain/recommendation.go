package domain

import "time"

// SimilarityType names the strategy family that produced a candidate.
type SimilarityType string

const (
	SimilarityGenre      SimilarityType = "genre"
	SimilarityArtist     SimilarityType = "artist"
	SimilarityPopularity SimilarityType = "popularity"
	// SimilarityUserPattern covers both mood and serendipity sourcing.
	SimilarityUserPattern SimilarityType = "user_pattern"
)

// Recommendation is one scored candidate. The score is adjusted once during
// ranking and the value is immutable afterwards. Recommendations live for a
// single profile-generation cycle and are rebuilt, never patched, on refresh.
type Recommendation struct {
	Playlist       CandidatePlaylist `json:"playlist"`
	Score          float64           `json:"score"`
	Reasons        []string          `json:"reasons"`
	MatchingGenres []string          `json:"matchingGenres"`
	SimilarityType SimilarityType    `json:"similarityType"`
}

// TasteProfile is the full output of one profile-generation cycle.
type TasteProfile struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	Insights        MusicInsights    `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
	LastUpdated     time.Time        `json:"lastUpdated"`
}
