package domain

// PopularityBias classifies how mainstream a listener's history is.
type PopularityBias string

const (
	BiasMainstream  PopularityBias = "mainstream"
	BiasUnderground PopularityBias = "underground"
	BiasMixed       PopularityBias = "mixed"
)

// RecencyLean classifies whether a listener favors recent or older releases.
type RecencyLean string

const (
	LeanRecent RecencyLean = "recent"
	LeanOld    RecencyLean = "old"
	LeanMixed  RecencyLean = "mixed"
)

// GenreSignal is one weighted genre inference for a single track. Signals are
// summed per-genre across a sample set and are never deduplicated beforehand;
// one track may contribute to several genres.
type GenreSignal struct {
	Genre  string
	Weight float64
}

// GenreCount is an aggregated genre tally. Count is the summed signal weight,
// Percentage is Count over the total sample size, rounded. Percentages across
// a profile need not sum to 100 because genre weights are not mutually
// exclusive.
type GenreCount struct {
	Genre      string  `json:"genre"`
	Count      float64 `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ListeningPatterns are coarse statistics over the combined sample set.
type ListeningPatterns struct {
	AverageTrackLengthMs float64     `json:"averageTrackLengthMs"`
	ExplicitContentRatio float64     `json:"explicitContentRatio"` // 0-100
	RecentVsOld          RecencyLean `json:"recentVsOld"`
}

// MusicInsights is the aggregated taste summary for one user. It is recomputed
// wholesale on every profile refresh; there is no incremental update path.
//
// DiscoveryRate intentionally tracks ArtistDiversity: both carry the same
// unique-artist ratio, and consumers read them as separate signals.
type MusicInsights struct {
	TopGenres         []GenreCount      `json:"topGenres"`
	ArtistDiversity   float64           `json:"artistDiversity"` // 0-100
	PopularityBias    PopularityBias    `json:"popularityBias"`
	DiscoveryRate     float64           `json:"discoveryRate"` // 0-100
	ListeningPatterns ListeningPatterns `json:"listeningPatterns"`
}

// DefaultInsights is the documented fallback returned when a user has no
// listening history at all.
func DefaultInsights() MusicInsights {
	return MusicInsights{
		TopGenres:       []GenreCount{},
		ArtistDiversity: 0,
		PopularityBias:  BiasMixed,
		DiscoveryRate:   0,
		ListeningPatterns: ListeningPatterns{
			AverageTrackLengthMs: 210000,
			ExplicitContentRatio: 0,
			RecentVsOld:          LeanMixed,
		},
	}
}
