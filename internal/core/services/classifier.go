package services

import (
	"hash/fnv"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
)

// Source weights for the four independent inference passes. Signals from
// every pass are merged additively; a single track can feed several genres.
const (
	weightArtistPattern = 0.4
	weightTitleKeyword  = 0.2
	weightAudioFeatures = 0.3
	weightContextual    = 0.1
)

// artistNamePatterns holds lowercased keyword families matched as substrings
// against artist names. A name may hit several families.
var artistNamePatterns = map[string][]string{
	"electronic": {"dj ", "dj-", "electro", "synth", "techno", "house", "trance", "digital"},
	"hip-hop":    {"lil ", "young ", "yung ", "mc ", "rapper", "gang", "crew"},
	"rock":       {"the ", "band", "riot", "stone"},
	"classical":  {"orchestra", "symphony", "philharmonic", "quartet", "ensemble"},
	"jazz":       {"jazz", "trio", "quintet", "swing"},
	"country":    {"country", "cowboy", "banjo", "outlaw"},
	"pop":        {"pop", "star", "boy", "girl"},
	"k-pop":      {"bts", "blackpink", "stray kids", "twice", "seventeen", "nct", "aespa", "entertainment"},
	"r&b":        {"soul", "r&b", "rnb", "smooth"},
	"latin":      {"los ", "la ", "el ", "latino", "reggaeton"},
	"gospel":     {"choir", "gospel", "praise", "worship"},
}

// titleKeywordGenres maps recording-style cues in track titles to genres.
var titleKeywordGenres = map[string]string{
	"remix":        "electronic",
	"acoustic":     "folk",
	"live":         "rock",
	"instrumental": "classical",
	"cover":        "pop",
}

// kpopTitleCues are Latin transliteration terms that mark k-pop titles; Hangul
// script detection covers the non-Latin side.
var kpopTitleCues = []string{"k-pop", "kpop", "korean ver", "hangul"}

// GenreClassifier infers weighted genre labels for a single track from four
// independent textual and heuristic passes. It never fails: tracks matching
// nothing simply contribute an empty signal set.
type GenreClassifier struct {
	// energyFor optionally supplies a measured preview energy for a track,
	// replacing the synthesized value in the audio-feature pass.
	energyFor func(trackID string) (float64, bool)
	nowYear   int
}

// NewGenreClassifier constructs a classifier. energyFor may be nil.
func NewGenreClassifier(energyFor func(trackID string) (float64, bool)) *GenreClassifier {
	return &GenreClassifier{
		energyFor: energyFor,
		nowYear:   time.Now().Year(),
	}
}

// Classify runs all four passes over one track and returns the weighted
// signal set.
func (gc *GenreClassifier) Classify(track domain.Track) []domain.GenreSignal {
	var signals []domain.GenreSignal

	appendAll := func(genres []string, weight float64) {
		for _, g := range genres {
			signals = append(signals, domain.GenreSignal{Genre: g, Weight: weight})
		}
	}

	appendAll(gc.artistPatternGenres(track), weightArtistPattern)
	appendAll(gc.titleKeywordGenres(track), weightTitleKeyword)
	appendAll(gc.audioFeatureGenres(track), weightAudioFeatures)
	appendAll(gc.contextualGenres(track), weightContextual)

	return signals
}

// Accumulate merges a signal set into a running genre tally.
func Accumulate(tally map[string]float64, signals []domain.GenreSignal) {
	for _, s := range signals {
		tally[s.Genre] += s.Weight
	}
}

// BoostKPop applies the fixed post-classification weighting rule: an existing
// k-pop tally is tripled; otherwise k-pop is injected at 1.5x the current
// maximum tally, never below 10. The boost is a product rule, not an
// inference.
func BoostKPop(tally map[string]float64) {
	if tally["k-pop"] > 0 {
		tally["k-pop"] *= 3
		return
	}

	maxTally := 0.0
	for _, count := range tally {
		if count > maxTally {
			maxTally = count
		}
	}
	injected := maxTally * 1.5
	if injected < 10 {
		injected = 10
	}
	tally["k-pop"] = injected
}

func (gc *GenreClassifier) artistPatternGenres(track domain.Track) []string {
	var genres []string
	seen := map[string]bool{}
	for _, artist := range track.Artists {
		name := strings.ToLower(artist.Name)
		for genre, patterns := range artistNamePatterns {
			if seen[genre] {
				continue
			}
			for _, pattern := range patterns {
				if strings.Contains(name, pattern) {
					genres = append(genres, genre)
					seen[genre] = true
					break
				}
			}
		}
	}
	return genres
}

func (gc *GenreClassifier) titleKeywordGenres(track domain.Track) []string {
	title := strings.ToLower(track.Name)
	var genres []string
	seen := map[string]bool{}
	for keyword, genre := range titleKeywordGenres {
		if strings.Contains(title, keyword) && !seen[genre] {
			genres = append(genres, genre)
			seen[genre] = true
		}
	}

	if !seen["k-pop"] {
		for _, cue := range kpopTitleCues {
			if strings.Contains(title, cue) {
				genres = append(genres, "k-pop")
				seen["k-pop"] = true
				break
			}
		}
	}
	if !seen["k-pop"] && containsHangul(track.Name) {
		genres = append(genres, "k-pop")
	}

	return genres
}

func containsHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// pseudoFeatures are coarse audio-feature proxies synthesized from title
// keywords and duration.
type pseudoFeatures struct {
	energy           float64
	danceability     float64
	acousticness     float64
	valence          float64
	tempo            float64
	instrumentalness float64
	speechiness      float64
}

func (gc *GenreClassifier) audioFeatureGenres(track domain.Track) []string {
	f := gc.deriveFeatures(track)

	var genres []string
	if f.energy > 0.7 && f.danceability > 0.6 && f.acousticness < 0.3 {
		genres = append(genres, "electronic")
	}
	if f.acousticness > 0.7 && f.instrumentalness > 0.6 && f.energy < 0.5 {
		genres = append(genres, "classical")
	}
	if f.speechiness > 0.6 && f.danceability > 0.55 {
		genres = append(genres, "hip-hop")
	}
	if f.acousticness > 0.5 && f.instrumentalness > 0.4 && f.tempo < 115 {
		genres = append(genres, "jazz")
	}
	if f.energy > 0.65 && f.acousticness < 0.4 && f.danceability <= 0.6 {
		genres = append(genres, "rock")
	}
	if f.valence > 0.65 && f.danceability > 0.55 && f.energy <= 0.7 {
		genres = append(genres, "pop")
	}
	if f.energy < 0.3 && f.instrumentalness > 0.5 {
		genres = append(genres, "ambient")
	}
	return genres
}

// deriveFeatures synthesizes feature proxies. Where no keyword evidence
// exists, a value is drawn from a per-track deterministic source seeded by the
// track ID, so repeated runs classify identically.
func (gc *GenreClassifier) deriveFeatures(track domain.Track) pseudoFeatures {
	rng := trackRand(track.ID)
	between := func(min, max float64) float64 {
		return min + rng.Float64()*(max-min)
	}

	f := pseudoFeatures{
		energy:           between(0.1, 0.9),
		danceability:     between(0.1, 0.9),
		acousticness:     between(0.1, 0.9),
		valence:          between(0.1, 0.9),
		instrumentalness: between(0.1, 0.9),
		speechiness:      between(0.05, 0.7),
	}

	// Longer tracks are assumed slower.
	minutes := float64(track.DurationMs) / 60000.0
	f.tempo = clamp(180-minutes*15, 60, 180)

	title := strings.ToLower(track.Name)
	switch {
	case containsAny(title, "remix", "club", "party", "dance"):
		f.energy = 0.85
		f.danceability = 0.8
		f.acousticness = 0.1
	case containsAny(title, "acoustic", "unplugged"):
		f.acousticness = 0.9
		f.energy = 0.3
	case containsAny(title, "chill", "sleep", "calm", "ambient"):
		f.energy = 0.2
		f.instrumentalness = 0.7
	}
	if containsAny(title, "instrumental", "karaoke") {
		f.instrumentalness = 0.9
		f.speechiness = 0.05
	}
	if containsAny(title, "sad", "lonely", "blue") {
		f.valence = 0.2
	} else if containsAny(title, "happy", "sunshine", "smile") {
		f.valence = 0.9
	}

	if gc.energyFor != nil {
		if measured, ok := gc.energyFor(track.ID); ok {
			f.energy = measured
		}
	}

	return f
}

func (gc *GenreClassifier) contextualGenres(track domain.Track) []string {
	var genres []string
	album := strings.ToLower(track.Album.Name)
	switch {
	case strings.Contains(album, "compilation"):
		genres = append(genres, "pop")
	case strings.Contains(album, "live"):
		genres = append(genres, "rock")
	case strings.Contains(album, "remix"):
		genres = append(genres, "electronic")
	case strings.Contains(album, "classical") || strings.Contains(album, "symphony"):
		genres = append(genres, "classical")
	}

	switch year := track.ReleaseYear(); {
	case year == 0:
	case year < 1970:
		genres = append(genres, "jazz")
	case year < 1990:
		genres = append(genres, "rock")
	case year >= gc.nowYear-2:
		genres = append(genres, "pop")
	}
	return genres
}

// trackRand builds a reproducible RNG from a track ID.
func trackRand(trackID string) *rand.Rand {
	hasher := fnv.New32a()
	_, _ = hasher.Write([]byte(trackID))
	// #nosec G404 -- deterministic source for reproducible classification, not security-sensitive
	return rand.New(rand.NewSource(int64(hasher.Sum32())))
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
