package services

import (
	"fmt"
	"strings"

	"github.com/cadenza-labs/cadenza/internal/core/domain"
)

// defaultScore is assigned when scoring a single candidate panics; the
// candidate stays in the result set at a middling score instead of vanishing.
const defaultScore = 40

// serendipityConfidence discounts serendipity candidates for their lower
// confidence.
const serendipityConfidence = 0.7

// genreSynonyms is the fixed per-genre synonym table used for partial text
// matches.
var genreSynonyms = map[string][]string{
	"electronic": {"edm", "dance", "techno", "house", "trance", "dubstep", "electro"},
	"hip-hop":    {"rap", "hiphop", "trap", "drill"},
	"rock":       {"metal", "punk", "alternative", "grunge"},
	"classical":  {"orchestra", "symphony", "baroque", "piano"},
	"jazz":       {"swing", "bebop", "bossa"},
	"pop":        {"top 40", "hits", "chart"},
	"k-pop":      {"kpop", "korean", "idol"},
	"r&b":        {"rnb", "soul", "neo-soul"},
	"latin":      {"reggaeton", "salsa", "bachata"},
	"country":    {"nashville", "americana", "bluegrass"},
	"gospel":     {"worship", "praise", "christian"},
}

// moodSynonyms is the fixed per-mood synonym table.
var moodSynonyms = map[string][]string{
	"happy":     {"upbeat", "cheerful", "joyful", "feel good", "sunny"},
	"chill":     {"relax", "mellow", "calm", "laid back"},
	"workout":   {"gym", "pump", "cardio", "training"},
	"focus":     {"concentration", "deep work", "productivity"},
	"study":     {"studying", "reading", "homework"},
	"popular":   {"hits", "trending", "viral", "top"},
	"indie":     {"alternative", "underground", "bedroom"},
	"discovery": {"new music", "fresh", "emerging"},
	"eclectic":  {"diverse", "variety", "mixed"},
}

// valence direction per genre, used to estimate a listener's overall valence.
var (
	valenceUpGenres   = map[string]bool{"pop": true, "dance": true, "electronic": true, "funk": true}
	valenceDownGenres = map[string]bool{"blues": true, "classical": true, "ambient": true, "folk": true}
)

// moodValenceUp maps moods to their expected valence direction; moods absent
// from both sets are neutral and earn no valence bonus.
var (
	moodValenceUp   = map[string]bool{"happy": true, "popular": true, "workout": true, "trending": true, "hits": true}
	moodValenceDown = map[string]bool{"chill": true, "focus": true, "study": true, "indie": true}
)

// FollowerQuality maps a follower count onto 0-100 through a fixed step
// function. Candidates in the same band form stable tie groups for ranking.
func FollowerQuality(followers int) float64 {
	switch {
	case followers <= 0:
		return 0
	case followers >= 10_000_000:
		return 100
	case followers >= 5_000_000:
		return 95
	case followers >= 1_000_000:
		return 90
	case followers >= 500_000:
		return 85
	case followers >= 250_000:
		return 80
	case followers >= 100_000:
		return 75
	case followers >= 50_000:
		return 70
	case followers >= 25_000:
		return 65
	case followers >= 10_000:
		return 60
	case followers >= 5_000:
		return 55
	case followers >= 2_500:
		return 50
	case followers >= 1_000:
		return 45
	case followers >= 500:
		return 40
	case followers >= 250:
		return 35
	case followers >= 100:
		return 30
	case followers >= 50:
		return 25
	case followers >= 25:
		return 20
	case followers >= 10:
		return 15
	case followers >= 5:
		return 10
	default:
		return 5
	}
}

// Scorer computes relevance scores for sourced candidates. All scoring is a
// pure function of (candidate, insights).
type Scorer struct{}

// NewScorer constructs a Scorer.
func NewScorer() *Scorer { return &Scorer{} }

// Score turns a sourced candidate into a Recommendation. A panic while
// scoring one candidate is contained and yields the documented default score.
func (s *Scorer) Score(candidate SourcedCandidate, insights domain.MusicInsights) (rec domain.Recommendation) {
	rec = domain.Recommendation{
		Playlist:       candidate.Playlist,
		SimilarityType: candidate.SimilarityType(),
		MatchingGenres: candidate.MatchingLabels(),
	}

	defer func() {
		if r := recover(); r != nil {
			rec.Score = defaultScore
			rec.Reasons = []string{"Recovered from scoring failure"}
		}
	}()

	var score float64
	var reasons []string
	switch candidate.Strategy {
	case StrategyArtist:
		score, reasons = s.scoreArtist(candidate.Playlist, candidate.Artist, insights)
	case StrategyMood:
		score, reasons = s.scoreMood(candidate.Playlist, candidate.Mood, insights)
	default:
		score, reasons = s.scoreGenre(candidate.Playlist, candidate.Genre, insights)
		if candidate.Strategy == StrategySerendipity {
			score *= serendipityConfidence
			reasons = append(reasons, "Outside your usual genres")
		}
	}

	rec.Score = score
	rec.Reasons = reasons
	return rec
}

func (s *Scorer) scoreGenre(p domain.CandidatePlaylist, genre string, insights domain.MusicInsights) (float64, []string) {
	score := 30.0
	var reasons []string

	score += FollowerQuality(p.Followers) * 0.4
	if p.Followers > 1_000_000 {
		score += 15
		reasons = append(reasons, fmt.Sprintf("Hugely popular with %d followers", p.Followers))
	} else if p.Followers > 250_000 {
		score += 10
		reasons = append(reasons, fmt.Sprintf("Popular with %d followers", p.Followers))
	}

	title := strings.ToLower(p.Name)
	text := title + " " + strings.ToLower(p.Description)
	lowered := strings.ToLower(genre)
	switch {
	case strings.Contains(title, lowered):
		score += 30
		reasons = append(reasons, fmt.Sprintf("Dedicated %s playlist", genre))
	case strings.Contains(text, lowered):
		score += 20
		reasons = append(reasons, fmt.Sprintf("Features %s music", genre))
	default:
		if bonus := synonymBonus(genreSynonyms[lowered], title, text); bonus > 0 {
			score += bonus
			reasons = append(reasons, fmt.Sprintf("Related to %s", genre))
		}
	}

	switch tracks := p.TrackTotal; {
	case tracks >= 30 && tracks <= 80:
		score += 20
	case tracks >= 15 && tracks < 30:
		score += 15
	case tracks > 80 && tracks <= 150:
		score += 15
	case tracks > 150:
		score += 5
	default:
		score -= 10
	}

	if affinity := genreAffinity(insights, genre); affinity > 0 {
		bonus := affinity / 2
		if bonus > 15 {
			bonus = 15
		}
		score += bonus
		reasons = append(reasons, fmt.Sprintf("You listen to %s a lot", genre))
	}

	if insights.DiscoveryRate > 70 && p.Followers < 10_000 {
		score += 10
		reasons = append(reasons, "Hidden gem for an explorer")
	} else if insights.DiscoveryRate < 30 && p.Followers > 50_000 {
		score += 10
		reasons = append(reasons, "Well-established favorite")
	}

	desc := strings.ToLower(p.Description)
	if strings.Contains(desc, "updated") {
		score += 5
	}
	if strings.Contains(desc, "curated") {
		score += 8
	}

	if startsWithDigit(p.Name) || strings.Contains(title, "test") {
		score -= 15
	}
	if len(p.Description) < 20 {
		score -= 5
	}

	return clamp(score, 0, 100), reasons
}

func (s *Scorer) scoreArtist(p domain.CandidatePlaylist, artist string, insights domain.MusicInsights) (float64, []string) {
	score := 35.0
	reasons := []string{fmt.Sprintf("Because you follow %s", artist)}

	title := strings.ToLower(p.Name)
	text := title + " " + strings.ToLower(p.Description)
	lowered := strings.ToLower(artist)
	switch {
	case strings.Contains(title, lowered):
		score += 35
	case strings.Contains(text, lowered):
		score += 25
	}

	for _, token := range strings.Fields(lowered) {
		if len(token) > 3 && strings.Contains(text, token) {
			score += 10
			break
		}
	}

	score += FollowerQuality(p.Followers) * 0.35
	if p.Followers >= 500_000 {
		score += 15
	} else if p.Followers >= 100_000 {
		score += 10
	}

	switch tracks := p.TrackTotal; {
	case tracks >= 20 && tracks <= 60:
		score += 15
	case tracks > 60:
		score += 5
	}

	if insights.ArtistDiversity > 60 {
		score += 8
	}

	switch insights.PopularityBias {
	case domain.BiasMainstream:
		if p.Followers > 10_000 {
			score += 8
		}
	case domain.BiasUnderground:
		if p.Followers < 5_000 {
			score += 8
		}
	}

	return clamp(score, 0, 100), reasons
}

func (s *Scorer) scoreMood(p domain.CandidatePlaylist, mood string, insights domain.MusicInsights) (float64, []string) {
	score := 30.0
	reasons := []string{fmt.Sprintf("Fits your %s listening", mood)}

	title := strings.ToLower(p.Name)
	text := title + " " + strings.ToLower(p.Description)
	lowered := strings.ToLower(mood)
	if strings.Contains(text, lowered) {
		score += 25
	} else if bonus := synonymBonus(moodSynonyms[lowered], title, text); bonus > 0 {
		score += bonus
	}

	desc := strings.ToLower(p.Description)
	if len(p.Description) > 50 {
		score += 12
	}
	if strings.Contains(desc, "carefully") {
		score += 8
	}
	if strings.Contains(desc, "perfect for") {
		score += 6
	}

	score += FollowerQuality(p.Followers) * 0.3
	if p.Followers >= 250_000 {
		score += 12
	} else if p.Followers >= 100_000 {
		score += 8
	}

	switch tracks := p.TrackTotal; {
	case tracks >= 25 && tracks <= 100:
		score += 12
	case tracks > 100:
		score += 6
	}

	valence := EstimateValence(insights)
	if moodValenceUp[lowered] && valence > 0.55 {
		score += 10
	} else if moodValenceDown[lowered] && valence < 0.45 {
		score += 10
	}

	return clamp(score, 0, 100), reasons
}

// EstimateValence derives a 0-1 listener valence from the genre-weighted
// valence table: upbeat genres pull the baseline of 0.5 up, somber genres
// pull it down, each weighted by its share of the top genres.
func EstimateValence(insights domain.MusicInsights) float64 {
	valence := 0.5
	for _, gc := range insights.TopGenres {
		share := gc.Percentage / 100
		if valenceUpGenres[gc.Genre] {
			valence += 0.3 * share
		} else if valenceDownGenres[gc.Genre] {
			valence -= 0.3 * share
		}
	}
	return clamp(valence, 0, 1)
}

// synonymBonus awards up to 15 points for a synonym hit: full credit in the
// title, partial in the combined text.
func synonymBonus(synonyms []string, title, text string) float64 {
	for _, syn := range synonyms {
		if strings.Contains(title, syn) {
			return 15
		}
	}
	for _, syn := range synonyms {
		if strings.Contains(text, syn) {
			return 10
		}
	}
	return 0
}

func genreAffinity(insights domain.MusicInsights, genre string) float64 {
	for _, gc := range insights.TopGenres {
		if strings.EqualFold(gc.Genre, genre) {
			return gc.Percentage
		}
	}
	return 0
}

func startsWithDigit(s string) bool {
	if s == "" {
		return false
	}
	return s[0] >= '0' && s[0] <= '9'
}
