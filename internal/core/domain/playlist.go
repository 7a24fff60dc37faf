package domain

// CandidatePlaylist is a normalized external playlist. Every field is fully
// defaulted at the adapter boundary: a zero Followers means "unknown or zero",
// never "missing", and Description is empty rather than absent.
type CandidatePlaylist struct {
	ID          string
	Name        string
	Description string
	Followers   int
	TrackTotal  int
	Owner       string
	Images      []Image
	URI         string
}
