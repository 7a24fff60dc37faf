package domain

// Artist identifies a catalog artist.
type Artist struct {
	ID   string
	Name string
}

// Image is a catalog image reference.
type Image struct {
	URL    string
	Width  int
	Height int
}

// AlbumRef is the album snapshot carried by a track.
type AlbumRef struct {
	Name        string
	ReleaseDate string // catalog format: "2006", "2006-01" or "2006-01-02"
	Images      []Image
}

// Track is an immutable listening-history sample from the external catalog.
// Popularity is nil when the catalog did not report one; consumers must not
// treat a missing value as zero.
type Track struct {
	ID         string
	Name       string
	Artists    []Artist
	Album      AlbumRef
	DurationMs int
	Popularity *int
	Explicit   bool
	PreviewURL string // optional 30s audio preview
}

// ReleaseYear parses the leading year of the album release date.
// Returns 0 when no usable date is present.
func (t Track) ReleaseYear() int {
	date := t.Album.ReleaseDate
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}
