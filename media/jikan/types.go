package jikan

// MediaType selects the API resource used for search and characters.
type MediaType string

const (
	// TypeAnime is the first lookup tier.
	TypeAnime MediaType = "anime"
	// TypeManga is the fallback lookup tier.
	TypeManga MediaType = "manga"
)

// Label returns the user-facing name of the media type.
func (t MediaType) Label() string {
	switch t {
	case TypeAnime:
		return "Anime"
	case TypeManga:
		return "Manga"
	}
	return string(t)
}

// Media mirrors the subset of the search result payload the bot reads.
// Optional fields are pointers; absent values render as "Not available".
type Media struct {
	MalID     int64     `json:"mal_id"`
	Title     string    `json:"title"`
	Synopsis  string    `json:"synopsis"`
	Genres    []Genre   `json:"genres"`
	Aired     DateRange `json:"aired"`
	Published DateRange `json:"published"`
	Broadcast Broadcast `json:"broadcast"`
	Images    Images    `json:"images"`
}

// Genre is a named classification tag.
type Genre struct {
	Name string `json:"name"`
}

// DateRange carries airing or publishing boundaries.
type DateRange struct {
	To *string `json:"to"`
}

// Broadcast describes the airing schedule of an anime.
type Broadcast struct {
	String *string `json:"string"`
}

// Images holds the jpg variant of an image set.
type Images struct {
	JPG ImageSet `json:"jpg"`
}

// ImageSet points at a hosted image.
type ImageSet struct {
	ImageURL string `json:"image_url"`
}

// CharacterEntry is one element of the characters listing.
type CharacterEntry struct {
	Character Character `json:"character"`
}

// Character is a person appearing in the media.
type Character struct {
	Name   string `json:"name"`
	Images Images `json:"images"`
}

type searchResponse struct {
	Data []Media `json:"data"`
}

type charactersResponse struct {
	Data []CharacterEntry `json:"data"`
}
