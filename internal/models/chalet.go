package models

import "strings"

// Chalet is the canonical rental property shape. Backend payload variants are mapped onto it by the service layer.
type Chalet struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Bedrooms    int      `json:"bedrooms"`
	Guests      int      `json:"guests"`
	Price       float64  `json:"price"`
	Images      []string `json:"images,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	LikeCount   int      `json:"likeCount"`
}

// Matches reports whether query appears in the name, location, or description, ignoring case.
func (c Chalet) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range []string{c.Name, c.Location, c.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Gallery is a cursor over a chalet's images that wraps at both ends.
type Gallery struct {
	images []string
	index  int
}

// NewGallery creates a [Gallery] positioned at the first image.
func NewGallery(images []string) *Gallery {
	return &Gallery{images: images}
}

// Len returns the number of images.
func (g *Gallery) Len() int { return len(g.images) }

// Index returns the zero-based position of the current image.
func (g *Gallery) Index() int { return g.index }

// Current returns the current image URL, or "" when the gallery is empty.
func (g *Gallery) Current() string {
	if len(g.images) == 0 {
		return ""
	}
	return g.images[g.index]
}

// Next advances to the following image, wrapping to the first.
func (g *Gallery) Next() string {
	if len(g.images) == 0 {
		return ""
	}
	g.index = (g.index + 1) % len(g.images)
	return g.Current()
}

// Prev moves to the preceding image, wrapping to the last.
func (g *Gallery) Prev() string {
	if len(g.images) == 0 {
		return ""
	}
	g.index = (g.index - 1 + len(g.images)) % len(g.images)
	return g.Current()
}
