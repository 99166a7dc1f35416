// Package view holds framework-free UI state for the weight, notes and
// summary pages. Each controller keeps an explicit state record and changes
// it only through its methods; persistence is delegated to a store.
package view

import "fitlog/internal/domain"

// Lightbox is the full-screen media viewer. The zero value is closed.
type Lightbox struct {
	OwnerID string
	Media   []domain.Media
	Index   int
}

// OpenLightbox shows media starting at start, clamped into range. Opening an
// empty collection yields a closed lightbox.
func OpenLightbox(ownerID string, media []domain.Media, start int) Lightbox {
	if len(media) == 0 {
		return Lightbox{}
	}
	if start < 0 || start >= len(media) {
		start = 0
	}
	return Lightbox{OwnerID: ownerID, Media: media, Index: start}
}

// IsOpen reports whether there is something to show.
func (l Lightbox) IsOpen() bool { return len(l.Media) > 0 }

// Current returns the item on screen.
func (l Lightbox) Current() (domain.Media, bool) {
	if !l.IsOpen() {
		return domain.Media{}, false
	}
	return l.Media[l.Index], true
}

// Next advances, wrapping to the first item.
func (l Lightbox) Next() Lightbox {
	if !l.IsOpen() {
		return l
	}
	l.Index = (l.Index + 1) % len(l.Media)
	return l
}

// Prev steps back, wrapping to the last item.
func (l Lightbox) Prev() Lightbox {
	if !l.IsOpen() {
		return l
	}
	l.Index = (l.Index - 1 + len(l.Media)) % len(l.Media)
	return l
}

// Close hides the viewer.
func (l Lightbox) Close() Lightbox { return Lightbox{} }

// MediaTarget identifies one attachment of one record.
type MediaTarget struct {
	OwnerID string
	Index   int
}

// DeleteTarget is the attachment a delete request from the viewer refers to.
func (l Lightbox) DeleteTarget() (MediaTarget, bool) {
	if !l.IsOpen() {
		return MediaTarget{}, false
	}
	return MediaTarget{OwnerID: l.OwnerID, Index: l.Index}, true
}
