package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"
)

type Image struct {
	ID         string `json:"id"`
	URL        string `json:"url" validate:"required"`
	ExternalID string `json:"external_id,omitempty"`
	IsMain     bool   `json:"is_main"`
	Order      int    `json:"order"`
}

// GalleryEntry holds the images shared by every variation of one color.
type GalleryEntry struct {
	Color  string  `json:"color"`
	Images []Image `json:"images"`
}

// NextOrder is the order that places an image after every image of the
// entry.
func (e GalleryEntry) NextOrder() int {
	next := 0
	for _, img := range e.Images {
		if img.Order >= next {
			next = img.Order + 1
		}
	}
	return next
}

func (e GalleryEntry) clone() GalleryEntry {
	images := make([]Image, len(e.Images))
	copy(images, e.Images)
	return GalleryEntry{Color: e.Color, Images: images}
}

// ColorGallery owns the per-color image collections of a product. Every
// mutation leaves each non-empty entry with exactly one main image.
type ColorGallery struct {
	entries []GalleryEntry
	newID   func() string
}

// NewColorGallery copies entries into a gallery, merging entries whose colors
// only differ by case and repairing main flags.
func NewColorGallery(entries []GalleryEntry) *ColorGallery {
	g := &ColorGallery{newID: uuid.NewString}

	for _, e := range entries {
		if strings.TrimSpace(e.Color) == "" {
			continue
		}

		i := g.index(e.Color)
		if i < 0 {
			g.entries = append(g.entries, GalleryEntry{Color: strings.TrimSpace(e.Color), Images: []Image{}})
			i = len(g.entries) - 1
		}

		for _, img := range e.Images {
			if indexByURL(g.entries[i].Images, img.URL) < 0 {
				g.entries[i].Images = append(g.entries[i].Images, img)
			}
		}
	}

	for i := range g.entries {
		repairMain(g.entries[i].Images)
	}

	return g
}

func (g *ColorGallery) index(color string) int {
	return slices.IndexFunc(g.entries, func(e GalleryEntry) bool {
		return sameColor(e.Color, color)
	})
}

// Ensure creates an empty entry for color if the gallery has none.
func (g *ColorGallery) Ensure(color string) {
	color = strings.TrimSpace(color)
	if color == "" || g.index(color) >= 0 {
		return
	}

	g.entries = append(g.entries, GalleryEntry{Color: color, Images: []Image{}})
}

// Upsert merges images into the entry for color, skipping urls the entry
// already holds. The first image an entry ever receives becomes its main. On
// later batches the first added image submitted as main takes over the main
// flag; otherwise the current main is kept.
func (g *ColorGallery) Upsert(color string, images []Image) (added, skipped int) {
	color = strings.TrimSpace(color)
	if color == "" {
		return 0, len(images)
	}

	g.Ensure(color)
	entry := &g.entries[g.index(color)]

	empty := len(entry.Images) == 0
	promote := -1

	for _, img := range images {
		img.URL = strings.TrimSpace(img.URL)

		if img.URL == "" || indexByURL(entry.Images, img.URL) >= 0 {
			skipped++
			continue
		}

		if img.ID == "" {
			img.ID = g.newID()
		}

		entry.Images = append(entry.Images, img)
		added++

		if img.IsMain && promote < 0 {
			promote = len(entry.Images) - 1
		}
	}

	switch {
	case empty && added > 0:
		setMain(entry.Images, 0)
	case promote >= 0:
		setMain(entry.Images, promote)
	default:
		repairMain(entry.Images)
	}

	return added, skipped
}

// Images returns the images of color sorted by order, ties kept in insertion
// order. Unknown colors yield an empty slice.
func (g *ColorGallery) Images(color string) []Image {
	i := g.index(color)
	if i < 0 {
		return []Image{}
	}

	return sortedImages(g.entries[i].Images)
}

// SetMain makes the image matched by ref the only main image of color. ref is
// matched against the image id, then its url, then its external id.
func (g *ColorGallery) SetMain(color, ref string) error {
	i := g.index(color)
	if i < 0 {
		return ErrImageNotFound
	}

	j := matchImage(g.entries[i].Images, ref)
	if j < 0 {
		return ErrImageNotFound
	}

	setMain(g.entries[i].Images, j)

	return nil
}

// Remove deletes the image matched by ref from color and returns it. When
// the main image goes, the first remaining image by order takes over.
func (g *ColorGallery) Remove(color, ref string) (Image, error) {
	i := g.index(color)
	if i < 0 {
		return Image{}, ErrImageNotFound
	}

	images := g.entries[i].Images

	j := matchImage(images, ref)
	if j < 0 {
		return Image{}, ErrImageNotFound
	}

	removed := images[j]
	images = slices.Delete(images, j, j+1)
	repairMain(images)
	g.entries[i].Images = images

	return removed, nil
}

// Entry returns a copy of the entry for color.
func (g *ColorGallery) Entry(color string) (GalleryEntry, bool) {
	i := g.index(color)
	if i < 0 {
		return GalleryEntry{}, false
	}

	return g.entries[i].clone(), true
}

// Entries returns a copy of every entry in creation order.
func (g *ColorGallery) Entries() []GalleryEntry {
	out := make([]GalleryEntry, len(g.entries))
	for i, e := range g.entries {
		out[i] = e.clone()
	}
	return out
}

// Len reports how many colors the gallery holds.
func (g *ColorGallery) Len() int {
	return len(g.entries)
}

func indexByURL(images []Image, url string) int {
	url = strings.TrimSpace(url)
	return slices.IndexFunc(images, func(img Image) bool {
		return img.URL == url
	})
}

func matchImage(images []Image, ref string) int {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1
	}

	if i := slices.IndexFunc(images, func(img Image) bool { return img.ID == ref }); i >= 0 {
		return i
	}

	if i := indexByURL(images, ref); i >= 0 {
		return i
	}

	return slices.IndexFunc(images, func(img Image) bool {
		return img.ExternalID != "" && img.ExternalID == ref
	})
}

// first returns the index of the image with the lowest order among those
// accepted by keep, preferring earlier insertion on ties, or -1.
func first(images []Image, keep func(Image) bool) int {
	best := -1

	for i, img := range images {
		if !keep(img) {
			continue
		}
		if best < 0 || img.Order < images[best].Order {
			best = i
		}
	}

	return best
}

func setMain(images []Image, i int) {
	for j := range images {
		images[j].IsMain = j == i
	}
}

func repairMain(images []Image) {
	if len(images) == 0 {
		return
	}

	i := first(images, func(img Image) bool { return img.IsMain })
	if i < 0 {
		i = first(images, func(Image) bool { return true })
	}

	setMain(images, i)
}

func sortedImages(images []Image) []Image {
	out := make([]Image, len(images))
	copy(out, images)

	slices.SortStableFunc(out, func(a, b Image) int {
		return cmp.Compare(a.Order, b.Order)
	})

	return out
}
