package catalog

import (
	"fmt"
	"slices"
	"strings"
)

// VariationInput is one submitted variation together with the images an
// editor attached to it. The images belong to the variation's color, not to
// the variation.
type VariationInput struct {
	VariationPatch
	Images []Image `json:"images,omitempty" validate:"dive"`
}

type Submission struct {
	Variations []VariationInput
	DeletedIDs []string
}

// State is the persisted catalog document of one product.
type State struct {
	Variations  []Variation
	ColorImages []GalleryEntry
}

type Stats struct {
	Created       int `json:"created"`
	Updated       int `json:"updated"`
	Deleted       int `json:"deleted"`
	ImagesAdded   int `json:"images_added"`
	ImagesSkipped int `json:"images_skipped"`
}

// AttributeValues lists the distinct values seen for one non-color attribute.
type AttributeValues struct {
	Name   string
	Values []string
}

type Result struct {
	Variations      []Variation
	ColorImages     []GalleryEntry
	AttributeValues []AttributeValues
	Stats           Stats
}

// GalleryPolicy decides what a full replace does to gallery entries that the
// submission does not mention.
type GalleryPolicy string

const (
	GalleryMerge   GalleryPolicy = "merge"
	GalleryReplace GalleryPolicy = "replace"
)

func ParseGalleryPolicy(s string) (GalleryPolicy, error) {
	switch p := GalleryPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case GalleryMerge, GalleryReplace:
		return p, nil
	case "":
		return GalleryMerge, nil
	default:
		return "", fmt.Errorf("unknown gallery policy %q", s)
	}
}

type Reconciler struct {
	policy GalleryPolicy
}

func NewReconciler(policy GalleryPolicy) *Reconciler {
	if policy == "" {
		policy = GalleryMerge
	}
	return &Reconciler{policy: policy}
}

func (r *Reconciler) Policy() GalleryPolicy {
	return r.policy
}

// Replace treats the submission as the complete variation list of the
// product. It backs product creation and the simple update.
func (r *Reconciler) Replace(state State, sub Submission) (Result, error) {
	buckets, patches, err := split(sub.Variations, nil)
	if err != nil {
		return Result{}, err
	}

	store := NewVariationStore(state.Variations)

	changes, err := store.replaceAll(patches)
	if err != nil {
		return Result{}, err
	}

	entries := state.ColorImages
	if r.policy == GalleryReplace {
		entries = nil
	}

	return finish(store, NewColorGallery(entries), buckets, changes), nil
}

// Merge applies a bulk edit: deletions first, then every submitted variation
// is matched by id, then by attribute key, or appended. Gallery entries are
// only ever added to.
func (r *Reconciler) Merge(state State, sub Submission) (Result, error) {
	kept := slices.DeleteFunc(slices.Clone(state.Variations), func(v Variation) bool {
		return slices.Contains(sub.DeletedIDs, v.ID)
	})

	buckets, patches, err := split(sub.Variations, kept)
	if err != nil {
		return Result{}, err
	}

	store := NewVariationStore(state.Variations)

	changes, err := store.merge(patches, sub.DeletedIDs)
	if err != nil {
		return Result{}, err
	}

	return finish(store, NewColorGallery(state.ColorImages), buckets, changes), nil
}

type bucket struct {
	color  string
	images []Image
}

// split separates the embedded images, collected per color and deduplicated
// by url, from the catalog fields of each submitted variation. A patch that
// names a variation of existing without sending attributes takes the color
// of that variation.
func split(inputs []VariationInput, existing []Variation) ([]bucket, []VariationPatch, error) {
	var buckets []bucket
	patches := make([]VariationPatch, len(inputs))

	for i, in := range inputs {
		for _, img := range in.Images {
			if strings.TrimSpace(img.URL) == "" {
				return nil, nil, fieldError(i, "images", ErrMissingField, "image url must be provided")
			}
		}

		patches[i] = in.VariationPatch

		if len(in.Images) == 0 {
			continue
		}

		color, ok := in.Attributes.Color()
		if in.Attributes == nil {
			if j := indexOf(existing, in.ID); j >= 0 {
				color, ok = existing[j].Attributes.Color()
			}
		}
		if !ok || color == "" {
			return nil, nil, fieldError(i, "images", ErrInvalidValue, "can only be attached to a variation with a color")
		}

		b := -1
		for j := range buckets {
			if sameColor(buckets[j].color, color) {
				b = j
				break
			}
		}
		if b < 0 {
			buckets = append(buckets, bucket{color: color})
			b = len(buckets) - 1
		}

		for _, img := range in.Images {
			img.URL = strings.TrimSpace(img.URL)
			if indexByURL(buckets[b].images, img.URL) < 0 {
				buckets[b].images = append(buckets[b].images, img)
			}
		}
	}

	return buckets, patches, nil
}

func finish(store *VariationStore, gallery *ColorGallery, buckets []bucket, changes Changes) Result {
	stats := Stats{
		Created: changes.Created,
		Updated: changes.Updated,
		Deleted: changes.Deleted,
	}

	for _, b := range buckets {
		added, skipped := gallery.Upsert(b.color, b.images)
		stats.ImagesAdded += added
		stats.ImagesSkipped += skipped
	}

	variations := store.List()

	for _, v := range variations {
		gallery.Ensure(v.Color)
	}

	return Result{
		Variations:      variations,
		ColorImages:     gallery.Entries(),
		AttributeValues: CollectAttributeValues(variations),
		Stats:           stats,
	}
}

// CollectAttributeValues groups the non-color attribute values of variations
// by attribute name. Names are matched case-insensitively; values are
// deduplicated case-sensitively and kept in first-seen order.
func CollectAttributeValues(variations []Variation) []AttributeValues {
	var out []AttributeValues

	for _, v := range variations {
		for _, a := range v.Attributes.nonColor() {
			name := strings.TrimSpace(a.Name)
			value := strings.TrimSpace(a.Value)

			i := -1
			for j := range out {
				if fold(out[j].Name) == fold(name) {
					i = j
					break
				}
			}
			if i < 0 {
				out = append(out, AttributeValues{Name: name})
				i = len(out) - 1
			}

			if !slices.Contains(out[i].Values, value) {
				out[i].Values = append(out[i].Values, value)
			}
		}
	}

	return out
}

// VariationWithImages is a variation joined with the images of its color.
type VariationWithImages struct {
	Variation
	Images []Image `json:"images"`
}

// VariationsWithImages attaches to every variation the images of its color
// entry. Variations without a color or without a matching entry get an empty
// image list.
func VariationsWithImages(variations []Variation, gallery *ColorGallery) []VariationWithImages {
	out := make([]VariationWithImages, len(variations))

	for i, v := range variations {
		images := []Image{}
		if v.Color != "" {
			images = gallery.Images(v.Color)
		}
		out[i] = VariationWithImages{Variation: v.clone(), Images: images}
	}

	return out
}
