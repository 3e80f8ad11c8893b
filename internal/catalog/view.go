package catalog

import (
	"github.com/shopspring/decimal"
)

type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// ColorDetail summarises the variations of one color.
type ColorDetail struct {
	Color        string   `json:"color"`
	VariationIDs []string `json:"variation_ids"`
	Count        int      `json:"count"`
	Images       []Image  `json:"images"`
}

// Projection is the read model returned for a product.
type Projection struct {
	Variations     []VariationWithImages `json:"variations"`
	MainVariation  *VariationWithImages  `json:"main_variation"`
	PriceRange     PriceRange            `json:"price_range"`
	TotalStock     int                   `json:"total_stock"`
	DisplayImage   *Image                `json:"display_image"`
	ColorsDetailed []ColorDetail         `json:"colors_detailed"`
}

// View derives the read fields of a product from its persisted variations and
// color gallery. It never mutates either.
type View struct {
	variations []Variation
	gallery    *ColorGallery
}

func NewView(variations []Variation, colorImages []GalleryEntry) *View {
	return &View{
		variations: NewVariationStore(variations).List(),
		gallery:    NewColorGallery(colorImages),
	}
}

// MainVariation returns the variation flagged main, else the first one.
func (v *View) MainVariation() (Variation, bool) {
	if len(v.variations) == 0 {
		return Variation{}, false
	}

	for _, variation := range v.variations {
		if variation.IsMain {
			return variation.clone(), true
		}
	}

	return v.variations[0].clone(), true
}

func (v *View) PriceRange() PriceRange {
	if len(v.variations) == 0 {
		return PriceRange{Min: decimal.Zero, Max: decimal.Zero}
	}

	r := PriceRange{Min: v.variations[0].Price, Max: v.variations[0].Price}

	for _, variation := range v.variations[1:] {
		r.Min = decimal.Min(r.Min, variation.Price)
		r.Max = decimal.Max(r.Max, variation.Price)
	}

	return r
}

func (v *View) TotalStock() int {
	total := 0
	for _, variation := range v.variations {
		total += variation.Stock
	}
	return total
}

// DisplayImage is the main image of the main variation's color, or the first
// image of that color when none is flagged.
func (v *View) DisplayImage() (Image, bool) {
	main, ok := v.MainVariation()
	if !ok || main.Color == "" {
		return Image{}, false
	}

	images := v.gallery.Images(main.Color)
	if len(images) == 0 {
		return Image{}, false
	}

	for _, img := range images {
		if img.IsMain {
			return img, true
		}
	}

	return images[0], true
}

// ColorsDetailed lists every distinct variation color in first-seen order
// with the ids of its variations and the images of its gallery entry.
func (v *View) ColorsDetailed() []ColorDetail {
	out := []ColorDetail{}

	for _, variation := range v.variations {
		if variation.Color == "" {
			continue
		}

		i := -1
		for j := range out {
			if sameColor(out[j].Color, variation.Color) {
				i = j
				break
			}
		}
		if i < 0 {
			out = append(out, ColorDetail{
				Color:        variation.Color,
				VariationIDs: []string{},
				Images:       v.gallery.Images(variation.Color),
			})
			i = len(out) - 1
		}

		out[i].VariationIDs = append(out[i].VariationIDs, variation.ID)
		out[i].Count++
	}

	return out
}

func (v *View) VariationsWithImages() []VariationWithImages {
	return VariationsWithImages(v.variations, v.gallery)
}

func (v *View) Project() Projection {
	p := Projection{
		Variations:     v.VariationsWithImages(),
		PriceRange:     v.PriceRange(),
		TotalStock:     v.TotalStock(),
		ColorsDetailed: v.ColorsDetailed(),
	}

	if main, ok := v.MainVariation(); ok {
		joined := VariationsWithImages([]Variation{main}, v.gallery)[0]
		p.MainVariation = &joined
	}

	if img, ok := v.DisplayImage(); ok {
		p.DisplayImage = &img
	}

	return p
}
