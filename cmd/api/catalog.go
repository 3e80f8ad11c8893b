package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kervinch/storefront-api/internal/catalog"
	"github.com/kervinch/storefront-api/internal/data"
	"github.com/kervinch/storefront-api/internal/events"
)

// productResponse is a product together with its derived read fields.
type productResponse struct {
	*data.Product
	catalog.Projection
}

func newProductResponse(p *data.Product) productResponse {
	return productResponse{Product: p, Projection: p.View().Project()}
}

// productSummary is the listing shape of a product.
type productSummary struct {
	*data.Product
	MainVariation *catalog.VariationWithImages `json:"main_variation"`
	PriceRange    catalog.PriceRange           `json:"price_range"`
	TotalStock    int                          `json:"total_stock"`
	DisplayImage  *catalog.Image               `json:"display_image"`
	Colors        []string                     `json:"colors"`
}

func newProductSummaries(products []*data.Product) []productSummary {
	summaries := make([]productSummary, 0, len(products))

	for _, p := range products {
		projection := p.View().Project()

		colors := make([]string, 0, len(projection.ColorsDetailed))
		for _, c := range projection.ColorsDetailed {
			colors = append(colors, c.Color)
		}

		summaries = append(summaries, productSummary{
			Product:       p,
			MainVariation: projection.MainVariation,
			PriceRange:    projection.PriceRange,
			TotalStock:    projection.TotalStock,
			DisplayImage:  projection.DisplayImage,
			Colors:        colors,
		})
	}

	return summaries
}

// variationsResponse is returned by the variation and gallery endpoints.
type variationsResponse struct {
	Variations  []catalog.VariationWithImages `json:"variations"`
	ColorImages []catalog.GalleryEntry        `json:"color_images"`
	Version     int                           `json:"version"`
	Stats       *catalog.Stats                `json:"stats,omitempty"`
}

func newVariationsResponse(p *data.Product, stats *catalog.Stats) variationsResponse {
	colorImages := []catalog.GalleryEntry(p.ColorImages)
	if colorImages == nil {
		colorImages = []catalog.GalleryEntry{}
	}

	return variationsResponse{
		Variations:  p.View().VariationsWithImages(),
		ColorImages: colorImages,
		Version:     p.Version,
		Stats:       stats,
	}
}

// readProduct loads the product named by the id path parameter and writes
// the error response itself when it cannot.
func (app *application) readProduct(w http.ResponseWriter, r *http.Request) (*data.Product, bool) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return nil, false
	}

	product, err := app.models.Products.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}

	return product, true
}

// readCategory loads the category a product is filed under. An unknown id is
// reported as a validation failure of product_category_id.
func (app *application) readCategory(w http.ResponseWriter, r *http.Request, id int64) (*data.ProductCategory, bool) {
	category, err := app.models.ProductCategories.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.failedValidationResponse(w, r, map[string]string{"product_category_id": "does not exist"})
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil, false
	}

	return category, true
}

// reconcile runs fn and records its outcome in the catalog metrics.
func (app *application) reconcile(operation string, fn func() (catalog.Result, error)) (catalog.Result, error) {
	start := time.Now()

	res, err := fn()
	if err != nil {
		return catalog.Result{}, err
	}

	app.catalogMetrics.ObserveReconcile(operation, res.Stats, time.Since(start))

	return res, nil
}

// notifyCategory tells the category service about the attribute values a
// product now uses. It runs in the background and never fails the write
// that triggered it.
func (app *application) notifyCategory(categoryID int64, values []catalog.AttributeValues) {
	for _, av := range values {
		n := events.CategoryValuesAdded{
			CategoryID:    categoryID,
			AttributeName: av.Name,
			NewValues:     av.Values,
		}

		app.background(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err := app.notifier.Notify(ctx, n)
			app.catalogMetrics.NotificationSent(err)

			if err != nil {
				app.logger.PrintError(err, map[string]string{
					"category_id":    strconv.FormatInt(n.CategoryID, 10),
					"attribute_name": n.AttributeName,
				})
			}
		})
	}
}
