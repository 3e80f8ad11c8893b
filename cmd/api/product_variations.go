package main

import (
	"net/http"
	"time"

	"github.com/kervinch/storefront-api/internal/catalog"
	"github.com/kervinch/storefront-api/internal/validator"
)

// ====================================================================================
// Backoffice Handlers
// ====================================================================================

func (app *application) listProductVariationsHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), newVariationsResponse(product, nil), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createProductVariationsHandler adds variations to a product. Entries whose
// attributes match an existing variation update it instead of duplicating it.
func (app *application) createProductVariationsHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	var input struct {
		Variations []catalog.VariationInput `json:"variations" validate:"dive"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(len(input.Variations) > 0, "variations", "must contain at least one variation")
	v.Struct(input)

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	res, err := app.reconcile("merge", func() (catalog.Result, error) {
		return app.reconciler.Merge(product.State(), catalog.Submission{Variations: input.Variations})
	})
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	product.SetCatalog(res.Variations, res.ColorImages)

	err = app.models.Products.Update(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	app.notifyCategory(product.ProductCategoryID, res.AttributeValues)

	err = app.writeJSON(w, http.StatusCreated, http.StatusText(http.StatusCreated), newVariationsResponse(product, &res.Stats), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// bulkUpdateProductVariationsHandler deletes the listed variations, then
// merges the submitted ones by id, by attributes, or appends them.
func (app *application) bulkUpdateProductVariationsHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	var input struct {
		Variations          []catalog.VariationInput `json:"variations" validate:"dive"`
		DeletedVariationIDs []string                 `json:"deleted_variation_ids"`
		Version             *int                     `json:"version"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.Version != nil && *input.Version != product.Version {
		app.editConflictResponse(w, r)
		return
	}

	v := validator.New()

	if v.Struct(input); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	res, err := app.reconcile("merge", func() (catalog.Result, error) {
		return app.reconciler.Merge(product.State(), catalog.Submission{
			Variations: input.Variations,
			DeletedIDs: input.DeletedVariationIDs,
		})
	})
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	product.SetCatalog(res.Variations, res.ColorImages)

	err = app.models.Products.Update(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	app.notifyCategory(product.ProductCategoryID, res.AttributeValues)

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), newVariationsResponse(product, &res.Stats), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateProductVariationHandler edits one variation. Images sent along are
// added to the gallery entry of the variation's color.
func (app *application) updateProductVariationHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	variationID := app.readParam(r, "variation_id")

	var input catalog.VariationInput

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.ID == "" || input.ID == variationID, "id", "must match the variation being updated")
	v.Struct(input)

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	start := time.Now()

	store := catalog.NewVariationStore(product.Variations)

	err = store.Update(variationID, input.VariationPatch)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	variation, _ := store.Get(variationID)
	gallery := catalog.NewColorGallery(product.ColorImages)
	stats := catalog.Stats{Updated: 1}

	if len(input.Images) > 0 && variation.Color == "" {
		v.AddError("images", "can only be attached to a variation with a color")
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	if variation.Color != "" {
		gallery.Ensure(variation.Color)
		stats.ImagesAdded, stats.ImagesSkipped = gallery.Upsert(variation.Color, input.Images)
	}

	app.catalogMetrics.ObserveReconcile("update", stats, time.Since(start))

	product.SetCatalog(store.List(), gallery.Entries())

	err = app.models.Products.Update(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	app.notifyCategory(product.ProductCategoryID, catalog.CollectAttributeValues([]catalog.Variation{variation}))

	updated := catalog.VariationsWithImages([]catalog.Variation{variation}, gallery)[0]

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), updated, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteProductVariationHandler removes one variation. Deleting a variation
// that does not exist succeeds; the color gallery is left as it is.
func (app *application) deleteProductVariationHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	variationID := app.readParam(r, "variation_id")

	store := catalog.NewVariationStore(product.Variations)

	if store.Remove(variationID) {
		app.catalogMetrics.ObserveReconcile("delete", catalog.Stats{Deleted: 1}, 0)

		product.SetCatalog(store.List(), product.ColorImages)

		err := app.models.Products.Update(product)
		if err != nil {
			app.catalogErrorResponse(w, r, err)
			return
		}
	}

	err := app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), "product variation successfully deleted", nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// adjustProductVariationStockHandler sets, adds to or subtracts from the stock
// of one variation and keeps the product status in line with the total stock.
func (app *application) adjustProductVariationStockHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	variationID := app.readParam(r, "variation_id")

	var input struct {
		Stock     *int                   `json:"stock"`
		Operation catalog.StockOperation `json:"operation"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	if v.Check(input.Stock != nil, "stock", "must be provided"); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	start := time.Now()

	store := catalog.NewVariationStore(product.Variations)

	_, err = store.AdjustStock(variationID, input.Operation, *input.Stock)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	app.catalogMetrics.ObserveReconcile("stock", catalog.Stats{Updated: 1}, time.Since(start))

	product.SetCatalog(store.List(), product.ColorImages)
	product.SyncStockStatus()

	err = app.models.Products.Update(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	variation, _ := store.Get(variationID)
	gallery := catalog.NewColorGallery(product.ColorImages)

	res := map[string]any{
		"variation":      catalog.VariationsWithImages([]catalog.Variation{variation}, gallery)[0],
		"product_status": product.Status,
		"total_stock":    product.View().TotalStock(),
	}

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), res, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
