package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"

	"github.com/kervinch/storefront-api/internal/catalog"
	"github.com/kervinch/storefront-api/internal/data"
	"github.com/kervinch/storefront-api/internal/validator"
)

// ====================================================================================
// Backoffice Handlers
// ====================================================================================

func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	var filter data.ProductFilter

	v := validator.New()
	qs := r.URL.Query()

	pagination := app.readPagination(qs, v)
	filter.CategoryID = app.readInt64(qs, "category_id", v)
	filter.Status = app.readStrings(qs, "status", "")
	filter.Name = app.readStrings(qs, "name", "")
	filter.Featured = app.readBool(qs, "featured", v)
	filter.Bestseller = app.readBool(qs, "bestseller", v)

	if filter.Status != "" {
		v.Check(validator.In(filter.Status, data.ProductStatuses...), "status", "must be one of draft, active, archived or out_of_stock")
	}

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	products, metadata, err := app.models.Products.GetAll(pagination, filter)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSONWithMeta(w, http.StatusOK, http.StatusText(http.StatusOK), newProductSummaries(products), nil, metadata)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) showProductHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), newProductResponse(product), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProductCategoryID int64                    `json:"product_category_id"`
		Name              string                   `json:"name"`
		Slug              string                   `json:"slug"`
		SKU               *string                  `json:"sku"`
		Description       string                   `json:"description"`
		ShortDescription  string                   `json:"short_description"`
		Status            string                   `json:"status"`
		Featured          bool                     `json:"featured"`
		Bestseller        bool                     `json:"bestseller"`
		Specifications    []data.Specification     `json:"specifications"`
		Variations        []catalog.VariationInput `json:"variations" validate:"dive"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	product := &data.Product{
		ProductCategoryID: input.ProductCategoryID,
		Name:              strings.TrimSpace(input.Name),
		Slug:              strings.TrimSpace(input.Slug),
		SKU:               trimmed(input.SKU),
		Description:       app.sanitize(input.Description),
		ShortDescription:  strings.TrimSpace(input.ShortDescription),
		Status:            input.Status,
		Featured:          input.Featured,
		Bestseller:        input.Bestseller,
		Specifications:    trimmedSpecifications(input.Specifications),
	}

	if product.Slug == "" {
		product.Slug = app.slugify(product.Name)
	}

	if product.Status == "" {
		product.Status = data.ProductDraft
	}

	v := validator.New()
	v.Struct(input)

	if data.ValidateProduct(v, product); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	category, ok := app.readCategory(w, r, product.ProductCategoryID)
	if !ok {
		return
	}

	res, err := app.reconcile("create", func() (catalog.Result, error) {
		return app.reconciler.Replace(catalog.State{}, catalog.Submission{Variations: input.Variations})
	})
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	product.SetCatalog(res.Variations, res.ColorImages)

	err = app.models.Products.Insert(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	product.ProductCategory = category

	app.notifyCategory(product.ProductCategoryID, res.AttributeValues)

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/cms/products/%d", product.ID))

	err = app.writeJSON(w, http.StatusCreated, http.StatusText(http.StatusCreated), newProductResponse(product), headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateProductHandler applies a simple update. When variations are sent
// they replace the product's variation list.
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	var input struct {
		ProductCategoryID *int64                   `json:"product_category_id"`
		Name              *string                  `json:"name"`
		Slug              *string                  `json:"slug"`
		SKU               *string                  `json:"sku"`
		Description       *string                  `json:"description"`
		ShortDescription  *string                  `json:"short_description"`
		Status            *string                  `json:"status"`
		Featured          *bool                    `json:"featured"`
		Bestseller        *bool                    `json:"bestseller"`
		Specifications    []data.Specification     `json:"specifications"`
		Version           *int                     `json:"version"`
		Variations        []catalog.VariationInput `json:"variations" validate:"dive"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	if input.Version == nil {
		v.AddError("version", "must be provided")
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	if *input.Version != product.Version {
		app.editConflictResponse(w, r)
		return
	}

	if input.ProductCategoryID != nil {
		product.ProductCategoryID = *input.ProductCategoryID
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Slug != nil {
		product.Slug = strings.TrimSpace(*input.Slug)
	}
	if input.SKU != nil {
		product.SKU = trimmed(input.SKU)
	}
	if input.Description != nil {
		product.Description = app.sanitize(*input.Description)
	}
	if input.ShortDescription != nil {
		product.ShortDescription = strings.TrimSpace(*input.ShortDescription)
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	if input.Featured != nil {
		product.Featured = *input.Featured
	}
	if input.Bestseller != nil {
		product.Bestseller = *input.Bestseller
	}
	if input.Specifications != nil {
		product.Specifications = trimmedSpecifications(input.Specifications)
	}

	v.Struct(input)

	if data.ValidateProduct(v, product); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	category, ok := app.readCategory(w, r, product.ProductCategoryID)
	if !ok {
		return
	}

	var values []catalog.AttributeValues

	if input.Variations != nil {
		res, err := app.reconcile("replace", func() (catalog.Result, error) {
			return app.reconciler.Replace(product.State(), catalog.Submission{Variations: input.Variations})
		})
		if err != nil {
			app.catalogErrorResponse(w, r, err)
			return
		}

		product.SetCatalog(res.Variations, res.ColorImages)
		values = res.AttributeValues
	}

	err = app.models.Products.Update(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	product.ProductCategory = category

	app.notifyCategory(product.ProductCategoryID, values)

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), newProductResponse(product), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Products.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), "product successfully deleted", nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ====================================================================================
// Business Handlers
// ====================================================================================

func (app *application) getProductsHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	qs := r.URL.Query()

	pagination := app.readPagination(qs, v)
	filter := data.ProductFilter{
		CategoryID: app.readInt64(qs, "category_id", v),
		Status:     data.ProductActive,
		Name:       app.readStrings(qs, "name", ""),
		Featured:   app.readBool(qs, "featured", v),
		Bestseller: app.readBool(qs, "bestseller", v),
	}

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	products, metadata, err := app.models.Products.GetAll(pagination, filter)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSONWithMeta(w, http.StatusOK, http.StatusText(http.StatusOK), newProductSummaries(products), nil, metadata)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getProductBySlugHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readSlugParam(r)

	product, err := app.models.Products.GetBySlug(slug)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), newProductResponse(product), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// trimmed returns nil for a missing or blank optional string.
func trimmedSpecifications(specs []data.Specification) datatypes.JSONSlice[data.Specification] {
	out := make(datatypes.JSONSlice[data.Specification], len(specs))
	for i, spec := range specs {
		out[i] = spec.Trimmed()
	}
	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}

	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}

	return &t
}
