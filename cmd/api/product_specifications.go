package main

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/kervinch/storefront-api/internal/data"
	"github.com/kervinch/storefront-api/internal/validator"
)

// ====================================================================================
// Backoffice Handlers
// ====================================================================================

func (app *application) listProductSpecificationsHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	specifications := product.Specifications
	if specifications == nil {
		specifications = []data.Specification{}
	}

	err := app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), specifications, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createProductSpecificationHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	var input data.Specification

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	specification := input.Trimmed()

	v := validator.New()

	if data.ValidateSpecification(v, specification); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	product.Specifications = append(product.Specifications, specification)

	err = app.models.Products.Update(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/cms/products/%d/specifications/%d", product.ID, len(product.Specifications)-1))

	err = app.writeJSON(w, http.StatusCreated, http.StatusText(http.StatusCreated), specification, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// updateProductSpecificationHandler replaces the fields that were sent on the
// specification at :index.
func (app *application) updateProductSpecificationHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	index, ok := app.readSpecificationIndex(r, product)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Category *string                  `json:"category"`
		Items    []data.SpecificationItem `json:"items"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	specification := product.Specifications[index]
	if input.Category != nil {
		specification.Category = *input.Category
	}
	if input.Items != nil {
		specification.Items = input.Items
	}
	specification = specification.Trimmed()

	v := validator.New()

	if data.ValidateSpecification(v, specification); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	product.Specifications = slices.Clone(product.Specifications)
	product.Specifications[index] = specification

	err = app.models.Products.Update(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), specification, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteProductSpecificationHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	index, ok := app.readSpecificationIndex(r, product)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	product.Specifications = slices.Delete(slices.Clone(product.Specifications), index, index+1)

	err := app.models.Products.Update(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), "product specification successfully deleted", nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ====================================================================================
// Helpers
// ====================================================================================

// readSpecificationIndex reads the zero based :index parameter and reports
// whether it addresses one of the product's specifications.
func (app *application) readSpecificationIndex(r *http.Request, product *data.Product) (int, bool) {
	params := httprouter.ParamsFromContext(r.Context())

	index, err := strconv.Atoi(params.ByName("index"))
	if err != nil || index < 0 || index >= len(product.Specifications) {
		return 0, false
	}
	return index, true
}
