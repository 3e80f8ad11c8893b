package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kervinch/storefront-api/internal/data"
	"github.com/kervinch/storefront-api/internal/s3"
	"github.com/kervinch/storefront-api/internal/validator"
)

// ====================================================================================
// Backoffice Handlers
// ====================================================================================

func (app *application) listProductCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	v := validator.New()
	qs := r.URL.Query()

	pagination := app.readPagination(qs, v)

	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	productCategories, metadata, err := app.models.ProductCategories.GetAll(pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSONWithMeta(w, http.StatusOK, http.StatusText(http.StatusOK), productCategories, nil, metadata)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) showProductCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	productCategory, err := app.models.ProductCategories.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), productCategory, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createProductCategoryHandler(w http.ResponseWriter, r *http.Request) {
	err := app.parseForm(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	productCategory := &data.ProductCategory{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Slug:     strings.TrimSpace(r.PostFormValue("slug")),
		IsActive: r.PostFormValue("is_active") == "true",
	}

	if productCategory.Slug == "" {
		productCategory.Slug = app.slugify(productCategory.Name)
	}

	v := validator.New()

	if value, ok := formValue(r, "order_number"); ok {
		productCategory.OrderNumber, err = strconv.Atoi(value)
		v.Check(err == nil, "order_number", "must be an integer value")
	}

	if value, ok := formValue(r, "variation_types"); ok {
		err = json.Unmarshal([]byte(value), &productCategory.VariationTypes)
		v.Check(err == nil, "variation_types", "must be a JSON array of {name, values}")
	}

	if data.ValidateProductCategory(v, productCategory); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	image, ok := app.uploadCategoryImage(w, r)
	if !ok {
		return
	}
	productCategory.Image = image

	err = app.models.ProductCategories.Insert(productCategory)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrDuplicateSlug):
			v.AddError("slug", "a product category with this slug already exists")
			app.failedValidationResponse(w, r, v.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/cms/product-categories/%d", productCategory.ID))

	err = app.writeJSON(w, http.StatusCreated, http.StatusText(http.StatusCreated), productCategory, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateProductCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	productCategory, err := app.models.ProductCategories.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.parseForm(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	if value, ok := formValue(r, "name"); ok {
		productCategory.Name = strings.TrimSpace(value)
	}
	if value, ok := formValue(r, "slug"); ok {
		productCategory.Slug = strings.TrimSpace(value)
	}
	if value, ok := formValue(r, "is_active"); ok {
		productCategory.IsActive = value == "true"
	}
	if value, ok := formValue(r, "order_number"); ok {
		productCategory.OrderNumber, err = strconv.Atoi(value)
		v.Check(err == nil, "order_number", "must be an integer value")
	}
	if value, ok := formValue(r, "variation_types"); ok {
		productCategory.VariationTypes = nil
		err = json.Unmarshal([]byte(value), &productCategory.VariationTypes)
		v.Check(err == nil, "variation_types", "must be a JSON array of {name, values}")
	}

	if data.ValidateProductCategory(v, productCategory); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	image, ok := app.uploadCategoryImage(w, r)
	if !ok {
		return
	}
	if image != "" {
		productCategory.Image = image
	}

	err = app.models.ProductCategories.Update(productCategory)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, data.ErrDuplicateSlug):
			v.AddError("slug", "a product category with this slug already exists")
			app.failedValidationResponse(w, r, v.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), productCategory, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteProductCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.ProductCategories.Delete(id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), "product category successfully deleted", nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ====================================================================================
// Business Handlers
// ====================================================================================

func (app *application) getProductCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	productCategories, err := app.models.ProductCategories.GetAPI()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), productCategories, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ====================================================================================
// Helpers
// ====================================================================================

// parseForm accepts both multipart and urlencoded category forms.
func (app *application) parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(data.DefaultMaxMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

func formValue(r *http.Request, key string) (string, bool) {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// uploadCategoryImage stores the optional "image" file and returns its URL,
// or "" when none was sent.
func (app *application) uploadCategoryImage(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.MultipartForm == nil {
		return "", true
	}

	file, fh, err := r.FormFile("image")
	if err != nil {
		return "", true
	}
	defer file.Close()

	desc, err := app.storage.Upload(r.Context(), file, s3.PRODUCT_CATEGORY, fh.Header.Get("Content-Type"), fh.Size)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrImageFormat):
			app.unsupportedImageResponse(w, r, fh.Filename)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return "", false
	}

	return desc.URL, true
}
