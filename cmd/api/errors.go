package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kervinch/storefront-api/internal/catalog"
	"github.com/kervinch/storefront-api/internal/data"
)

func (app *application) logError(r *http.Request, err error) {
	app.logger.PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
		"request_id":     app.contextGetRequestID(r),
	})
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	body := envelope{
		"status":  status,
		"message": http.StatusText(status),
		"error":   message,
	}

	err := app.writeEnvelope(w, status, body, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func (app *application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	message := "unable to update the record due to an edit conflict, please try again"
	app.errorResponse(w, r, http.StatusConflict, message)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "rate limit exceeded"
	app.errorResponse(w, r, http.StatusTooManyRequests, message)
}

func (app *application) unsupportedImageResponse(w http.ResponseWriter, r *http.Request, filename string) {
	message := fmt.Sprintf("%s is not a supported image, use jpeg, png, webp or gif", filename)
	app.errorResponse(w, r, http.StatusUnsupportedMediaType, message)
}

// catalogErrorResponse answers a failed catalog write. Rejected submissions
// become 422s keyed by the offending field, the rest is handled like any
// other storage failure.
func (app *application) catalogErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var ve *catalog.ValidationError

	switch {
	case errors.As(err, &ve):
		app.catalogMetrics.ValidationFailed(ve.Field)
		app.failedValidationResponse(w, r, map[string]string{ve.Key(): ve.Message})
	case errors.Is(err, catalog.ErrVariationNotFound),
		errors.Is(err, catalog.ErrImageNotFound),
		errors.Is(err, data.ErrRecordNotFound):
		app.notFoundResponse(w, r)
	case errors.Is(err, data.ErrEditConflict):
		app.editConflictResponse(w, r)
	case errors.Is(err, data.ErrDuplicateSlug):
		app.failedValidationResponse(w, r, map[string]string{"slug": "a product with this slug already exists"})
	case errors.Is(err, data.ErrDuplicateSKU):
		app.failedValidationResponse(w, r, map[string]string{"sku": "a product with this sku already exists"})
	default:
		app.serverErrorResponse(w, r, err)
	}
}
