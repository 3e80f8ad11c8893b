package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/julienschmidt/httprouter"

	"github.com/kervinch/storefront-api/internal/data"
	"github.com/kervinch/storefront-api/internal/validator"
)

type envelope map[string]interface{}

func (app *application) readIDParam(r *http.Request) (int64, error) {
	return app.readInt64Param(r, "id")
}

func (app *application) readInt64Param(r *http.Request, name string) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := strconv.ParseInt(params.ByName(name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}

	return id, nil
}

func (app *application) readSlugParam(r *http.Request) string {
	return app.readParam(r, "slug")
}

func (app *application) readParam(r *http.Request, name string) string {
	params := httprouter.ParamsFromContext(r.Context())

	return strings.TrimSpace(params.ByName(name))
}

func (app *application) writeJSON(w http.ResponseWriter, status int, message string, data interface{}, headers http.Header) error {
	return app.writeJSONWithMeta(w, status, message, data, headers, nil)
}

func (app *application) writeJSONWithMeta(w http.ResponseWriter, status int, message string, data interface{}, headers http.Header, metadata interface{}) error {
	body := envelope{
		"status":  status,
		"message": message,
		"data":    data,
	}

	if metadata != nil {
		body["metadata"] = metadata
	}

	return app.writeEnvelope(w, status, body, headers)
}

func (app *application) writeEnvelope(w http.ResponseWriter, status int, body envelope, headers http.Header) error {
	js, err := json.Marshal(body)
	if err != nil {
		return err
	}

	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)

	return nil
}

func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)

		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")

		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)

		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")

		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)

		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)

		case errors.As(err, &invalidUnmarshalError):
			panic(err)

		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func (app *application) readStrings(qs url.Values, key string, defaultValue string) string {
	s := qs.Get(key)

	if s == "" {
		return defaultValue
	}

	return s
}

func (app *application) readInt(qs url.Values, key string, defaultValue int, v *validator.Validator) int {
	s := qs.Get(key)

	if s == "" {
		return defaultValue
	}

	i, err := strconv.Atoi(s)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return defaultValue
	}

	return i
}

func (app *application) readInt64(qs url.Values, key string, v *validator.Validator) int64 {
	s := qs.Get(key)

	if s == "" {
		return 0
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return 0
	}

	return i
}

// readBool returns nil when key is absent so callers can tell "not asked"
// from false.
func (app *application) readBool(qs url.Values, key string, v *validator.Validator) *bool {
	s := qs.Get(key)

	if s == "" {
		return nil
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		v.AddError(key, "must be a boolean value")
		return nil
	}

	return &b
}

func (app *application) readPagination(qs url.Values, v *validator.Validator) data.Pagination {
	p := data.Pagination{
		Page:     app.readInt(qs, "page", 1, v),
		PageSize: app.readInt(qs, "page_size", 20, v),
	}

	data.ValidatePagination(v, p)

	return p
}

// background runs fn in a goroutine tracked by the application wait group.
// A panic inside fn is logged instead of taking the server down.
func (app *application) background(fn func()) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		defer func() {
			if err := recover(); err != nil {
				app.logger.PrintError(fmt.Errorf("%s", err), nil)
			}
		}()

		fn()
	}()
}

func (app *application) slugify(s string) string {
	return slug.Make(s)
}

// sanitize strips markup that is not safe to render back to shoppers.
func (app *application) sanitize(html string) string {
	return strings.TrimSpace(app.sanitizer.Sanitize(html))
}
