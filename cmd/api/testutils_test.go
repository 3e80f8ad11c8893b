package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/kervinch/storefront-api/internal/catalog"
	"github.com/kervinch/storefront-api/internal/data"
	"github.com/kervinch/storefront-api/internal/events"
	"github.com/kervinch/storefront-api/internal/jsonlog"
	"github.com/kervinch/storefront-api/internal/s3"
	"github.com/kervinch/storefront-api/internal/telemetry"
)

var (
	paginationAll = data.Pagination{Page: 1, PageSize: 100}
	filterAll     = data.ProductFilter{}
)

type fakeStorage struct {
	mu      sync.Mutex
	uploads []s3.Descriptor
	deleted []string
	err     error
}

func (s *fakeStorage) Upload(_ context.Context, file io.ReadSeeker, folder, contentType string, size int64) (s3.Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s3.Descriptor{}, s.err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return s3.Descriptor{}, data.ErrImageFormat
	}

	if _, err := io.Copy(io.Discard, file); err != nil {
		return s3.Descriptor{}, err
	}

	key := fmt.Sprintf("%s%d.jpg", folder, len(s.uploads)+1)
	desc := s3.Descriptor{
		URL:      "https://cdn.test/" + key,
		Key:      key,
		Size:     size,
		MimeType: contentType,
	}
	s.uploads = append(s.uploads, desc)

	return desc, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.deleted...)
}

type testApp struct {
	*application
	storage *fakeStorage
	handler http.Handler
}

func newTestApplication(t *testing.T) *testApp {
	t.Helper()

	models := data.NewMockModels()
	storage := &fakeStorage{}
	registry := prometheus.NewRegistry()

	app := &application{
		config:         config{env: "testing"},
		logger:         jsonlog.New(io.Discard, jsonlog.LevelOff),
		models:         models,
		storage:        storage,
		notifier:       events.Recorder{Categories: models.ProductCategories},
		reconciler:     catalog.NewReconciler(catalog.GalleryMerge),
		catalogMetrics: telemetry.NewCatalogMetrics(registry, ""),
		registry:       registry,
		sanitizer:      bluemonday.UGCPolicy(),
	}

	return &testApp{application: app, storage: storage, handler: app.routes()}
}

// seedCategory stores an active category declaring the given variation types.
func (ta *testApp) seedCategory(t *testing.T, slug string, types ...string) *data.ProductCategory {
	t.Helper()

	category := &data.ProductCategory{Name: slug, Slug: slug, IsActive: true}
	for _, name := range types {
		category.VariationTypes = append(category.VariationTypes, data.VariationType{Name: name, Values: []string{}})
	}

	require.NoError(t, ta.models.ProductCategories.Insert(category))

	return category
}

func (ta *testApp) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		js, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(js)
	}

	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)

	return rr
}

type upload struct {
	field       string
	filename    string
	contentType string
	content     string
}

func (ta *testApp) doMultipart(t *testing.T, method, target string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)

		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := httptest.NewRecorder()
	ta.handler.ServeHTTP(rr, req)

	return rr
}

type response[T any] struct {
	Status   int             `json:"status"`
	Message  string          `json:"message"`
	Data     T               `json:"data"`
	Error    json.RawMessage `json:"error"`
	Metadata data.Metadata   `json:"metadata"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) response[T] {
	t.Helper()

	var res response[T]
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res), rr.Body.String())

	return res
}

// fieldErrors returns the per-field messages of a 422 response.
func fieldErrors(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	res := decode[any](t, rr)

	var errs map[string]string
	require.NoError(t, json.Unmarshal(res.Error, &errs), string(res.Error))

	return errs
}

type productBody struct {
	ID             int64                         `json:"id"`
	Name           string                        `json:"name"`
	Slug           string                        `json:"slug"`
	Description    string                        `json:"description"`
	Status         string                        `json:"status"`
	Featured       bool                          `json:"featured"`
	Bestseller     bool                          `json:"bestseller"`
	Specifications []data.Specification          `json:"specifications"`
	Version        int                           `json:"version"`
	Variations     []catalog.VariationWithImages `json:"variations"`
	ColorImages    []catalog.GalleryEntry        `json:"color_images"`
	MainVariation  *catalog.VariationWithImages  `json:"main_variation"`
	PriceRange     catalog.PriceRange            `json:"price_range"`
	TotalStock     int                           `json:"total_stock"`
	DisplayImage   *catalog.Image                `json:"display_image"`
	ColorsDetailed []catalog.ColorDetail         `json:"colors_detailed"`
}

type variationsBody struct {
	Variations  []catalog.VariationWithImages `json:"variations"`
	ColorImages []catalog.GalleryEntry        `json:"color_images"`
	Version     int                           `json:"version"`
	Stats       *catalog.Stats                `json:"stats"`
}

func attr(name, value string) map[string]string {
	return map[string]string{"name": name, "value": value}
}

func colorEntry(entries []catalog.GalleryEntry, color string) (catalog.GalleryEntry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.Color, color) {
			return e, true
		}
	}
	return catalog.GalleryEntry{}, false
}

func mainVariations(variations []catalog.VariationWithImages) int {
	n := 0
	for _, v := range variations {
		if v.IsMain {
			n++
		}
	}
	return n
}
