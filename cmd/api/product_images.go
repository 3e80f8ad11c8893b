package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kervinch/storefront-api/internal/catalog"
	"github.com/kervinch/storefront-api/internal/data"
	"github.com/kervinch/storefront-api/internal/s3"
)

type imageStorage interface {
	Upload(ctx context.Context, file io.ReadSeeker, folder, contentType string, size int64) (s3.Descriptor, error)
	Delete(ctx context.Context, key string) error
}

// ====================================================================================
// Backoffice Handlers
// ====================================================================================

func (app *application) listColorImagesHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	color := app.readParam(r, "color")
	gallery := catalog.NewColorGallery(product.ColorImages)

	entry, ok := gallery.Entry(color)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	entry.Images = gallery.Images(color)

	err := app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), entry, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// uploadColorImagesHandler stores the "images" files of a multipart form and
// appends them to the gallery entry of a color the product already has.
func (app *application) uploadColorImagesHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	color := app.readParam(r, "color")
	gallery := catalog.NewColorGallery(product.ColorImages)

	entry, ok := gallery.Entry(color)
	if !ok {
		app.notFoundResponse(w, r)
		return
	}

	err := r.ParseMultipartForm(data.DefaultMaxMemory)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		app.failedValidationResponse(w, r, map[string]string{"images": "must contain at least one file"})
		return
	}

	start := time.Now()
	folder := fmt.Sprintf("%s%d/", s3.PRODUCT, product.ID)
	markMain := r.FormValue("is_main") == "true"
	next := entry.NextOrder()

	images := make([]catalog.Image, 0, len(files))
	keys := make([]string, 0, len(files))

	for i, fh := range files {
		file, err := fh.Open()
		if err != nil {
			app.discardImages(keys)
			app.serverErrorResponse(w, r, err)
			return
		}

		desc, err := app.storage.Upload(r.Context(), file, folder, fh.Header.Get("Content-Type"), fh.Size)
		file.Close()
		if err != nil {
			app.discardImages(keys)
			switch {
			case errors.Is(err, data.ErrImageFormat):
				app.unsupportedImageResponse(w, r, fh.Filename)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		keys = append(keys, desc.Key)
		images = append(images, catalog.Image{
			URL:        desc.URL,
			ExternalID: desc.Key,
			IsMain:     markMain && i == 0,
			Order:      next + i,
		})
	}

	var stats catalog.Stats
	stats.ImagesAdded, stats.ImagesSkipped = gallery.Upsert(color, images)

	app.catalogMetrics.ObserveReconcile("upload", stats, time.Since(start))

	product.SetCatalog(product.Variations, gallery.Entries())

	err = app.models.Products.Update(product)
	if err != nil {
		app.discardImages(keys)
		app.catalogErrorResponse(w, r, err)
		return
	}

	entry, _ = gallery.Entry(color)
	entry.Images = gallery.Images(color)

	err = app.writeJSON(w, http.StatusCreated, http.StatusText(http.StatusCreated), entry, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) setMainColorImageHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	color := app.readParam(r, "color")
	gallery := catalog.NewColorGallery(product.ColorImages)

	err := gallery.SetMain(color, app.readParam(r, "image_ref"))
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	product.SetCatalog(product.Variations, gallery.Entries())

	err = app.models.Products.Update(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	entry, _ := gallery.Entry(color)
	entry.Images = gallery.Images(color)

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), entry, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// deleteColorImageHandler removes an image from a color gallery. The stored
// object is deleted once the product has been saved.
func (app *application) deleteColorImageHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r)
	if !ok {
		return
	}

	color := app.readParam(r, "color")
	gallery := catalog.NewColorGallery(product.ColorImages)

	removed, err := gallery.Remove(color, app.readParam(r, "image_ref"))
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	product.SetCatalog(product.Variations, gallery.Entries())

	err = app.models.Products.Update(product)
	if err != nil {
		app.catalogErrorResponse(w, r, err)
		return
	}

	if removed.ExternalID != "" {
		app.discardImages([]string{removed.ExternalID})
	}

	err = app.writeJSON(w, http.StatusOK, http.StatusText(http.StatusOK), "product image successfully deleted", nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// discardImages deletes stored objects in the background. Failures only get
// logged since the catalog no longer points at them.
func (app *application) discardImages(keys []string) {
	if len(keys) == 0 {
		return
	}

	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, key := range keys {
			err := app.storage.Delete(ctx, key)
			if err != nil {
				app.logger.PrintError(err, map[string]string{"key": key})
			}
		}
	})
}
