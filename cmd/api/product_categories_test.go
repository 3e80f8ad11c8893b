package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kervinch/storefront-api/internal/data"
)

func TestCreateProductCategory(t *testing.T) {
	ta := newTestApplication(t)

	icon := upload{field: "image", filename: "shoes.png", contentType: "image/png", content: "\x89PNG"}

	rr := ta.doMultipart(t, http.MethodPost, "/cms/product-categories", map[string]string{
		"name":            "Running Shoes",
		"is_active":       "true",
		"order_number":    "2",
		"variation_types": `[{"name":"size","values":["42"]},{"name":"width","values":[]}]`,
	}, icon)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "/cms/product-categories/1", rr.Header().Get("Location"))

	category := decode[data.ProductCategory](t, rr).Data
	assert.Equal(t, "running-shoes", category.Slug)
	assert.Equal(t, 2, category.OrderNumber)
	assert.True(t, category.IsActive)
	assert.Equal(t, "https://cdn.test/product-categories/1.jpg", category.Image)
	require.Len(t, category.VariationTypes, 2)
	assert.Equal(t, []string{"42"}, category.VariationTypes[0].Values)

	t.Run("duplicate slug", func(t *testing.T) {
		rr := ta.doMultipart(t, http.MethodPost, "/cms/product-categories", map[string]string{"name": "Running shoes"})
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, fieldErrors(t, rr), "slug")
	})

	t.Run("invalid fields", func(t *testing.T) {
		rr := ta.doMultipart(t, http.MethodPost, "/cms/product-categories", map[string]string{
			"order_number":    "two",
			"variation_types": `[{"name":"size"},{"name":"SIZE"}]`,
		})
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		errs := fieldErrors(t, rr)
		assert.Contains(t, errs, "name")
		assert.Contains(t, errs, "order_number")
		assert.Contains(t, errs, "variation_types")
	})

	t.Run("unsupported image", func(t *testing.T) {
		doc := upload{field: "image", filename: "icon.pdf", contentType: "application/pdf", content: "%PDF"}
		rr := ta.doMultipart(t, http.MethodPost, "/cms/product-categories", map[string]string{"name": "Boots"}, doc)
		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	})
}

func TestUpdateProductCategory(t *testing.T) {
	ta := newTestApplication(t)
	seeded := ta.seedCategory(t, "shirts", "size")

	rr := ta.doMultipart(t, http.MethodPut, "/cms/product-categories/1", map[string]string{
		"name":      "Shirts & Tops",
		"is_active": "false",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	category := decode[data.ProductCategory](t, rr).Data
	assert.Equal(t, "Shirts & Tops", category.Name)
	assert.Equal(t, seeded.Slug, category.Slug)
	assert.False(t, category.IsActive)
	// Fields that were not sent are kept.
	require.Len(t, category.VariationTypes, 1)
	assert.Equal(t, "size", category.VariationTypes[0].Name)

	assert.Equal(t, http.StatusNotFound, ta.doMultipart(t, http.MethodPut, "/cms/product-categories/5", map[string]string{"name": "x"}).Code)

	t.Run("slug taken", func(t *testing.T) {
		ta.seedCategory(t, "pants")

		rr := ta.doMultipart(t, http.MethodPut, "/cms/product-categories/2", map[string]string{"slug": "shirts"})
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, fieldErrors(t, rr), "slug")
	})
}

func TestListProductCategories(t *testing.T) {
	ta := newTestApplication(t)
	ta.seedCategory(t, "shirts", "size")
	ta.seedCategory(t, "pants")

	hidden := &data.ProductCategory{Name: "Archive", Slug: "archive"}
	require.NoError(t, ta.models.ProductCategories.Insert(hidden))

	rr := ta.do(t, http.MethodGet, "/cms/product-categories?page_size=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	res := decode[[]data.ProductCategory](t, rr)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, 3, res.Metadata.TotalRecords)

	rr = ta.do(t, http.MethodGet, "/api/product-categories", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	active := decode[[]data.ProductCategory](t, rr).Data
	require.Len(t, active, 2)
	assert.Equal(t, "shirts", active[0].Slug)
	assert.Equal(t, "pants", active[1].Slug)

	rr = ta.do(t, http.MethodGet, "/cms/product-categories/3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "archive", decode[data.ProductCategory](t, rr).Data.Slug)
}

func TestDeleteProductCategory(t *testing.T) {
	ta := newTestApplication(t)
	ta.seedCategory(t, "shirts")

	rr := ta.do(t, http.MethodDelete, "/cms/product-categories/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, http.StatusNotFound, ta.do(t, http.MethodGet, "/cms/product-categories/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, ta.do(t, http.MethodDelete, "/cms/product-categories/1", nil).Code)
}
