package main

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)

	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthcheckHandler)

	// ====================================================================================
	// API - Business Routes
	// ====================================================================================

	// Products
	router.HandlerFunc(http.MethodGet, "/api/products", app.getProductsHandler)
	router.HandlerFunc(http.MethodGet, "/api/products/:slug", app.getProductBySlugHandler)

	// Product Categories
	router.HandlerFunc(http.MethodGet, "/api/product-categories", app.getProductCategoriesHandler)

	// ====================================================================================
	// CMS - Backoffice Routes
	// ====================================================================================

	// Products
	router.HandlerFunc(http.MethodGet, "/cms/products", app.listProductsHandler)
	router.HandlerFunc(http.MethodGet, "/cms/products/:id", app.showProductHandler)
	router.HandlerFunc(http.MethodPost, "/cms/products", app.createProductHandler)
	router.HandlerFunc(http.MethodPut, "/cms/products/:id", app.updateProductHandler)
	router.HandlerFunc(http.MethodDelete, "/cms/products/:id", app.deleteProductHandler)

	// Product Variations
	router.HandlerFunc(http.MethodGet, "/cms/products/:id/variations", app.listProductVariationsHandler)
	router.HandlerFunc(http.MethodPost, "/cms/products/:id/variations", app.createProductVariationsHandler)
	router.HandlerFunc(http.MethodPut, "/cms/products/:id/variations", app.bulkUpdateProductVariationsHandler)
	router.HandlerFunc(http.MethodPatch, "/cms/products/:id/variations/:variation_id", app.updateProductVariationHandler)
	router.HandlerFunc(http.MethodDelete, "/cms/products/:id/variations/:variation_id", app.deleteProductVariationHandler)
	router.HandlerFunc(http.MethodPut, "/cms/products/:id/variations/:variation_id/stock", app.adjustProductVariationStockHandler)

	// Product Specifications
	router.HandlerFunc(http.MethodGet, "/cms/products/:id/specifications", app.listProductSpecificationsHandler)
	router.HandlerFunc(http.MethodPost, "/cms/products/:id/specifications", app.createProductSpecificationHandler)
	router.HandlerFunc(http.MethodPut, "/cms/products/:id/specifications/:index", app.updateProductSpecificationHandler)
	router.HandlerFunc(http.MethodDelete, "/cms/products/:id/specifications/:index", app.deleteProductSpecificationHandler)

	// Product Color Images
	router.HandlerFunc(http.MethodGet, "/cms/products/:id/colors/:color/images", app.listColorImagesHandler)
	router.HandlerFunc(http.MethodPost, "/cms/products/:id/colors/:color/images", app.uploadColorImagesHandler)
	router.HandlerFunc(http.MethodPut, "/cms/products/:id/colors/:color/images/:image_ref/main", app.setMainColorImageHandler)
	router.HandlerFunc(http.MethodDelete, "/cms/products/:id/colors/:color/images/:image_ref", app.deleteColorImageHandler)

	// Product Categories
	router.HandlerFunc(http.MethodGet, "/cms/product-categories", app.listProductCategoriesHandler)
	router.HandlerFunc(http.MethodGet, "/cms/product-categories/:id", app.showProductCategoryHandler)
	router.HandlerFunc(http.MethodPost, "/cms/product-categories", app.createProductCategoryHandler)
	router.HandlerFunc(http.MethodPut, "/cms/product-categories/:id", app.updateProductCategoryHandler)
	router.HandlerFunc(http.MethodDelete, "/cms/product-categories/:id", app.deleteProductCategoryHandler)

	// ====================================================================================
	// Metrics
	// ====================================================================================

	router.Handler(http.MethodGet, "/debug/vars", expvar.Handler())
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry}))

	return app.metrics(app.requestID(app.recoverPanic(app.enableCORS(app.rateLimit(router)))))
}
