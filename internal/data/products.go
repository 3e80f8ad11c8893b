package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kervinch/storefront-api/internal/catalog"
	"github.com/kervinch/storefront-api/internal/validator"
)

const (
	ProductDraft      = "draft"
	ProductActive     = "active"
	ProductArchived   = "archived"
	ProductOutOfStock = "out_of_stock"
)

var ProductStatuses = []string{ProductDraft, ProductActive, ProductArchived, ProductOutOfStock}

// Product is the persisted catalog document. Variations and ColorImages are
// sibling jsonb collections; images never live inside a variation.
type Product struct {
	ID                int64                                     `json:"id"`
	ProductCategory   *ProductCategory                          `json:"product_category,omitempty"`
	ProductCategoryID int64                                     `json:"product_category_id"`
	Name              string                                    `json:"name"`
	Slug              string                                    `json:"slug"`
	SKU               *string                                   `json:"sku,omitempty"`
	Description       string                                    `json:"description"`
	ShortDescription  string                                    `json:"short_description"`
	Status            string                                    `json:"status"`
	Featured          bool                                      `json:"featured"`
	Bestseller        bool                                      `json:"bestseller"`
	Version           int                                       `json:"version"`
	Variations        datatypes.JSONSlice[catalog.Variation]    `json:"-" gorm:"type:jsonb"`
	ColorImages       datatypes.JSONSlice[catalog.GalleryEntry] `json:"color_images" gorm:"type:jsonb"`
	Specifications    datatypes.JSONSlice[Specification]        `json:"specifications" gorm:"type:jsonb"`
	CreatedAt         time.Time                                 `json:"created_at"`
	UpdatedAt         time.Time                                 `json:"updated_at"`
}

func ValidateProduct(v *validator.Validator, product *Product) {
	v.Check(product.ProductCategoryID != 0, "product_category_id", "must be provided")
	v.Check(product.ProductCategoryID > 0, "product_category_id", "must be a positive integer")
	v.Check(product.Name != "", "name", "must be provided")
	v.Check(len(product.Name) <= 500, "name", "must not be more than 500 bytes long")
	v.Check(product.Slug != "", "slug", "must be provided")
	v.Check(validator.Matches(product.Slug, validator.SlugRX), "slug", "must only contain lowercase letters, digits and dashes")
	v.Check(len(product.ShortDescription) <= 500, "short_description", "must not be more than 500 bytes long")
	v.Check(validator.In(product.Status, ProductStatuses...), "status", "must be one of draft, active, archived or out_of_stock")

	if product.SKU != nil {
		v.Check(*product.SKU != "", "sku", "must not be empty")
		v.Check(len(*product.SKU) <= 100, "sku", "must not be more than 100 bytes long")
	}

	for i, spec := range product.Specifications {
		validateSpecification(v, spec, fmt.Sprintf("specifications[%d].", i))
	}
}

// Specification is a titled group of product facts shown on the product page,
// for example "Dimensions" with width and height items.
type Specification struct {
	Category string              `json:"category"`
	Items    []SpecificationItem `json:"items"`
}

type SpecificationItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Trimmed returns a copy of spec with surrounding whitespace removed from
// every field.
func (spec Specification) Trimmed() Specification {
	out := Specification{
		Category: strings.TrimSpace(spec.Category),
		Items:    make([]SpecificationItem, len(spec.Items)),
	}
	for i, item := range spec.Items {
		out.Items[i] = SpecificationItem{
			Label: strings.TrimSpace(item.Label),
			Value: strings.TrimSpace(item.Value),
			Unit:  strings.TrimSpace(item.Unit),
		}
	}
	return out
}

func ValidateSpecification(v *validator.Validator, spec Specification) {
	validateSpecification(v, spec, "")
}

func validateSpecification(v *validator.Validator, spec Specification, prefix string) {
	v.Check(spec.Category != "", prefix+"category", "must be provided")
	v.Check(len(spec.Category) <= 100, prefix+"category", "must not be more than 100 bytes long")
	v.Check(len(spec.Items) <= 50, prefix+"items", "must not contain more than 50 items")

	for i, item := range spec.Items {
		key := fmt.Sprintf("%sitems[%d]", prefix, i)
		v.Check(item.Label != "", key+".label", "must be provided")
		v.Check(item.Value != "", key+".value", "must be provided")
	}
}

// SyncStockStatus moves an active product to out_of_stock when none of its
// variations has stock left, and back to active once stock returns. Other
// statuses are left alone. It reports whether the status changed.
func (p *Product) SyncStockStatus() bool {
	total := p.View().TotalStock()

	switch {
	case p.Status == ProductActive && total <= 0 && len(p.Variations) > 0:
		p.Status = ProductOutOfStock
	case p.Status == ProductOutOfStock && total > 0:
		p.Status = ProductActive
	default:
		return false
	}

	return true
}

// State returns the catalog document the reconciler works on.
func (p *Product) State() catalog.State {
	return catalog.State{
		Variations:  []catalog.Variation(p.Variations),
		ColorImages: []catalog.GalleryEntry(p.ColorImages),
	}
}

// SetCatalog stores the reconciled variations and gallery on the product.
func (p *Product) SetCatalog(variations []catalog.Variation, colorImages []catalog.GalleryEntry) {
	p.Variations = datatypes.JSONSlice[catalog.Variation](variations)
	p.ColorImages = datatypes.JSONSlice[catalog.GalleryEntry](colorImages)
}

func (p *Product) View() *catalog.View {
	return catalog.NewView(p.Variations, p.ColorImages)
}

var productConstraints = map[string]error{
	"products_slug_key": ErrDuplicateSlug,
	"products_sku_key":  ErrDuplicateSKU,
}

type ProductModel struct {
	DB *gorm.DB
}

// ====================================================================================
// Backoffice Functions
// ====================================================================================

func (m ProductModel) GetAll(p Pagination, f ProductFilter) ([]*Product, Metadata, error) {
	var products []*Product
	var count int64

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.DB.WithContext(ctx).Preload("ProductCategory").Scopes(FilterProducts(f), Paginate(p)).Order("id").Find(&products).Error
	if err != nil {
		return nil, Metadata{}, err
	}

	err = m.DB.WithContext(ctx).Model(&Product{}).Scopes(FilterProducts(f)).Count(&count).Error
	if err != nil {
		return nil, Metadata{}, err
	}

	metadata := calculateMetadata(int(count), p.Page, p.PageSize)

	return products, metadata, nil
}

func (m ProductModel) Get(id int64) (*Product, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	var product *Product

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.DB.WithContext(ctx).Preload("ProductCategory").First(&product, id).Error
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return product, nil
}

func (m ProductModel) Insert(product *Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	product.Version = 1

	err := m.DB.WithContext(ctx).Omit("ProductCategory").Create(product).Error

	return uniqueViolation(err, productConstraints)
}

// Update writes the product if its version still matches the stored one and
// bumps the version. A lost race returns ErrEditConflict.
func (m ProductModel) Update(product *Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result := m.DB.WithContext(ctx).Model(&Product{}).
		Where("id = ? AND version = ?", product.ID, product.Version).
		Updates(map[string]any{
			"product_category_id": product.ProductCategoryID,
			"name":                product.Name,
			"slug":                product.Slug,
			"sku":                 product.SKU,
			"description":         product.Description,
			"short_description":   product.ShortDescription,
			"status":              product.Status,
			"featured":            product.Featured,
			"bestseller":          product.Bestseller,
			"variations":          product.Variations,
			"color_images":        product.ColorImages,
			"specifications":      product.Specifications,
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return uniqueViolation(result.Error, productConstraints)
	}

	if result.RowsAffected == 0 {
		return ErrEditConflict
	}

	product.Version++

	return nil
}

func (m ProductModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result := m.DB.WithContext(ctx).Delete(&Product{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected < 1 {
		return ErrRecordNotFound
	}

	return nil
}

// ====================================================================================
// Business Functions
// ====================================================================================

func (m ProductModel) GetBySlug(slug string) (*Product, error) {
	if slug == "" {
		return nil, ErrRecordNotFound
	}

	var product *Product

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.DB.WithContext(ctx).Where("status = ? AND slug = ?", ProductActive, slug).Preload("ProductCategory").First(&product).Error
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return product, nil
}
