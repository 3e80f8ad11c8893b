package data

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kervinch/storefront-api/internal/validator"
)

// VariationType is an attribute a category declares for its products, with
// the values observed so far.
type VariationType struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type ProductCategory struct {
	ID             int64                              `json:"id"`
	Image          string                             `json:"image"`
	Name           string                             `json:"name"`
	Slug           string                             `json:"slug"`
	OrderNumber    int                                `json:"order_number"`
	IsActive       bool                               `json:"is_active"`
	VariationTypes datatypes.JSONSlice[VariationType] `json:"variation_types" gorm:"type:jsonb"`
	CreatedAt      time.Time                          `json:"-"`
	UpdatedAt      time.Time                          `json:"-"`
}

func ValidateProductCategory(v *validator.Validator, productCategory *ProductCategory) {
	v.Check(productCategory.Name != "", "name", "must be provided")
	v.Check(len(productCategory.Name) <= 100, "name", "must not be more than 100 bytes long")
	v.Check(productCategory.Slug != "", "slug", "must be provided")
	v.Check(productCategory.OrderNumber >= 0, "order_number", "must not be negative")

	names := make([]string, 0, len(productCategory.VariationTypes))
	for _, vt := range productCategory.VariationTypes {
		v.Check(strings.TrimSpace(vt.Name) != "", "variation_types", "name must be provided")
		names = append(names, strings.ToLower(strings.TrimSpace(vt.Name)))
	}
	v.Check(validator.Unique(names), "variation_types", "must not contain duplicate names")
}

// AppendValues records values under the declared variation type called name.
// Undeclared types are left alone. Values are deduplicated case-sensitively;
// the values actually added are returned.
func (c *ProductCategory) AppendValues(name string, values []string) []string {
	i := slices.IndexFunc(c.VariationTypes, func(vt VariationType) bool {
		return strings.EqualFold(strings.TrimSpace(vt.Name), strings.TrimSpace(name))
	})
	if i < 0 {
		return nil
	}

	var added []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" || slices.Contains(c.VariationTypes[i].Values, value) {
			continue
		}
		c.VariationTypes[i].Values = append(c.VariationTypes[i].Values, value)
		added = append(added, value)
	}

	return added
}

var productCategoryConstraints = map[string]error{
	"product_categories_slug_key": ErrDuplicateSlug,
}

type ProductCategoryModel struct {
	DB *gorm.DB
}

// ====================================================================================
// Backoffice Functions
// ====================================================================================

func (m ProductCategoryModel) GetAll(p Pagination) ([]*ProductCategory, Metadata, error) {
	var productCategories []*ProductCategory
	var count int64

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.DB.WithContext(ctx).Scopes(Paginate(p)).Order("order_number").Find(&productCategories).Error
	if err != nil {
		return nil, Metadata{}, err
	}

	err = m.DB.WithContext(ctx).Model(&ProductCategory{}).Count(&count).Error
	if err != nil {
		return nil, Metadata{}, err
	}

	metadata := calculateMetadata(int(count), p.Page, p.PageSize)

	return productCategories, metadata, nil
}

func (m ProductCategoryModel) Get(id int64) (*ProductCategory, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}

	var productCategory *ProductCategory

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.DB.WithContext(ctx).First(&productCategory, id).Error
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return productCategory, nil
}

func (m ProductCategoryModel) Insert(productCategory *ProductCategory) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.DB.WithContext(ctx).Create(productCategory).Error

	return uniqueViolation(err, productCategoryConstraints)
}

func (m ProductCategoryModel) Update(p *ProductCategory) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var productCategory *ProductCategory

	err := m.DB.WithContext(ctx).First(&productCategory, p.ID).Error
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	productCategory.Image = p.Image
	productCategory.Name = p.Name
	productCategory.Slug = p.Slug
	productCategory.IsActive = p.IsActive
	productCategory.OrderNumber = p.OrderNumber
	productCategory.VariationTypes = p.VariationTypes

	err = m.DB.WithContext(ctx).Save(&productCategory).Error
	if err != nil {
		return uniqueViolation(err, productCategoryConstraints)
	}

	return nil
}

func (m ProductCategoryModel) Delete(id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result := m.DB.WithContext(ctx).Delete(&ProductCategory{}, id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected < 1 {
		return ErrRecordNotFound
	}

	return nil
}

// AppendVariationValues locks the category row, appends the new values to the
// declared variation type and saves it in one transaction.
func (m ProductCategoryModel) AppendVariationValues(id int64, name string, values []string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var added []string

	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var productCategory ProductCategory

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&productCategory, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		added = productCategory.AppendValues(name, values)
		if len(added) == 0 {
			return nil
		}

		return tx.Model(&productCategory).Update("variation_types", productCategory.VariationTypes).Error
	})
	if err != nil {
		return nil, err
	}

	return added, nil
}

// ====================================================================================
// Business Functions
// ====================================================================================

func (m ProductCategoryModel) GetAPI() ([]*ProductCategory, error) {
	var productCategories []*ProductCategory

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.DB.WithContext(ctx).Where("is_active = ?", true).Order("order_number").Find(&productCategories).Error
	if err != nil {
		return nil, err
	}

	return productCategories, nil
}
