package data

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrEditConflict   = errors.New("edit conflict")
	ErrDuplicateSlug  = errors.New("duplicate slug")
	ErrDuplicateSKU   = errors.New("duplicate sku")
	ErrImageFormat    = errors.New("unsupported image format")
)

const DefaultMaxMemory = 32 << 20

type ProductStore interface {
	GetAll(p Pagination, f ProductFilter) ([]*Product, Metadata, error)
	Get(id int64) (*Product, error)
	GetBySlug(slug string) (*Product, error)
	Insert(product *Product) error
	Update(product *Product) error
	Delete(id int64) error
}

type ProductCategoryStore interface {
	GetAll(p Pagination) ([]*ProductCategory, Metadata, error)
	Get(id int64) (*ProductCategory, error)
	Insert(productCategory *ProductCategory) error
	Update(productCategory *ProductCategory) error
	Delete(id int64) error
	GetAPI() ([]*ProductCategory, error)
	AppendVariationValues(id int64, name string, values []string) ([]string, error)
}

type Models struct {
	Products          ProductStore
	ProductCategories ProductCategoryStore
}

func NewModels(db *gorm.DB) Models {
	return Models{
		Products:          ProductModel{DB: db},
		ProductCategories: ProductCategoryModel{DB: db},
	}
}

func NewMockModels() Models {
	return Models{
		Products:          NewMockProductModel(),
		ProductCategories: NewMockProductCategoryModel(),
	}
}

// uniqueViolation maps a postgres unique constraint failure onto the sentinel
// registered for that constraint.
func uniqueViolation(err error, constraints map[string]error) error {
	if err == nil {
		return nil
	}

	for constraint, sentinel := range constraints {
		if strings.Contains(err.Error(), `violates unique constraint "`+constraint+`"`) {
			return sentinel
		}
	}

	return err
}
