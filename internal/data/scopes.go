package data

import (
	"gorm.io/gorm"
)

func Paginate(p Pagination) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.offset()).Limit(p.limit())
	}
}

func FilterProducts(f ProductFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.CategoryID > 0 {
			db = db.Where("product_category_id = ?", f.CategoryID)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Name != "" {
			db = db.Where("name ILIKE ?", "%"+f.Name+"%")
		}
		if f.Featured != nil {
			db = db.Where("featured = ?", *f.Featured)
		}
		if f.Bestseller != nil {
			db = db.Where("bestseller = ?", *f.Bestseller)
		}
		return db
	}
}
