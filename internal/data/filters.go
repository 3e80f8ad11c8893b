package data

import (
	"math"

	"github.com/kervinch/storefront-api/internal/validator"
)

type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) limit() int {
	switch {
	case p.PageSize > 100:
		return 100
	case p.PageSize <= 0:
		return 10
	}
	return p.PageSize
}

func (p Pagination) offset() int {
	page := p.Page
	if page <= 0 {
		page = 1
	}
	return (page - 1) * p.limit()
}

type Metadata struct {
	CurrentPage  int `json:"current_page,omitempty"`
	PageSize     int `json:"page_size,omitempty"`
	FirstPage    int `json:"first_page,omitempty"`
	LastPage     int `json:"last_page,omitempty"`
	TotalRecords int `json:"total_records,omitempty"`
}

func calculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords == 0 {
		return Metadata{}
	}

	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    1,
		LastPage:     int(math.Ceil(float64(totalRecords) / float64(pageSize))),
		TotalRecords: totalRecords,
	}
}

func ValidatePagination(v *validator.Validator, p Pagination) {
	v.Check(p.Page > 0, "page", "must be greater than zero")
	v.Check(p.Page < 10_000_000, "page", "must be a maximum of 10 million")
	v.Check(p.PageSize > 0, "page_size", "must be greater than zero")
	v.Check(p.PageSize <= 100, "page_size", "must be a maximum of 100")
}

// ProductFilter narrows product listings. Zero values match everything.
type ProductFilter struct {
	CategoryID int64
	Status     string
	Name       string
	Featured   *bool
	Bestseller *bool
}
