package data

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockProductModel keeps products in memory and enforces the same unique and
// version rules as the postgres model.
type MockProductModel struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*Product
}

func NewMockProductModel() *MockProductModel {
	return &MockProductModel{nextID: 1, products: make(map[int64]*Product)}
}

func cloneProduct(p *Product) *Product {
	cp := *p
	cp.Variations = slices.Clone(p.Variations)
	cp.ColorImages = slices.Clone(p.ColorImages)
	cp.Specifications = slices.Clone(p.Specifications)
	if p.SKU != nil {
		sku := *p.SKU
		cp.SKU = &sku
	}
	return &cp
}

func (m *MockProductModel) conflicts(p *Product) error {
	for id, existing := range m.products {
		if id == p.ID {
			continue
		}
		if existing.Slug == p.Slug {
			return ErrDuplicateSlug
		}
		if p.SKU != nil && existing.SKU != nil && *existing.SKU == *p.SKU {
			return ErrDuplicateSKU
		}
	}
	return nil
}

func (m *MockProductModel) GetAll(p Pagination, f ProductFilter) ([]*Product, Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*Product
	for _, product := range m.products {
		if f.CategoryID > 0 && product.ProductCategoryID != f.CategoryID {
			continue
		}
		if f.Status != "" && product.Status != f.Status {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Featured != nil && product.Featured != *f.Featured {
			continue
		}
		if f.Bestseller != nil && product.Bestseller != *f.Bestseller {
			continue
		}
		matched = append(matched, cloneProduct(product))
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	metadata := calculateMetadata(len(matched), p.Page, p.PageSize)

	start := min(p.offset(), len(matched))
	end := min(start+p.limit(), len(matched))

	return matched[start:end], metadata, nil
}

func (m *MockProductModel) Get(id int64) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	return cloneProduct(product), nil
}

func (m *MockProductModel) GetBySlug(slug string) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, product := range m.products {
		if product.Slug == slug && product.Status == ProductActive {
			return cloneProduct(product), nil
		}
	}

	return nil, ErrRecordNotFound
}

func (m *MockProductModel) Insert(product *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product.ID = 0
	if err := m.conflicts(product); err != nil {
		return err
	}

	now := time.Now()
	product.ID = m.nextID
	product.Version = 1
	product.CreatedAt = now
	product.UpdatedAt = now
	m.nextID++

	m.products[product.ID] = cloneProduct(product)

	return nil
}

func (m *MockProductModel) Update(product *Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[product.ID]
	if !ok || existing.Version != product.Version {
		return ErrEditConflict
	}

	if err := m.conflicts(product); err != nil {
		return err
	}

	product.Version++
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()

	m.products[product.ID] = cloneProduct(product)

	return nil
}

func (m *MockProductModel) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrRecordNotFound
	}

	delete(m.products, id)

	return nil
}

type MockProductCategoryModel struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]*ProductCategory
}

func NewMockProductCategoryModel() *MockProductCategoryModel {
	return &MockProductCategoryModel{nextID: 1, categories: make(map[int64]*ProductCategory)}
}

func cloneCategory(c *ProductCategory) *ProductCategory {
	cp := *c
	cp.VariationTypes = make([]VariationType, len(c.VariationTypes))
	for i, vt := range c.VariationTypes {
		cp.VariationTypes[i] = VariationType{Name: vt.Name, Values: slices.Clone(vt.Values)}
	}
	return &cp
}

func (m *MockProductCategoryModel) sorted(keep func(*ProductCategory) bool) []*ProductCategory {
	var out []*ProductCategory
	for _, c := range m.categories {
		if keep(c) {
			out = append(out, cloneCategory(c))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderNumber != out[j].OrderNumber {
			return out[i].OrderNumber < out[j].OrderNumber
		}
		return out[i].ID < out[j].ID
	})

	return out
}

func (m *MockProductCategoryModel) GetAll(p Pagination) ([]*ProductCategory, Metadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.sorted(func(*ProductCategory) bool { return true })
	metadata := calculateMetadata(len(all), p.Page, p.PageSize)

	start := min(p.offset(), len(all))
	end := min(start+p.limit(), len(all))

	return all[start:end], metadata, nil
}

func (m *MockProductCategoryModel) Get(id int64) (*ProductCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.categories[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	return cloneCategory(c), nil
}

func (m *MockProductCategoryModel) slugTaken(c *ProductCategory) bool {
	for id, existing := range m.categories {
		if id != c.ID && existing.Slug == c.Slug {
			return true
		}
	}
	return false
}

func (m *MockProductCategoryModel) Insert(c *ProductCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.ID = 0
	if m.slugTaken(c) {
		return ErrDuplicateSlug
	}

	c.ID = m.nextID
	m.nextID++
	m.categories[c.ID] = cloneCategory(c)

	return nil
}

func (m *MockProductCategoryModel) Update(c *ProductCategory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[c.ID]; !ok {
		return ErrRecordNotFound
	}
	if m.slugTaken(c) {
		return ErrDuplicateSlug
	}

	m.categories[c.ID] = cloneCategory(c)

	return nil
}

func (m *MockProductCategoryModel) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return ErrRecordNotFound
	}

	delete(m.categories, id)

	return nil
}

func (m *MockProductCategoryModel) GetAPI() ([]*ProductCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.sorted(func(c *ProductCategory) bool { return c.IsActive }), nil
}

func (m *MockProductCategoryModel) AppendVariationValues(id int64, name string, values []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.categories[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	return c.AppendValues(name, values), nil
}
