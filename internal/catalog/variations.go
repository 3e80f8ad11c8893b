package catalog

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Variation is one purchasable configuration of a product. Color is derived
// from Attributes and is never set on its own.
type Variation struct {
	ID           string           `json:"id"`
	SKU          string           `json:"sku"`
	Price        decimal.Decimal  `json:"price"`
	ComparePrice *decimal.Decimal `json:"compare_price,omitempty"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	Stock        int              `json:"stock"`
	Attributes   AttributeSet     `json:"attributes"`
	Color        string           `json:"color,omitempty"`
	Status       Status           `json:"status"`
	IsMain       bool             `json:"is_main"`
	IsGroupMain  bool             `json:"is_group_main"`
}

func (v Variation) clone() Variation {
	v.Attributes = v.Attributes.clone()
	return v
}

// VariationPatch carries the fields an editor submitted for one variation. Nil
// fields are left untouched when the patch is merged into an existing record.
type VariationPatch struct {
	ID           string           `json:"id,omitempty"`
	SKU          *string          `json:"sku,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	ComparePrice *decimal.Decimal `json:"compare_price,omitempty"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	Stock        *int             `json:"stock,omitempty"`
	Attributes   AttributeSet     `json:"attributes,omitempty"`
	Status       *Status          `json:"status,omitempty"`
	IsMain       *bool            `json:"is_main,omitempty"`
	IsGroupMain  *bool            `json:"is_group_main,omitempty"`
}

func (p VariationPatch) validate(index int, isNew bool) error {
	if isNew && p.Price == nil {
		return fieldError(index, "price", ErrMissingField, "must be provided")
	}

	amounts := []struct {
		field  string
		amount *decimal.Decimal
	}{
		{"price", p.Price},
		{"compare_price", p.ComparePrice},
		{"cost", p.Cost},
	}

	for _, a := range amounts {
		if a.amount != nil && a.amount.IsNegative() {
			return fieldError(index, a.field, ErrInvalidValue, "must not be negative")
		}
	}

	if p.Stock != nil && *p.Stock < 0 {
		return fieldError(index, "stock", ErrInvalidValue, "must not be negative")
	}

	if p.Status != nil && !p.Status.valid() {
		return fieldError(index, "status", ErrInvalidValue, "must be active or inactive")
	}

	if err := p.Attributes.Validate(); err != nil {
		return at(index, err)
	}

	return nil
}

// apply merges the non-nil fields of p into v and resynchronises the derived
// color and the generated sku.
func (p VariationPatch) apply(v *Variation) {
	if p.SKU != nil {
		v.SKU = strings.TrimSpace(*p.SKU)
	}
	if p.Price != nil {
		v.Price = *p.Price
	}
	if p.ComparePrice != nil {
		amount := *p.ComparePrice
		v.ComparePrice = &amount
	}
	if p.Cost != nil {
		amount := *p.Cost
		v.Cost = &amount
	}
	if p.Stock != nil {
		v.Stock = *p.Stock
	}
	if p.Attributes != nil {
		v.Attributes = p.Attributes.clone()
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.IsMain != nil {
		v.IsMain = *p.IsMain
	}
	if p.IsGroupMain != nil {
		v.IsGroupMain = *p.IsGroupMain
	}

	v.Color, _ = v.Attributes.Color()

	if v.SKU == "" {
		v.SKU = generateSKU(v.ID)
	}
}

func generateSKU(id string) string {
	hex := strings.ReplaceAll(id, "-", "")
	if len(hex) > 8 {
		hex = hex[:8]
	}
	return "VAR-" + strings.ToUpper(hex)
}

// Changes counts what a store mutation did.
type Changes struct {
	Created int
	Updated int
	Deleted int
}

// VariationStore owns the variations of one product. Mutations are applied to
// a working copy and only committed once the whole batch has been accepted.
type VariationStore struct {
	variations []Variation
	newID      func() string
}

func NewVariationStore(variations []Variation) *VariationStore {
	s := &VariationStore{
		variations: make([]Variation, 0, len(variations)),
		newID:      uuid.NewString,
	}

	for _, v := range variations {
		v = v.clone()
		v.Color, _ = v.Attributes.Color()
		s.variations = append(s.variations, v)
	}

	return s
}

func (s *VariationStore) snapshot() []Variation {
	out := make([]Variation, len(s.variations))
	for i, v := range s.variations {
		out[i] = v.clone()
	}
	return out
}

func (s *VariationStore) create(p VariationPatch) Variation {
	v := Variation{ID: s.newID(), Status: StatusActive}
	p.apply(&v)
	return v
}

// ReplaceAll swaps the stored variations for the submitted list. Submitted ids
// that name a stored variation are kept; any other entry gets a fresh id.
func (s *VariationStore) ReplaceAll(patches []VariationPatch) error {
	_, err := s.replaceAll(patches)
	return err
}

func (s *VariationStore) replaceAll(patches []VariationPatch) (Changes, error) {
	for i, p := range patches {
		if err := p.validate(i, true); err != nil {
			return Changes{}, err
		}
	}

	var changes Changes

	kept := make(map[string]bool, len(patches))
	work := make([]Variation, 0, len(patches))

	for _, p := range patches {
		v := s.create(p)

		if p.ID != "" && !kept[p.ID] && s.index(p.ID) >= 0 {
			v.ID = p.ID
			kept[p.ID] = true
			changes.Updated++

			if p.SKU == nil || strings.TrimSpace(*p.SKU) == "" {
				v.SKU = generateSKU(v.ID)
			}
		} else {
			changes.Created++
		}

		work = append(work, v)
	}

	changes.Deleted = len(s.variations) - len(kept)

	repair(work)
	s.variations = work

	return changes, nil
}

// MergeIncoming removes the deleted ids, then merges each patch into the
// variation with the same id, else into the variation with the same attribute
// key, else appends it as a new variation.
func (s *VariationStore) MergeIncoming(patches []VariationPatch, deletedIDs []string) error {
	_, err := s.merge(patches, deletedIDs)
	return err
}

func (s *VariationStore) merge(patches []VariationPatch, deletedIDs []string) (Changes, error) {
	var changes Changes

	work := s.snapshot()

	for _, id := range deletedIDs {
		if i := indexOf(work, id); i >= 0 {
			work = slices.Delete(work, i, i+1)
			changes.Deleted++
		}
	}

	for i, p := range patches {
		j := -1
		if p.ID != "" {
			j = indexOf(work, p.ID)
		}
		if j < 0 {
			key := p.Attributes.Key()
			j = slices.IndexFunc(work, func(v Variation) bool {
				return v.Attributes.Key() == key
			})
		}

		if err := p.validate(i, j < 0); err != nil {
			return Changes{}, err
		}

		if j >= 0 {
			p.apply(&work[j])
			changes.Updated++
			continue
		}

		work = append(work, s.create(p))
		changes.Created++
	}

	repair(work)
	s.variations = work

	return changes, nil
}

// Update merges p into the variation with the given id. Setting is_main or
// is_group_main to true moves that flag onto this variation.
func (s *VariationStore) Update(id string, p VariationPatch) error {
	i := s.index(id)
	if i < 0 {
		return ErrVariationNotFound
	}

	if err := p.validate(-1, false); err != nil {
		return err
	}

	work := s.snapshot()
	p.apply(&work[i])

	if p.IsMain != nil && *p.IsMain {
		for j := range work {
			work[j].IsMain = j == i
		}
	}

	if p.IsGroupMain != nil && *p.IsGroupMain {
		group := work[i].Attributes.GroupKey()
		for j := range work {
			if work[j].Attributes.GroupKey() == group {
				work[j].IsGroupMain = j == i
			}
		}
	}

	repair(work)
	s.variations = work

	return nil
}

type StockOperation string

const (
	StockSet      StockOperation = "set"
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"
)

// AdjustStock sets, adds to or subtracts from the stock of one variation and
// returns the new level. Stock never drops below zero.
func (s *VariationStore) AdjustStock(id string, op StockOperation, amount int) (int, error) {
	i := s.index(id)
	if i < 0 {
		return 0, ErrVariationNotFound
	}

	if amount < 0 {
		return 0, fieldError(-1, "stock", ErrInvalidValue, "must not be negative")
	}

	work := s.snapshot()
	current := work[i].Stock

	switch op {
	case StockSet, "":
		work[i].Stock = amount
	case StockAdd:
		if amount > math.MaxInt-current {
			return 0, fieldError(-1, "stock", ErrInvalidValue, "is too large")
		}
		work[i].Stock = current + amount
	case StockSubtract:
		if amount > current {
			return 0, fieldError(-1, "stock", ErrInvalidValue, fmt.Sprintf("must not exceed the current stock of %d", current))
		}
		work[i].Stock = current - amount
	default:
		return 0, fieldError(-1, "operation", ErrInvalidValue, "must be set, add or subtract")
	}

	repair(work)
	s.variations = work

	return work[i].Stock, nil
}

// Remove deletes the variation with the given id and reports whether it
// existed.
func (s *VariationStore) Remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}

	work := slices.Delete(s.snapshot(), i, i+1)
	repair(work)
	s.variations = work

	return true
}

func (s *VariationStore) Get(id string) (Variation, bool) {
	i := s.index(id)
	if i < 0 {
		return Variation{}, false
	}
	return s.variations[i].clone(), true
}

func (s *VariationStore) List() []Variation {
	return s.snapshot()
}

func (s *VariationStore) Len() int {
	return len(s.variations)
}

func (s *VariationStore) index(id string) int {
	return indexOf(s.variations, id)
}

func indexOf(variations []Variation, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(variations, func(v Variation) bool {
		return v.ID == id
	})
}

// repair leaves exactly one main variation in a non-empty list and exactly
// one group main in every group of variations sharing their non-color
// attributes. The first flagged variation wins; when none is flagged the
// first one is.
func repair(variations []Variation) {
	all := make([]int, len(variations))
	for i := range variations {
		all[i] = i
	}
	keepFirst(variations, all, func(v *Variation) *bool { return &v.IsMain })

	var order []string
	groups := make(map[string][]int)

	for i, v := range variations {
		key := v.Attributes.GroupKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	for _, key := range order {
		keepFirst(variations, groups[key], func(v *Variation) *bool { return &v.IsGroupMain })
	}
}

func keepFirst(variations []Variation, members []int, flag func(*Variation) *bool) {
	found := false

	for _, i := range members {
		f := flag(&variations[i])
		if *f {
			if found {
				*f = false
			}
			found = true
		}
	}

	if !found && len(members) > 0 {
		*flag(&variations[members[0]]) = true
	}
}
