package catalog

import (
	"fmt"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ptr[T any](v T) *T {
	return &v
}

func attrs(pairs ...string) AttributeSet {
	out := make(AttributeSet, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Attribute{Name: pairs[i], Value: pairs[i+1]})
	}
	return out
}

func assertMainInvariants(t *testing.T, variations []Variation) {
	t.Helper()

	if len(variations) == 0 {
		return
	}

	mains := 0
	groups := map[string]int{}
	for _, v := range variations {
		if v.IsMain {
			mains++
		}
		key := v.Attributes.GroupKey()
		if _, ok := groups[key]; !ok {
			groups[key] = 0
		}
		if v.IsGroupMain {
			groups[key]++
		}
	}

	assert.Equal(t, 1, mains, "main variations")
	for key, n := range groups {
		assert.Equal(t, 1, n, fmt.Sprintf("group mains in %q", key))
	}
}

func TestVariationStore_ReplaceAll(t *testing.T) {
	t.Run("assigns ids, skus and colors", func(t *testing.T) {
		s := NewVariationStore(nil)

		err := s.ReplaceAll([]VariationPatch{
			{Price: price("10"), Stock: ptr(5), Attributes: attrs("Color", "Red", "size", "S")},
			{SKU: ptr("A-B-S"), Price: price("12"), Attributes: attrs("size", "S")},
		})
		require.NoError(t, err)

		list := s.List()
		require.Len(t, list, 2)

		assert.NotEmpty(t, list[0].ID)
		assert.Regexp(t, `^VAR-[0-9A-F]{8}$`, list[0].SKU)
		assert.Equal(t, "Red", list[0].Color)
		assert.Equal(t, StatusActive, list[0].Status)
		assert.Equal(t, 5, list[0].Stock)

		assert.Equal(t, "A-B-S", list[1].SKU)
		assert.Empty(t, list[1].Color)

		assertMainInvariants(t, list)
	})

	t.Run("keeps ids of stored variations only", func(t *testing.T) {
		s := NewVariationStore([]Variation{{ID: "v1", SKU: "OLD", Price: decimal.NewFromInt(1)}})

		err := s.ReplaceAll([]VariationPatch{
			{ID: "v1", Price: price("2")},
			{ID: "made-up", Price: price("3")},
		})
		require.NoError(t, err)

		list := s.List()
		require.Len(t, list, 2)
		assert.Equal(t, "v1", list[0].ID)
		assert.Equal(t, "VAR-V1", list[0].SKU)
		assert.NotEqual(t, "made-up", list[1].ID)
	})

	t.Run("rejects the whole batch", func(t *testing.T) {
		s := NewVariationStore([]Variation{{ID: "v1", Price: decimal.NewFromInt(1)}})
		before := s.List()

		err := s.ReplaceAll([]VariationPatch{
			{Price: price("1"), Attributes: attrs("color", "Red")},
			{Price: price("1"), Attributes: attrs("color", "Red", "Color", "Blue")},
		})

		require.ErrorIs(t, err, ErrMultipleColorValues)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, 1, ve.Index)
		assert.Equal(t, "variations[1].attributes", ve.Key())
		assert.Equal(t, before, s.List())
	})

	t.Run("requires a price", func(t *testing.T) {
		s := NewVariationStore(nil)

		err := s.ReplaceAll([]VariationPatch{{Stock: ptr(1)}})

		require.ErrorIs(t, err, ErrMissingField)
		assert.Equal(t, 0, s.Len())
	})
}

func TestVariationPatch_Validate(t *testing.T) {
	tests := []struct {
		name    string
		patch   VariationPatch
		field   string
		wantErr error
	}{
		{"negative price", VariationPatch{Price: price("-1")}, "price", ErrInvalidValue},
		{"negative compare price", VariationPatch{Price: price("1"), ComparePrice: price("-0.01")}, "compare_price", ErrInvalidValue},
		{"negative cost", VariationPatch{Price: price("1"), Cost: price("-5")}, "cost", ErrInvalidValue},
		{"negative stock", VariationPatch{Price: price("1"), Stock: ptr(-1)}, "stock", ErrInvalidValue},
		{"unknown status", VariationPatch{Price: price("1"), Status: ptr(Status("deleted"))}, "status", ErrInvalidValue},
		{"missing price", VariationPatch{}, "price", ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.validate(3, true)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, 3, ve.Index)
		})
	}

	assert.NoError(t, VariationPatch{Stock: ptr(0)}.validate(0, false))
}

func TestVariationStore_MergeIncoming(t *testing.T) {
	seed := func() *VariationStore {
		s := NewVariationStore(nil)
		require.NoError(t, s.ReplaceAll([]VariationPatch{
			{SKU: ptr("A-R-S"), Price: price("10"), Stock: ptr(5), Attributes: attrs("color", "Red", "size", "S")},
			{SKU: ptr("A-B-S"), Price: price("12"), Stock: ptr(3), Attributes: attrs("color", "Blue", "size", "S")},
		}))
		return s
	}

	t.Run("matches by key when the id is missing", func(t *testing.T) {
		s := seed()
		before := s.List()

		err := s.MergeIncoming([]VariationPatch{
			{Price: price("11"), Attributes: attrs("Size", "s", "Color", "red")},
		}, nil)
		require.NoError(t, err)

		list := s.List()
		require.Len(t, list, 2)
		assert.Equal(t, before[0].ID, list[0].ID)
		assert.True(t, decimal.NewFromInt(11).Equal(list[0].Price))
		assert.Equal(t, "A-R-S", list[0].SKU)
		assert.Equal(t, 5, list[0].Stock)
	})

	t.Run("matches by id before key", func(t *testing.T) {
		s := seed()
		blue := s.List()[1]

		err := s.MergeIncoming([]VariationPatch{
			{ID: blue.ID, Stock: ptr(9), Attributes: attrs("color", "Blue", "size", "M")},
		}, nil)
		require.NoError(t, err)

		got, ok := s.Get(blue.ID)
		require.True(t, ok)
		assert.Equal(t, 9, got.Stock)
		assert.Equal(t, "size:m", got.Attributes.GroupKey())
		assert.Equal(t, 2, s.Len())
	})

	t.Run("appends unmatched entries and deletes first", func(t *testing.T) {
		s := seed()
		red := s.List()[0]

		err := s.MergeIncoming([]VariationPatch{
			{Price: price("15"), Attributes: attrs("color", "Green", "size", "S")},
		}, []string{red.ID, "unknown"})
		require.NoError(t, err)

		list := s.List()
		require.Len(t, list, 2)
		assert.Equal(t, "Blue", list[0].Color)
		assert.Equal(t, "Green", list[1].Color)
		assert.True(t, list[0].IsMain)
		assertMainInvariants(t, list)
	})

	t.Run("new entries need a price", func(t *testing.T) {
		s := seed()
		before := s.List()

		err := s.MergeIncoming([]VariationPatch{
			{Stock: ptr(1), Attributes: attrs("color", "Red", "size", "S")},
			{Stock: ptr(1), Attributes: attrs("color", "Green")},
		}, []string{before[1].ID})

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, 1, ve.Index)
		assert.Equal(t, "price", ve.Field)
		assert.Equal(t, before, s.List())
	})

	t.Run("is idempotent", func(t *testing.T) {
		s := seed()
		batch := []VariationPatch{
			{Price: price("20"), Attributes: attrs("color", "Black", "size", "L")},
			{Price: price("21"), Attributes: attrs("size", "L", "color", "black")},
			{Price: price("11"), Attributes: attrs("color", "Red", "size", "S")},
		}

		require.NoError(t, s.MergeIncoming(batch, nil))
		once := s.List()

		require.NoError(t, s.MergeIncoming(batch, nil))

		assert.Equal(t, once, s.List())
		assert.Len(t, once, 3)
	})
}

func TestVariationStore_MainInvariants(t *testing.T) {
	s := NewVariationStore(nil)

	batches := [][]VariationPatch{
		{
			{Price: price("1"), IsMain: ptr(true), Attributes: attrs("color", "Red", "size", "S")},
			{Price: price("1"), IsMain: ptr(true), IsGroupMain: ptr(true), Attributes: attrs("color", "Blue", "size", "S")},
			{Price: price("1"), Attributes: attrs("color", "Red", "size", "M")},
		},
		{
			{Price: price("1"), IsGroupMain: ptr(true), Attributes: attrs("color", "Green", "size", "M")},
			{Price: price("1"), IsMain: ptr(false), Attributes: attrs("color", "Red", "size", "S")},
		},
		{
			{Price: price("1")},
			{Price: price("2")},
		},
	}

	for i, batch := range batches {
		require.NoError(t, s.MergeIncoming(batch, nil), fmt.Sprintf("merge %d", i))
		assertMainInvariants(t, s.List())

		require.NoError(t, s.ReplaceAll(batch), fmt.Sprintf("replace %d", i))
		assertMainInvariants(t, s.List())
	}
}

func TestVariationStore_Update(t *testing.T) {
	s := NewVariationStore(nil)
	require.NoError(t, s.ReplaceAll([]VariationPatch{
		{Price: price("10"), Attributes: attrs("color", "Red", "size", "S")},
		{Price: price("12"), Attributes: attrs("color", "Blue", "size", "S")},
	}))
	list := s.List()
	require.True(t, list[0].IsMain)
	require.True(t, list[0].IsGroupMain)

	t.Run("merges fields and resyncs color", func(t *testing.T) {
		err := s.Update(list[1].ID, VariationPatch{
			Stock:      ptr(7),
			Attributes: attrs("colour", "x", "color", "Navy", "size", "S"),
		})
		require.NoError(t, err)

		got, _ := s.Get(list[1].ID)
		assert.Equal(t, 7, got.Stock)
		assert.Equal(t, "Navy", got.Color)
		assert.True(t, decimal.NewFromInt(12).Equal(got.Price))
	})

	t.Run("moves the main flags", func(t *testing.T) {
		require.NoError(t, s.Update(list[1].ID, VariationPatch{IsMain: ptr(true)}))

		first, _ := s.Get(list[0].ID)
		second, _ := s.Get(list[1].ID)
		assert.False(t, first.IsMain)
		assert.True(t, second.IsMain)
		assertMainInvariants(t, s.List())
	})

	t.Run("moves the group main within the group", func(t *testing.T) {
		require.NoError(t, s.Update(list[1].ID, VariationPatch{
			IsGroupMain: ptr(true),
			Attributes:  attrs("color", "Navy", "size", "S"),
		}))

		first, _ := s.Get(list[0].ID)
		second, _ := s.Get(list[1].ID)
		assert.False(t, first.IsGroupMain)
		assert.True(t, second.IsGroupMain)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, s.Update("missing", VariationPatch{}), ErrVariationNotFound)
	})

	t.Run("invalid patch leaves the store untouched", func(t *testing.T) {
		before := s.List()

		err := s.Update(list[0].ID, VariationPatch{Stock: ptr(-3)})

		assert.ErrorIs(t, err, ErrInvalidValue)
		assert.Equal(t, before, s.List())
	})
}

func TestVariationStore_Remove(t *testing.T) {
	s := NewVariationStore(nil)
	require.NoError(t, s.ReplaceAll([]VariationPatch{
		{Price: price("10"), Attributes: attrs("color", "Red")},
		{Price: price("12"), Attributes: attrs("color", "Blue")},
	}))
	list := s.List()

	assert.True(t, s.Remove(list[0].ID))
	assert.False(t, s.Remove(list[0].ID))

	remaining := s.List()
	require.Len(t, remaining, 1)
	assert.True(t, remaining[0].IsMain)
	assert.True(t, remaining[0].IsGroupMain)

	_, ok := s.Get(list[0].ID)
	assert.False(t, ok)
}

func TestVariationStore_AdjustStock(t *testing.T) {
	tests := []struct {
		name      string
		op        StockOperation
		amount    int
		want      int
		wantField string
	}{
		{name: "set", op: StockSet, amount: 2, want: 2},
		{name: "default is set", op: "", amount: 9, want: 9},
		{name: "add", op: StockAdd, amount: 3, want: 8},
		{name: "subtract", op: StockSubtract, amount: 5, want: 0},
		{name: "subtract below zero", op: StockSubtract, amount: 6, wantField: "stock"},
		{name: "negative amount", op: StockAdd, amount: -1, wantField: "stock"},
		{name: "add overflows", op: StockAdd, amount: math.MaxInt, wantField: "stock"},
		{name: "unknown operation", op: "multiply", amount: 2, wantField: "operation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewVariationStore(nil)
			require.NoError(t, s.ReplaceAll([]VariationPatch{
				{Price: price("10"), Stock: ptr(5), Attributes: attrs("color", "Red")},
				{Price: price("12"), Stock: ptr(1), Attributes: attrs("color", "Blue")},
			}))
			before := s.List()
			id := before[0].ID

			got, err := s.AdjustStock(id, tt.op, tt.amount)

			if tt.wantField != "" {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantField, ve.Key())
				assert.Equal(t, before, s.List())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			v, ok := s.Get(id)
			require.True(t, ok)
			assert.Equal(t, tt.want, v.Stock)
			assertMainInvariants(t, s.List())
		})
	}

	t.Run("unknown variation", func(t *testing.T) {
		s := NewVariationStore(nil)

		_, err := s.AdjustStock("missing", StockSet, 1)
		assert.ErrorIs(t, err, ErrVariationNotFound)
	})
}
