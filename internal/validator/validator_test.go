package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type imageInput struct {
	URL string `json:"url" validate:"required"`
}

type variationInput struct {
	SKU    string       `json:"sku" validate:"max=8"`
	Images []imageInput `json:"images" validate:"dive"`
}

type productInput struct {
	Name       string           `json:"name" validate:"required"`
	Status     string           `json:"status" validate:"omitempty,oneof=draft active"`
	Variations []variationInput `json:"variations" validate:"dive"`
}

func TestValidator_Check(t *testing.T) {
	v := New()

	v.Check(true, "name", "must be provided")
	assert.True(t, v.Valid())

	v.Check(false, "name", "must be provided")
	v.Check(false, "name", "must not be more than 500 bytes long")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"name": "must be provided"}, v.Errors)
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	v.Struct(productInput{
		Status: "deleted",
		Variations: []variationInput{
			{SKU: "OK", Images: []imageInput{{URL: "a.jpg"}, {}}},
			{SKU: "WAY-TOO-LONG"},
		},
	})

	assert.Equal(t, map[string]string{
		"name":                        "must be provided",
		"status":                      "must be one of draft, active",
		"variations[0].images[1].url": "must be provided",
		"variations[1].sku":           "must not be more than 8",
	}, v.Errors)
}

func TestValidator_StructAnonymous(t *testing.T) {
	var input struct {
		Variations []variationInput `json:"variations" validate:"dive"`
	}
	input.Variations = []variationInput{{Images: []imageInput{{}}}}

	v := New()
	v.Struct(input)

	assert.Equal(t, map[string]string{"variations[0].images[0].url": "must be provided"}, v.Errors)
}

func TestValidator_StructValid(t *testing.T) {
	v := New()

	v.Struct(productInput{Name: "Tee"})

	assert.True(t, v.Valid())
}

func TestHelpers(t *testing.T) {
	assert.True(t, In("active", "draft", "active"))
	assert.False(t, In("gone", "draft", "active"))
	assert.True(t, Matches("linen-shirt", SlugRX))
	assert.False(t, Matches("Linen Shirt", SlugRX))
	assert.True(t, Unique([]string{"a", "b"}))
	assert.False(t, Unique([]string{"a", "a"}))
}
