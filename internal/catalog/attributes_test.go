package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeSet_Color(t *testing.T) {
	tests := []struct {
		name      string
		attrs     AttributeSet
		wantColor string
		wantOK    bool
	}{
		{"lower case name", AttributeSet{{"color", "Red"}}, "Red", true},
		{"mixed case name", AttributeSet{{"Size", "M"}, {"COLOR", " Blue "}}, "Blue", true},
		{"no color", AttributeSet{{"size", "M"}}, "", false},
		{"empty set", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color, ok := tt.attrs.Color()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantColor, color)
		})
	}
}

func TestAttributeSet_Key(t *testing.T) {
	a := AttributeSet{{"Color", "Red"}, {"Size", "M"}}
	b := AttributeSet{{"size", "m"}, {"color", "red"}}

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "color:red|size:m", a.Key())
	assert.NotEqual(t, a.Key(), AttributeSet{{"color", "red"}, {"size", "L"}}.Key())
	assert.Equal(t, "", AttributeSet(nil).Key())
}

func TestAttributeSet_GroupKey(t *testing.T) {
	red := AttributeSet{{"color", "Red"}, {"size", "S"}, {"Material", "Cotton"}}
	blue := AttributeSet{{"material", "cotton"}, {"Color", "Blue"}, {"Size", "s"}}

	assert.Equal(t, red.GroupKey(), blue.GroupKey())
	assert.Equal(t, "material:cotton|size:s", red.GroupKey())
	assert.Equal(t, "", AttributeSet{{"color", "Red"}}.GroupKey())
}

func TestAttributeSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		attrs   AttributeSet
		wantErr error
	}{
		{"valid", AttributeSet{{"color", "Red"}, {"size", "M"}}, nil},
		{"empty", nil, nil},
		{"duplicate name", AttributeSet{{"size", "M"}, {"Size", "L"}}, ErrDuplicateAttribute},
		{"two colors", AttributeSet{{"color", "Red"}, {"Color", "Blue"}}, ErrMultipleColorValues},
		{"blank name", AttributeSet{{" ", "Red"}}, ErrMissingField},
		{"blank value", AttributeSet{{"size", ""}}, ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.attrs.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "attributes", ve.Key())
		})
	}
}
