package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		answer Answer
		want   string
	}{
		{"nil", nil, ""},
		{"text", TextAnswer{Value: "Acme Corp"}, "Acme Corp"},
		{"single choice", ChoiceAnswer{Value: "Retail"}, "Retail"},
		{"multi choice", MultiChoiceAnswer{Values: []string{"Email", "Other: Fax"}}, "Email, Other: Fax"},
		{"ranking", RankingAnswer{Items: []string{"B", "A", "C"}}, "1. B, 2. A, 3. C"},
		{"multi field", FieldsAnswer{Values: map[string]string{"phone": "123", "email": "a@b.c"}}, `{"email":"a@b.c","phone":"123"}`},
		{"scale", ScaleAnswer{Values: map[string]float64{"speed": 7, "price": 2.5}}, `{"price":2.5,"speed":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStored(t *testing.T) {
	assert.Equal(t, []string{"B", "A"}, ParseStored(InputRanking, "1. B, 2. A"))
	assert.Equal(t, []string{"Email", "Other: Fax"}, ParseStored(InputMultiChoice, "Email, Other: Fax"))
	assert.Equal(t, map[string]interface{}{"speed": float64(7)}, ParseStored(InputScale, `{"speed":7}`))

	// unparseable text is returned untouched
	assert.Equal(t, "not json", ParseStored(InputMultiField, "not json"))
	assert.Equal(t, "B, A", ParseStored(InputRanking, "B, A"))
	assert.Equal(t, "free text", ParseStored(InputText, "free text"))
}

func TestFormatForDisplay(t *testing.T) {
	assert.Equal(t, "No answer provided", FormatForDisplay(InputText, ""))
	assert.Equal(t, "email: a@b.c | phone: 123", FormatForDisplay(InputMultiField, `{"phone":"123","email":"a@b.c"}`))
	assert.Equal(t, "1. B, 2. A", FormatForDisplay(InputRanking, "1. B, 2. A"))
}
