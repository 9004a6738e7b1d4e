package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "Payment is due.", []string{"payment", "is", "due"}},
		{"hyphen kept inside word", "A non-refundable deposit", []string{"a", "non-refundable", "deposit"}},
		{"edge hyphens trimmed", "--term-- of", []string{"term", "of"}},
		{"apostrophe splits", "the party's rights", []string{"the", "party", "s", "rights"}},
		{"digits", "5G update", []string{"5g", "update"}},
		{"punctuation only", "... ; !", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}

func TestRuleSegmenter(t *testing.T) {
	got, err := RuleSegmenter{}.Sentences("Payment is due.\nIn 1.5 days. Invoice  monthly")
	require.NoError(t, err)
	assert.Equal(t, []string{"Payment is due.", "In 1.5 days.", "Invoice monthly"}, got)
}

func TestPunktSegmenter(t *testing.T) {
	seg, err := NewPunktSegmenter()
	require.NoError(t, err)

	got, err := seg.Sentences("Payment is due in 30 days. No related term here. Invoice must be sent monthly.")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Payment is due in 30 days.",
		"No related term here.",
		"Invoice must be sent monthly.",
	}, got)

	empty, err := seg.Sentences("   \n ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDictLemmatizer(t *testing.T) {
	lem, err := NewDictLemmatizer()
	require.NoError(t, err)

	assert.Equal(t, "return", lem.Lemma("returns"))
	assert.Equal(t, "return", lem.Lemma("Returns"))
	assert.Equal(t, "invoice", lem.Lemma("invoices"))
	assert.Equal(t, "xqzzyplk", lem.Lemma("XQZZYPLK"))

	got, err := lem.Lemmas("Non-refundable invoices")
	require.NoError(t, err)
	assert.Equal(t, []string{"non-refundable", "invoice"}, got)
}

func TestDefault(t *testing.T) {
	seg, lem, err := Default()
	require.NoError(t, err)
	require.NotNil(t, seg)
	require.NotNil(t, lem)

	seg2, lem2, _ := Default()
	assert.Same(t, lem, lem2)
	assert.Equal(t, seg, seg2)
}
