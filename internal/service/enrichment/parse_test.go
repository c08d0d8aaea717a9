package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"belongings/internal/domain"
)

func TestParseRecognition(t *testing.T) {
	reply := "Here is what I see:\n```json\n" + `{
		"name": "Espresso machine",
		"description": "Stainless steel home espresso machine.",
		"category": "Appliances",
		"brand": "Breville",
		"model": "Bambino Plus",
		"condition": "Like New",
		"tags": ["Coffee", " kitchen ", ""],
		"confidence": 1.4
	}` + "\n```"

	rec, err := parseRecognition(reply)
	require.NoError(t, err)
	assert.Equal(t, "Espresso machine", rec.Name)
	assert.Equal(t, "Breville", rec.Brand)
	assert.Equal(t, "like_new", rec.Condition)
	assert.Equal(t, []string{"coffee", "kitchen"}, rec.Tags)
	assert.Equal(t, 1.0, rec.Confidence)
}

func TestParseRecognitionFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no json", "I cannot tell what this is."},
		{"broken json", `{"name": "Lamp",`},
		{"missing name", `{"category": "Furniture"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRecognition(tt.reply)
			assert.ErrorIs(t, err, domain.ErrUpstream)
		})
	}
}

func TestParsePriceEstimate(t *testing.T) {
	est, err := parsePriceEstimate(`{"currency":"eur","low":120.456,"high":80,"estimate":0,"summary":"Used units sell well."}`, "USD")
	require.NoError(t, err)
	assert.Equal(t, "EUR", est.Currency)
	assert.Equal(t, 80.0, est.Low)
	assert.Equal(t, 120.46, est.High)
	assert.Equal(t, 100.23, est.Estimate)
	assert.Empty(t, est.Sources)

	est, err = parsePriceEstimate(`{"currency":"dollars","estimate":45}`, "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD", est.Currency)

	_, err = parsePriceEstimate(`{"currency":"USD","summary":"unknown"}`, "USD")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestNormalizeCondition(t *testing.T) {
	assert.Equal(t, "like_new", normalizeCondition("like-new"))
	assert.Equal(t, "good", normalizeCondition(" GOOD "))
	assert.Equal(t, "", normalizeCondition("mint"))
}
