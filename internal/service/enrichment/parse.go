package enrichment

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"belongings/internal/domain"
	"belongings/internal/domain/models/inventory"
)

// extractJSON returns the outermost JSON object in model output, which may
// be wrapped in prose or a fenced code block.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: model reply contains no JSON object", domain.ErrUpstream)
	}
	raw := text[start : end+1]
	if !gjson.Valid(raw) {
		return "", fmt.Errorf("%w: model reply is not valid JSON", domain.ErrUpstream)
	}
	return raw, nil
}

func parseRecognition(text string) (*inventory.Recognition, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	res := gjson.Parse(raw)

	rec := &inventory.Recognition{
		Name:        strings.TrimSpace(res.Get("name").String()),
		Description: strings.TrimSpace(res.Get("description").String()),
		Category:    strings.TrimSpace(res.Get("category").String()),
		Brand:       strings.TrimSpace(res.Get("brand").String()),
		Model:       strings.TrimSpace(res.Get("model").String()),
		Condition:   normalizeCondition(res.Get("condition").String()),
		Tags:        []string{},
		Confidence:  clamp(res.Get("confidence").Float(), 0, 1),
	}
	for _, t := range res.Get("tags").Array() {
		if tag := strings.ToLower(strings.TrimSpace(t.String())); tag != "" {
			rec.Tags = append(rec.Tags, tag)
		}
	}
	if rec.Name == "" {
		return nil, fmt.Errorf("%w: recognition returned no item name", domain.ErrUpstream)
	}
	return rec, nil
}

func parsePriceEstimate(text, fallbackCurrency string) (*inventory.PriceEstimate, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	res := gjson.Parse(raw)

	est := &inventory.PriceEstimate{
		Currency: strings.ToUpper(strings.TrimSpace(res.Get("currency").String())),
		Low:      roundCents(res.Get("low").Float()),
		High:     roundCents(res.Get("high").Float()),
		Estimate: roundCents(res.Get("estimate").Float()),
		Summary:  strings.TrimSpace(res.Get("summary").String()),
		Sources:  []inventory.PriceSource{},
	}
	if len(est.Currency) != 3 {
		est.Currency = fallbackCurrency
	}
	if est.Low > est.High {
		est.Low, est.High = est.High, est.Low
	}
	if est.Estimate <= 0 && est.High > 0 {
		est.Estimate = roundCents((est.Low + est.High) / 2)
	}
	if est.Estimate <= 0 {
		return nil, fmt.Errorf("%w: price research returned no estimate", domain.ErrUpstream)
	}
	return est, nil
}

// normalizeCondition maps free-form model output onto the accepted values,
// returning "" when nothing matches.
func normalizeCondition(s string) string {
	c := strings.ToLower(strings.TrimSpace(s))
	c = strings.NewReplacer(" ", "_", "-", "_").Replace(c)
	for _, v := range inventory.Conditions {
		if c == v.(string) {
			return c
		}
	}
	return ""
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundCents(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Round(v*100) / 100
}
