package inventory

// Recognition is what image recognition suggests for a photographed item.
type Recognition struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Brand       string   `json:"brand"`
	Model       string   `json:"model"`
	Condition   string   `json:"condition"`
	Tags        []string `json:"tags"`
	Confidence  float64  `json:"confidence"`
}

// PriceQuery describes the item whose price should be researched.
type PriceQuery struct {
	Name      string `json:"name"`
	Brand     string `json:"brand,omitempty"`
	Model     string `json:"model,omitempty"`
	Condition string `json:"condition,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

// PriceSource is a web page the estimate was based on.
type PriceSource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// PriceEstimate is the result of price research.
type PriceEstimate struct {
	Currency string        `json:"currency"`
	Low      float64       `json:"low"`
	High     float64       `json:"high"`
	Estimate float64       `json:"estimate"`
	Summary  string        `json:"summary"`
	Sources  []PriceSource `json:"sources"`
}

// EnrichResult reports what an enrich run found and which fields it filled.
type EnrichResult struct {
	Item        *Item          `json:"item"`
	Recognition *Recognition   `json:"recognition,omitempty"`
	Price       *PriceEstimate `json:"price,omitempty"`
	Applied     []string       `json:"applied"`
}
