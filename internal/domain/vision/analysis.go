package vision

// Analysis is a provider's guess at an image's product attributes.
// It is advisory: it never filters or re-ranks matches.
type Analysis struct {
	ProductType         string   `json:"product_type,omitempty"`
	Category            string   `json:"category,omitempty"`
	Colors              []string `json:"colors,omitempty"`
	Style               string   `json:"style,omitempty"`
	BrandVisible        string   `json:"brand_visible,omitempty"`
	KeyFeatures         []string `json:"key_features,omitempty"`
	Condition           string   `json:"condition,omitempty"`
	EstimatedPriceRange string   `json:"estimated_price_range,omitempty"`
}
