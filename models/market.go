package models

import "time"

// MarketSnapshot is the point-in-time market classification of a listing.
// It is recomputed per request and never stored on its own.
type MarketSnapshot struct {
	Season            string    `json:"season"`
	MarketCondition   string    `json:"marketCondition"`
	PropertyTypeTrend string    `json:"propertyTypeTrend"`
	PriceRangeSegment string    `json:"priceRangeSegment"`
	LocationInsights  []string  `json:"locationInsights"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// SeasonalAdaptation biases palette, features and messaging by season.
type SeasonalAdaptation struct {
	Palette     string   `json:"palette"`
	AccentColor string   `json:"accentColor"`
	Features    []string `json:"features"`
	Messaging   string   `json:"messaging"`
}

// MarketEmphasis is what the copy should stress under a market condition.
type MarketEmphasis struct {
	Emphasis  string `json:"emphasis"`
	Messaging string `json:"messaging"`
}

// PropertyTypeAdaptation biases style choice and feature focus.
type PropertyTypeAdaptation struct {
	Class    string   `json:"class"`
	Style    string   `json:"style"`
	Features []string `json:"features"`
	Target   string   `json:"target"`
}

// PriceAdaptation carries price-range messaging.
type PriceAdaptation struct {
	Segment   string `json:"segment"`
	Messaging string `json:"messaging"`
}

// MarketAdaptations is everything the assembler consumes from market
// intelligence.
type MarketAdaptations struct {
	Snapshot     MarketSnapshot         `json:"snapshot"`
	Seasonal     SeasonalAdaptation     `json:"seasonal"`
	Market       MarketEmphasis         `json:"market"`
	PropertyType PropertyTypeAdaptation `json:"propertyType"`
	Price        PriceAdaptation        `json:"price"`
	Location     []string               `json:"location"`
	Confidence   float64                `json:"confidence"`
}

// HighConfidenceThreshold is the confidence at which adaptations may
// override a design system's accent color.
const HighConfidenceThreshold = 0.8

// HighConfidence reports whether the adaptations are trusted enough to
// override design-system choices.
func (a *MarketAdaptations) HighConfidence() bool {
	return a != nil && a.Confidence >= HighConfidenceThreshold
}
