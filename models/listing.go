package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlyerKind selects the flyer template variant.
type FlyerKind string

const (
	FlyerListing   FlyerKind = "listing"
	FlyerOpenHouse FlyerKind = "open-house"
)

// IsValid reports whether k is a known flyer kind. The empty kind is valid and
// means FlyerListing.
func (k FlyerKind) IsValid() bool {
	switch k {
	case "", FlyerListing, FlyerOpenHouse:
		return true
	default:
		return false
	}
}

// Normalized returns k trimmed and lowercased.
func (k FlyerKind) Normalized() FlyerKind {
	return FlyerKind(strings.ToLower(strings.TrimSpace(string(k))))
}

// PriceChange is one entry of a listing's price history.
type PriceChange struct {
	Date  string `json:"date"`
	Price string `json:"price"`
}

// PropertyListing holds the property data supplied by the caller.
// Numeric-looking fields stay strings because they arrive as free text
// ("$850,000", "2.5", "1,850 sq ft"). Over JSON they may also be bare
// numbers, which keep their literal text.
type PropertyListing struct {
	Address       string   `json:"address"`
	PropertyType  string   `json:"propertyType"`
	Bedrooms      string   `json:"bedrooms"`
	Bathrooms     string   `json:"bathrooms"`
	SquareFeet    string   `json:"sqft"`
	Price         string   `json:"price"`
	Features      []string `json:"features"`
	Description   string   `json:"description"`
	OpenHouseDate string   `json:"openHouseDate,omitempty"`
	OpenHouseTime string   `json:"openHouseTime,omitempty"`

	// Market telemetry, usually absent at generation time.
	DaysOnMarket *int          `json:"daysOnMarket,omitempty"`
	PriceHistory []PriceChange `json:"priceHistory,omitempty"`
}

// UnmarshalJSON accepts numbers as well as strings for the numeric-looking
// fields.
func (l *PropertyListing) UnmarshalJSON(data []byte) error {
	type plain PropertyListing
	var aux struct {
		plain
		Bedrooms   flexText `json:"bedrooms"`
		Bathrooms  flexText `json:"bathrooms"`
		SquareFeet flexText `json:"sqft"`
		Price      flexText `json:"price"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*l = PropertyListing(aux.plain)
	l.Bedrooms = string(aux.Bedrooms)
	l.Bathrooms = string(aux.Bathrooms)
	l.SquareFeet = string(aux.SquareFeet)
	l.Price = string(aux.Price)
	return nil
}

// UnmarshalJSON accepts a numeric price.
func (c *PriceChange) UnmarshalJSON(data []byte) error {
	var aux struct {
		Date  string   `json:"date"`
		Price flexText `json:"price"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Date, c.Price = aux.Date, string(aux.Price)
	return nil
}

// flexText decodes a JSON string, number or boolean as text. Numbers keep
// their literal form: 850000 stays "850000", 2.5 stays "2.5".
type flexText string

func (f *flexText) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		*f = ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*f = flexText(s)
	case bytes.Equal(raw, []byte("true")) || bytes.Equal(raw, []byte("false")):
		*f = flexText(raw)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("expected text or number, got %s", raw)
		}
		*f = flexText(n.String())
	}
	return nil
}

// AgentProfile is the listing agent shown on the flyer.
type AgentProfile struct {
	Name    string `json:"name"`
	Agency  string `json:"agency"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// GenerationRequest is the input to a single flyer generation.
type GenerationRequest struct {
	RequestID string          `json:"requestId,omitempty"`
	Property  PropertyListing `json:"property"`
	Agent     AgentProfile    `json:"agent"`
	Style     string          `json:"style,omitempty"`
	Photos    []string        `json:"photos,omitempty"`
	Kind      FlyerKind       `json:"kind,omitempty"`
}
