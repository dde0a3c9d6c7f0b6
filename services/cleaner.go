package services

import (
	"strings"
	"unicode"

	"flyer-studio/models"
	"flyer-studio/utils"
)

// Cleaner normalises incoming generation requests before assembly: it
// collapses whitespace, drops empty features and de-duplicates photo refs.
// It never rejects a request; missing data is handled by placeholders.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean returns a normalised copy of req. The input is not modified.
func (c *Cleaner) Clean(req *models.GenerationRequest) *models.GenerationRequest {
	if req == nil {
		return nil
	}

	out := *req
	out.Style = normaliseStyleID(req.Style)
	out.Kind = req.Kind.Normalized()

	p := req.Property
	p.Address = normaliseText(p.Address)
	p.PropertyType = normaliseText(p.PropertyType)
	p.Bedrooms = normaliseText(p.Bedrooms)
	p.Bathrooms = normaliseText(p.Bathrooms)
	p.SquareFeet = normaliseText(p.SquareFeet)
	p.Price = normaliseText(p.Price)
	p.Description = normaliseText(p.Description)
	p.OpenHouseDate = normaliseText(p.OpenHouseDate)
	p.OpenHouseTime = normaliseText(p.OpenHouseTime)
	p.Features = c.cleanFeatures(req.Property.Features)
	out.Property = p

	a := req.Agent
	a.Name = normaliseText(a.Name)
	a.Agency = normaliseText(a.Agency)
	a.Phone = normaliseText(a.Phone)
	a.Email = strings.ToLower(normaliseText(a.Email))
	a.Website = normaliseText(a.Website)
	out.Agent = a

	out.Photos = c.cleanPhotos(req.Photos)
	return &out
}

func (c *Cleaner) cleanFeatures(features []string) []string {
	result := make([]string, 0, len(features))
	for _, f := range features {
		f = normaliseText(f)
		if f == "" {
			c.logger.Debug("[cleaner] Dropping empty feature")
			continue
		}
		result = append(result, f)
	}
	return result
}

func (c *Cleaner) cleanPhotos(photos []string) []string {
	seen := make(map[string]struct{}, len(photos))
	result := make([]string, 0, len(photos))

	for _, ref := range photos {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			c.logger.Warn("[cleaner] Dropping empty photo reference")
			continue
		}
		if _, dup := seen[ref]; dup {
			c.logger.Debug("[cleaner] Duplicate photo skipped: %s", ref)
			continue
		}
		seen[ref] = struct{}{}
		result = append(result, ref)
	}

	if len(photos) != len(result) {
		c.logger.Info("[cleaner] Cleaned photos %d → %d (dropped %d)",
			len(photos), len(result), len(photos)-len(result))
	}
	return result
}

func normaliseStyleID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
