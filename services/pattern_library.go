package services

import (
	"math"
	"time"

	"flyer-studio/models"
)

// patternLibrary is the confidence-weighted store of learned design
// choices. It is not safe for concurrent use; the LearningEngine owns it
// and guards every access with its mutex.
type patternLibrary struct {
	styles map[string]models.StylePatterns
}

func newPatternLibrary() *patternLibrary {
	return &patternLibrary{styles: make(map[string]models.StylePatterns)}
}

// observe merges one observation: a new value is inserted at the initial
// confidence, a repeated one gains usage and confidence up to the cap.
// Confidence never decreases.
func (l *patternLibrary) observe(style string, cat models.PatternCategory, value string, now time.Time) models.Pattern {
	cats, ok := l.styles[style]
	if !ok {
		cats = models.StylePatterns{}
		l.styles[style] = cats
	}

	patterns := cats[cat]
	for i := range patterns {
		if patterns[i].Value != value {
			continue
		}
		p := &patterns[i]
		p.UsageCount++
		p.Confidence = math.Min(models.MaxConfidence, round2(p.Confidence+models.ConfidenceStep))
		p.UpdatedAt = now
		return *p
	}

	p := models.Pattern{
		Value:      value,
		Confidence: models.InitialConfidence,
		UsageCount: 1,
		LearnedAt:  now,
		UpdatedAt:  now,
		Source:     models.SourceLearned,
	}
	cats[cat] = append(patterns, p)
	return p
}

// restore merges patterns from a snapshot, keeping the higher confidence
// and usage for values that already exist so restoring never lowers a
// confidence.
func (l *patternLibrary) restore(styles map[string]models.StylePatterns) {
	for style, cats := range styles {
		for cat, patterns := range cats {
			for _, in := range patterns {
				in.Confidence = clampConfidence(in.Confidence)
				l.upsert(style, cat, in)
			}
		}
	}
}

func (l *patternLibrary) upsert(style string, cat models.PatternCategory, in models.Pattern) {
	cats, ok := l.styles[style]
	if !ok {
		cats = models.StylePatterns{}
		l.styles[style] = cats
	}
	for i := range cats[cat] {
		p := &cats[cat][i]
		if p.Value != in.Value {
			continue
		}
		if in.Confidence > p.Confidence {
			p.Confidence = in.Confidence
		}
		if in.UsageCount > p.UsageCount {
			p.UsageCount = in.UsageCount
		}
		if in.UpdatedAt.After(p.UpdatedAt) {
			p.UpdatedAt = in.UpdatedAt
		}
		return
	}
	cats[cat] = append(cats[cat], in)
}

func (l *patternLibrary) get(style string, cat models.PatternCategory) []models.Pattern {
	return append([]models.Pattern(nil), l.styles[style][cat]...)
}

func (l *patternLibrary) count() int {
	n := 0
	for _, cats := range l.styles {
		for _, ps := range cats {
			n += len(ps)
		}
	}
	return n
}

// snapshot returns a deep copy of the library.
func (l *patternLibrary) snapshot() map[string]models.StylePatterns {
	out := make(map[string]models.StylePatterns, len(l.styles))
	for style, cats := range l.styles {
		cp := make(models.StylePatterns, len(cats))
		for cat, ps := range cats {
			cp[cat] = append([]models.Pattern(nil), ps...)
		}
		out[style] = cp
	}
	return out
}

func clampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > models.MaxConfidence:
		return models.MaxConfidence
	default:
		return c
	}
}

// seedConfidence is the confidence of the proven defaults the library
// starts from.
const seedConfidence = 0.8

// DefaultSeeds derives the initial pattern library from the catalog: each
// style's accent and primary colors, its grid system and heading font are
// treated as proven choices.
func DefaultSeeds(catalog *StyleCatalog, now time.Time) map[string]models.StylePatterns {
	seeds := make(map[string]models.StylePatterns)
	if catalog == nil {
		return seeds
	}

	seed := func(value string) models.Pattern {
		return models.Pattern{
			Value:      value,
			Confidence: seedConfidence,
			UsageCount: 1,
			LearnedAt:  now,
			UpdatedAt:  now,
			Source:     models.SourceSeed,
		}
	}

	for _, ds := range catalog.List() {
		cats := models.StylePatterns{}
		for _, v := range []string{ds.Colors.Accent, ds.Colors.Primary} {
			if c, ok := parseColor(v); ok {
				cats[models.CategoryColorUsage] = append(cats[models.CategoryColorUsage], seed(c.Hex()))
			}
		}
		grid := AnalyzeLayout(layoutFlags(ds.Layout), nil).Grid
		cats[models.CategoryLayoutStructure] = []models.Pattern{seed(grid)}
		if ds.Typography.HeadingFont != "" {
			cats[models.CategoryTypography] = []models.Pattern{seed(normaliseText(ds.Typography.HeadingFont))}
		}
		seeds[ds.ID] = cats
	}
	return seeds
}
