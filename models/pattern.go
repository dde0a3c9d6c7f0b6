package models

import "time"

// PatternCategory groups learned patterns.
type PatternCategory string

const (
	CategoryColorUsage      PatternCategory = "colorUsage"
	CategoryLayoutStructure PatternCategory = "layoutStructure"
	CategoryTypography      PatternCategory = "typography"
)

// PatternCategories lists every category in a stable order.
var PatternCategories = []PatternCategory{
	CategoryColorUsage, CategoryLayoutStructure, CategoryTypography,
}

// Confidence bounds for learned patterns.
const (
	InitialConfidence = 0.7
	ConfidenceStep    = 0.05
	MaxConfidence     = 0.95
)

// Pattern sources.
const (
	SourceSeed    = "seed"
	SourceLearned = "learned"
)

// Pattern is one confidence-weighted observation in the library.
type Pattern struct {
	Value      string    `json:"value"`
	Confidence float64   `json:"confidence"`
	UsageCount int       `json:"usageCount"`
	LearnedAt  time.Time `json:"learnedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Source     string    `json:"source"`
}

// StylePatterns maps category to patterns for one style.
type StylePatterns map[PatternCategory][]Pattern

// PatternLibrarySnapshot is a deep copy of the library handed to
// persistence collaborators.
type PatternLibrarySnapshot struct {
	ExportedAt   time.Time                `json:"exportedAt"`
	Styles       map[string]StylePatterns `json:"styles"`
	Incorporated []string                 `json:"incorporated"`
}

// PatternCount returns the total number of patterns in the snapshot.
func (s *PatternLibrarySnapshot) PatternCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, cats := range s.Styles {
		for _, ps := range cats {
			n += len(ps)
		}
	}
	return n
}

// Totals are the engine's running generation counters.
type Totals struct {
	Generated int `json:"generated"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// SuccessRate returns Succeeded/Generated, or 0 when nothing was generated.
func (t Totals) SuccessRate() float64 {
	if t.Generated == 0 {
		return 0
	}
	return float64(t.Succeeded) / float64(t.Generated)
}

// LearningStatus is the introspection view of the learning engine.
type LearningStatus struct {
	Totals       Totals    `json:"totals"`
	PatternCount int       `json:"patternCount"`
	RecordCount  int       `json:"recordCount"`
	CyclesRun    int       `json:"cyclesRun"`
	LastCycleAt  time.Time `json:"lastCycleAt"`
}

// GenerationResult is returned to the orchestrator's callers.
type GenerationResult struct {
	Document *GeneratedDocument `json:"document"`
	Market   *MarketAdaptations `json:"market"`
	Warnings []Warning          `json:"warnings,omitempty"`
}
