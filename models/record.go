package models

import "time"

// Outcome is the single result attached to a GenerationRecord.
type Outcome struct {
	Success  bool               `json:"success"`
	Document *GeneratedDocument `json:"document,omitempty"`
	Error    *GenerationError   `json:"error,omitempty"`
	Warnings []Warning          `json:"warnings,omitempty"`
}

// PerformanceMetrics are timings captured around a generation.
type PerformanceMetrics struct {
	Duration time.Duration `json:"duration"`
}

// ColorHarmony is the color-quality part of a design analysis.
type ColorHarmony struct {
	Score    float64  `json:"score"`
	Label    string   `json:"label"`
	Contrast bool     `json:"contrast"`
	Balance  bool     `json:"balance"`
	Cohesion bool     `json:"cohesion"`
	Colors   []string `json:"colors"`
}

// LayoutSignature describes grid, spacing and responsiveness.
type LayoutSignature struct {
	Grid                string  `json:"grid"`
	Spacing             string  `json:"spacing"`
	Responsiveness      float64 `json:"responsiveness"`
	ResponsivenessLabel string  `json:"responsivenessLabel"`
}

// TypographySignature describes the distinct type choices and their
// hierarchy strength.
type TypographySignature struct {
	Families  []string `json:"families"`
	Sizes     []string `json:"sizes"`
	Weights   []int    `json:"weights"`
	Hierarchy string   `json:"hierarchy"`
}

// ContentSignature counts content blocks.
type ContentSignature struct {
	Sections      int    `json:"sections"`
	Images        int    `json:"images"`
	TextBlocks    int    `json:"textBlocks"`
	CallsToAction int    `json:"callsToAction"`
	Balance       string `json:"balance"`
}

// DesignAnalysis is the Pattern Analyzer's output for one document.
type DesignAnalysis struct {
	Color      ColorHarmony        `json:"color"`
	Layout     LayoutSignature     `json:"layout"`
	Typography TypographySignature `json:"typography"`
	Content    ContentSignature    `json:"content"`
	Degraded   bool                `json:"degraded"`
}

// Recommendation is emitted when a score falls below its threshold.
type Recommendation struct {
	Category   string `json:"category"`
	Priority   string `json:"priority"`
	Suggestion string `json:"suggestion"`
	Action     string `json:"action"`
}

// Insight is emitted when a score exceeds its excellence threshold.
type Insight struct {
	Category string  `json:"category"`
	Finding  string  `json:"finding"`
	Score    float64 `json:"score"`
}

// RecordAnalysis is the derived analysis stored on a record.
type RecordAnalysis struct {
	Design          DesignAnalysis               `json:"design"`
	Patterns        map[PatternCategory][]string `json:"patterns"`
	Recommendations []Recommendation             `json:"recommendations"`
	Insights        []Insight                    `json:"insights"`
	Warnings        []Warning                    `json:"warnings,omitempty"`
	AnalyzedAt      time.Time                    `json:"analyzedAt"`
}

// GenerationRecord is the append-only log entry for one generation attempt.
type GenerationRecord struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	RequestID string             `json:"requestId"`
	Request   GenerationRequest  `json:"request"`
	StyleID   string             `json:"styleId"`
	Outcome   Outcome            `json:"outcome"`
	Metrics   PerformanceMetrics `json:"metrics"`
	Analysis  *RecordAnalysis    `json:"analysis,omitempty"`
}

// RecordMetadata is supplied by the caller of Record.
type RecordMetadata struct {
	StyleID  string
	Duration time.Duration
}
