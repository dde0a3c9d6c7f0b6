package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"flyer-studio/models"
	"flyer-studio/utils"
)

// RankedPattern is a library entry with the style and category it belongs to.
type RankedPattern struct {
	Style    string
	Category models.PatternCategory
	models.Pattern
}

// LearningReport summarises generation history and the pattern library.
type LearningReport struct {
	Status         models.LearningStatus
	SuccessRate    float64
	AvgDurationMs  float64
	RecordsByStyle map[string]int
	Warnings       map[models.WarningKind]int
	TopPatterns    []RankedPattern
	LearnedCount   int
}

// ReportService builds and prints the learning report shown at shutdown.
type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

func (s *ReportService) Generate(status models.LearningStatus, records []models.GenerationRecord, snap models.PatternLibrarySnapshot) *LearningReport {
	report := &LearningReport{
		Status:         status,
		RecordsByStyle: make(map[string]int),
		Warnings:       make(map[models.WarningKind]int),
	}
	report.SuccessRate = round2(status.Totals.SuccessRate())

	var total float64
	for _, r := range records {
		if r.StyleID != "" {
			report.RecordsByStyle[r.StyleID]++
		}
		for _, w := range r.Outcome.Warnings {
			report.Warnings[w.Kind]++
		}
		total += float64(r.Metrics.Duration.Microseconds()) / 1000
	}
	if len(records) > 0 {
		report.AvgDurationMs = round2(total / float64(len(records)))
	}

	var ranked []RankedPattern
	for style, cats := range snap.Styles {
		for cat, ps := range cats {
			for _, p := range ps {
				ranked = append(ranked, RankedPattern{Style: style, Category: cat, Pattern: p})
				if p.Source == models.SourceLearned {
					report.LearnedCount++
				}
			}
		}
	}

	// Top 5 by confidence, then usage
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.UsageCount != b.UsageCount {
			return a.UsageCount > b.UsageCount
		}
		if a.Style != b.Style {
			return a.Style < b.Style
		}
		return a.Value < b.Value
	})
	if len(ranked) > 5 {
		report.TopPatterns = ranked[:5]
	} else {
		report.TopPatterns = ranked
	}

	return report
}

func (s *ReportService) Print(w io.Writer, r *LearningReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  FLYER STUDIO LEARNING REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(w, "\033[1;33m  Generations\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total generated : \033[1m%d\033[0m\n", r.Status.Totals.Generated)
	fmt.Fprintf(w, "  Succeeded       : \033[1;32m%d\033[0m\n", r.Status.Totals.Succeeded)
	fmt.Fprintf(w, "  Failed          : \033[1;31m%d\033[0m\n", r.Status.Totals.Failed)
	fmt.Fprintf(w, "  Success rate    : \033[1m%.0f%%\033[0m\n", r.SuccessRate*100)
	if r.AvgDurationMs > 0 {
		fmt.Fprintf(w, "  Avg duration    : %.2fms\n", r.AvgDurationMs)
	}
	fmt.Fprintln(w)

	// Learning
	fmt.Fprintf(w, "\033[1;33m  Pattern Library\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Patterns      : \033[1m%d\033[0m (%d learned)\n", r.Status.PatternCount, r.LearnedCount)
	fmt.Fprintf(w, "  Cycles run    : \033[1m%d\033[0m\n", r.Status.CyclesRun)
	if !r.Status.LastCycleAt.IsZero() {
		fmt.Fprintf(w, "  Last cycle    : %s\n", r.Status.LastCycleAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top Patterns by Confidence\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopPatterns) == 0 {
		fmt.Fprintf(w, "  No patterns yet\n")
	} else {
		for i, p := range r.TopPatterns {
			label := truncate(p.Style+" / "+p.Value, 38)
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%.2f\033[0m ×%d\n",
				i+1, label, p.Confidence, p.UsageCount)
		}
	}
	fmt.Fprintln(w)

	// Records by style
	fmt.Fprintf(w, "\033[1;33m  Generations by Style\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.RecordsByStyle) == 0 {
		fmt.Fprintf(w, "  No records\n")
	} else {
		type styleCount struct {
			style string
			count int
		}
		var styles []styleCount
		for style, cnt := range r.RecordsByStyle {
			styles = append(styles, styleCount{style, cnt})
		}
		sort.Slice(styles, func(i, j int) bool {
			if styles[i].count != styles[j].count {
				return styles[i].count > styles[j].count
			}
			return styles[i].style < styles[j].style
		})
		for _, sc := range styles {
			bar := strings.Repeat("█", min(sc.count, 30))
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(sc.style, 28), bar, sc.count)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "\033[1;33m  Warnings\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		kinds := make([]string, 0, len(r.Warnings))
		for k := range r.Warnings {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(w, "  %-30s %d\n", k, r.Warnings[models.WarningKind(k)])
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
