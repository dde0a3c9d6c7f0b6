package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"flyer-studio/models"
	"flyer-studio/telemetry"
	"flyer-studio/utils"
)

// LearningConfig controls when and over what the learning cycle runs.
type LearningConfig struct {
	CycleThreshold int // total records before cycles start
	Window         int // most recent records considered per cycle
	MinSuccesses   int // successes in the window required to merge
}

// DefaultLearningConfig returns the standard cycle settings.
func DefaultLearningConfig() LearningConfig {
	return LearningConfig{CycleThreshold: 5, Window: 10, MinSuccesses: 3}
}

// Analysis thresholds.
const (
	harmonyRecommendThreshold        = 0.7
	responsivenessRecommendThreshold = 0.6
	harmonyInsightThreshold          = 0.8
	responsivenessInsightThreshold   = 0.8

	commonColorLimit = 5
	commonFontLimit  = 3
)

// Cycle results.
const (
	CycleMerged  = "merged"
	CycleSkipped = "skipped"
)

// CycleResult summarises one learning cycle.
type CycleResult struct {
	Result    string   `json:"result"`
	Reason    string   `json:"reason,omitempty"`
	Window    int      `json:"window"`
	Successes int      `json:"successes"`
	Styles    []string `json:"styles,omitempty"`
	Merged    int      `json:"merged"`
}

// LearningEngine stores generation records, analyzes them and folds the
// recurring design choices of successful records into the pattern library.
//
// mu guards records, totals, the library and the incorporated set.
// cycleMu serialises cycles so two never overlap.
type LearningEngine struct {
	cfg     LearningConfig
	logger  *utils.Logger
	metrics *telemetry.Metrics

	mu           sync.Mutex
	cycleMu      sync.Mutex
	records      []*models.GenerationRecord
	index        map[string]int
	totals       models.Totals
	library      *patternLibrary
	incorporated *utils.IDSet
	cyclesRun    int
	lastCycleAt  time.Time

	now   func() time.Time
	newID func() string
}

// NewLearningEngine creates an engine whose library starts from seeds.
// Zero config fields fall back to DefaultLearningConfig.
func NewLearningEngine(cfg LearningConfig, seeds map[string]models.StylePatterns, logger *utils.Logger, metrics *telemetry.Metrics) *LearningEngine {
	def := DefaultLearningConfig()
	if cfg.CycleThreshold <= 0 {
		cfg.CycleThreshold = def.CycleThreshold
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.MinSuccesses <= 0 {
		cfg.MinSuccesses = def.MinSuccesses
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	e := &LearningEngine{
		cfg:          cfg,
		logger:       logger,
		metrics:      metrics,
		index:        make(map[string]int),
		library:      newPatternLibrary(),
		incorporated: utils.NewIDSet(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	e.library.restore(seeds)
	return e
}

// Record appends a generation record and returns its id. A success
// outcome without a document is stored as an internal failure. Once the
// store holds CycleThreshold records every call runs a learning cycle.
func (e *LearningEngine) Record(req *models.GenerationRequest, outcome models.Outcome, meta models.RecordMetadata) string {
	if outcome.Success && outcome.Document == nil {
		outcome.Success = false
		outcome.Error = &models.GenerationError{Kind: models.ErrKindInternal, Message: "success reported without a document"}
	}
	outcome.Warnings = append([]models.Warning(nil), outcome.Warnings...)

	rec := &models.GenerationRecord{
		ID:        e.newID(),
		Timestamp: e.now(),
		StyleID:   meta.StyleID,
		Outcome:   outcome,
		Metrics:   models.PerformanceMetrics{Duration: meta.Duration},
	}
	if req != nil {
		rec.Request = *req
		rec.RequestID = req.RequestID
	}

	e.mu.Lock()
	e.index[rec.ID] = len(e.records)
	e.records = append(e.records, rec)
	e.totals.Generated++
	if outcome.Success {
		e.totals.Succeeded++
	} else {
		e.totals.Failed++
	}
	n := len(e.records)
	e.mu.Unlock()

	e.metrics.SetRecordsStored(n)
	e.logger.Debug("[learning] recorded %s (style=%s success=%v)", rec.ID, rec.StyleID, outcome.Success)

	if n >= e.cfg.CycleThreshold {
		e.RunCycle()
	}
	return rec.ID
}

// Analyze derives and stores the analysis of a successful record. It is
// idempotent: a second call returns the stored analysis. Unknown ids and
// failed records return false.
func (e *LearningEngine) Analyze(id string) (*models.RecordAnalysis, bool) {
	e.mu.Lock()
	i, ok := e.index[id]
	if !ok {
		e.mu.Unlock()
		return nil, false
	}
	rec := e.records[i]
	if !rec.Outcome.Success {
		e.mu.Unlock()
		return nil, false
	}
	if rec.Analysis != nil {
		cp := *rec.Analysis
		e.mu.Unlock()
		return &cp, true
	}
	doc := rec.Outcome.Document
	e.mu.Unlock()

	analysis := e.analyze(id, doc)

	e.mu.Lock()
	defer e.mu.Unlock()
	if rec.Analysis == nil {
		rec.Analysis = analysis
		rec.Outcome.Warnings = append(rec.Outcome.Warnings, analysis.Warnings...)
		if analysis.Design.Degraded {
			e.metrics.RecordDegraded()
		}
	}
	cp := *rec.Analysis
	return &cp, true
}

func (e *LearningEngine) analyze(id string, doc *models.GeneratedDocument) (out *models.RecordAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("[learning] analysis of %s panicked: %v", id, r)
			out = &models.RecordAnalysis{
				Design:     models.DesignAnalysis{Degraded: true},
				Patterns:   map[models.PatternCategory][]string{},
				Warnings:   []models.Warning{models.AnalysisDegraded(id, fmt.Sprintf("analysis failed: %v", r))},
				AnalyzedAt: e.now(),
			}
		}
	}()

	design := AnalyzeDocument(doc)
	out = &models.RecordAnalysis{
		Design:          design,
		Patterns:        ExtractPatterns(design),
		Recommendations: recommendations(design),
		Insights:        insights(design),
		AnalyzedAt:      e.now(),
	}
	if design.Degraded {
		out.Warnings = append(out.Warnings, models.AnalysisDegraded(id, "no color, typography or layout signal"))
		e.logger.Warn("[learning] analysis of %s is degraded", id)
	}
	return out
}

// AnalyzeMarkup analyzes a flyer rendered outside this process from its
// HTML or bare stylesheet. Only style signals are available, so content
// scores stay at their lowest bucket.
func AnalyzeMarkup(markup string, now time.Time) models.RecordAnalysis {
	design := AnalyzeStyles(ExtractDeclarations(markup), nil)
	out := models.RecordAnalysis{
		Design:          design,
		Patterns:        ExtractPatterns(design),
		Recommendations: recommendations(design),
		Insights:        insights(design),
		AnalyzedAt:      now,
	}
	if design.Degraded {
		out.Warnings = append(out.Warnings, models.AnalysisDegraded("", "no color, typography or layout signal in markup"))
	}
	return out
}

func recommendations(a models.DesignAnalysis) []models.Recommendation {
	var out []models.Recommendation
	if a.Color.Score < harmonyRecommendThreshold {
		out = append(out, models.Recommendation{
			Category:   "color",
			Priority:   "high",
			Suggestion: "Improve color harmony",
			Action:     "pair a dark text color with a light background and limit the palette to five colors",
		})
	}
	if a.Layout.Responsiveness < responsivenessRecommendThreshold {
		out = append(out, models.Recommendation{
			Category:   "layout",
			Priority:   "medium",
			Suggestion: "Improve responsiveness",
			Action:     "add media queries, flexible units and responsive images",
		})
	}
	if a.Typography.Hierarchy == HierarchyBasic {
		out = append(out, models.Recommendation{
			Category:   "typography",
			Priority:   "medium",
			Suggestion: "Strengthen typographic hierarchy",
			Action:     "use at least three sizes and two weights",
		})
	}
	return out
}

func insights(a models.DesignAnalysis) []models.Insight {
	var out []models.Insight
	if a.Color.Score > harmonyInsightThreshold {
		out = append(out, models.Insight{Category: "color", Finding: "excellent color harmony", Score: a.Color.Score})
	}
	if a.Layout.Responsiveness > responsivenessInsightThreshold {
		out = append(out, models.Insight{Category: "layout", Finding: "highly responsive layout", Score: a.Layout.Responsiveness})
	}
	return out
}

type observation struct {
	id       string
	style    string
	patterns map[models.PatternCategory][]string
}

// RunCycle folds the recurring choices of the most recent successful
// records into the pattern library. Records already incorporated by an
// earlier cycle never count again, so repeating a cycle with no new
// records changes nothing.
func (e *LearningEngine) RunCycle() CycleResult {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	e.mu.Lock()
	start := len(e.records) - e.cfg.Window
	if start < 0 {
		start = 0
	}
	type candidate struct{ id, style string }
	var window []candidate
	for _, r := range e.records[start:] {
		if r.Outcome.Success {
			window = append(window, candidate{r.ID, r.StyleID})
		}
	}
	res := CycleResult{Window: len(e.records) - start}
	e.mu.Unlock()

	var obs []observation
	for _, c := range window {
		a, ok := e.Analyze(c.id)
		if !ok {
			continue
		}
		obs = append(obs, observation{id: c.id, style: c.style, patterns: a.Patterns})
	}
	res.Successes = len(obs)

	if len(obs) < e.cfg.MinSuccesses {
		res.Result = CycleSkipped
		res.Reason = fmt.Sprintf("%d successful records in window, need %d", len(obs), e.cfg.MinSuccesses)
		e.finishCycle(res)
		return res
	}

	groups := lo.GroupBy(obs, func(o observation) string { return o.style })
	styles := lo.Keys(groups)
	sort.Strings(styles)

	now := e.now()
	e.mu.Lock()
	for _, style := range styles {
		group := groups[style]
		fresh := lo.Filter(group, func(o observation, _ int) bool { return !e.incorporated.Contains(o.id) })
		if len(fresh) == 0 {
			continue
		}

		for cat, values := range commonPatterns(group) {
			for _, v := range values {
				if !carries(fresh, cat, v) {
					continue
				}
				e.library.observe(style, cat, v, now)
				res.Merged++
			}
		}
		for _, o := range group {
			e.incorporated.Add(o.id)
		}
		res.Styles = append(res.Styles, style)
	}
	res.Result = CycleMerged
	if len(res.Styles) == 0 {
		res.Result = CycleSkipped
		res.Reason = "no new records"
	}
	e.mu.Unlock()

	e.finishCycle(res)
	return res
}

func (e *LearningEngine) finishCycle(res CycleResult) {
	e.mu.Lock()
	e.cyclesRun++
	e.lastCycleAt = e.now()
	size := e.library.count()
	e.mu.Unlock()

	e.metrics.RecordCycle(res.Result, res.Merged, size)
	if res.Result == CycleMerged {
		e.logger.Info("[learning] cycle merged %d observations for %v", res.Merged, res.Styles)
	} else {
		e.logger.Debug("[learning] cycle skipped: %s", res.Reason)
	}
}

// commonPatterns ranks the values a style group shares: colors seen in
// more than one record (top five), every layout type by frequency and the
// three most used font families.
func commonPatterns(group []observation) map[models.PatternCategory][]string {
	collect := func(cat models.PatternCategory) [][]string {
		return lo.Map(group, func(o observation, _ int) []string { return o.patterns[cat] })
	}
	out := map[models.PatternCategory][]string{}
	if v := rankValues(collect(models.CategoryColorUsage), 2, commonColorLimit); len(v) > 0 {
		out[models.CategoryColorUsage] = v
	}
	if v := rankValues(collect(models.CategoryLayoutStructure), 1, 0); len(v) > 0 {
		out[models.CategoryLayoutStructure] = v
	}
	if v := rankValues(collect(models.CategoryTypography), 1, commonFontLimit); len(v) > 0 {
		out[models.CategoryTypography] = v
	}
	return out
}

// rankValues counts in how many lists each value appears and returns those
// seen at least minCount times, most frequent first. limit 0 keeps all.
func rankValues(lists [][]string, minCount, limit int) []string {
	counts := lo.CountValues(lo.FlatMap(lists, func(l []string, _ int) []string { return lo.Uniq(l) }))
	values := lo.Filter(lo.Keys(counts), func(v string, _ int) bool { return counts[v] >= minCount })
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values
}

func carries(obs []observation, cat models.PatternCategory, value string) bool {
	return lo.ContainsBy(obs, func(o observation) bool { return lo.Contains(o.patterns[cat], value) })
}

// Status returns the engine's counters.
func (e *LearningEngine) Status() models.LearningStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.LearningStatus{
		Totals:       e.totals,
		PatternCount: e.library.count(),
		RecordCount:  len(e.records),
		CyclesRun:    e.cyclesRun,
		LastCycleAt:  e.lastCycleAt,
	}
}

// ExportPatternLibrary returns a deep copy of the library together with
// the ids of incorporated records.
func (e *LearningEngine) ExportPatternLibrary() models.PatternLibrarySnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return models.PatternLibrarySnapshot{
		ExportedAt:   e.now(),
		Styles:       e.library.snapshot(),
		Incorporated: e.incorporated.Values(),
	}
}

// ImportPatternLibrary merges a previously exported snapshot. Existing
// patterns keep the higher confidence; imported confidences are clamped.
func (e *LearningEngine) ImportPatternLibrary(snap models.PatternLibrarySnapshot) {
	e.mu.Lock()
	e.library.restore(snap.Styles)
	for _, id := range snap.Incorporated {
		e.incorporated.Add(id)
	}
	size := e.library.count()
	e.mu.Unlock()

	e.logger.Info("[learning] imported %d patterns (library now %d)", snap.PatternCount(), size)
}

// Patterns returns the library entries for one style and category.
func (e *LearningEngine) Patterns(style string, cat models.PatternCategory) []models.Pattern {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.library.get(style, cat)
}

// Records returns copies of every stored record in insertion order.
func (e *LearningEngine) Records() []models.GenerationRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.GenerationRecord, len(e.records))
	for i, r := range e.records {
		out[i] = *r
		out[i].Outcome.Warnings = append([]models.Warning(nil), r.Outcome.Warnings...)
	}
	return out
}
