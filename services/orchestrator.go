package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flyer-studio/models"
	"flyer-studio/telemetry"
	"flyer-studio/utils"
)

// Orchestrator is the single entry point for flyer generation. Generation
// is synchronous; recording and analysis run on a bounded worker pool.
// Handing a record to the pool waits only while all recordWorkers are busy,
// which can include a job running a learning cycle.
type Orchestrator struct {
	catalog *StyleCatalog
	engine  *LearningEngine
	cleaner *Cleaner
	pool    *utils.WorkerPool
	logger  *utils.Logger
	metrics *telemetry.Metrics

	now func() time.Time
}

// NewOrchestrator wires the catalog and learning engine together.
// recordWorkers bounds concurrent record+analyze jobs.
func NewOrchestrator(catalog *StyleCatalog, engine *LearningEngine, recordWorkers int, logger *utils.Logger, metrics *telemetry.Metrics) *Orchestrator {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Orchestrator{
		catalog: catalog,
		engine:  engine,
		cleaner: NewCleaner(logger),
		pool:    utils.NewWorkerPool(recordWorkers, 0),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// GenerateFlyerDocument turns a request into a flyer document. Unknown
// styles fall back to the default with a warning on the result. Invalid
// requests return a *models.GenerationError of kind validation; any panic
// during generation is returned as kind internal. Every attempt, failed or
// not, is recorded for learning.
func (o *Orchestrator) GenerateFlyerDocument(req *models.GenerationRequest) (result *models.GenerationResult, err error) {
	start := time.Now()
	styleID := ""
	var warnings []models.Warning

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("[orchestrator] generation panicked: %v", r)
			gerr := &models.GenerationError{
				Kind:    models.ErrKindInternal,
				Message: fmt.Sprintf("unexpected failure: %v", r),
			}
			if req != nil {
				gerr.RequestID = req.RequestID
			}
			result, err = nil, gerr
			o.submitRecord(req, models.Outcome{Error: gerr, Warnings: warnings}, styleID, time.Since(start))
		}
	}()

	if req == nil {
		return nil, o.fail(nil, &models.ValidationError{Reason: "request is nil"}, "", nil, start)
	}

	clean := o.cleaner.Clean(req)
	if clean.RequestID == "" {
		clean.RequestID = uuid.NewString()
	}

	adapt := Adaptations(clean.Property, o.now())

	requested := clean.Style
	if requested == "" {
		requested = SuggestStyle(adapt)
		o.logger.Debug("[orchestrator] %s: no style requested, suggested %s", clean.RequestID, requested)
	}
	ds, warn := o.catalog.Resolve(requested)
	styleID = ds.ID
	if warn != nil {
		warnings = append(warnings, *warn)
		o.metrics.RecordWarning(string(warn.Kind))
		o.logger.Warn("[orchestrator] %s: %s", clean.RequestID, warn.Message)
	}

	doc, err := Assemble(clean, ds, adapt)
	if err != nil {
		return nil, o.fail(clean, err, styleID, warnings, start)
	}

	result = &models.GenerationResult{Document: doc, Market: adapt, Warnings: warnings}

	dur := time.Since(start)
	o.metrics.RecordGeneration(styleID, true, dur)
	o.submitRecord(clean, models.Outcome{Success: true, Document: doc, Warnings: warnings}, styleID, dur)

	o.logger.Info("[orchestrator] %s: generated %s flyer with %s", clean.RequestID, doc.Metadata.Kind, styleID)
	return result, nil
}

// GenerateFromJSON decodes a JSON request and generates from it. Malformed
// input is a validation failure and is recorded like any other.
func (o *Orchestrator) GenerateFromJSON(data []byte) (*models.GenerationResult, error) {
	req, err := DecodeRequest(data)
	if err != nil {
		return nil, o.fail(nil, err, "", nil, time.Now())
	}
	return o.GenerateFlyerDocument(req)
}

func (o *Orchestrator) fail(req *models.GenerationRequest, cause error, styleID string, warnings []models.Warning, start time.Time) *models.GenerationError {
	gerr := &models.GenerationError{Kind: models.ErrKindInternal, Message: cause.Error(), Err: cause}
	var ve *models.ValidationError
	if errors.As(cause, &ve) {
		gerr.Kind = models.ErrKindValidation
	}
	if req != nil {
		gerr.RequestID = req.RequestID
	}

	dur := time.Since(start)
	o.metrics.RecordGeneration(styleID, false, dur)
	o.logger.Warn("[orchestrator] generation failed: %v", gerr)
	o.submitRecord(req, models.Outcome{Error: gerr, Warnings: warnings}, styleID, dur)
	return gerr
}

func (o *Orchestrator) submitRecord(req *models.GenerationRequest, outcome models.Outcome, styleID string, dur time.Duration) {
	if o.engine == nil {
		return
	}
	meta := models.RecordMetadata{StyleID: styleID, Duration: dur}
	o.pool.Submit(func() {
		id := o.engine.Record(req, outcome, meta)
		if outcome.Success {
			o.engine.Analyze(id)
		}
	})
}

// AnalyzeMarkup scores externally rendered flyer markup. The result is not
// recorded and never feeds the pattern library.
func (o *Orchestrator) AnalyzeMarkup(markup string) models.RecordAnalysis {
	a := AnalyzeMarkup(markup, o.now())
	if a.Design.Degraded {
		o.metrics.RecordDegraded()
	}
	o.logger.Debug("[orchestrator] analyzed %d bytes of markup: grid %s, harmony %.2f",
		len(markup), a.Design.Layout.Grid, a.Design.Color.Score)
	return a
}

// Flush blocks until every pending record and analysis has completed.
func (o *Orchestrator) Flush() {
	o.pool.Wait()
}

// LearningStatus returns the learning engine's counters.
func (o *Orchestrator) LearningStatus() models.LearningStatus {
	if o.engine == nil {
		return models.LearningStatus{}
	}
	return o.engine.Status()
}

// ExportPatternLibrary returns a snapshot of the learned patterns.
func (o *Orchestrator) ExportPatternLibrary() models.PatternLibrarySnapshot {
	if o.engine == nil {
		return models.PatternLibrarySnapshot{}
	}
	return o.engine.ExportPatternLibrary()
}

// Records returns the stored generation records.
func (o *Orchestrator) Records() []models.GenerationRecord {
	if o.engine == nil {
		return nil
	}
	return o.engine.Records()
}

// Styles lists the catalog's design systems.
func (o *Orchestrator) Styles() []models.DesignSystem {
	return o.catalog.List()
}
