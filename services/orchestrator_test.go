package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flyer-studio/models"
	"flyer-studio/telemetry"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *LearningEngine) {
	t.Helper()
	return newTestOrchestratorWith(t, newTestEngine(t, DefaultLearningConfig()))
}

func newTestOrchestratorWith(t *testing.T, engine *LearningEngine) (*Orchestrator, *LearningEngine) {
	t.Helper()
	o := NewOrchestrator(mustCatalog(t), engine, 4, newTestLogger(), telemetry.New())
	o.now = func() time.Time { return fixedNow }
	return o, engine
}

func sampleRequest(style string) *models.GenerationRequest {
	return &models.GenerationRequest{
		Style: style,
		Property: models.PropertyListing{
			Price:        "$850,000",
			Bedrooms:     "4",
			PropertyType: "Single Family Home",
		},
		Agent: models.AgentProfile{Name: "John Smith", Agency: "Premier Real Estate"},
	}
}

func TestGenerateWithExplicitStyle(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	want, _ := mustCatalog(t).Resolve("premium-luxury")

	res, err := o.GenerateFlyerDocument(sampleRequest("premium-luxury"))
	require.NoError(t, err)
	require.NotNil(t, res.Document)

	assert.Equal(t, "premium-luxury", res.Document.Metadata.DesignSystemID)
	assert.Equal(t, want.Colors, res.Document.Style.Palette)
	assert.Empty(t, res.Warnings)

	details := section(t, res.Document, models.SectionDetails)
	assert.Equal(t, "4", fieldText(details, LabelBedrooms))
	assert.Equal(t, "$850,000", fieldText(details, LabelPrice))

	agent := section(t, res.Document, models.SectionAgent)
	assert.Equal(t, "John Smith", fieldText(agent, LabelAgentName))
	assert.Equal(t, "Premier Real Estate", fieldText(agent, LabelAgency))

	o.Flush()
	st := o.LearningStatus()
	assert.Equal(t, 1, st.Totals.Succeeded)
}

func TestGenerateWithUnknownStyle(t *testing.T) {
	o, engine := newTestOrchestrator(t)

	res, err := o.GenerateFlyerDocument(sampleRequest("nonexistent-style"))
	require.NoError(t, err)

	assert.Equal(t, DefaultStyleID, res.Document.Metadata.DesignSystemID)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, models.WarnUnknownStyle, res.Warnings[0].Kind)
	assert.Equal(t, "nonexistent-style", res.Warnings[0].Subject)

	o.Flush()
	recs := engine.Records()
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Outcome.Success)
	assert.Equal(t, DefaultStyleID, recs[0].StyleID)
	require.NotEmpty(t, recs[0].Outcome.Warnings)
	assert.Equal(t, models.WarnUnknownStyle, recs[0].Outcome.Warnings[0].Kind)
}

func TestGenerateSuggestsStyle(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	res, err := o.GenerateFlyerDocument(sampleRequest(""))
	require.NoError(t, err)
	assert.Equal(t, "luxury-real-estate", res.Document.Metadata.DesignSystemID)
	assert.Empty(t, res.Warnings)
	o.Flush()
}

func TestGenerateLearnsSharedAccent(t *testing.T) {
	o, engine := newTestOrchestratorWith(t, newSeededEngine(t, DefaultLearningConfig(), nil))
	require.Empty(t, engine.Patterns("luxury-real-estate", models.CategoryColorUsage))

	for i := 0; i < 5; i++ {
		_, err := o.GenerateFlyerDocument(sampleRequest("luxury-real-estate"))
		require.NoError(t, err)
	}
	o.Flush()

	st := o.LearningStatus()
	assert.Equal(t, 5, st.Totals.Succeeded)
	assert.GreaterOrEqual(t, st.CyclesRun, 1)

	p, ok := findPattern(engine.Patterns("luxury-real-estate", models.CategoryColorUsage), "#d4af37")
	require.True(t, ok, "shared accent learned")
	assert.Equal(t, models.SourceLearned, p.Source)
	assert.GreaterOrEqual(t, p.UsageCount, 1)
	assert.GreaterOrEqual(t, p.Confidence, models.InitialConfidence)
	assert.LessOrEqual(t, p.Confidence, models.MaxConfidence)
}

func TestGenerateReinforcesSeededAccent(t *testing.T) {
	o, engine := newTestOrchestrator(t)

	seed, ok := findPattern(engine.Patterns("luxury-real-estate", models.CategoryColorUsage), "#d4af37")
	require.True(t, ok)
	require.Equal(t, models.SourceSeed, seed.Source)

	for i := 0; i < 5; i++ {
		_, err := o.GenerateFlyerDocument(sampleRequest("luxury-real-estate"))
		require.NoError(t, err)
	}
	o.Flush()
	require.GreaterOrEqual(t, o.LearningStatus().CyclesRun, 1)

	p, ok := findPattern(engine.Patterns("luxury-real-estate", models.CategoryColorUsage), "#d4af37")
	require.True(t, ok)
	assert.Greater(t, p.Confidence, seed.Confidence)
	assert.Greater(t, p.UsageCount, seed.UsageCount)
}

func TestGenerateDoesNotWaitOnRecording(t *testing.T) {
	o, engine := newTestOrchestrator(t)

	// Recording needs the engine lock; holding it parks the record job.
	engine.mu.Lock()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := o.GenerateFlyerDocument(sampleRequest("premium-luxury"))
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		engine.mu.Unlock()
		t.Fatal("generation blocked on the learning engine")
	}
	assert.Equal(t, 1, o.pool.InFlight())
	engine.mu.Unlock()

	o.Flush()
	assert.Equal(t, 1, engine.Status().Totals.Succeeded)
}

func TestGenerateValidationFailureIsRecorded(t *testing.T) {
	o, engine := newTestOrchestrator(t)

	req := sampleRequest("premium-luxury")
	req.Kind = "billboard"
	res, err := o.GenerateFlyerDocument(req)
	assert.Nil(t, res)

	var gerr *models.GenerationError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, models.ErrKindValidation, gerr.Kind)

	var ve *models.ValidationError
	assert.True(t, errors.As(err, &ve), "validation cause is preserved")

	_, err = o.GenerateFlyerDocument(nil)
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, models.ErrKindValidation, gerr.Kind)

	o.Flush()
	st := engine.Status()
	assert.Equal(t, 2, st.Totals.Failed)
	assert.Equal(t, 0, st.Totals.Succeeded)
}

func TestGenerateFromJSON(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	res, err := o.GenerateFromJSON([]byte(`{"style":"urban-loft","property":{"address":"12 Midtown Ave"}}`))
	require.NoError(t, err)
	assert.Equal(t, "urban-loft", res.Document.Metadata.DesignSystemID)

	_, err = o.GenerateFromJSON([]byte(`{"property": 42}`))
	var gerr *models.GenerationError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, models.ErrKindValidation, gerr.Kind)

	o.Flush()
	st := o.LearningStatus()
	assert.Equal(t, 2, st.Totals.Generated)
}

func TestGenerateFromJSONNumericFields(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	res, err := o.GenerateFromJSON([]byte(`{"style":"premium-luxury","property":{"bedrooms":4,"price":850000,"sqft":2400}}`))
	require.NoError(t, err)

	details := section(t, res.Document, models.SectionDetails)
	assert.Equal(t, "4", fieldText(details, LabelBedrooms))
	assert.Equal(t, "2400", fieldText(details, LabelSquareFeet))
	assert.Equal(t, "850000", fieldText(details, LabelPrice))

	o.Flush()
	assert.Equal(t, 1, o.LearningStatus().Totals.Succeeded)
}

func TestGenerateRecoversPanics(t *testing.T) {
	o, engine := newTestOrchestrator(t)
	o.now = func() time.Time { panic("clock exploded") }

	res, err := o.GenerateFlyerDocument(sampleRequest("premium-luxury"))
	assert.Nil(t, res)

	var gerr *models.GenerationError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, models.ErrKindInternal, gerr.Kind)
	assert.Contains(t, gerr.Message, "clock exploded")

	o.Flush()
	assert.Equal(t, 1, engine.Status().Totals.Failed)
}

func TestExportPatternLibraryPassThrough(t *testing.T) {
	o, _ := newTestOrchestrator(t)
	snap := o.ExportPatternLibrary()
	assert.Len(t, snap.Styles, len(o.Styles()))
	assert.Greater(t, snap.PatternCount(), 0)
}
