package services

import (
	"errors"
	"testing"
	"time"

	"flyer-studio/models"
)

func section(t *testing.T, doc *models.GeneratedDocument, kind models.SectionKind) models.Section {
	t.Helper()
	s, ok := doc.Section(kind)
	if !ok {
		t.Fatalf("missing section %q", kind)
	}
	return s
}

func fieldText(s models.Section, label string) string {
	b, _ := s.Field(label)
	return b.Text
}

func TestAssembleEmptyRequestUsesPlaceholders(t *testing.T) {
	ds, _ := mustCatalog(t).Resolve(DefaultStyleID)
	doc, err := Assemble(&models.GenerationRequest{}, ds, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if len(doc.Sections) != len(models.SectionOrder) {
		t.Fatalf("sections: got %d, want %d", len(doc.Sections), len(models.SectionOrder))
	}
	for i, kind := range models.SectionOrder {
		if doc.Sections[i].Kind != kind {
			t.Errorf("section %d: got %q, want %q", i, doc.Sections[i].Kind, kind)
		}
	}

	details := section(t, doc, models.SectionDetails)
	fields := map[string]string{
		LabelPropertyType: PlaceholderPropertyType,
		LabelBedrooms:     PlaceholderDetail,
		LabelBathrooms:    PlaceholderDetail,
		LabelSquareFeet:   PlaceholderDetail,
		LabelPrice:        PlaceholderPrice,
	}
	for label, want := range fields {
		b, ok := details.Field(label)
		if !ok {
			t.Errorf("details: missing field %q", label)
			continue
		}
		if b.Text != want {
			t.Errorf("details %s: got %q, want %q", label, b.Text, want)
		}
	}

	agent := section(t, doc, models.SectionAgent)
	if got := fieldText(agent, LabelAgentName); got != PlaceholderAgentName {
		t.Errorf("agent name: got %q, want %q", got, PlaceholderAgentName)
	}
	if got := fieldText(agent, LabelAgency); got != PlaceholderAgency {
		t.Errorf("agency: got %q, want %q", got, PlaceholderAgency)
	}

	hero := section(t, doc, models.SectionHero)
	if got := hero.Blocks[0].Text; got != PlaceholderAddress {
		t.Errorf("hero address: got %q, want %q", got, PlaceholderAddress)
	}

	photos := section(t, doc, models.SectionPhotos).Blocks
	if len(photos) != 1 || !photos[0].Placeholder || photos[0].Src != PlaceholderPhotoSrc {
		t.Errorf("photos: got %+v, want one placeholder image", photos)
	}

	features := section(t, doc, models.SectionFeatures).Blocks
	if len(features) != 1 || features[0].Text != PlaceholderFeature {
		t.Errorf("features: got %+v, want placeholder", features)
	}
}

func TestAssembleFeaturesAndPhotos(t *testing.T) {
	ds, _ := mustCatalog(t).Resolve("coastal-fresh")
	req := &models.GenerationRequest{
		Property: models.PropertyListing{
			Features: []string{"ocean  view", "HVAC upgraded", "pool", "", "dock", "wine cellar", "sauna"},
		},
		Photos: []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"},
	}

	doc, err := Assemble(req, ds, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	features := section(t, doc, models.SectionFeatures).Blocks
	if len(features) != MaxFeatures {
		t.Fatalf("features: got %d, want %d", len(features), MaxFeatures)
	}
	if features[0].Text != "Ocean View" {
		t.Errorf("feature 0: got %q, want %q", features[0].Text, "Ocean View")
	}
	if features[1].Text != "HVAC Upgraded" {
		t.Errorf("feature 1: got %q, want %q", features[1].Text, "HVAC Upgraded")
	}

	if got := len(section(t, doc, models.SectionPhotos).Blocks); got != MaxPhotos {
		t.Errorf("photos: got %d, want %d", got, MaxPhotos)
	}
}

func TestAssembleOpenHouse(t *testing.T) {
	ds, _ := mustCatalog(t).Resolve(DefaultStyleID)
	req := &models.GenerationRequest{
		Kind:     models.FlyerOpenHouse,
		Property: models.PropertyListing{OpenHouseDate: "Sat, May 2", OpenHouseTime: "1-4pm"},
	}

	doc, err := Assemble(req, ds, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	hero := section(t, doc, models.SectionHero)
	if hero.Heading != "Open House" {
		t.Errorf("heading: got %q, want %q", hero.Heading, "Open House")
	}
	if got := fieldText(hero, LabelOpenHouse); got != "Sat, May 2, 1-4pm" {
		t.Errorf("open house: got %q, want %q", got, "Sat, May 2, 1-4pm")
	}
	if doc.Metadata.Kind != models.FlyerOpenHouse {
		t.Errorf("metadata kind: got %q", doc.Metadata.Kind)
	}
}

func TestAssembleValidation(t *testing.T) {
	ds, _ := mustCatalog(t).Resolve(DefaultStyleID)

	tests := []struct {
		name string
		req  *models.GenerationRequest
	}{
		{"nil request", nil},
		{"unknown kind", &models.GenerationRequest{Kind: "postcard"}},
	}
	for _, tt := range tests {
		doc, err := Assemble(tt.req, ds, nil)
		var ve *models.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: got %v, want ValidationError", tt.name, err)
		}
		if doc != nil {
			t.Errorf("%s: expected no document on error", tt.name)
		}
	}
}

func TestAssembleAccentOverride(t *testing.T) {
	ds, _ := mustCatalog(t).Resolve("minimalist-clean")
	now := time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC)
	days := 20

	low := Adaptations(models.PropertyListing{}, now)
	doc, _ := Assemble(&models.GenerationRequest{}, ds, low)
	if doc.Style.AccentOverridden || doc.Style.Palette != ds.Colors {
		t.Errorf("low confidence must keep the catalog palette, got %+v", doc.Style.Palette)
	}

	high := Adaptations(models.PropertyListing{PropertyType: "Condo", Price: "$410,000", DaysOnMarket: &days}, now)
	doc, _ = Assemble(&models.GenerationRequest{}, ds, high)
	if !doc.Style.AccentOverridden {
		t.Fatal("expected accent override at high confidence")
	}
	if doc.Style.Palette.Accent != seasonalAdaptations[SeasonFall].AccentColor {
		t.Errorf("accent: got %q, want fall accent", doc.Style.Palette.Accent)
	}
	if doc.Style.Palette.Primary != ds.Colors.Primary {
		t.Error("override must only touch the accent")
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	ds, _ := mustCatalog(t).Resolve("urban-loft")
	now := time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)
	req := &models.GenerationRequest{Property: models.PropertyListing{Address: "5 Midtown Ave", Price: "$600,000"}}
	adapt := Adaptations(req.Property, now)

	a, _ := Assemble(req, ds, adapt)
	b, _ := Assemble(req, ds, adapt)
	if len(a.Sections) != len(b.Sections) || a.Style.Palette != b.Style.Palette || a.Metadata.GeneratedAt != b.Metadata.GeneratedAt {
		t.Error("Assemble should be deterministic for identical input")
	}
}
