package services

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"flyer-studio/models"
)

// Placeholders substituted for missing request fields.
const (
	PlaceholderAddress      = "Address available upon request"
	PlaceholderPropertyType = "Residential Property"
	PlaceholderDetail       = "Contact for details"
	PlaceholderPrice        = "Contact for pricing"
	PlaceholderAgentName    = "Your Local Agent"
	PlaceholderAgency       = "Independent Brokerage"
	PlaceholderOpenHouse    = "Date to be announced"
	PlaceholderFeature      = "Contact agent for property highlights"
	PlaceholderPhotoSrc     = "placeholder://property-photo"
)

// Layout limits.
const (
	MaxFeatures = 5
	MaxPhotos   = 4
)

// Field labels used in the details and agent sections.
const (
	LabelPropertyType = "Property Type"
	LabelBedrooms     = "Bedrooms"
	LabelBathrooms    = "Bathrooms"
	LabelSquareFeet   = "Square Feet"
	LabelPrice        = "Price"
	LabelAddress      = "Address"
	LabelAgentName    = "Agent"
	LabelAgency       = "Agency"
	LabelPhone        = "Phone"
	LabelEmail        = "Email"
	LabelWebsite      = "Website"
	LabelOpenHouse    = "Open House"
)

const disclaimer = "Information deemed reliable but not guaranteed. Equal Housing Opportunity."

// Assemble composes a flyer document from the request, the resolved design
// system and the market adaptations. It is deterministic and does no I/O.
// On error no document is returned.
func Assemble(req *models.GenerationRequest, ds models.DesignSystem, adapt *models.MarketAdaptations) (*models.GeneratedDocument, error) {
	if req == nil {
		return nil, &models.ValidationError{Reason: "request is nil"}
	}
	if !req.Kind.IsValid() {
		return nil, &models.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown flyer kind %q", req.Kind)}
	}

	kind := req.Kind
	if kind == "" {
		kind = models.FlyerListing
	}

	p := req.Property
	a := req.Agent

	doc := &models.GeneratedDocument{
		Sections: []models.Section{
			heroSection(kind, p, adapt),
			detailsSection(p),
			photosSection(req.Photos),
			featuresSection(p.Features),
			agentSection(a, kind),
			footerSection(a, adapt),
		},
		Style: styleDeclarations(ds, adapt),
		Metadata: models.DocumentMetadata{
			RequestID:      req.RequestID,
			DesignSystemID: ds.ID,
			Kind:           kind,
			Messaging:      messaging(adapt),
		},
	}
	if adapt != nil {
		doc.Metadata.GeneratedAt = adapt.Snapshot.GeneratedAt
		doc.Metadata.Market = adapt.Snapshot
	}
	return doc, nil
}

func heroSection(kind models.FlyerKind, p models.PropertyListing, adapt *models.MarketAdaptations) models.Section {
	heading := "Just Listed"
	if kind == models.FlyerOpenHouse {
		heading = "Open House"
	}

	blocks := []models.Block{
		{Kind: models.BlockText, Label: LabelAddress, Text: orDefault(p.Address, PlaceholderAddress)},
		{Kind: models.BlockText, Label: LabelPrice, Text: orDefault(p.Price, PlaceholderPrice)},
	}
	if adapt != nil && adapt.Seasonal.Messaging != "" {
		blocks = append(blocks, models.Block{Kind: models.BlockText, Text: adapt.Seasonal.Messaging})
	}
	if kind == models.FlyerOpenHouse {
		blocks = append(blocks,
			models.Block{Kind: models.BlockText, Label: LabelOpenHouse, Text: openHouseWhen(p)},
			models.Block{Kind: models.BlockCTA, Text: "RSVP for the open house"},
		)
	}
	return models.Section{Kind: models.SectionHero, Heading: heading, Blocks: blocks}
}

func openHouseWhen(p models.PropertyListing) string {
	date := strings.TrimSpace(p.OpenHouseDate)
	clock := strings.TrimSpace(p.OpenHouseTime)
	switch {
	case date == "":
		return PlaceholderOpenHouse
	case clock == "":
		return date
	default:
		return date + ", " + clock
	}
}

func detailsSection(p models.PropertyListing) models.Section {
	return models.Section{
		Kind:    models.SectionDetails,
		Heading: "Property Details",
		Blocks: []models.Block{
			{Kind: models.BlockField, Label: LabelPropertyType, Text: orDefault(p.PropertyType, PlaceholderPropertyType)},
			{Kind: models.BlockField, Label: LabelBedrooms, Text: orDefault(p.Bedrooms, PlaceholderDetail)},
			{Kind: models.BlockField, Label: LabelBathrooms, Text: orDefault(p.Bathrooms, PlaceholderDetail)},
			{Kind: models.BlockField, Label: LabelSquareFeet, Text: orDefault(p.SquareFeet, PlaceholderDetail)},
			{Kind: models.BlockField, Label: LabelPrice, Text: orDefault(p.Price, PlaceholderPrice)},
		},
	}
}

func photosSection(photos []string) models.Section {
	blocks := make([]models.Block, 0, MaxPhotos)
	for _, src := range photos {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		blocks = append(blocks, models.Block{Kind: models.BlockImage, Src: src})
		if len(blocks) == MaxPhotos {
			break
		}
	}
	if len(blocks) == 0 {
		blocks = append(blocks, models.Block{Kind: models.BlockImage, Src: PlaceholderPhotoSrc, Placeholder: true})
	}
	return models.Section{Kind: models.SectionPhotos, Heading: "Gallery", Blocks: blocks}
}

func featuresSection(features []string) models.Section {
	caser := cases.Title(language.English, cases.NoLower)

	blocks := make([]models.Block, 0, MaxFeatures)
	for _, f := range features {
		f = normaliseText(f)
		if f == "" {
			continue
		}
		blocks = append(blocks, models.Block{Kind: models.BlockListItem, Text: caser.String(f)})
		if len(blocks) == MaxFeatures {
			break
		}
	}
	if len(blocks) == 0 {
		blocks = append(blocks, models.Block{Kind: models.BlockListItem, Text: PlaceholderFeature, Placeholder: true})
	}
	return models.Section{Kind: models.SectionFeatures, Heading: "Highlights", Blocks: blocks}
}

func agentSection(a models.AgentProfile, kind models.FlyerKind) models.Section {
	name := orDefault(a.Name, PlaceholderAgentName)
	cta := "Call " + name + " to schedule a private showing"
	if kind == models.FlyerOpenHouse {
		cta = "Questions? Reach " + name + " before the open house"
	}

	return models.Section{
		Kind:    models.SectionAgent,
		Heading: "Presented By",
		Blocks: []models.Block{
			{Kind: models.BlockField, Label: LabelAgentName, Text: name},
			{Kind: models.BlockField, Label: LabelAgency, Text: orDefault(a.Agency, PlaceholderAgency)},
			{Kind: models.BlockField, Label: LabelPhone, Text: orDefault(a.Phone, PlaceholderDetail)},
			{Kind: models.BlockField, Label: LabelEmail, Text: orDefault(a.Email, PlaceholderDetail)},
			{Kind: models.BlockField, Label: LabelWebsite, Text: orDefault(a.Website, PlaceholderDetail)},
			{Kind: models.BlockCTA, Text: cta},
		},
	}
}

func footerSection(a models.AgentProfile, adapt *models.MarketAdaptations) models.Section {
	blocks := []models.Block{}
	if adapt != nil && adapt.Price.Messaging != "" {
		blocks = append(blocks, models.Block{Kind: models.BlockText, Text: adapt.Price.Messaging})
	}
	blocks = append(blocks,
		models.Block{Kind: models.BlockText, Label: LabelAgency, Text: orDefault(a.Agency, PlaceholderAgency)},
		models.Block{Kind: models.BlockText, Text: disclaimer},
	)
	return models.Section{Kind: models.SectionFooter, Blocks: blocks}
}

func messaging(adapt *models.MarketAdaptations) []string {
	if adapt == nil {
		return nil
	}
	var out []string
	for _, m := range []string{adapt.Seasonal.Messaging, adapt.Market.Messaging, adapt.Price.Messaging} {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

// styleDeclarations flattens a design system into the structured style
// representation shared by the renderer and the analyzer.
func styleDeclarations(ds models.DesignSystem, adapt *models.MarketAdaptations) models.StyleDeclarations {
	palette := ds.Colors
	overridden := false
	if adapt.HighConfidence() && adapt.Seasonal.AccentColor != "" {
		palette.Accent = adapt.Seasonal.AccentColor
		overridden = true
	}

	colors := []models.DeclaredColor{
		{Role: models.RolePrimary, Value: palette.Primary},
		{Role: models.RolePrimary, Value: palette.Secondary},
		{Role: models.RoleAccent, Value: palette.Accent},
		{Role: models.RoleNeutral, Value: palette.Background},
		{Role: models.RoleNeutral, Value: palette.Text},
	}

	fonts := make([]models.FontDeclaration, 0, len(ds.Typography.Scale))
	for _, step := range ds.Typography.Scale {
		fonts = append(fonts, models.FontDeclaration{
			Role:   step.Role,
			Family: ds.Typography.FamilyFor(step),
			Size:   step.Size,
			Weight: step.Weight,
		})
	}

	return models.StyleDeclarations{
		DesignSystemID:   ds.ID,
		Palette:          palette,
		Colors:           colors,
		Fonts:            fonts,
		LayoutFlags:      layoutFlags(ds.Layout),
		Spacing:          append([]string(nil), ds.Layout.Spacing...),
		Columns:          ds.Layout.Columns,
		Animation:        ds.Animation,
		AccentOverridden: overridden,
	}
}

func layoutFlags(l models.LayoutSystem) []string {
	var flags []string
	switch l.Grid {
	case models.FlagCSSGrid, models.FlagFlexbox, models.FlagFloat:
		flags = append(flags, l.Grid)
	}
	if len(l.Breakpoints) > 0 {
		flags = append(flags, models.FlagMediaQueries)
	}
	if l.FlexibleUnits {
		flags = append(flags, models.FlagFlexibleUnits)
	}
	if l.ResponsiveImages {
		flags = append(flags, models.FlagResponsiveImages)
	}
	if l.MobileFirst {
		flags = append(flags, models.FlagMobileFirst)
	}
	return flags
}

func orDefault(s, placeholder string) string {
	if s = normaliseText(s); s == "" {
		return placeholder
	}
	return s
}
