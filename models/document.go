package models

import "time"

// SectionKind names one of the fixed flyer sections.
type SectionKind string

const (
	SectionHero     SectionKind = "hero"
	SectionDetails  SectionKind = "details"
	SectionPhotos   SectionKind = "photos"
	SectionFeatures SectionKind = "features"
	SectionAgent    SectionKind = "agent"
	SectionFooter   SectionKind = "footer"
)

// SectionOrder is the layout order every document follows.
var SectionOrder = []SectionKind{
	SectionHero, SectionDetails, SectionPhotos, SectionFeatures, SectionAgent, SectionFooter,
}

// BlockKind classifies a content block for rendering and analysis.
type BlockKind string

const (
	BlockText     BlockKind = "text"
	BlockField    BlockKind = "field"
	BlockImage    BlockKind = "image"
	BlockListItem BlockKind = "list-item"
	BlockCTA      BlockKind = "cta"
)

// Block is a leaf of the content tree.
type Block struct {
	Kind        BlockKind `json:"kind"`
	Label       string    `json:"label,omitempty"`
	Text        string    `json:"text,omitempty"`
	Src         string    `json:"src,omitempty"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// Section is one fixed region of the flyer.
type Section struct {
	Kind    SectionKind `json:"kind"`
	Heading string      `json:"heading"`
	Blocks  []Block     `json:"blocks"`
}

// Field returns the block with the given label.
func (s Section) Field(label string) (Block, bool) {
	for _, b := range s.Blocks {
		if b.Label == label {
			return b, true
		}
	}
	return Block{}, false
}

// ColorRole groups declared colors for balance analysis.
type ColorRole string

const (
	RolePrimary ColorRole = "primary"
	RoleAccent  ColorRole = "accent"
	RoleNeutral ColorRole = "neutral"
)

// DeclaredColor is a color the document's styles actually use.
type DeclaredColor struct {
	Role  ColorRole `json:"role"`
	Value string    `json:"value"`
}

// FontDeclaration is one resolved font rule.
type FontDeclaration struct {
	Role   string `json:"role"`
	Family string `json:"family"`
	Size   string `json:"size"`
	Weight int    `json:"weight"`
}

// Layout flags understood by the analyzer.
const (
	FlagCSSGrid          = "css-grid"
	FlagFlexbox          = "flexbox"
	FlagFloat            = "float"
	FlagMediaQueries     = "media-queries"
	FlagFlexibleUnits    = "flexible-units"
	FlagResponsiveImages = "responsive-images"
	FlagMobileFirst      = "mobile-first"
)

// StyleDeclarations is the structured representation of a document's
// resolved styles. The renderer turns it into CSS; the analyzer reads it
// directly instead of re-parsing markup.
type StyleDeclarations struct {
	DesignSystemID   string            `json:"designSystemId"`
	Palette          ColorScheme       `json:"palette"`
	Colors           []DeclaredColor   `json:"colors"`
	Fonts            []FontDeclaration `json:"fonts"`
	LayoutFlags      []string          `json:"layoutFlags"`
	Spacing          []string          `json:"spacing"`
	Columns          int               `json:"columns"`
	Animation        AnimationProfile  `json:"animation"`
	AccentOverridden bool              `json:"accentOverridden"`
}

// HasFlag reports whether flag is declared.
func (s StyleDeclarations) HasFlag(flag string) bool {
	for _, f := range s.LayoutFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// DocumentMetadata ties a document back to the request that produced it.
type DocumentMetadata struct {
	GeneratedAt    time.Time      `json:"generatedAt"`
	RequestID      string         `json:"requestId"`
	DesignSystemID string         `json:"designSystemId"`
	Kind           FlyerKind      `json:"kind"`
	Market         MarketSnapshot `json:"market"`
	Messaging      []string       `json:"messaging,omitempty"`
}

// GeneratedDocument is the assembled flyer consumed by render/export
// collaborators.
type GeneratedDocument struct {
	Sections []Section         `json:"sections"`
	Style    StyleDeclarations `json:"style"`
	Metadata DocumentMetadata  `json:"metadata"`
}

// Section returns the section of the given kind.
func (d *GeneratedDocument) Section(kind SectionKind) (Section, bool) {
	if d == nil {
		return Section{}, false
	}
	for _, s := range d.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}
