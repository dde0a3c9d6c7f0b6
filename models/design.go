package models

// ColorScheme is a design system's palette. Values are CSS hex colors.
type ColorScheme struct {
	Primary    string `json:"primary" yaml:"primary"`
	Secondary  string `json:"secondary" yaml:"secondary"`
	Accent     string `json:"accent" yaml:"accent"`
	Background string `json:"background" yaml:"background"`
	Text       string `json:"text" yaml:"text"`
}

// TypeStep is one level of a typographic scale.
type TypeStep struct {
	Role   string `json:"role" yaml:"role"`
	Size   string `json:"size" yaml:"size"`
	Weight int    `json:"weight" yaml:"weight"`
	// Font is "heading" or "body".
	Font string `json:"font" yaml:"font"`
}

// TypographySystem bundles font stacks with a responsive type scale.
type TypographySystem struct {
	HeadingFont string     `json:"headingFont" yaml:"headingFont"`
	BodyFont    string     `json:"bodyFont" yaml:"bodyFont"`
	Scale       []TypeStep `json:"scale" yaml:"scale"`
	// MobileScale shrinks the scale below the first breakpoint.
	MobileScale float64 `json:"mobileScale" yaml:"mobileScale"`
}

// FamilyFor returns the font stack a step uses.
func (t TypographySystem) FamilyFor(step TypeStep) string {
	if step.Font == "heading" {
		return t.HeadingFont
	}
	return t.BodyFont
}

// LayoutSystem describes the grid, spacing and proportions of a design.
type LayoutSystem struct {
	// Grid is one of css-grid, flexbox, float or traditional.
	Grid             string             `json:"grid" yaml:"grid"`
	Columns          int                `json:"columns" yaml:"columns"`
	Spacing          []string           `json:"spacing" yaml:"spacing"`
	Breakpoints      []string           `json:"breakpoints" yaml:"breakpoints"`
	FlexibleUnits    bool               `json:"flexibleUnits" yaml:"flexibleUnits"`
	ResponsiveImages bool               `json:"responsiveImages" yaml:"responsiveImages"`
	MobileFirst      bool               `json:"mobileFirst" yaml:"mobileFirst"`
	Proportions      map[string]float64 `json:"proportions" yaml:"proportions"`
}

// AnimationProfile is the entrance motion applied by the renderer.
type AnimationProfile struct {
	Entrance string `json:"entrance" yaml:"entrance"`
	Duration string `json:"duration" yaml:"duration"`
	Easing   string `json:"easing" yaml:"easing"`
}

// DesignSystem is an immutable catalog entry.
type DesignSystem struct {
	ID         string           `json:"id" yaml:"id"`
	Name       string           `json:"name" yaml:"name"`
	Colors     ColorScheme      `json:"colors" yaml:"colors"`
	Typography TypographySystem `json:"typography" yaml:"typography"`
	Layout     LayoutSystem     `json:"layout" yaml:"layout"`
	Animation  AnimationProfile `json:"animation" yaml:"animation"`
}
