package services

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"flyer-studio/models"
)

// Analysis labels.
const (
	LabelExcellent        = "excellent"
	LabelGood             = "good"
	LabelNeedsImprovement = "needs-improvement"
	LabelInsufficient     = "insufficient"
	LabelBasic            = "basic"

	GridCSSGrid     = "css-grid"
	GridFlexbox     = "flexbox"
	GridFloat       = "float"
	GridTraditional = "traditional"

	SpacingConsistent = "consistent"
	SpacingGenerous   = "generous"
	SpacingTight      = "tight"
	SpacingBalanced   = "balanced"

	HierarchyStrong   = "strong"
	HierarchyModerate = "moderate"
	HierarchyBasic    = "basic"

	BalanceImageBalanced = "image-balanced"
	BalanceTextBalanced  = "text-balanced"
	BalanceImageHeavy    = "image-heavy"
	BalanceTextHeavy     = "text-heavy"
	BalanceWell          = "well-balanced"
)

const (
	darkLightness  = 0.35
	lightLightness = 0.80
	maxCohesive    = 5
	remPixels      = 16.0
)

var (
	rgbRegexp    = regexp.MustCompile(`(?i)^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})`)
	lengthRegexp = regexp.MustCompile(`^(-?\d*\.?\d+)(px|rem|em)?$`)
)

var responsiveFlags = []string{
	models.FlagMediaQueries, models.FlagFlexibleUnits, models.FlagResponsiveImages, models.FlagMobileFirst,
}

// AnalyzeDocument derives design-quality features from a generated
// document. It never fails: nil or malformed input produces the lowest
// buckets and a Degraded analysis.
func AnalyzeDocument(doc *models.GeneratedDocument) models.DesignAnalysis {
	if doc == nil {
		return AnalyzeStyles(models.StyleDeclarations{}, nil)
	}
	return AnalyzeStyles(doc.Style, doc.Sections)
}

// AnalyzeStyles analyzes style declarations together with a content tree.
func AnalyzeStyles(style models.StyleDeclarations, sections []models.Section) models.DesignAnalysis {
	a := models.DesignAnalysis{
		Color:      AnalyzeColors(style.Colors),
		Layout:     AnalyzeLayout(style.LayoutFlags, style.Spacing),
		Typography: AnalyzeTypography(style.Fonts),
		Content:    AnalyzeContent(sections),
	}
	a.Degraded = len(a.Color.Colors) == 0 && len(a.Typography.Families) == 0 && len(style.LayoutFlags) == 0
	return a
}

// AnalyzeColors scores palette harmony as the mean of three checks:
// contrast, role balance and cohesion.
func AnalyzeColors(colors []models.DeclaredColor) models.ColorHarmony {
	type parsed struct {
		role      models.ColorRole
		lightness float64
	}

	seen := make(map[string]parsed)
	var order []string
	for _, dc := range colors {
		c, ok := parseColor(dc.Value)
		if !ok {
			continue
		}
		key := c.Hex()
		if _, dup := seen[key]; dup {
			continue
		}
		l, _, _ := c.Lab()
		seen[key] = parsed{role: dc.Role, lightness: l}
		order = append(order, key)
	}

	h := models.ColorHarmony{Colors: order}
	if len(order) < 2 {
		h.Score = 0.5
		h.Label = LabelInsufficient
		return h
	}

	var hasDark, hasLight bool
	counts := map[models.ColorRole]int{}
	for _, key := range order {
		p := seen[key]
		if p.lightness < darkLightness {
			hasDark = true
		}
		if p.lightness > lightLightness {
			hasLight = true
		}
		role := p.role
		if role != models.RolePrimary && role != models.RoleAccent {
			role = models.RoleNeutral
		}
		counts[role]++
	}

	h.Contrast = hasDark && hasLight
	h.Balance = roleSkew(counts, len(order)) < 0.5
	h.Cohesion = len(order) <= maxCohesive
	h.Score = round2((boolScore(h.Contrast) + boolScore(h.Balance) + boolScore(h.Cohesion)) / 3)

	switch {
	case h.Score > 0.7:
		h.Label = LabelExcellent
	case h.Score > 0.5:
		h.Label = LabelGood
	default:
		h.Label = LabelNeedsImprovement
	}
	return h
}

// roleSkew is the spread between the most and least used roles that
// appear at all, relative to the total.
func roleSkew(counts map[models.ColorRole]int, total int) float64 {
	if total == 0 {
		return 1
	}
	minC, maxC := math.MaxInt, 0
	for _, n := range counts {
		if n < minC {
			minC = n
		}
		if n > maxC {
			maxC = n
		}
	}
	return float64(maxC-minC) / float64(total)
}

func parseColor(value string) (colorful.Color, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return colorful.Color{}, false
	}
	if m := rgbRegexp.FindStringSubmatch(v); m != nil {
		var rgb [3]float64
		for i := 0; i < 3; i++ {
			n, err := strconv.Atoi(m[i+1])
			if err != nil || n > 255 {
				return colorful.Color{}, false
			}
			rgb[i] = float64(n) / 255
		}
		return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, true
	}
	c, err := colorful.Hex(v)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// AnalyzeLayout classifies the grid system, spacing rhythm and
// responsiveness.
func AnalyzeLayout(flags []string, spacing []string) models.LayoutSignature {
	set := make(map[string]bool, len(flags))
	for _, f := range flags {
		set[f] = true
	}

	sig := models.LayoutSignature{Grid: GridTraditional}
	for _, g := range []string{GridCSSGrid, GridFlexbox, GridFloat} {
		if set[g] {
			sig.Grid = g
			break
		}
	}

	sig.Spacing = classifySpacing(spacing)

	present := 0
	for _, f := range responsiveFlags {
		if set[f] {
			present++
		}
	}
	sig.Responsiveness = float64(present) / float64(len(responsiveFlags))
	switch {
	case sig.Responsiveness >= 0.75:
		sig.ResponsivenessLabel = LabelExcellent
	case sig.Responsiveness >= 0.5:
		sig.ResponsivenessLabel = LabelGood
	default:
		sig.ResponsivenessLabel = LabelBasic
	}
	return sig
}

func classifySpacing(values []string) string {
	px := make([]float64, 0, len(values))
	for _, v := range values {
		if n, ok := parseLengthPx(v); ok && n > 0 {
			px = append(px, n)
		}
	}
	if len(px) == 0 {
		return SpacingBalanced
	}

	sort.Float64s(px)
	var sum float64
	for _, n := range px {
		sum += n
	}
	mean := sum / float64(len(px))

	switch {
	case len(px) >= 3 && multiplesOf(px, px[0]):
		return SpacingConsistent
	case mean >= 32:
		return SpacingGenerous
	case mean <= 12:
		return SpacingTight
	default:
		return SpacingBalanced
	}
}

func multiplesOf(values []float64, base float64) bool {
	for _, v := range values {
		q := v / base
		if math.Abs(q-math.Round(q)) > 0.01 {
			return false
		}
	}
	return true
}

// parseLengthPx converts px, rem and em lengths to pixels. Unitless
// numbers are treated as pixels.
func parseLengthPx(v string) (float64, bool) {
	m := lengthRegexp.FindStringSubmatch(strings.ToLower(strings.TrimSpace(v)))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] == "rem" || m[2] == "em" {
		n *= remPixels
	}
	return n, true
}

// AnalyzeTypography extracts distinct families, sizes and weights and
// grades the hierarchy.
func AnalyzeTypography(fonts []models.FontDeclaration) models.TypographySignature {
	families := distinctStrings(fonts, func(f models.FontDeclaration) string { return normaliseText(f.Family) })
	sizes := distinctStrings(fonts, func(f models.FontDeclaration) string { return strings.ToLower(normaliseText(f.Size)) })

	weightSet := map[int]bool{}
	var weights []int
	for _, f := range fonts {
		if f.Weight > 0 && !weightSet[f.Weight] {
			weightSet[f.Weight] = true
			weights = append(weights, f.Weight)
		}
	}
	sort.Ints(weights)

	sig := models.TypographySignature{Families: families, Sizes: sizes, Weights: weights}
	switch {
	case len(sizes) >= 4 && len(weights) >= 3:
		sig.Hierarchy = HierarchyStrong
	case len(sizes) >= 3 && len(weights) >= 2:
		sig.Hierarchy = HierarchyModerate
	default:
		sig.Hierarchy = HierarchyBasic
	}
	return sig
}

func distinctStrings(fonts []models.FontDeclaration, key func(models.FontDeclaration) string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, f := range fonts {
		k := key(f)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// AnalyzeContent counts sections and blocks and grades the image/text
// balance.
func AnalyzeContent(sections []models.Section) models.ContentSignature {
	sig := models.ContentSignature{Sections: len(sections)}
	for _, s := range sections {
		for _, b := range s.Blocks {
			switch b.Kind {
			case models.BlockImage:
				sig.Images++
			case models.BlockCTA:
				sig.CallsToAction++
			case models.BlockText, models.BlockField, models.BlockListItem:
				sig.TextBlocks++
			}
		}
	}

	switch {
	case sig.TextBlocks == 0 && sig.Images > 0:
		sig.Balance = BalanceImageHeavy
	case sig.Images == 0:
		sig.Balance = BalanceTextHeavy
	default:
		ratio := float64(sig.Images) / float64(sig.TextBlocks)
		switch {
		case ratio > 0.5:
			sig.Balance = BalanceImageBalanced
		case ratio < 0.2:
			sig.Balance = BalanceTextBalanced
		default:
			sig.Balance = BalanceWell
		}
	}
	return sig
}

// ExtractPatterns turns an analysis into learnable pattern values per
// category. Degraded analyses yield an empty set.
func ExtractPatterns(a models.DesignAnalysis) map[models.PatternCategory][]string {
	out := map[models.PatternCategory][]string{}
	if a.Degraded {
		return out
	}
	if len(a.Color.Colors) > 0 {
		out[models.CategoryColorUsage] = append([]string(nil), a.Color.Colors...)
	}
	out[models.CategoryLayoutStructure] = []string{a.Layout.Grid}
	if len(a.Typography.Families) > 0 {
		out[models.CategoryTypography] = append([]string(nil), a.Typography.Families...)
	}
	return out
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
