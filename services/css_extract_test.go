package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flyer-studio/models"
)

const sampleMarkup = `<html><head>
<style>
/* palette */
:root { --color-primary: #14213D; --color-accent: #D4AF37; --space-md: 16px; }
body { color: #0D1321; background: #FFFFFF; font-family: 'Source Sans Pro', Arial; font-size: 1rem; font-weight: normal; }
h1 { font-family: Georgia, serif; font-size: 3rem; font-weight: bold; color: var(--color-primary); }
.accent { border-color: var(--color-accent); }
.grid { display: grid; gap: 8px 24px; padding: 32px; }
img { max-width: 100%; }
@media (min-width: 768px) { .grid { grid-template-columns: repeat(12, 1fr); } }
</style></head>
<body><img srcset="a.jpg 1x, a@2x.jpg 2x" src="a.jpg"></body></html>`

func TestExtractDeclarationsColors(t *testing.T) {
	decl := ExtractDeclarations(sampleMarkup)

	values := make([]string, 0, len(decl.Colors))
	for _, c := range decl.Colors {
		values = append(values, c.Value)
	}
	assert.ElementsMatch(t, []string{"#14213D", "#D4AF37", "#0D1321", "#FFFFFF"}, values)

	for _, c := range decl.Colors {
		if c.Value == "#D4AF37" && c.Role != models.RoleAccent {
			t.Errorf("accent color role: got %q, want %q", c.Role, models.RoleAccent)
		}
	}
}

func TestExtractDeclarationsLayout(t *testing.T) {
	decl := ExtractDeclarations(sampleMarkup)

	for _, flag := range []string{
		models.FlagCSSGrid, models.FlagMediaQueries, models.FlagMobileFirst,
		models.FlagResponsiveImages, models.FlagFlexibleUnits,
	} {
		if !decl.HasFlag(flag) {
			t.Errorf("missing layout flag %q in %v", flag, decl.LayoutFlags)
		}
	}
	if decl.HasFlag(models.FlagFloat) {
		t.Error("unexpected float flag")
	}
	assert.ElementsMatch(t, []string{"16px", "8px", "24px", "32px"}, decl.Spacing)
}

func TestExtractDeclarationsFonts(t *testing.T) {
	decl := ExtractDeclarations(sampleMarkup)
	sig := AnalyzeTypography(decl.Fonts)

	assert.Equal(t, []string{"'Source Sans Pro', Arial", "Georgia, serif"}, sig.Families)
	assert.Equal(t, []int{400, 700}, sig.Weights)
}

func TestExtractDeclarationsBareCSS(t *testing.T) {
	decl := ExtractDeclarations(".row { float: left; margin: 10px; color: rgb(20, 20, 20); }")

	if !decl.HasFlag(models.FlagFloat) {
		t.Errorf("expected float flag, got %v", decl.LayoutFlags)
	}
	if len(decl.Colors) != 1 || decl.Colors[0].Value != "rgb(20, 20, 20)" {
		t.Errorf("colors: got %+v", decl.Colors)
	}
}

func TestExtractDeclarationsEmpty(t *testing.T) {
	decl := ExtractDeclarations("")
	if len(decl.Colors) != 0 || len(decl.Fonts) != 0 || len(decl.LayoutFlags) != 0 {
		t.Errorf("expected empty declarations, got %+v", decl)
	}
	if !AnalyzeStyles(decl, nil).Degraded {
		t.Error("empty markup should analyze as degraded")
	}
}

func TestAnalyzeMarkup(t *testing.T) {
	a := AnalyzeMarkup(sampleMarkup, fixedNow)

	assert.False(t, a.Design.Degraded)
	assert.Equal(t, GridCSSGrid, a.Design.Layout.Grid)
	assert.Contains(t, a.Design.Color.Colors, "#d4af37")
	assert.NotEmpty(t, a.Patterns[models.CategoryColorUsage])
	assert.Equal(t, fixedNow, a.AnalyzedAt)
	assert.Empty(t, a.Warnings)

	bare := AnalyzeMarkup("<p>no styles here</p>", fixedNow)
	assert.True(t, bare.Design.Degraded)
	if assert.Len(t, bare.Warnings, 1) {
		assert.Equal(t, models.WarnAnalysisDegraded, bare.Warnings[0].Kind)
	}
}
