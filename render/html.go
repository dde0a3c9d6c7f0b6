package render

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	"strings"
	texttemplate "text/template"

	"flyer-studio/models"
)

// Renderer turns an assembled document into markup.
type Renderer interface {
	Render(doc *models.GeneratedDocument) ([]byte, error)
}

// ErrNilDocument is returned when there is nothing to render.
var ErrNilDocument = errors.New("render: nil document")

const (
	// breakpoint is where the single-column mobile layout widens.
	breakpoint = "768px"
	pageWidth  = 960
)

var keyframes = map[string]string{
	"fade-up":   "translateY(16px)",
	"slide-up":  "translateY(32px)",
	"slide-in":  "translateX(-32px)",
	"zoom-in":   "scale(0.96)",
	"fade-in":   "none",
	"slow-fade": "none",
}

// HTMLRenderer renders a standalone HTML page whose stylesheet is derived
// entirely from the document's StyleDeclarations.
type HTMLRenderer struct {
	page  *htmltemplate.Template
	sheet *texttemplate.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	page, err := htmltemplate.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("render: parse page template: %w", err)
	}
	sheet, err := texttemplate.New("sheet").Parse(sheetTemplate)
	if err != nil {
		return nil, fmt.Errorf("render: parse stylesheet template: %w", err)
	}
	return &HTMLRenderer{page: page, sheet: sheet}, nil
}

type cssVar struct{ Name, Value string }

type fontRule struct {
	Class  string
	Family string
	Size   string
	Weight int
}

type sheetData struct {
	Colors      []cssVar
	Spacing     []cssVar
	Gap         string
	Pad         string
	Fonts       []fontRule
	Grid        string
	Columns     int
	Basis       string
	MediaQuery  string
	MobileFirst bool
	Responsive  bool
	ImageWidth  string
	Animation   *models.AnimationProfile
	Keyframe    string
	PageWidth   string
}

type pageData struct {
	Title      string
	StyleID    string
	Kind       models.FlyerKind
	CSS        htmltemplate.CSS
	Sections   []models.Section
	Responsive bool
}

// Render produces the page. Colors and spacing are declared once as
// custom properties on :root and referenced with var() everywhere else.
func (r *HTMLRenderer) Render(doc *models.GeneratedDocument) ([]byte, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	var css bytes.Buffer
	if err := r.sheet.Execute(&css, buildSheet(doc.Style)); err != nil {
		return nil, fmt.Errorf("render: stylesheet: %w", err)
	}

	title := "Property Flyer"
	if hero, ok := doc.Section(models.SectionHero); ok && hero.Heading != "" {
		title = hero.Heading
	}

	var out bytes.Buffer
	err := r.page.Execute(&out, pageData{
		Title:      title,
		StyleID:    doc.Metadata.DesignSystemID,
		Kind:       doc.Metadata.Kind,
		CSS:        htmltemplate.CSS(css.String()),
		Sections:   doc.Sections,
		Responsive: doc.Style.HasFlag(models.FlagResponsiveImages),
	})
	if err != nil {
		return nil, fmt.Errorf("render: page: %w", err)
	}
	return out.Bytes(), nil
}

func buildSheet(s models.StyleDeclarations) sheetData {
	flexible := s.HasFlag(models.FlagFlexibleUnits)
	columns := s.Columns
	if columns < 1 {
		columns = 1
	}

	d := sheetData{
		Columns:     columns,
		MobileFirst: s.HasFlag(models.FlagMobileFirst),
		Responsive:  s.HasFlag(models.FlagResponsiveImages),
		PageWidth:   strconv.Itoa(pageWidth) + "px",
	}

	p := s.Palette
	for _, c := range []cssVar{
		{"primary", p.Primary}, {"secondary", p.Secondary}, {"accent", p.Accent},
		{"background", p.Background}, {"text", p.Text},
	} {
		if c.Value != "" {
			d.Colors = append(d.Colors, c)
		}
	}

	for i, v := range s.Spacing {
		d.Spacing = append(d.Spacing, cssVar{Name: strconv.Itoa(i + 1), Value: v})
	}
	switch n := len(d.Spacing); {
	case n >= 2:
		d.Gap, d.Pad = "var(--space-1)", "var(--space-2)"
	case n == 1:
		d.Gap, d.Pad = "var(--space-1)", "var(--space-1)"
	}

	for _, f := range s.Fonts {
		if f.Role == "" {
			continue
		}
		d.Fonts = append(d.Fonts, fontRule{
			Class:  "type-" + strings.ToLower(f.Role),
			Family: f.Family,
			Size:   f.Size,
			Weight: f.Weight,
		})
	}

	switch {
	case s.HasFlag(models.FlagCSSGrid):
		d.Grid = models.FlagCSSGrid
	case s.HasFlag(models.FlagFlexbox):
		d.Grid = models.FlagFlexbox
	case s.HasFlag(models.FlagFloat):
		d.Grid = models.FlagFloat
	}
	if flexible {
		d.Basis = strconv.FormatFloat(100/float64(columns), 'f', 2, 64) + "%"
		d.ImageWidth = "100%"
	} else {
		d.Basis = strconv.Itoa(pageWidth/columns) + "px"
		d.ImageWidth = "320px"
	}

	if s.HasFlag(models.FlagMediaQueries) {
		if d.MobileFirst {
			d.MediaQuery = "(min-width: " + breakpoint + ")"
		} else {
			d.MediaQuery = "(max-width: " + breakpoint + ")"
		}
	}

	if a := s.Animation; a.Entrance != "" && a.Entrance != "none" {
		anim := a
		d.Animation = &anim
		d.Keyframe = keyframes[a.Entrance]
		if d.Keyframe == "" {
			d.Keyframe = "none"
		}
	}
	return d
}

const sheetTemplate = `
:root {
{{- range .Colors}}
  --color-{{.Name}}: {{.Value}};
{{- end}}
{{- range .Spacing}}
  --space-{{.Name}}: {{.Value}};
{{- end}}
}
body {
  margin: 0;
  background: var(--color-background);
  color: var(--color-text);
}
.flyer {
  max-width: {{.PageWidth}};
  margin: 0 auto;
}
{{- range .Fonts}}
.{{.Class}} {
  font-family: {{.Family}};
  font-size: {{.Size}};
  font-weight: {{.Weight}};
}
{{- end}}
.type-h1, .type-h2 {
  color: var(--color-primary);
}
.label {
  color: var(--color-secondary);
}
.cta {
  display: inline-block;
  background: var(--color-accent);
  color: var(--color-background);
{{- if .Pad}}
  padding: {{.Pad}};
{{- end}}
}
{{- if eq .Grid "css-grid"}}
.flyer-body {
  display: grid;
{{- if .MobileFirst}}
  grid-template-columns: 1fr;
{{- else}}
  grid-template-columns: repeat({{.Columns}}, 1fr);
{{- end}}
{{- if .Gap}}
  gap: {{.Gap}};
{{- end}}
}
.section {
  grid-column: 1 / -1;
}
{{- else if eq .Grid "flexbox"}}
.flyer-body {
  display: flex;
  flex-wrap: wrap;
{{- if .Gap}}
  gap: {{.Gap}};
{{- end}}
}
.section {
  flex: 1 1 {{.Basis}};
}
{{- else if eq .Grid "float"}}
.section {
  float: left;
  width: {{.Basis}};
}
.flyer-body::after {
  content: "";
  clear: both;
}
{{- end}}
.section {
  box-sizing: border-box;
{{- if .Pad}}
  padding: {{.Pad}};
{{- end}}
{{- if .Animation}}
  animation: flyer-enter {{.Animation.Duration}} {{.Animation.Easing}} both;
{{- end}}
}
.section-hero, .section-footer {
  width: auto;
}
img {
{{- if .Responsive}}
  max-width: 100%;
  height: auto;
{{- else}}
  width: {{.ImageWidth}};
{{- end}}
}
{{- if .Animation}}
@keyframes flyer-enter {
  from { opacity: 0; transform: {{.Keyframe}}; }
  to { opacity: 1; transform: none; }
}
{{- end}}
{{- if .MediaQuery}}
@media {{.MediaQuery}} {
{{- if and .MobileFirst (eq .Grid "css-grid")}}
  .flyer-body { grid-template-columns: repeat({{.Columns}}, 1fr); }
{{- else if .MobileFirst}}
  .flyer { max-width: {{.PageWidth}}; }
{{- else}}
  .section { width: auto; }
{{- end}}
}
{{- end}}
`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body>
<main class="flyer" data-style="{{.StyleID}}" data-kind="{{.Kind}}">
<div class="flyer-body">
{{- range .Sections}}
<section class="section section-{{.Kind}}">
{{- if eq .Kind "hero"}}
<h1 class="type-h1">{{.Heading}}</h1>
{{- else}}
<h2 class="type-h2">{{.Heading}}</h2>
{{- end}}
{{- range .Blocks}}
{{- if eq .Kind "field"}}
<p class="field type-body"><span class="label type-caption">{{.Label}}</span> <span class="value">{{.Text}}</span></p>
{{- else if eq .Kind "image"}}
{{- if .Placeholder}}
<div class="photo-placeholder type-caption">{{if .Text}}{{.Text}}{{else}}Photos coming soon{{end}}</div>
{{- else if $.Responsive}}
<img src="{{.Src}}" srcset="{{.Src}} 1x" alt="Property photo" loading="lazy">
{{- else}}
<img src="{{.Src}}" alt="Property photo">
{{- end}}
{{- else if eq .Kind "list-item"}}
<p class="feature type-body">{{.Text}}</p>
{{- else if eq .Kind "cta"}}
<p><span class="cta type-body">{{.Text}}</span></p>
{{- else}}
<p class="type-body">{{.Text}}</p>
{{- end}}
{{- end}}
</section>
{{- end}}
</div>
</main>
</body>
</html>
`
