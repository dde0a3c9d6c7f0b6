package services

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"flyer-studio/models"
)

// DefaultStyleID is the design system used when a requested style is unknown.
const DefaultStyleID = "modern-contemporary"

//go:embed styles.yaml
var stylesYAML []byte

type catalogFile struct {
	Styles []models.DesignSystem `yaml:"styles"`
}

// StyleCatalog is the static lookup of design systems. It is built once at
// process start and never mutated, so it is safe for concurrent use.
type StyleCatalog struct {
	order  []string
	styles map[string]models.DesignSystem
}

// NewStyleCatalog parses the embedded catalog.
func NewStyleCatalog() (*StyleCatalog, error) {
	return parseCatalog(stylesYAML)
}

func parseCatalog(data []byte) (*StyleCatalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	c := &StyleCatalog{styles: make(map[string]models.DesignSystem, len(f.Styles))}
	for _, ds := range f.Styles {
		if ds.ID == "" {
			return nil, fmt.Errorf("catalog: entry %q has no id", ds.Name)
		}
		if _, dup := c.styles[ds.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate id %q", ds.ID)
		}
		c.styles[ds.ID] = ds
		c.order = append(c.order, ds.ID)
	}

	if _, ok := c.styles[DefaultStyleID]; !ok {
		return nil, fmt.Errorf("catalog: default style %q missing", DefaultStyleID)
	}
	return c, nil
}

// Resolve returns the design system for styleID. Unknown ids resolve to the
// default and return an unknown-style warning; the lookup never fails.
// An empty id resolves to the default without a warning.
func (c *StyleCatalog) Resolve(styleID string) (models.DesignSystem, *models.Warning) {
	if ds, ok := c.styles[styleID]; ok {
		return ds, nil
	}

	ds := c.styles[DefaultStyleID]
	if styleID == "" {
		return ds, nil
	}

	w := models.UnknownStyleWarning(styleID, DefaultStyleID)
	return ds, &w
}

// Has reports whether styleID is in the catalog.
func (c *StyleCatalog) Has(styleID string) bool {
	_, ok := c.styles[styleID]
	return ok
}

// List returns all design systems in catalog order.
func (c *StyleCatalog) List() []models.DesignSystem {
	out := make([]models.DesignSystem, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.styles[id])
	}
	return out
}
