package services

import (
	"regexp"
	"strconv"
	"strings"

	"flyer-studio/models"
)

// ExtractDeclarations recovers a StyleDeclarations value from rendered
// markup or a bare stylesheet. It is used only when the structured
// representation is unavailable, e.g. for documents rendered elsewhere.
//
// The scanner is deliberately narrow and accepts false negatives:
//   - colors are found only as hex or rgb()/rgba() literals (no named colors, no hsl());
//   - var() is resolved one level deep against custom properties in the same input;
//   - there is no cascade: every rule's font declarations are taken at face value;
//   - responsive images are detected from srcset or max-width:100%, nothing else.
func ExtractDeclarations(markup string) models.StyleDeclarations {
	css := markup
	if blocks := styleTagRegexp.FindAllStringSubmatch(markup, -1); blocks != nil {
		var sb strings.Builder
		for _, b := range blocks {
			sb.WriteString(b[1])
			sb.WriteByte('\n')
		}
		css = sb.String()
	}
	css = commentRegexp.ReplaceAllString(css, "")

	vars := customProperties(css)
	decl := models.StyleDeclarations{}
	flags := map[string]bool{}
	spacing := map[string]bool{}
	seenColor := map[string]bool{}

	for _, rule := range ruleRegexp.FindAllStringSubmatch(css, -1) {
		var font models.FontDeclaration
		for _, d := range strings.Split(rule[2], ";") {
			prop, value, ok := strings.Cut(d, ":")
			if !ok {
				continue
			}
			prop = strings.ToLower(strings.TrimSpace(prop))
			value = resolveVars(strings.TrimSpace(value), vars)
			lower := strings.ToLower(value)

			for _, c := range colorLiterals(value) {
				key := strings.ToLower(c)
				if seenColor[key] {
					continue
				}
				seenColor[key] = true
				decl.Colors = append(decl.Colors, models.DeclaredColor{Role: roleForProperty(prop), Value: c})
			}

			switch {
			case prop == "display" && (lower == "grid" || lower == "inline-grid"):
				flags[models.FlagCSSGrid] = true
			case prop == "display" && (lower == "flex" || lower == "inline-flex"):
				flags[models.FlagFlexbox] = true
			case prop == "float" && (lower == "left" || lower == "right"):
				flags[models.FlagFloat] = true
			case prop == "max-width" && lower == "100%":
				flags[models.FlagResponsiveImages] = true
			case prop == "font-family":
				font.Family = value
			case prop == "font-size":
				font.Size = value
			case prop == "font-weight":
				if w, err := strconv.Atoi(lower); err == nil {
					font.Weight = w
				} else if lower == "bold" {
					font.Weight = 700
				} else if lower == "normal" {
					font.Weight = 400
				}
			case isSpacingProperty(prop):
				for _, part := range strings.Fields(lower) {
					if _, ok := parseLengthPx(part); ok && !spacing[part] {
						spacing[part] = true
						decl.Spacing = append(decl.Spacing, part)
					}
				}
			}

			if !strings.HasPrefix(prop, "--") && flexibleUnitRegexp.MatchString(lower) {
				flags[models.FlagFlexibleUnits] = true
			}
		}
		if font.Family != "" || font.Size != "" || font.Weight != 0 {
			font.Role = strings.TrimSpace(rule[1])
			decl.Fonts = append(decl.Fonts, font)
		}
	}

	if mediaRegexp.MatchString(css) {
		flags[models.FlagMediaQueries] = true
		if mobileFirstRegexp.MatchString(css) {
			flags[models.FlagMobileFirst] = true
		}
	}
	if strings.Contains(strings.ToLower(markup), "srcset=") {
		flags[models.FlagResponsiveImages] = true
	}

	for _, f := range []string{
		models.FlagCSSGrid, models.FlagFlexbox, models.FlagFloat, models.FlagMediaQueries,
		models.FlagFlexibleUnits, models.FlagResponsiveImages, models.FlagMobileFirst,
	} {
		if flags[f] {
			decl.LayoutFlags = append(decl.LayoutFlags, f)
		}
	}
	return decl
}

var (
	styleTagRegexp     = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)
	commentRegexp      = regexp.MustCompile(`(?s)/\*.*?\*/`)
	ruleRegexp         = regexp.MustCompile(`([^{}]+)\{([^{}]*)\}`)
	customPropRegexp   = regexp.MustCompile(`(--[\w-]+)\s*:\s*([^;{}]+)`)
	varRegexp          = regexp.MustCompile(`var\(\s*(--[\w-]+)\s*\)`)
	colorLiteralRegexp = regexp.MustCompile(`(?i)#[0-9a-f]{6}\b|#[0-9a-f]{3}\b|rgba?\([^)]*\)`)
	flexibleUnitRegexp = regexp.MustCompile(`\d(rem|em|%|vw|vh|fr)\b|\d%`)
	mediaRegexp        = regexp.MustCompile(`(?i)@media`)
	mobileFirstRegexp  = regexp.MustCompile(`(?i)@media[^{]*min-width`)
)

func customProperties(css string) map[string]string {
	vars := map[string]string{}
	for _, m := range customPropRegexp.FindAllStringSubmatch(css, -1) {
		vars[m[1]] = strings.TrimSpace(m[2])
	}
	return vars
}

func resolveVars(value string, vars map[string]string) string {
	return varRegexp.ReplaceAllStringFunc(value, func(ref string) string {
		name := varRegexp.FindStringSubmatch(ref)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return ref
	})
}

func colorLiterals(value string) []string {
	return colorLiteralRegexp.FindAllString(value, -1)
}

func roleForProperty(prop string) models.ColorRole {
	switch {
	case strings.Contains(prop, "accent"):
		return models.RoleAccent
	case strings.Contains(prop, "primary"), strings.Contains(prop, "secondary"), strings.Contains(prop, "border"):
		return models.RolePrimary
	default:
		return models.RoleNeutral
	}
}

func isSpacingProperty(prop string) bool {
	return prop == "gap" || prop == "row-gap" || prop == "column-gap" ||
		strings.HasPrefix(prop, "margin") || strings.HasPrefix(prop, "padding") ||
		strings.HasPrefix(prop, "--space")
}
