package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"flyer-studio/models"
)

// Seasons.
const (
	SeasonSpring = "spring"
	SeasonSummer = "summer"
	SeasonFall   = "fall"
	SeasonWinter = "winter"
)

// Market conditions.
const (
	MarketSellers  = "sellers-market"
	MarketBuyers   = "buyers-market"
	MarketBalanced = "balanced-market"
)

// Property type classes.
const (
	TypeSingleFamily = "single-family"
	TypeCondo        = "condo"
	TypeTownhouse    = "townhouse"
	TypeLuxury       = "luxury"
)

// Price range segments.
const (
	PriceUnder300k = "under-300k"
	Price300to500k = "300k-500k"
	Price500to800k = "500k-800k"
	Price800kPlus  = "800k-plus"
)

// Location tags.
const (
	LocationUrban      = "urban"
	LocationSuburban   = "suburban"
	LocationWaterfront = "waterfront"
	LocationMountain   = "mountain"
)

var (
	// priceRegexp captures the first numeric run, commas included.
	priceRegexp = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

type keywordClass struct {
	class    string
	keywords []string
}

// Match order matters: a "luxury penthouse condo" is luxury.
var propertyTypeKeywords = []keywordClass{
	{TypeLuxury, []string{"luxury", "estate", "mansion", "penthouse", "villa"}},
	{TypeCondo, []string{"condo", "apartment", "flat", "loft", "co-op"}},
	{TypeTownhouse, []string{"townhouse", "townhome", "row house", "rowhouse"}},
	{TypeSingleFamily, []string{"single family", "single-family", "detached", "house", "bungalow", "ranch"}},
}

var locationKeywords = []keywordClass{
	{LocationUrban, []string{"downtown", "city", "urban", "metro", "midtown", "district"}},
	{LocationSuburban, []string{"suburb", "village", "cul-de-sac", "heights", "meadow", "grove"}},
	{LocationWaterfront, []string{"beach", "lake", "bay", "ocean", "river", "harbor", "harbour", "waterfront", "shore", "marina"}},
	{LocationMountain, []string{"mountain", "ridge", "summit", "peak", "canyon", "alpine"}},
}

// Season maps a date's month to a season: Feb–Apr spring, May–Jul summer,
// Aug–Oct fall, otherwise winter.
func Season(t time.Time) string {
	switch m := t.Month(); {
	case m >= time.February && m <= time.April:
		return SeasonSpring
	case m >= time.May && m <= time.July:
		return SeasonSummer
	case m >= time.August && m <= time.October:
		return SeasonFall
	default:
		return SeasonWinter
	}
}

// MarketCondition classifies the listing's market from its telemetry.
// Without telemetry the market is balanced.
func MarketCondition(l models.PropertyListing) string {
	if l.DaysOnMarket == nil {
		return MarketBalanced
	}
	dom := *l.DaysOnMarket
	switch {
	case dom < 15 && len(l.PriceHistory) > 0:
		return MarketSellers
	case dom > 45:
		return MarketBuyers
	default:
		return MarketBalanced
	}
}

// PropertyTypeClass maps the free-text property type to a class.
func PropertyTypeClass(l models.PropertyListing) string {
	class, _ := classifyPropertyType(l.PropertyType)
	return class
}

func classifyPropertyType(raw string) (string, bool) {
	text := strings.ToLower(raw)
	for _, kc := range propertyTypeKeywords {
		for _, kw := range kc.keywords {
			if strings.Contains(text, kw) {
				return kc.class, true
			}
		}
	}
	return TypeSingleFamily, false
}

// ParsePrice extracts the first numeric value from a free-text price,
// ignoring currency symbols and thousands separators. Unparsable input
// yields 0.
func ParsePrice(raw string) float64 {
	match := priceRegexp.FindString(raw)
	if match == "" {
		return 0
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0
	}
	return val
}

// PriceRangeClass buckets a free-text price into contiguous segments.
func PriceRangeClass(price string) string {
	p := ParsePrice(price)
	switch {
	case p < 300000:
		return PriceUnder300k
	case p < 500000:
		return Price300to500k
	case p < 800000:
		return Price500to800k
	default:
		return Price800kPlus
	}
}

// locationMatchers holds one whole-word matcher per location class, in
// locationKeywords order, so "ridge" does not tag "Cambridge".
var locationMatchers = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(locationKeywords))
	for i, kc := range locationKeywords {
		quoted := lo.Map(kc.keywords, func(kw string, _ int) string { return regexp.QuoteMeta(kw) })
		out[i] = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return out
}()

// LocationInsights tags an address by keyword. The result is never nil.
func LocationInsights(address string) []string {
	tags := []string{}
	for i, re := range locationMatchers {
		if re.MatchString(address) {
			tags = append(tags, locationKeywords[i].class)
		}
	}
	return tags
}

// Snapshot computes the market snapshot for a listing at now.
func Snapshot(l models.PropertyListing, now time.Time) models.MarketSnapshot {
	return models.MarketSnapshot{
		Season:            Season(now),
		MarketCondition:   MarketCondition(l),
		PropertyTypeTrend: PropertyTypeClass(l),
		PriceRangeSegment: PriceRangeClass(l.Price),
		LocationInsights:  LocationInsights(l.Address),
		GeneratedAt:       now,
	}
}

var seasonalAdaptations = map[string]models.SeasonalAdaptation{
	SeasonSpring: {
		Palette:     "fresh-greens",
		AccentColor: "#7FB069",
		Features:    []string{"garden", "natural light", "outdoor space"},
		Messaging:   "Fresh start this spring",
	},
	SeasonSummer: {
		Palette:     "sunlit-warm",
		AccentColor: "#F4A259",
		Features:    []string{"pool", "patio", "outdoor living"},
		Messaging:   "Made for summer living",
	},
	SeasonFall: {
		Palette:     "harvest-earth",
		AccentColor: "#BC6C25",
		Features:    []string{"fireplace", "updated kitchen", "mudroom"},
		Messaging:   "Settle in before the holidays",
	},
	SeasonWinter: {
		Palette:     "cozy-cool",
		AccentColor: "#5B7DB1",
		Features:    []string{"fireplace", "energy efficient", "attached garage"},
		Messaging:   "Warm and welcoming all winter",
	},
}

var marketEmphasis = map[string]models.MarketEmphasis{
	MarketSellers:  {Emphasis: "urgency", Messaging: "Homes like this move fast"},
	MarketBuyers:   {Emphasis: "value", Messaging: "Exceptional value in today's market"},
	MarketBalanced: {Emphasis: "quality", Messaging: "Quality living, thoughtfully presented"},
}

var propertyTypeAdaptations = map[string]models.PropertyTypeAdaptation{
	TypeSingleFamily: {Style: "warm-family", Features: []string{"backyard", "bedrooms", "schools"}, Target: "families"},
	TypeCondo:        {Style: "urban-loft", Features: []string{"amenities", "location", "low maintenance"}, Target: "professionals"},
	TypeTownhouse:    {Style: DefaultStyleID, Features: []string{"multi-level living", "garage", "community"}, Target: "first-time buyers"},
	TypeLuxury:       {Style: "premium-luxury", Features: []string{"finishes", "views", "privacy"}, Target: "luxury buyers"},
}

var priceMessaging = map[string]string{
	PriceUnder300k: "An affordable place to call home",
	Price300to500k: "Smart value in a great neighborhood",
	Price500to800k: "Elevated living, room to grow",
	Price800kPlus:  "An exceptional residence",
}

// Adaptations composes the market heuristics into the hints consumed by the
// document assembler.
func Adaptations(l models.PropertyListing, now time.Time) *models.MarketAdaptations {
	snap := Snapshot(l, now)

	ptype := propertyTypeAdaptations[snap.PropertyTypeTrend]
	ptype.Class = snap.PropertyTypeTrend

	return &models.MarketAdaptations{
		Snapshot:     snap,
		Seasonal:     seasonalAdaptations[snap.Season],
		Market:       marketEmphasis[snap.MarketCondition],
		PropertyType: ptype,
		Price: models.PriceAdaptation{
			Segment:   snap.PriceRangeSegment,
			Messaging: priceMessaging[snap.PriceRangeSegment],
		},
		Location:   snap.LocationInsights,
		Confidence: adaptationConfidence(l, snap),
	}
}

// adaptationConfidence scores how much real signal backs the snapshot, in
// tenths to keep the threshold comparison exact.
func adaptationConfidence(l models.PropertyListing, snap models.MarketSnapshot) float64 {
	tenths := 5
	if l.DaysOnMarket != nil {
		tenths += 2
	}
	if _, matched := classifyPropertyType(l.PropertyType); matched {
		tenths++
	}
	if len(snap.LocationInsights) > 0 {
		tenths++
	}
	if ParsePrice(l.Price) > 0 {
		tenths++
	}
	if tenths > 10 {
		tenths = 10
	}
	return float64(tenths) / 10
}

// SuggestStyle picks a design system from market signals when the request
// does not name one.
func SuggestStyle(a *models.MarketAdaptations) string {
	if a == nil {
		return DefaultStyleID
	}
	snap := a.Snapshot
	switch {
	case snap.PropertyTypeTrend == TypeLuxury || snap.PriceRangeSegment == Price800kPlus:
		return "luxury-real-estate"
	case hasTag(snap.LocationInsights, LocationWaterfront):
		return "coastal-fresh"
	case snap.PropertyTypeTrend == TypeCondo && hasTag(snap.LocationInsights, LocationUrban):
		return "urban-loft"
	case a.PropertyType.Style != "":
		return a.PropertyType.Style
	default:
		return DefaultStyleID
	}
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
