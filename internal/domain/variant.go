package domain

import "strings"

// Variant is a map variant voters pick by reacting with its marker emoji.
type Variant string

const (
	VariantDawn     Variant = "Dawn"
	VariantDay      Variant = "Day"
	VariantDusk     Variant = "Dusk"
	VariantNight    Variant = "Night"
	VariantFog      Variant = "Fog"
	VariantOvercast Variant = "Overcast"
	VariantRain     Variant = "Rain"
	VariantSand     Variant = "Sand"
	VariantSnow     Variant = "Snow"
)

const variationSelector = "\uFE0F"

var variantMarkers = []struct {
	variant Variant
	emoji   string
}{
	{VariantDawn, "\U0001F304"},
	{VariantDay, "\U0001F31E"},
	{VariantDusk, "\U0001F306"},
	{VariantNight, "\U0001F31B"},
	{VariantFog, "\U0001F32B\uFE0F"},
	{VariantOvercast, "\U0001F325"},
	{VariantRain, "\U0001F4A7"},
	{VariantSand, "\U0001F32A\uFE0F"},
	{VariantSnow, "\u2744"},
}

// AllVariants returns every known variant in display order.
func AllVariants() []Variant {
	variants := make([]Variant, 0, len(variantMarkers))
	for _, entry := range variantMarkers {
		variants = append(variants, entry.variant)
	}
	return variants
}

// Emoji returns the reaction marker for v, or "" for an unknown variant.
func (v Variant) Emoji() string {
	for _, entry := range variantMarkers {
		if entry.variant == v {
			return entry.emoji
		}
	}
	return ""
}

func (v Variant) Valid() bool {
	return v.Emoji() != ""
}

func ParseVariant(raw string) (Variant, bool) {
	for _, entry := range variantMarkers {
		if strings.EqualFold(string(entry.variant), strings.TrimSpace(raw)) {
			return entry.variant, true
		}
	}
	return "", false
}

// VariantForEmoji matches a reaction emoji to its variant. Discord may or may
// not echo the U+FE0F presentation selector, so both spellings match.
func VariantForEmoji(emoji string) (Variant, bool) {
	trimmed := strings.TrimSuffix(emoji, variationSelector)
	for _, entry := range variantMarkers {
		if entry.emoji == emoji || strings.TrimSuffix(entry.emoji, variationSelector) == trimmed {
			return entry.variant, true
		}
	}
	return "", false
}
