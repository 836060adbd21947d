package domain

import "fmt"

// Category groups hazards the way the NRI dataset does.
type Category string

const (
	CategoryGeophysical         Category = "Geophysical Hazards"
	CategoryHydroMeteorological Category = "Hydro-Meteorological Hazards"
	CategoryClimatological      Category = "Climatological Hazards"
)

// HazardDefinition binds a hazard to its NRI feature column and category group.
type HazardDefinition struct {
	FeatureKey   string   `json:"feature_key"`
	DisplayLabel string   `json:"display_label"`
	Category     Category `json:"category"`
}

// hazards is the canonical taxonomy. Every feature key is unique and must
// exist as a column in every county row the engine touches. Dashboard code
// must read from here instead of re-declaring hazard groups inline.
var hazards = []HazardDefinition{
	{FeatureKey: "AVLN_EALT", DisplayLabel: "Avalanche", Category: CategoryGeophysical},
	{FeatureKey: "ERQK_EALT", DisplayLabel: "Earthquake", Category: CategoryGeophysical},
	{FeatureKey: "LNDS_EALT", DisplayLabel: "Landslide", Category: CategoryGeophysical},
	{FeatureKey: "VLCN_EALT", DisplayLabel: "Volcanic Activity", Category: CategoryGeophysical},
	{FeatureKey: "TSUN_EALT", DisplayLabel: "Tsunami", Category: CategoryGeophysical},

	{FeatureKey: "RFLD_EALT", DisplayLabel: "Riverine Flooding", Category: CategoryHydroMeteorological},
	{FeatureKey: "CFLD_EALT", DisplayLabel: "Coastal Flooding", Category: CategoryHydroMeteorological},
	{FeatureKey: "HRCN_EALT", DisplayLabel: "Hurricane", Category: CategoryHydroMeteorological},
	{FeatureKey: "TRND_EALT", DisplayLabel: "Tornado", Category: CategoryHydroMeteorological},
	{FeatureKey: "SWND_EALT", DisplayLabel: "Strong Wind", Category: CategoryHydroMeteorological},
	{FeatureKey: "HAIL_EALT", DisplayLabel: "Hail", Category: CategoryHydroMeteorological},
	{FeatureKey: "LTNG_EALT", DisplayLabel: "Lightning", Category: CategoryHydroMeteorological},

	{FeatureKey: "CWAV_EALT", DisplayLabel: "Cold Wave", Category: CategoryClimatological},
	{FeatureKey: "DRGT_EALT", DisplayLabel: "Drought", Category: CategoryClimatological},
	{FeatureKey: "HWAV_EALT", DisplayLabel: "Heat Wave", Category: CategoryClimatological},
	{FeatureKey: "ISTM_EALT", DisplayLabel: "Ice Storm", Category: CategoryClimatological},
	{FeatureKey: "WNTW_EALT", DisplayLabel: "Winter Weather", Category: CategoryClimatological},
	{FeatureKey: "WFIR_EALT", DisplayLabel: "Wildfire", Category: CategoryClimatological},
}

var hazardByKey = func() map[string]HazardDefinition {
	m := make(map[string]HazardDefinition, len(hazards))
	for _, h := range hazards {
		m[h.FeatureKey] = h
	}
	return m
}()

// presets are sparse multiplier overrides representing scenario archetypes.
// Keys not mentioned by a preset reset to 1.0 when the preset is applied.
var presets = map[string]map[string]float64{
	"wildfire-surge": {
		"WFIR_EALT": 3.0,
		"DRGT_EALT": 2.0,
		"HWAV_EALT": 1.5,
	},
	"hurricane-season": {
		"HRCN_EALT": 2.5,
		"CFLD_EALT": 2.0,
		"SWND_EALT": 1.8,
		"RFLD_EALT": 1.5,
	},
	"deep-freeze": {
		"CWAV_EALT": 2.5,
		"ISTM_EALT": 2.0,
		"WNTW_EALT": 2.0,
	},
	"seismic-shift": {
		"ERQK_EALT": 3.0,
		"TSUN_EALT": 2.0,
		"LNDS_EALT": 1.5,
	},
}

// presetOrder fixes the listing order for UIs; map iteration order is random.
var presetOrder = []string{"wildfire-surge", "hurricane-season", "deep-freeze", "seismic-shift"}

// Hazards returns the full taxonomy in registry order.
func Hazards() []HazardDefinition {
	out := make([]HazardDefinition, len(hazards))
	copy(out, hazards)
	return out
}

// FeatureKeys returns every hazard feature key in registry order.
func FeatureKeys() []string {
	keys := make([]string, len(hazards))
	for i, h := range hazards {
		keys[i] = h.FeatureKey
	}
	return keys
}

// IsHazardKey reports whether key is a registered hazard feature key.
func IsHazardKey(key string) bool {
	_, ok := hazardByKey[key]
	return ok
}

// CategoryOf returns the category group for a feature key.
func CategoryOf(featureKey string) (Category, bool) {
	h, ok := hazardByKey[featureKey]
	if !ok {
		return "", false
	}
	return h.Category, true
}

// PresetNames lists the registered scenario presets.
func PresetNames() []string {
	out := make([]string, len(presetOrder))
	copy(out, presetOrder)
	return out
}

// PresetMultipliers returns a copy of the preset's sparse multiplier overrides.
// Returns ErrUnknownPreset if name is not registered.
func PresetMultipliers(name string) (map[string]float64, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("preset %q: %w", name, ErrUnknownPreset)
	}
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out, nil
}
