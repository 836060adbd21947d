package domain

// DefaultMultiplierMax bounds slider values when no bound is configured.
const DefaultMultiplierMax = 5.0

// Scenario is the mutable what-if state owned by a single session: one
// multiplier per hazard feature key plus the active geographic selection.
// Recomputation reads a Scenario but never mutates it.
type Scenario struct {
	RegionSelection string
	StateSelection  []string

	maxMultiplier float64
	multipliers   map[string]float64
	activePreset  string
}

// NewScenario returns the identity scenario: every taxonomy key at 1.0.
// maxMultiplier bounds SetMultiplier and preset values; values <= 0 fall back
// to DefaultMultiplierMax.
func NewScenario(maxMultiplier float64) *Scenario {
	if maxMultiplier <= 0 {
		maxMultiplier = DefaultMultiplierMax
	}
	s := &Scenario{
		maxMultiplier: maxMultiplier,
		multipliers:   make(map[string]float64, len(hazards)),
	}
	s.Reset()
	return s
}

// Reset sets every multiplier back to 1.0 and clears the active preset.
func (s *Scenario) Reset() {
	for _, h := range hazards {
		s.multipliers[h.FeatureKey] = 1.0
	}
	s.activePreset = ""
}

// ApplyPreset replaces the entire multiplier set with the preset's overrides:
// mentioned keys take the preset value (clamped), everything else resets to
// 1.0. Presets never stack on top of a prior scenario. Returns
// ErrUnknownPreset, leaving the scenario unchanged, if name is not registered.
func (s *Scenario) ApplyPreset(name string) error {
	overrides, err := PresetMultipliers(name)
	if err != nil {
		return err
	}
	s.Reset()
	for key, v := range overrides {
		if !IsHazardKey(key) {
			// Unknown keys in a preset are ignored, not an error.
			continue
		}
		s.multipliers[key] = s.clamp(v)
	}
	s.activePreset = name
	return nil
}

// SetMultiplier sets one hazard's multiplier, clamped to [0, max]. Unknown
// feature keys are ignored. Editing a multiplier clears the active preset
// marker since the scenario no longer matches the preset exactly.
func (s *Scenario) SetMultiplier(key string, value float64) {
	if !IsHazardKey(key) {
		return
	}
	s.multipliers[key] = s.clamp(value)
	s.activePreset = ""
}

// Multiplier returns the multiplier for key, defaulting to 1.0 for any key
// not explicitly set (including non-taxonomy keys).
func (s *Scenario) Multiplier(key string) float64 {
	if v, ok := s.multipliers[key]; ok {
		return v
	}
	return 1.0
}

// Multipliers returns a copy of the full multiplier map.
func (s *Scenario) Multipliers() map[string]float64 {
	out := make(map[string]float64, len(s.multipliers))
	for k, v := range s.multipliers {
		out[k] = v
	}
	return out
}

// ActivePreset returns the name of the most recently applied preset, or ""
// if the scenario has been reset or edited since.
func (s *Scenario) ActivePreset() string { return s.activePreset }

// IsIdentity reports whether every multiplier is exactly 1.0.
func (s *Scenario) IsIdentity() bool {
	for _, v := range s.multipliers {
		if v != 1.0 {
			return false
		}
	}
	return true
}

func (s *Scenario) clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > s.maxMultiplier {
		return s.maxMultiplier
	}
	return v
}
