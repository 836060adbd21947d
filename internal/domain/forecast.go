package domain

import (
	"fmt"
	"math"
	"time"
)

// ColorTransform compresses a heavy-tailed loss distribution for choropleth
// rendering. All transforms are strictly monotonic on non-negative inputs.
type ColorTransform string

const (
	TransformIdentity ColorTransform = "identity"
	TransformSqrt     ColorTransform = "sqrt"
	TransformLog1p    ColorTransform = "log1p"
)

// ParseColorTransform validates a transform name.
func ParseColorTransform(s string) (ColorTransform, error) {
	switch ColorTransform(s) {
	case TransformIdentity, TransformSqrt, TransformLog1p:
		return ColorTransform(s), nil
	default:
		return "", fmt.Errorf("unknown color transform %q", s)
	}
}

// Apply maps a loss value to its color-scale value. Negative inputs (the
// model may emit small negative losses near zero) map to 0 under the
// compressing transforms, which are only defined on non-negatives.
func (t ColorTransform) Apply(v float64) float64 {
	switch t {
	case TransformSqrt:
		if v < 0 {
			return 0
		}
		return math.Sqrt(v)
	case TransformLog1p:
		if v < 0 {
			return 0
		}
		return math.Log1p(v)
	default:
		return v
	}
}

// ForecastRow is the per-county output of one recomputation.
type ForecastRow struct {
	GeoKey        string  `json:"geo_key"`
	State         string  `json:"state"`
	Name          string  `json:"name"`
	BaselineLoss  float64 `json:"baseline_loss"`
	PredictedLoss float64 `json:"predicted_loss"`
	Delta         float64 `json:"delta"`
	ColorValue    float64 `json:"color_value"`
}

// ForecastResult is a complete recomputation output. It is freshly
// constructed on every scenario change and never mutated in place; row order
// matches the input county order.
type ForecastResult struct {
	Rows        []ForecastRow      `json:"rows"`
	GeneratedAt time.Time          `json:"generated_at"`
	Preset      string             `json:"preset,omitempty"`
	Multipliers map[string]float64 `json:"multipliers"`
}
