// Command validate performs end-to-end integrity checks across the forecast
// data inputs: the county hazard dataset CSV, the feature manifest, and the
// linear model weights. It verifies taxonomy alignment, dataset shape, and
// forecast invariants (identity scenarios reproduce baseline, presets apply
// deterministically).
//
// Usage:
//
//	go run ./cmd/validate \
//	  -dataset data/county_hazard_dataset.csv \
//	  -manifest data/feature_columns.json \
//	  -weights data/model_weights.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/eal-forecast-service/internal/adapter/dataset"
	"github.com/couchcryptid/eal-forecast-service/internal/adapter/model"
	"github.com/couchcryptid/eal-forecast-service/internal/domain"
	"github.com/couchcryptid/eal-forecast-service/internal/engine"
	"github.com/couchcryptid/eal-forecast-service/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	datasetPath := flag.String("dataset", "data/county_hazard_dataset.csv", "path to the county hazard dataset CSV")
	manifestPath := flag.String("manifest", "data/feature_columns.json", "path to the feature manifest JSON")
	weightsPath := flag.String("weights", "data/model_weights.json", "path to the linear model weights JSON")
	flag.Parse()

	if code := run(*datasetPath, *manifestPath, *weightsPath); code != 0 {
		os.Exit(code)
	}
}

func run(datasetPath, manifestPath, weightsPath string) int {
	// Fix the clock so forecast timestamps are reproducible across runs.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.March, 14, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Forecast Data Integrity Validation ===")
	fmt.Println()

	logger := slog.New(slog.DiscardHandler)

	table, err := dataset.Load(datasetPath, manifestPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	linear, err := model.LoadLinear(weightsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load model weights: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateTaxonomyAlignment(table),
		validateDatasetIntegrity(table),
		validateModelAlignment(table, linear),
		validateForecastInvariants(table, linear),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d counties, %d manifest features, %d model weights\n",
		len(table.Counties), len(table.Manifest), len(linear.Weights))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Taxonomy Alignment ──
// The feature manifest must agree with the hazard registry so that every
// slider in the UI maps to a real dataset column.

func validateTaxonomyAlignment(table domain.Table) *phase {
	p := &phase{name: "Phase 1: Taxonomy Alignment (manifest)"}

	seen := map[string]bool{}
	for i, key := range table.Manifest {
		if seen[key] {
			p.errorf("manifest entry %d: duplicate feature %q", i, key)
		}
		seen[key] = true
		if !domain.IsHazardKey(key) {
			p.errorf("manifest entry %d: %q is not a known hazard feature", i, key)
		}
	}

	for _, key := range domain.FeatureKeys() {
		if !seen[key] {
			p.errorf("hazard feature %q missing from manifest", key)
		}
	}

	// Every preset must reference only manifest features.
	for _, name := range domain.PresetNames() {
		multipliers, err := domain.PresetMultipliers(name)
		if err != nil {
			p.errorf("preset %q: %v", name, err)
			continue
		}
		for key := range multipliers {
			if !seen[key] {
				p.errorf("preset %q references feature %q not in manifest", name, key)
			}
		}
	}
	return p
}

// ── Phase 2: Dataset Integrity ──
// Counties must have well-formed FIPS codes, unique geo keys, and sane
// feature values.

func validateDatasetIntegrity(table domain.Table) *phase {
	p := &phase{name: "Phase 2: Dataset Integrity (counties)"}

	if len(table.Counties) == 0 {
		p.errorf("dataset is empty")
		return p
	}

	seen := map[string]int{}
	for i, c := range table.Counties {
		if len(c.GeoKey) != 5 {
			p.errorf("county %d (%s): geo key %q is not 5 characters", i, c.Name, c.GeoKey)
		}
		for _, r := range c.GeoKey {
			if r < '0' || r > '9' {
				p.errorf("county %d (%s): geo key %q contains non-digit %q", i, c.Name, c.GeoKey, r)
				break
			}
		}
		if prev, dup := seen[c.GeoKey]; dup {
			p.errorf("county %d (%s): geo key %q already used by county %d", i, c.Name, c.GeoKey, prev)
		}
		seen[c.GeoKey] = i

		if len(c.State) != 2 {
			p.errorf("county %d (%s): state %q is not 2 characters", i, c.Name, c.State)
		}
		if c.Name == "" {
			p.errorf("county %d (geo key %s): name is empty", i, c.GeoKey)
		}

		for key, v := range c.Features {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				p.errorf("county %d (%s): feature %s is %g", i, c.Name, key, v)
			}
			if v < 0 {
				p.errorf("county %d (%s): feature %s is negative (%g)", i, c.Name, key, v)
			}
		}
	}
	return p
}

// ── Phase 3: Model Alignment ──
// The linear model must carry a weight for every manifest feature.

func validateModelAlignment(table domain.Table, linear *model.Linear) *phase {
	p := &phase{name: "Phase 3: Model Alignment (weights)"}

	for _, key := range table.Manifest {
		if _, ok := linear.Weights[key]; !ok {
			p.errorf("no weight for manifest feature %q", key)
		}
	}
	for key := range linear.Weights {
		if !domain.IsHazardKey(key) {
			p.errorf("weight %q does not match any hazard feature", key)
		}
	}
	return p
}

// ── Phase 4: Forecast Invariants ──
// An identity scenario must reproduce baselines exactly, and applying a
// preset must change only the features the preset names.

func validateForecastInvariants(table domain.Table, linear *model.Linear) *phase {
	p := &phase{name: "Phase 4: Forecast Invariants (engine)"}

	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)
	metrics := observability.NewMetricsForTesting()
	eng := engine.New(linear, table.Manifest, domain.TransformIdentity, logger, metrics)

	identity := domain.NewScenario(domain.DefaultMultiplierMax)
	result, err := eng.Recompute(ctx, table.Counties, identity)
	if err != nil {
		p.errorf("identity recompute: %v", err)
		return p
	}
	if len(result.Rows) != len(table.Counties) {
		p.errorf("identity recompute: expected %d rows, got %d", len(table.Counties), len(result.Rows))
	}
	for _, row := range result.Rows {
		if !floatEq(row.PredictedLoss, row.BaselineLoss) {
			p.errorf("county %s: identity scenario changed loss: baseline=%g predicted=%g",
				row.GeoKey, row.BaselineLoss, row.PredictedLoss)
		}
		if !floatEq(row.Delta, 0) {
			p.errorf("county %s: identity scenario delta is %g", row.GeoKey, row.Delta)
		}
	}

	for _, name := range domain.PresetNames() {
		scenario := domain.NewScenario(domain.DefaultMultiplierMax)
		if err := scenario.ApplyPreset(name); err != nil {
			p.errorf("preset %q: %v", name, err)
			continue
		}

		expected, err := domain.PresetMultipliers(name)
		if err != nil {
			p.errorf("preset %q: %v", name, err)
			continue
		}
		for key, want := range expected {
			if got := scenario.Multiplier(key); !floatEq(got, want) {
				p.errorf("preset %q: feature %s multiplier is %g, want %g", name, key, got, want)
			}
		}
		for _, key := range table.Manifest {
			if _, named := expected[key]; named {
				continue
			}
			if got := scenario.Multiplier(key); !floatEq(got, 1.0) {
				p.errorf("preset %q: feature %s not named by preset but multiplier is %g", name, key, got)
			}
		}
	}
	return p
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
