// Command genmock generates a synthetic county hazard dataset plus matching
// feature manifest and linear model weights. It uses the actual domain
// registry so generated fixtures always agree with the hazard taxonomy, and a
// seeded RNG so output is reproducible.
//
// Usage:
//
//	go run ./cmd/genmock -out data -counties 120 -seed 42
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/couchcryptid/eal-forecast-service/internal/domain"
)

// stateDef places a state in a census region with a FIPS prefix.
type stateDef struct {
	code   string
	fips   string
	region string
}

var states = []stateDef{
	{code: "CA", fips: "06", region: "West"},
	{code: "WA", fips: "53", region: "West"},
	{code: "CO", fips: "08", region: "West"},
	{code: "TX", fips: "48", region: "South"},
	{code: "FL", fips: "12", region: "South"},
	{code: "LA", fips: "22", region: "South"},
	{code: "OK", fips: "40", region: "South"},
	{code: "IL", fips: "17", region: "Midwest"},
	{code: "OH", fips: "39", region: "Midwest"},
	{code: "MN", fips: "27", region: "Midwest"},
	{code: "NY", fips: "36", region: "Northeast"},
	{code: "MA", fips: "25", region: "Northeast"},
}

var countyNames = []string{
	"Adams", "Baker", "Clay", "Douglas", "Elm Grove", "Franklin", "Grant",
	"Harrison", "Irving", "Jackson", "Kestrel", "Lincoln", "Monroe", "Norwood",
	"Oakdale", "Pierce", "Quincy", "Riverton", "Sumner", "Tyler", "Union",
	"Vernon", "Webster", "Yates",
}

// hazardScale biases magnitudes so hazards plausible for a region dominate
// its counties. Keys are category labels.
var hazardScale = map[string]map[domain.Category]float64{
	"West":      {domain.CategoryGeophysical: 4.0, domain.CategoryClimatological: 3.0},
	"South":     {domain.CategoryHydroMeteorological: 4.0, domain.CategoryClimatological: 2.0},
	"Midwest":   {domain.CategoryHydroMeteorological: 3.0},
	"Northeast": {domain.CategoryHydroMeteorological: 1.5},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data", "output directory for generated fixtures")
	countyCount := flag.Int("counties", 120, "number of counties to generate")
	seed := flag.Int64("seed", 42, "RNG seed for reproducible output")
	flag.Parse()

	if *countyCount <= 0 {
		return fmt.Errorf("-counties must be positive, got %d", *countyCount)
	}

	rng := rand.New(rand.NewSource(*seed))

	counties := generateCounties(rng, *countyCount)

	manifest := domain.FeatureKeys()
	weights := generateWeights(rng, manifest)

	csvPath := filepath.Join(*outDir, "county_hazard_dataset.csv")
	if err := writeDatasetCSV(csvPath, manifest, counties); err != nil {
		return fmt.Errorf("writing dataset: %w", err)
	}
	log.Printf("wrote dataset: %s (%d counties)", csvPath, len(counties))

	manifestPath := filepath.Join(*outDir, "feature_columns.json")
	if err := writeJSON(manifestPath, manifest); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	log.Printf("wrote manifest: %s (%d features)", manifestPath, len(manifest))

	weightsPath := filepath.Join(*outDir, "model_weights.json")
	if err := writeJSON(weightsPath, weights); err != nil {
		return fmt.Errorf("writing weights: %w", err)
	}
	log.Printf("wrote weights: %s", weightsPath)

	printStats(counties, weights)
	return nil
}

func generateCounties(rng *rand.Rand, n int) []domain.County {
	counties := make([]domain.County, 0, n)
	used := map[string]bool{}

	for i := 0; i < n; i++ {
		st := states[rng.Intn(len(states))]

		// County FIPS codes are odd-numbered in real NRI data.
		var geoKey string
		for {
			countyFIPS := 1 + 2*rng.Intn(400)
			geoKey = st.fips + fmt.Sprintf("%03d", countyFIPS)
			if !used[geoKey] {
				used[geoKey] = true
				break
			}
		}

		features := make(map[string]float64, len(domain.FeatureKeys()))
		for _, h := range domain.Hazards() {
			scale := 1.0
			if s, ok := hazardScale[st.region][h.Category]; ok {
				scale = s
			}
			// Exponential-ish loss distribution: many small values,
			// occasional large ones.
			base := rng.Float64() * rng.Float64() * 50000 * scale
			features[h.FeatureKey] = round2(base)
		}

		name := countyNames[rng.Intn(len(countyNames))]
		counties = append(counties, domain.County{
			GeoKey:   geoKey,
			Region:   st.region,
			State:    st.code,
			Name:     name,
			Features: features,
		})
	}
	return counties
}

func generateWeights(rng *rand.Rand, manifest []string) map[string]any {
	weights := make(map[string]float64, len(manifest))
	for _, key := range manifest {
		// Positive weights near 1 so predictions track raw losses.
		weights[key] = round2(0.5 + rng.Float64())
	}
	return map[string]any{
		"intercept": 0.0,
		"weights":   weights,
	}
}

func writeDatasetCSV(path string, manifest []string, counties []domain.County) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := append([]string{"NRI_ID", "STATE", "COUNTY", "REGION"}, manifest...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, c := range counties {
		// Dataset NRI_IDs carry a leading "C" before the FIPS code.
		row := []string{"C" + c.GeoKey, c.State, c.Name, c.Region}
		for _, key := range manifest {
			row = append(row, strconv.FormatFloat(c.Features[key], 'f', 2, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

type keyTotal struct {
	key   string
	total float64
}

func printStats(counties []domain.County, weights map[string]any) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total counties: %d\n", len(counties))

	regionCounts := map[string]int{}
	stateCounts := map[string]int{}
	hazardTotals := map[string]float64{}
	for _, c := range counties {
		regionCounts[c.Region]++
		stateCounts[c.State]++
		for key, v := range c.Features {
			hazardTotals[key] += v
		}
	}

	fmt.Printf("By region: ")
	for _, region := range []string{"West", "South", "Midwest", "Northeast"} {
		fmt.Printf("%s=%d ", region, regionCounts[region])
	}
	fmt.Println()

	sc := make([]keyTotal, 0, len(stateCounts))
	for s, c := range stateCounts {
		sc = append(sc, keyTotal{s, float64(c)})
	}
	sort.Slice(sc, func(i, j int) bool { return sc[i].total > sc[j].total })
	fmt.Printf("States (%d): ", len(sc))
	for _, s := range sc {
		fmt.Printf("%s=%.0f ", s.key, s.total)
	}
	fmt.Println()

	ht := make([]keyTotal, 0, len(hazardTotals))
	for k, v := range hazardTotals {
		ht = append(ht, keyTotal{k, v})
	}
	sort.Slice(ht, func(i, j int) bool { return ht[i].total > ht[j].total })
	fmt.Println("\nTop hazards by total expected loss:")
	for _, h := range ht[:min(5, len(ht))] {
		fmt.Printf("  %-10s %14.2f\n", h.key, h.total)
	}

	// Top county by summed loss, useful as a ranking spot-check.
	var topCounty domain.County
	var topLoss float64
	for _, c := range counties {
		var total float64
		for _, v := range c.Features {
			total += v
		}
		if total > topLoss {
			topLoss = total
			topCounty = c
		}
	}
	fmt.Printf("\nTop county: %s, %s (geo key %s, total %.2f)\n",
		topCounty.Name, topCounty.State, topCounty.GeoKey, topLoss)
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}
