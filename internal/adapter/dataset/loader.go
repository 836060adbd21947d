// Package dataset loads the NRI county hazard dataset and its feature
// manifest from disk into the in-memory table the engine recomputes over.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/eal-forecast-service/internal/domain"
)

// Identity columns expected in every dataset CSV. REGION is optional; rows
// without it simply cannot be filtered by region.
const (
	colNRIID  = "NRI_ID"
	colRegion = "REGION"
	colState  = "STATE"
	colCounty = "COUNTY"
)

// Load reads the county CSV and the feature manifest JSON and assembles the
// dataset table. The manifest is authoritative: CSV columns it does not list
// are ignored, and a listed column missing from the CSV header is an error.
// Absent or non-numeric feature values are filled with 0.0.
func Load(datasetPath, manifestPath string, logger *slog.Logger) (domain.Table, error) {
	manifest, err := loadManifest(manifestPath)
	if err != nil {
		return domain.Table{}, err
	}

	counties, err := loadCounties(datasetPath, manifest, logger)
	if err != nil {
		return domain.Table{}, err
	}

	logger.Info("dataset loaded",
		"counties", len(counties),
		"features", len(manifest),
		"path", datasetPath,
	)
	return domain.Table{Counties: counties, Manifest: manifest}, nil
}

// loadManifest reads the ordered feature column list.
func loadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature manifest: %w", err)
	}
	var manifest []string
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse feature manifest: %w", err)
	}
	if len(manifest) == 0 {
		return nil, fmt.Errorf("feature manifest %s is empty", path)
	}
	return manifest, nil
}

func loadCounties(path string, manifest []string, logger *slog.Logger) ([]domain.County, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset csv: %w", err)
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	header := all[0]
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}

	for _, col := range []string{colNRIID, colState, colCounty} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("dataset %s: missing identity column %q", path, col)
		}
	}
	for i, key := range manifest {
		if _, ok := colIdx[key]; !ok {
			return nil, fmt.Errorf("dataset %s: %w", path, &domain.MissingFeatureError{Key: key, Row: i})
		}
	}

	counties := make([]domain.County, 0, len(all)-1)
	for lineNum, row := range all[1:] {
		nriID := field(row, colIdx, colNRIID)
		if nriID == "" {
			logger.Debug("skipping row without NRI_ID", "line", lineNum+2)
			continue
		}

		features := make(map[string]float64, len(manifest))
		for _, key := range manifest {
			features[key] = parseFloatOrZero(field(row, colIdx, key))
		}

		counties = append(counties, domain.County{
			GeoKey:   geoKeyFromNRIID(nriID),
			Region:   field(row, colIdx, colRegion),
			State:    field(row, colIdx, colState),
			Name:     field(row, colIdx, colCounty),
			Features: features,
		})
	}

	if len(counties) == 0 {
		return nil, fmt.Errorf("dataset %s: no usable county rows", path)
	}
	return counties, nil
}

func field(row []string, colIdx map[string]int, name string) string {
	i, ok := colIdx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
// Missing exposure means "no known exposure", not "unknown".
func parseFloatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// geoKeyFromNRIID derives the county FIPS code from an NRI_ID by dropping
// the leading character, e.g. "C06037" -> "06037". The FIPS code is what
// joins forecast rows to county boundary geometry downstream.
func geoKeyFromNRIID(nriID string) string {
	if len(nriID) < 2 {
		return nriID
	}
	return nriID[1:]
}
