package dataset

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/eal-forecast-service/internal/domain"
)

const testCSV = `NRI_ID,REGION,STATE,COUNTY,HRCN_EALT,WFIR_EALT,POPULATION
C48001,South,TX,Anderson,1200.5,30.25,57735
C06037,West,CA,Los Angeles,,88000.75,10014009
C12001,South,FL,Alachua,4500,not-a-number,278468
`

const testManifest = `["HRCN_EALT", "WFIR_EALT"]`

func writeFixtures(t *testing.T, csvContent, manifestContent string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "county_hazard_dataset.csv")
	manifestPath := filepath.Join(dir, "feature_columns.json")
	require.NoError(t, os.WriteFile(csvPath, []byte(csvContent), 0o644))
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifestContent), 0o644))
	return csvPath, manifestPath
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestLoad(t *testing.T) {
	t.Run("full dataset", func(t *testing.T) {
		csvPath, manifestPath := writeFixtures(t, testCSV, testManifest)

		table, err := Load(csvPath, manifestPath, discardLogger())
		require.NoError(t, err)

		assert.Equal(t, []string{"HRCN_EALT", "WFIR_EALT"}, table.Manifest)
		require.Len(t, table.Counties, 3)

		first := table.Counties[0]
		assert.Equal(t, "48001", first.GeoKey)
		assert.Equal(t, "South", first.Region)
		assert.Equal(t, "TX", first.State)
		assert.Equal(t, "Anderson", first.Name)
		assert.Equal(t, 1200.5, first.Features["HRCN_EALT"])
		assert.Equal(t, 30.25, first.Features["WFIR_EALT"])
	})

	t.Run("FIPS derived from NRI_ID", func(t *testing.T) {
		csvPath, manifestPath := writeFixtures(t, testCSV, testManifest)
		table, err := Load(csvPath, manifestPath, discardLogger())
		require.NoError(t, err)

		assert.Equal(t, "06037", table.Counties[1].GeoKey)
		assert.Equal(t, "12001", table.Counties[2].GeoKey)
	})

	t.Run("missing and non-numeric values zero-fill", func(t *testing.T) {
		csvPath, manifestPath := writeFixtures(t, testCSV, testManifest)
		table, err := Load(csvPath, manifestPath, discardLogger())
		require.NoError(t, err)

		assert.Equal(t, 0.0, table.Counties[1].Features["HRCN_EALT"])
		assert.Equal(t, 0.0, table.Counties[2].Features["WFIR_EALT"])
	})

	t.Run("columns outside the manifest are ignored", func(t *testing.T) {
		csvPath, manifestPath := writeFixtures(t, testCSV, testManifest)
		table, err := Load(csvPath, manifestPath, discardLogger())
		require.NoError(t, err)

		_, ok := table.Counties[0].Features["POPULATION"]
		assert.False(t, ok)
	})

	t.Run("manifest column missing from dataset", func(t *testing.T) {
		csvPath, manifestPath := writeFixtures(t, testCSV, `["HRCN_EALT", "ERQK_EALT"]`)

		_, err := Load(csvPath, manifestPath, discardLogger())
		require.Error(t, err)
		var missing *domain.MissingFeatureError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "ERQK_EALT", missing.Key)
	})

	t.Run("missing identity column", func(t *testing.T) {
		badCSV := "REGION,STATE,COUNTY,HRCN_EALT,WFIR_EALT\nSouth,TX,Anderson,1,2\n"
		csvPath, manifestPath := writeFixtures(t, badCSV, testManifest)

		_, err := Load(csvPath, manifestPath, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NRI_ID")
	})

	t.Run("rows without NRI_ID are skipped", func(t *testing.T) {
		withBlank := testCSV + ",South,GA,Ghost,1,2,3\n"
		csvPath, manifestPath := writeFixtures(t, withBlank, testManifest)

		table, err := Load(csvPath, manifestPath, discardLogger())
		require.NoError(t, err)
		assert.Len(t, table.Counties, 3)
	})

	t.Run("empty manifest", func(t *testing.T) {
		csvPath, manifestPath := writeFixtures(t, testCSV, `[]`)
		_, err := Load(csvPath, manifestPath, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("missing dataset file", func(t *testing.T) {
		_, manifestPath := writeFixtures(t, testCSV, testManifest)
		_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), manifestPath, discardLogger())
		require.Error(t, err)
	})

	t.Run("header-only dataset", func(t *testing.T) {
		csvPath, manifestPath := writeFixtures(t, "NRI_ID,REGION,STATE,COUNTY,HRCN_EALT,WFIR_EALT\n", testManifest)
		_, err := Load(csvPath, manifestPath, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no data rows")
	})
}

func TestTableAccessors(t *testing.T) {
	csvPath, manifestPath := writeFixtures(t, testCSV, testManifest)
	table, err := Load(csvPath, manifestPath, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"TX", "CA", "FL"}, table.States())
	assert.Equal(t, []string{"South", "West"}, table.Regions())
}
