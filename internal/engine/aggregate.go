package engine

import (
	"fmt"
	"sort"

	"github.com/couchcryptid/eal-forecast-service/internal/domain"
)

// SortKey selects the ranking column for TopN.
type SortKey string

const (
	SortPredictedLoss SortKey = "predicted_loss"
	SortDelta         SortKey = "delta"
)

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortPredictedLoss, SortDelta:
		return SortKey(s), nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Summary holds the headline statistics for one forecast.
type Summary struct {
	TotalPredicted float64 `json:"total_predicted"`
	MeanPredicted  float64 `json:"mean_predicted"`
	CountyCount    int     `json:"county_count"`
}

// Summarize derives summary statistics from a forecast. An empty result
// yields all zeroes; the mean is 0, not a division-by-zero.
func Summarize(result domain.ForecastResult) Summary {
	s := Summary{CountyCount: len(result.Rows)}
	for _, r := range result.Rows {
		s.TotalPredicted += r.PredictedLoss
	}
	if s.CountyCount > 0 {
		s.MeanPredicted = s.TotalPredicted / float64(s.CountyCount)
	}
	return s
}

// TopN ranks forecast rows by the sort key. Ties keep their original dataset
// order (stable sort) so repeated runs over identical input are
// deterministic. n larger than the row count returns all rows.
func TopN(result domain.ForecastResult, n int, key SortKey, descending bool) []domain.ForecastRow {
	rows := make([]domain.ForecastRow, len(result.Rows))
	copy(rows, result.Rows)

	value := func(r domain.ForecastRow) float64 {
		if key == SortDelta {
			return r.Delta
		}
		return r.PredictedLoss
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if descending {
			return value(rows[i]) > value(rows[j])
		}
		return value(rows[i]) < value(rows[j])
	})

	if n < 0 {
		n = 0
	}
	if n > len(rows) {
		n = len(rows)
	}
	return rows[:n]
}
