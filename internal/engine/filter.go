package engine

import (
	"github.com/couchcryptid/eal-forecast-service/internal/domain"
)

// Resolve narrows the available states to the selection. An empty selection
// means everything is in scope. The result preserves available's order;
// selected states absent from available simply drop out.
func Resolve(selected, available []string) []string {
	if len(selected) == 0 {
		out := make([]string, len(available))
		copy(out, available)
		return out
	}

	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[s] = true
	}

	var out []string
	for _, s := range available {
		if want[s] {
			out = append(out, s)
		}
	}
	return out
}

// Filter returns the subsequence of counties whose state is in scope,
// preserving dataset order. If nothing matches, it falls back to the full
// county sequence and reports fellBack=true — a blank dashboard is never the
// right answer, and the caller surfaces the notice to the user.
func Filter(counties []domain.County, statesInScope []string) (filtered []domain.County, fellBack bool) {
	inScope := make(map[string]bool, len(statesInScope))
	for _, s := range statesInScope {
		inScope[s] = true
	}

	for _, c := range counties {
		if inScope[c.State] {
			filtered = append(filtered, c)
		}
	}

	if len(filtered) == 0 && len(counties) > 0 {
		return counties, true
	}
	return filtered, false
}

// Scope applies a scenario's full geographic selection (region, then states)
// to the county table. The fallback flag is set only when a non-empty
// selection matched nothing; an empty selection is the default all-counties
// view, not a fallback.
func Scope(counties []domain.County, region string, states []string) ([]domain.County, bool) {
	if len(counties) == 0 {
		return counties, false
	}

	candidates := counties
	if region != "" {
		candidates = byRegion(counties, region)
		if len(candidates) == 0 {
			return counties, true
		}
	}

	available := availableStates(candidates)
	scoped := Resolve(states, available)
	filtered, fellBack := Filter(candidates, scoped)
	if fellBack {
		// Fall back past the region restriction too: the selection as a
		// whole matched nothing.
		return counties, true
	}
	return filtered, false
}

func byRegion(counties []domain.County, region string) []domain.County {
	var out []domain.County
	for _, c := range counties {
		if c.Region == region {
			out = append(out, c)
		}
	}
	return out
}

func availableStates(counties []domain.County) []string {
	seen := make(map[string]bool, 64)
	var out []string
	for _, c := range counties {
		if c.State == "" || seen[c.State] {
			continue
		}
		seen[c.State] = true
		out = append(out, c.State)
	}
	return out
}
