package domain

// County is one row of the dataset table. Created at load time and never
// mutated afterwards; the engine only derives scaled copies of Features.
type County struct {
	GeoKey   string             `json:"geo_key"` // normalized 5-digit FIPS code
	Region   string             `json:"region"`
	State    string             `json:"state"`
	Name     string             `json:"name"`
	Features map[string]float64 `json:"features"`
}

// Table is the in-memory dataset: ordered county rows plus the authoritative
// feature manifest. The manifest defines which columns are model inputs, in
// the order the model expects them; dataset columns not listed are ignored.
// Shared read-only across concurrent recomputations.
type Table struct {
	Counties []County
	Manifest []string
}

// States returns the distinct states present in the table, in first-seen order.
func (t Table) States() []string {
	seen := make(map[string]bool, 64)
	var out []string
	for _, c := range t.Counties {
		if c.State == "" || seen[c.State] {
			continue
		}
		seen[c.State] = true
		out = append(out, c.State)
	}
	return out
}

// Regions returns the distinct regions present in the table, in first-seen order.
func (t Table) Regions() []string {
	seen := make(map[string]bool, 8)
	var out []string
	for _, c := range t.Counties {
		if c.Region == "" || seen[c.Region] {
			continue
		}
		seen[c.Region] = true
		out = append(out, c.Region)
	}
	return out
}
