// Package domain models FEMA National Risk Index (NRI) county hazard data
// and the what-if scenario state applied on top of it.
//
// # Data Source
//
// County rows come from the NRI county-level dataset
// (https://hazards.fema.gov/nri/), one row per US county. Each hazard
// contributes an expected-annual-loss exposure column with the suffix "_EALT"
// (e.g. HRCN_EALT for hurricane, WFIR_EALT for wildfire). The feature
// manifest, a JSON list of column names, defines which columns are model
// inputs and in what order; it is authoritative — dataset columns not listed
// are ignored, listed columns absent from the dataset are a load error.
//
// # NRI Data Conventions
//
// Geographic keys:
//
//	NRI_ID is the dataset's county identifier, a letter prefix followed by
//	the 5-digit county FIPS code (e.g. "C06037" for Los Angeles County).
//	The stable GeoKey used to join forecast rows to county boundary
//	geometry is the FIPS code: NRI_ID with the leading character dropped.
//
// Missing values:
//
//	Absent or non-numeric exposure values mean "no known exposure", not
//	"unknown", and are filled with 0.0 at load time before any computation.
//
// Hazard taxonomy:
//
//	18 hazards across three category groups: Geophysical (avalanche,
//	earthquake, landslide, volcanic activity, tsunami), Hydro-Meteorological
//	(riverine and coastal flooding, hurricane, tornado, strong wind, hail,
//	lightning), and Climatological (cold wave, drought, heat wave, ice
//	storm, winter weather, wildfire). The registry in hazard.go is the
//	single source of truth; earlier dashboard variants re-declared these
//	groups inline and drifted on category label text.
//
// # Scenarios
//
// A scenario holds one multiplier per hazard feature, default 1.0 (identity).
// Multipliers scale a county's exposure before prediction; 0.0 zeroes the
// hazard's contribution exactly. Values are clamped to a configured [0, max]
// range rather than rejected. Named presets are sparse overrides applied on
// top of a freshly reset scenario; applying a preset after another preset
// never leaks the earlier preset's values.
//
// # Color Transforms
//
// Predicted losses are heavy-tailed across counties, so the color value
// driving the choropleth is a monotonic compression of predicted loss:
// identity, square root, or log1p. Deltas may be negative and are always
// carried raw.
package domain
