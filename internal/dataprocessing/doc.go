// Package dataprocessing is the rentals pipeline: it loads a comma-separated
// rentals file, derives calendar features, filters by the user's selection
// and aggregates mean rentals along five fixed dimensions.
//
// # Architecture
//
// The package is organized into four stages:
//
// 1. Loader: reads the file into RawRecords and coerces column types
// 2. Feature deriver: year, month, hour, weekday and period of the day
// 3. Filter engine: year set, season set and working day selector
// 4. Aggregator: generic mean-by-key plus the five chart groupings
//
// # Data Flow
//
//	CSV → Load → RawRecords → Enrich → EnrichedRecords → ApplyFilter → Aggregate → ChartResults
//
// Render runs the last two stages from scratch on every interaction;
// nothing is cached between calls.
//
// # Usage
//
//	ds, err := dataprocessing.LoadDataset(ctx, "train.csv", file)
//	if err != nil {
//	    return err
//	}
//	sel := dataprocessing.Options(ds.Records).DefaultSelection()
//	charts := dataprocessing.Render(ds.Records, sel)
//
// # Error Handling
//
// The loader returns typed errors from internal/errors:
//
//	- FORMAT errors for missing columns, malformed rows or an empty file
//	- PARSING errors for cells that cannot be coerced, with row, column and value
//
// Everything after loading is total: an empty selection is not an error.
package dataprocessing
