// Package dataprocessing turns the raw statistical exports into tidy monthly
// tables.
//
// # Components
//
//  1. Series Extractor: reads the wide CPI panel (metadata columns plus one
//     column per YYYY-Mxx period) and pulls single series out of it
//  2. FX workbook parser: reads the daily central bank rate sheets and
//     averages one currency per month
//  3. Series Merger: inner-joins tables on date and derives the services proxy
//  4. Transform Layer: MoM and YoY percentage changes, rolling standard
//     deviation and row lags
//
// # Usage
//
//	panel, err := dataprocessing.LoadPanel("data/raw/imf_cpi_full.csv")
//	if err != nil {
//	    return err
//	}
//	cpi, err := panel.ExtractSeries("cpi_index", filter, start, end)
//
// # Error Handling
//
// A headline filter that matches zero or several rows fails with
// errors.AmbiguousOrMissingSeriesError. Category extraction tolerates
// duplicate series codes by keeping the first row. Unreadable files return
// an IO AppError. Non-numeric cells become NaN and are never interpolated.
package dataprocessing
