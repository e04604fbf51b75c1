// Package exporter writes and reads the flat CSV files of a run.
//
// Dated tables are written with WriteTable: a date column in ISO form
// followed by indicator columns named from the domain column vocabulary.
// Floats are written with the shortest exact representation and missing
// values are empty cells, so ReadTable returns the same table.
//
// Undated results (lag profiles, regressions, the regime table, persistence
// and summary statistics) have their own writers on CSVWriter.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths, false)
//	if err := w.WriteTable(paths.ProcessedPath(config.FileMerged), merged); err != nil {
//		return err
//	}
//	merged, err := exporter.ReadTable(paths.ProcessedPath(config.FileMerged))
package exporter
