// Package files catalogs the reports saved to the reports directory.
//
// Reports are named <prefix>_<YYYYMMDD_HHMMSS>.<ext> by the exporter. The
// Catalog lists them newest first, resolves a single report by name for
// download and prunes old reports:
//
//	catalog := files.NewCatalog(paths.ReportsDir, "airline_analysis")
//	reports, err := catalog.List()
//	latest, ok, err := catalog.Latest(domain.FormatPDF)
//	removed, err := catalog.Prune(20)
package files
