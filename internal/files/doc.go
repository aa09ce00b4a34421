// Package files locates dataset files on disk and keeps the exports
// directory from growing without bound.
//
// Discovery resolves the four collection files (shipments, invoices,
// warehouse, clients) in an input directory, accepting either a CSV or an
// XLSX per collection. Manager lists and prunes the stamped export
// artifacts the batch tool writes.
package files
