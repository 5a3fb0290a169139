// Package archive implements the binary session format for titration datasets
// and their fit results.
//
// An archive stores any number of named datasets, each a pair of float64
// columns (concentration and conductivity), plus an optional fit record per
// dataset carrying the estimated model parameters, their standard errors,
// the residual sum of squares, and the degree of ionization.
//
// # Layout
//
// All sections are laid out back to back:
//
//	┌──────────────┬──────────────┬────────────────┬──────────────┬──────────────┬──────────┐
//	│ Header       │ Index        │ Names          │ Columns      │ Fit records  │ Checksum │
//	│ 32 bytes     │ 16 B/dataset │ length-prefixed│ compressed   │ optional     │ 8 bytes  │
//	└──────────────┴──────────────┴────────────────┴──────────────┴──────────────┴──────────┘
//
// The header records the byte offsets of every section, the dataset count,
// the creation time, and the compression codec of the columns payload. Index
// entries address datasets by the xxHash64 of their name and record where
// each dataset's columns start inside the uncompressed columns payload. The
// names payload stores every dataset name with a uint8 length prefix, in
// index order, so decoders can verify hashes and serve lookups by name.
//
// The columns payload concatenates, per dataset, the concentration column
// followed by the conductivity column, each value 8 bytes in the archive's
// byte order. Only this payload is compressed; the index, names, and fit
// record sections are small and stay uncompressed.
//
// The trailing 8 bytes are the xxHash64 checksum of everything before them,
// always little-endian. Decoders verify the checksum before trusting any
// other field.
//
// # Encoding
//
// Encoding follows a start/add/end cycle per dataset:
//
//	encoder, _ := archive.NewEncoder(archive.WithCompression(format.CompressionZstd))
//	_ = encoder.StartDataset("sls-water", len(conc))
//	_ = encoder.AddPoints(conc, cond)
//	_ = encoder.SetFitRecord(rec) // optional
//	_ = encoder.EndDataset()
//	data, _ := encoder.Finish()
//
// The encoder is not reusable after Finish and not safe for concurrent use.
//
// # Decoding
//
//	arc, err := archive.Decode(data)
//	if err != nil { ... }
//	ds, _ := arc.Dataset("sls-water")
//	rec, ok := arc.FitRecord("sls-water")
//
// Decoding validates the checksum, the magic number, section offsets, the
// index, and the name hashes before returning, so a non-nil *Archive is
// internally consistent.
package archive
