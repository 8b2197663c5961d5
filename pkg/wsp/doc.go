// Package wsp is the database core for fixed-size, circular time-series
// archives ("whisper databases"): create, open, close, update (with
// multi-resolution write propagation), and windowed fetch (spec.md
// section 4.5).
//
// A Database owns one backend.Instance and its loaded archive
// descriptors. Sub-packages hold the pieces the core composes:
//
//   - [github.com/calvinalkan/wsp/pkg/wsp/codec]: record encode/decode
//   - [github.com/calvinalkan/wsp/pkg/wsp/backend]: storage backends
//   - [github.com/calvinalkan/wsp/pkg/wsp/ring]: ring-buffer addressing
//   - [github.com/calvinalkan/wsp/pkg/wsp/agg]: aggregation functions
//   - [github.com/calvinalkan/wsp/pkg/wsp/wsptime]: time helpers
//   - [github.com/calvinalkan/wsp/pkg/wsp/wsperr]: shared error taxonomy
package wsp
