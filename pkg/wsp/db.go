package wsp

import (
	"github.com/calvinalkan/wsp/pkg/wsp/agg"
	"github.com/calvinalkan/wsp/pkg/wsp/backend"
	"github.com/calvinalkan/wsp/pkg/wsp/codec"
)

// Database is an open whisper database handle: it owns one backend
// instance and the archive descriptor array loaded from it (spec.md
// section 3, "Database").
//
// [New] returns an unopened Database; the zero value is equally usable
// directly with [Database.Open] (open(handle, ...) in spec.md section 6
// takes a handle rather than returning a fresh one, so a Database can be
// reopened against a different path after [Database.Close]).
type Database struct {
	path     string
	backend  backend.Backend
	instance backend.Instance

	meta     codec.Metadata
	archives []codec.Archive
	aggKind  agg.Kind
}

// New returns an unopened Database handle.
func New() *Database {
	return &Database{}
}

// ArchiveInfo describes one loaded archive, as returned by
// [Database.Archives] and listed by the wsp-dump CLI's archives command.
type ArchiveInfo struct {
	SecondsPerPoint uint32
	Count           uint32
	Retention       uint32
	Offset          uint32
}

// Archives returns the loaded archive descriptors in finest-to-coarsest
// order, the Go analogue of the Python binding's WhisperArchive.info()
// (see SPEC_FULL.md's supplemented-features section).
func (d *Database) Archives() []ArchiveInfo {
	out := make([]ArchiveInfo, len(d.archives))
	for i, a := range d.archives {
		out[i] = ArchiveInfo{
			SecondsPerPoint: a.SecondsPerPoint,
			Count:           a.Count,
			Retention:       a.Retention(),
			Offset:          a.Offset,
		}
	}

	return out
}

// Stats summarizes a Database's metadata header for diagnostics.
type Stats struct {
	Aggregation  codec.Aggregation
	MaxRetention uint32
	XFilesFactor float32
	ArchiveCount int
}

// Stats returns the database's header fields. This is the reimplementation's
// stand-in for the original C sources' compile-time debug tracing
// (wsp_debug.c): informational only, never gating behavior.
func (d *Database) Stats() Stats {
	return Stats{
		Aggregation:  d.meta.Aggregation,
		MaxRetention: d.meta.MaxRetention,
		XFilesFactor: d.meta.XFilesFactor,
		ArchiveCount: len(d.archives),
	}
}

// instanceStore adapts a backend.Instance to the ring.Store interface
// ring addressing needs, so ring stays independent of the backend
// package.
type instanceStore struct {
	inst backend.Instance
}

func (s instanceStore) ReadAt(dst []byte, offset int64) error {
	return s.inst.ReadInto(dst, offset)
}

func (s instanceStore) WriteAt(src []byte, offset int64) error {
	return s.inst.Write(src, offset)
}
