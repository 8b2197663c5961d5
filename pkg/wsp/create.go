package wsp

import (
	"github.com/calvinalkan/wsp/pkg/wsp/backend"
	"github.com/calvinalkan/wsp/pkg/wsp/codec"
	"github.com/calvinalkan/wsp/pkg/wsp/wsperr"
)

// ArchiveSpec is one (seconds-per-point, count) layout input to Create.
type ArchiveSpec struct {
	SecondsPerPoint uint32
	Count           uint32
}

// Create lays out and writes a new whisper database at path via b,
// implementing spec.md section 4.5.1.
//
// archives must be ordered finest-to-coarsest and satisfy spec.md
// section 3's invariants: every spp and count must be > 0, and for each
// adjacent pair, the coarser spp must be a strict multiple of the finer
// one and the coarser retention must strictly exceed the finer one.
// Any violation fails with wsperr.Archive and nothing is written.
func Create(path string, archives []ArchiveSpec, aggregation codec.Aggregation, xff float32, b backend.Backend) error {
	if !aggregation.Valid() {
		return wsperr.New(wsperr.Archive, "create", nil)
	}

	if err := validateArchiveSpecs(archives); err != nil {
		return err
	}

	descriptors := layoutArchives(archives)

	var maxRetention uint32
	for _, a := range descriptors {
		if r := a.Retention(); r > maxRetention {
			maxRetention = r
		}
	}

	meta := codec.Metadata{
		Aggregation:  aggregation,
		MaxRetention: maxRetention,
		XFilesFactor: xff,
		ArchiveCount: uint32(len(descriptors)),
	}

	totalSize := int64(0)
	if n := len(descriptors); n > 0 {
		last := descriptors[n-1]
		totalSize = int64(last.Offset) + int64(last.Count)*codec.PointSize
	} else {
		totalSize = codec.MetadataSize
	}

	if err := b.Create(path, totalSize, descriptors, meta); err != nil {
		return err
	}

	return nil
}

func validateArchiveSpecs(archives []ArchiveSpec) error {
	for i, a := range archives {
		if a.SecondsPerPoint == 0 || a.Count == 0 {
			return wsperr.New(wsperr.Archive, "create", nil)
		}

		if i == 0 {
			continue
		}

		prev := archives[i-1]

		if a.SecondsPerPoint <= prev.SecondsPerPoint {
			return wsperr.New(wsperr.Archive, "create", nil)
		}

		if a.SecondsPerPoint%prev.SecondsPerPoint != 0 {
			return wsperr.New(wsperr.Archive, "create", nil)
		}

		prevRetention := prev.SecondsPerPoint * prev.Count
		curRetention := a.SecondsPerPoint * a.Count

		if curRetention <= prevRetention {
			return wsperr.New(wsperr.Archive, "create", nil)
		}
	}

	return nil
}

// layoutArchives computes each descriptor's absolute offset by
// cumulative sum, starting right after the metadata header and the
// descriptor array itself (spec.md section 4.5.1).
func layoutArchives(archives []ArchiveSpec) []codec.Archive {
	out := make([]codec.Archive, len(archives))

	offset := uint32(codec.MetadataSize + len(archives)*codec.ArchiveSize)

	for i, a := range archives {
		out[i] = codec.Archive{
			Offset:          offset,
			SecondsPerPoint: a.SecondsPerPoint,
			Count:           a.Count,
		}
		offset += a.Count * codec.PointSize
	}

	return out
}
