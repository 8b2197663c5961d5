package wsp

import (
	"github.com/calvinalkan/wsp/pkg/wsp/agg"
	"github.com/calvinalkan/wsp/pkg/wsp/backend"
	"github.com/calvinalkan/wsp/pkg/wsp/codec"
	"github.com/calvinalkan/wsp/pkg/wsp/wsperr"
)

// Open acquires b's backend instance at path, loads and validates the
// header and archive descriptors, and binds them to d (spec.md section
// 4.5.2). Fails with wsperr.AlreadyOpen if d already has a backend
// instance bound.
//
// On any failure, already-acquired resources are released and d is left
// exactly as it was before the call.
func (d *Database) Open(path string, b backend.Backend, flags backend.Flags) error {
	if d.instance != nil {
		return wsperr.New(wsperr.AlreadyOpen, "open", nil)
	}

	inst, err := b.Open(path, flags)
	if err != nil {
		return err
	}

	meta, archives, aggKind, err := loadAndValidate(inst)
	if err != nil {
		_ = inst.Close()

		return err
	}

	d.path = path
	d.backend = b
	d.instance = inst
	d.meta = meta
	d.archives = archives
	d.aggKind = aggKind

	return nil
}

func loadAndValidate(inst backend.Instance) (codec.Metadata, []codec.Archive, agg.Kind, error) {
	metaBuf := make([]byte, codec.MetadataSize)
	if err := inst.ReadInto(metaBuf, 0); err != nil {
		return codec.Metadata{}, nil, 0, err
	}

	meta := codec.ParseMetadata(metaBuf)

	aggKind, ok := agg.FromCodec(meta.Aggregation)
	if !ok {
		return codec.Metadata{}, nil, 0, wsperr.New(wsperr.UnknownAggregation, "open", nil)
	}

	archives := make([]codec.Archive, meta.ArchiveCount)

	descBuf := make([]byte, codec.ArchiveSize)

	expectedOffset := uint32(codec.MetadataSize + int(meta.ArchiveCount)*codec.ArchiveSize)

	for i := uint32(0); i < meta.ArchiveCount; i++ {
		off := int64(codec.MetadataSize) + int64(i)*codec.ArchiveSize
		if err := inst.ReadInto(descBuf, off); err != nil {
			return codec.Metadata{}, nil, 0, err
		}

		a := codec.ParseArchive(descBuf)

		// original_source/src/wsp_private.c re-derives each archive's
		// expected offset from the cumulative layout rather than
		// trusting the stored value outright; a mismatch means the
		// descriptor table was hand-edited or corrupted independently
		// of the points it claims to address.
		if a.Offset != expectedOffset {
			return codec.Metadata{}, nil, 0, wsperr.New(wsperr.ArchiveMisaligned, "open", nil)
		}

		expectedOffset += a.Count * codec.PointSize

		if i > 0 {
			prev := archives[i-1]
			if a.SecondsPerPoint <= prev.SecondsPerPoint || a.SecondsPerPoint%prev.SecondsPerPoint != 0 {
				return codec.Metadata{}, nil, 0, wsperr.New(wsperr.ArchiveMisaligned, "open", nil)
			}
		}

		archives[i] = a
	}

	return meta, archives, aggKind, nil
}
