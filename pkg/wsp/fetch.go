package wsp

import (
	"github.com/calvinalkan/wsp/pkg/wsp/codec"
	"github.com/calvinalkan/wsp/pkg/wsp/ring"
	"github.com/calvinalkan/wsp/pkg/wsp/wsperr"
)

func (d *Database) archiveAt(index int) (codec.Archive, error) {
	if d.instance == nil {
		return codec.Archive{}, wsperr.New(wsperr.NotOpen, "fetch", nil)
	}

	if index < 0 || index >= len(d.archives) {
		return codec.Archive{}, wsperr.New(wsperr.Archive, "fetch", nil)
	}

	return d.archives[index], nil
}

// FetchPoints reads a windowed region of archiveIndex by archive-
// relative offset, the public form of spec.md section 4.3's windowed
// fetch. offset may be negative. out must have length >= count (clamped
// to the archive's capacity). Returns the number of points written.
func (d *Database) FetchPoints(archiveIndex, offset, count int, out []codec.Point) (int, error) {
	a, err := d.archiveAt(archiveIndex)
	if err != nil {
		return 0, err
	}

	return ring.FetchPoints(instanceStore{inst: d.instance}, a, offset, count, out)
}

// FetchTimePoints reads every point of archiveIndex between from and
// until (inclusive, per spec.md section 4.3's count formula), both
// floored to the archive's resolution. Fails with wsperr.TimeInterval
// if from > until. Returns the number of points written to out.
func (d *Database) FetchTimePoints(archiveIndex int, from, until uint32, out []codec.Point) (int, error) {
	a, err := d.archiveAt(archiveIndex)
	if err != nil {
		return 0, err
	}

	return ring.FetchTimePoints(instanceStore{inst: d.instance}, a, from, until, out)
}

// LoadPoints reads size contiguous, unfiltered points from archiveIndex
// starting at archive-relative index offset, without ring-seam
// wrapping or stale-entry filtering (spec.md section 4.3's raw load).
// out must have length >= size.
func (d *Database) LoadPoints(archiveIndex, offset, size int, out []codec.Point) error {
	a, err := d.archiveAt(archiveIndex)
	if err != nil {
		return err
	}

	return ring.LoadPoints(instanceStore{inst: d.instance}, a, offset, size, out)
}
