// Package ring implements the ring-buffer addressing algebra for a single
// whisper archive: slot indexing from a floored timestamp, wrap-aware
// windowed reads, stale-entry filtering, and segmented writes across the
// ring seam (spec.md section 4.3).
//
// spec.md section 9 singles this package out as where "all the subtle
// bugs live": offsets into an archive may be negative (historical reads
// relative to the base point), so every modulo here is the Euclidean
// form ((x % n) + n) % n rather than Go's sign-preserving %.
package ring

import (
	"math"

	"github.com/calvinalkan/wsp/pkg/wsp/codec"
	"github.com/calvinalkan/wsp/pkg/wsp/wsperr"
	"github.com/calvinalkan/wsp/pkg/wsp/wsptime"
)

// Store is the minimal byte-addressable surface ring needs from a
// storage backend: read a region into dst, write a region from src.
// Database wires this to a concrete backend.Backend; ring stays
// independent of any particular backend so its addressing math can be
// tested with a bare in-memory slice (see ring_test.go).
type Store interface {
	ReadAt(dst []byte, offset int64) error
	WriteAt(src []byte, offset int64) error
}

// emod is the Euclidean modulo: result is always in [0, n).
func emod(x, n int64) int64 {
	if n == 0 {
		return 0
	}

	r := x % n
	if r < 0 {
		r += n
	}

	return r
}

// LoadBase reads archive point 0 to learn the ring's anchor timestamp.
// A zero timestamp means the archive is empty.
func LoadBase(store Store, a codec.Archive) (codec.Point, error) {
	buf := make([]byte, codec.PointSize)
	if err := store.ReadAt(buf, int64(a.Offset)); err != nil {
		return codec.Point{}, err
	}

	return codec.ParsePoint(buf), nil
}

// SlotFor computes the ring index that floored timestamp t occupies in
// an archive anchored at base, per spec.md section 4.3. When base is 0
// (empty archive) writes go to index 0 — the reimplementation's chosen
// resolution of the open question in spec.md section 9 about reusing
// timestamp 0 as a sentinel: an archive's base is never a legitimate
// written timestamp until something occupies index 0, so treating base
// == 0 as "still empty" rather than risking collision with a genuine
// epoch-0 sample is the safer reading.
func SlotFor(base uint32, spp, count uint32, t uint32) uint32 {
	if base == 0 {
		return 0
	}

	distance := int64(t) - int64(base)

	return uint32(emod(distance/int64(spp), int64(count)))
}

// LoadPoints reads size contiguous points starting at archive-relative
// index offset, without wrapping across the ring seam. out must have
// length >= size.
func LoadPoints(store Store, a codec.Archive, offset, size int, out []codec.Point) error {
	buf := make([]byte, size*codec.PointSize)
	if err := store.ReadAt(buf, int64(a.Offset)+int64(offset)*codec.PointSize); err != nil {
		return err
	}

	codec.ParsePoints(buf, size, out)

	return nil
}

// FetchReadPoints performs the wrap-aware linear-or-split read described
// in spec.md section 4.3: one load when the n points starting at from
// fit before the archive's seam, two loads concatenated when they cross
// it. count is the archive's slot count. Whether the window wraps is
// decided from from+n against count: a window of n == count points
// starting at index 0 is a single linear load, while one starting at any
// other index is split at the seam.
// out must have length >= n.
func FetchReadPoints(store Store, a codec.Archive, from, n, count int, out []codec.Point) error {
	if from+n > count {
		firstLen := count - from
		if err := LoadPoints(store, a, from, firstLen, out[:firstLen]); err != nil {
			return err
		}

		secondLen := n - firstLen

		return LoadPoints(store, a, 0, secondLen, out[firstLen:firstLen+secondLen])
	}

	return LoadPoints(store, a, from, n, out[:n])
}

// FilterPoints masks out stale ring entries left over from a previous
// cycle: for i in [0, count), the expected timestamp at archive-relative
// index offset+i is base + spp*(offset+i); raw[i] is kept if its stored
// timestamp matches, otherwise the slot is reported as (expected, NaN).
// offset may be negative for historical reads relative to base.
func FilterPoints(base codec.Point, spp uint32, offset int64, count int, raw []codec.Point, out []codec.Point) {
	for i := 0; i < count; i++ {
		expected := uint32(int64(base.Timestamp) + int64(spp)*(offset+int64(i)))

		if raw[i].Timestamp == expected {
			out[i] = raw[i]
		} else {
			out[i] = codec.Point{Timestamp: expected, Value: math.NaN()}
		}
	}
}

// FetchPoints implements spec.md section 4.3's windowed fetch: load the
// base point, clamp count to the archive capacity, compute the starting
// ring index, read the window wrap-aware, then filter stale entries.
// offset may be negative. out must have length >= the clamped count;
// FetchPoints returns the number of points written to out.
func FetchPoints(store Store, a codec.Archive, offset, count int, out []codec.Point) (int, error) {
	base, err := LoadBase(store, a)
	if err != nil {
		return 0, err
	}

	n := count
	if n > int(a.Count) {
		n = int(a.Count)
	}

	cap64 := int64(a.Count)
	from := int(emod(int64(offset), cap64))

	raw := make([]codec.Point, n)
	if err := FetchReadPoints(store, a, from, n, int(a.Count), raw); err != nil {
		return 0, err
	}

	FilterPoints(base, a.SecondsPerPoint, int64(offset), n, raw, out[:n])

	return n, nil
}

// FetchTimePoints implements spec.md section 4.3's windowed fetch by
// time. fromTime must not exceed untilTime, or wsperr.TimeInterval is
// returned. Both bounds are floored to the archive's resolution; the
// point count follows spec.md's inclusive formula
// (until-from)/spp + 1, clamped to the archive's capacity. Returns the
// number of points written to out.
func FetchTimePoints(store Store, a codec.Archive, fromTime, untilTime uint32, out []codec.Point) (int, error) {
	if fromTime > untilTime {
		return 0, wsperr.New(wsperr.TimeInterval, "fetch_time_points", nil)
	}

	base, err := LoadBase(store, a)
	if err != nil {
		return 0, err
	}

	fromFloored := wsptime.Floor(fromTime, a.SecondsPerPoint)
	untilFloored := wsptime.Floor(untilTime, a.SecondsPerPoint)

	offset := (int64(fromFloored) - int64(base.Timestamp)) / int64(a.SecondsPerPoint)
	count := int((int64(untilFloored)-int64(fromFloored))/int64(a.SecondsPerPoint) + 1)

	if count > int(a.Count) {
		count = int(a.Count)
	}

	return FetchPoints(store, a, int(offset), count, out)
}

// SavePoints writes length points starting at archive-relative index
// offset, splitting into two writes at the ring seam when the write
// would cross it. Fails with wsperr.PointOob if length >= archive.Count,
// per spec.md section 4.3.
func SavePoints(store Store, a codec.Archive, offset int, points []codec.Point) error {
	length := len(points)
	if length >= int(a.Count) {
		return wsperr.New(wsperr.PointOob, "save_points", nil)
	}

	if offset+length <= int(a.Count) {
		buf := make([]byte, length*codec.PointSize)
		codec.DumpPoints(buf, points)

		return store.WriteAt(buf, int64(a.Offset)+int64(offset)*codec.PointSize)
	}

	firstLen := int(a.Count) - offset

	firstBuf := make([]byte, firstLen*codec.PointSize)
	codec.DumpPoints(firstBuf, points[:firstLen])

	if err := store.WriteAt(firstBuf, int64(a.Offset)+int64(offset)*codec.PointSize); err != nil {
		return err
	}

	secondBuf := make([]byte, (length-firstLen)*codec.PointSize)
	codec.DumpPoints(secondBuf, points[firstLen:])

	return store.WriteAt(secondBuf, int64(a.Offset))
}
