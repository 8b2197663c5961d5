package ring

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/wsp/pkg/wsp/codec"
	"github.com/calvinalkan/wsp/pkg/wsp/wsptime"
)

// memStore is a bare byte-slice Store used to test ring addressing in
// isolation from any backend implementation.
type memStore struct {
	buf []byte
}

func newMemStore(size int) *memStore {
	return &memStore{buf: make([]byte, size)}
}

func (m *memStore) ReadAt(dst []byte, offset int64) error {
	copy(dst, m.buf[offset:offset+int64(len(dst))])
	return nil
}

func (m *memStore) WriteAt(src []byte, offset int64) error {
	copy(m.buf[offset:offset+int64(len(src))], src)
	return nil
}

func TestEmodAlwaysNonNegative(t *testing.T) {
	t.Parallel()

	for n := int64(1); n <= 7; n++ {
		for x := int64(-20); x <= 20; x++ {
			got := emod(x, n)
			if got < 0 || got >= n {
				t.Fatalf("emod(%d, %d) = %d, want in [0, %d)", x, n, got, n)
			}
		}
	}
}

func TestFloorInvariant(t *testing.T) {
	t.Parallel()

	// floor(t, spp) == 0 mod spp, and floor(t, spp) <= t < floor(t, spp) + spp.
	spp := uint32(60)
	for t32 := uint32(0); t32 < 1000; t32 += 7 {
		floored := wsptime.Floor(t32, spp)
		if floored%spp != 0 {
			t.Fatalf("floor(%d) = %d not a multiple of %d", t32, floored, spp)
		}

		if floored > t32 || t32 >= floored+spp {
			t.Fatalf("floor(%d) = %d violates bracket invariant", t32, floored)
		}
	}
}

func TestSlotForEmptyArchiveWritesIndexZero(t *testing.T) {
	t.Parallel()

	if got := SlotFor(0, 60, 10, 600); got != 0 {
		t.Fatalf("SlotFor with empty base = %d, want 0", got)
	}
}

func TestRingWrap(t *testing.T) {
	t.Parallel()

	// spec.md section 8 scenario 6: spp=1, count=4, writes at
	// 100,101,102,103,104 overwrite slot 0 at t=104.
	a := codec.Archive{Offset: 0, SecondsPerPoint: 1, Count: 4}
	store := newMemStore(int(a.Offset) + int(a.Count)*codec.PointSize)

	times := []uint32{100, 101, 102, 103, 104}
	for _, ts := range times {
		base, err := LoadBase(store, a)
		if err != nil {
			t.Fatal(err)
		}

		idx := SlotFor(base.Timestamp, a.SecondsPerPoint, a.Count, ts)

		if err := SavePoints(store, a, int(idx), []codec.Point{{Timestamp: ts, Value: float64(ts)}}); err != nil {
			t.Fatal(err)
		}
	}

	got := make([]codec.Point, 4)
	if err := LoadPoints(store, a, 0, 4, got); err != nil {
		t.Fatal(err)
	}

	wantTimestamps := []uint32{104, 101, 102, 103}
	for i, want := range wantTimestamps {
		if got[i].Timestamp != want {
			t.Errorf("slot %d timestamp = %d, want %d", i, got[i].Timestamp, want)
		}
	}
}

func TestSavePointsOobRejectsFullLengthWrite(t *testing.T) {
	t.Parallel()

	a := codec.Archive{Offset: 0, SecondsPerPoint: 1, Count: 4}
	store := newMemStore(int(a.Count) * codec.PointSize)

	points := make([]codec.Point, 4) // length == count: must fail
	err := SavePoints(store, a, 0, points)
	if err == nil {
		t.Fatal("expected PointOob error")
	}
}

func TestSavePointsSegmentedWriteAcrossSeam(t *testing.T) {
	t.Parallel()

	a := codec.Archive{Offset: 0, SecondsPerPoint: 1, Count: 4}
	store := newMemStore(int(a.Count) * codec.PointSize)

	// offset=2, length=3 means indices {2,3,0}: crosses the seam.
	points := []codec.Point{
		{Timestamp: 10, Value: 1},
		{Timestamp: 11, Value: 2},
		{Timestamp: 12, Value: 3},
	}

	if err := SavePoints(store, a, 2, points); err != nil {
		t.Fatal(err)
	}

	got := make([]codec.Point, 4)
	if err := LoadPoints(store, a, 0, 4, got); err != nil {
		t.Fatal(err)
	}

	if got[2].Timestamp != 10 || got[3].Timestamp != 11 || got[0].Timestamp != 12 {
		t.Fatalf("segmented write landed wrong: %+v", got)
	}
}

func TestFetchPointsFiltersStaleEntries(t *testing.T) {
	t.Parallel()

	a := codec.Archive{Offset: 0, SecondsPerPoint: 10, Count: 4}
	store := newMemStore(int(a.Count) * codec.PointSize)

	// Establish base at t=100, then only write slot 0.
	if err := SavePoints(store, a, 0, []codec.Point{{Timestamp: 100, Value: 1}}); err != nil {
		t.Fatal(err)
	}

	out := make([]codec.Point, 4)
	n, err := FetchPoints(store, a, 0, 4, out)
	if err != nil {
		t.Fatal(err)
	}

	want := []codec.Point{
		{Timestamp: 100, Value: 1},
		{Timestamp: 110, Value: math.NaN()},
		{Timestamp: 120, Value: math.NaN()},
		{Timestamp: 130, Value: math.NaN()},
	}

	if diff := cmp.Diff(want, out[:n], cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("FetchPoints mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchTimePointsRejectsInvertedRange(t *testing.T) {
	t.Parallel()

	a := codec.Archive{Offset: 0, SecondsPerPoint: 10, Count: 4}
	store := newMemStore(int(a.Count) * codec.PointSize)

	out := make([]codec.Point, 4)
	_, err := FetchTimePoints(store, a, 100, 50, out)
	if err == nil {
		t.Fatal("expected TimeInterval error")
	}
}

func TestFetchTimePointsInclusiveWindow(t *testing.T) {
	t.Parallel()

	a := codec.Archive{Offset: 0, SecondsPerPoint: 10, Count: 100}
	store := newMemStore(int(a.Count) * codec.PointSize)

	if err := SavePoints(store, a, 1, []codec.Point{{Timestamp: 10, Value: 1}}); err != nil {
		t.Fatal(err)
	}

	if err := SavePoints(store, a, 2, []codec.Point{{Timestamp: 20, Value: 1}}); err != nil {
		t.Fatal(err)
	}

	out := make([]codec.Point, 4)
	n, err := FetchTimePoints(store, a, 10, 20, out)
	if err != nil {
		t.Fatal(err)
	}

	if n != 2 {
		t.Fatalf("FetchTimePoints(10,20) returned %d points, want 2", n)
	}
}
