package wsp

import (
	"github.com/calvinalkan/wsp/pkg/wsp/codec"
	"github.com/calvinalkan/wsp/pkg/wsp/ring"
	"github.com/calvinalkan/wsp/pkg/wsp/wsperr"
	"github.com/calvinalkan/wsp/pkg/wsp/wsptime"
)

// Update writes point at the current wall-clock time, per spec.md
// section 6's update(handle, point) signature (now = wall clock).
func (d *Database) Update(point codec.Point) error {
	return d.UpdateAt(point, wsptime.Now())
}

// UpdateAt writes point as of now, implementing spec.md section 4.5.3:
// select the highest-precision archive that covers the sample's age,
// write the finest-resolution slot, then roll the write up into each
// coarser archive in ascending spp order, stopping as soon as an
// aggregator reports insufficient valid input (the x-files-factor
// gate).
//
// Per-slot writes are sequenced and not journaled: a crash mid-
// propagation can leave coarser archives inconsistent with finer ones.
// This is accepted (spec.md section 4.5.3, "Atomicity").
func (d *Database) UpdateAt(point codec.Point, now uint32) error {
	if d.instance == nil {
		return wsperr.New(wsperr.NotOpen, "update", nil)
	}

	if point.Timestamp > now {
		return wsperr.New(wsperr.FutureTimestamp, "update", nil)
	}

	diff := now - point.Timestamp

	if diff >= d.meta.MaxRetention {
		return wsperr.New(wsperr.Retention, "update", nil)
	}

	k := -1

	for i, a := range d.archives {
		if a.Retention() >= diff {
			k = i
			break
		}
	}

	if k < 0 {
		return wsperr.New(wsperr.Retention, "update", nil)
	}

	store := instanceStore{inst: d.instance}

	target := d.archives[k:]

	finest := target[0]

	flooredFinest := wsptime.Floor(point.Timestamp, finest.SecondsPerPoint)

	base, err := ring.LoadBase(store, finest)
	if err != nil {
		return err
	}

	idx := ring.SlotFor(base.Timestamp, finest.SecondsPerPoint, finest.Count, flooredFinest)

	if err := ring.SavePoints(store, finest, int(idx), []codec.Point{{Timestamp: flooredFinest, Value: point.Value}}); err != nil {
		return err
	}

	return d.propagate(store, point.Timestamp, target)
}

// propagate rolls the just-written finest-resolution sample up into
// every coarser archive in target[1:], in order, terminating early when
// an aggregator's x-files-factor gate is not satisfied (spec.md section
// 4.5.3 step 4).
func (d *Database) propagate(store instanceStore, timestamp uint32, target []codec.Archive) error {
	prev := target[0]

	for i := 1; i < len(target); i++ {
		cur := target[i]

		numPoints := int(cur.SecondsPerPoint / prev.SecondsPerPoint)
		fromFloored := wsptime.Floor(timestamp, cur.SecondsPerPoint)

		prevBase, err := ring.LoadBase(store, prev)
		if err != nil {
			return err
		}

		offset := (int64(fromFloored) - int64(prevBase.Timestamp)) / int64(prev.SecondsPerPoint)

		gathered := make([]codec.Point, numPoints)

		n, err := ring.FetchPoints(store, prev, int(offset), numPoints, gathered)
		if err != nil {
			return err
		}

		value, skip := d.aggKind.Apply(gathered, n, d.meta.XFilesFactor)
		if skip {
			return nil
		}

		curBase, err := ring.LoadBase(store, cur)
		if err != nil {
			return err
		}

		curIdx := ring.SlotFor(curBase.Timestamp, cur.SecondsPerPoint, cur.Count, fromFloored)

		if err := ring.SavePoints(store, cur, int(curIdx), []codec.Point{{Timestamp: fromFloored, Value: value}}); err != nil {
			return err
		}

		prev = cur
	}

	return nil
}
