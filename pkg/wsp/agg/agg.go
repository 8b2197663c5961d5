// Package agg implements the five aggregation functions that collapse a
// block of finer-resolution points into one coarser-resolution value
// during write propagation (spec.md section 4.4).
//
// Each aggregator is a sum-type variant with a single Apply operation,
// per spec.md section 9's design note, the same shape as the teacher's
// Kind-tagged variants in pkg/slotcache (one small struct/enum per
// behavior, selected by value rather than by an interface hierarchy).
package agg

import (
	"math"

	"github.com/calvinalkan/wsp/pkg/wsp/codec"
)

// Kind selects one of the five aggregation functions.
type Kind uint8

const (
	Avg Kind = iota
	Sum
	Last
	Max
	Min
)

// FromCodec maps a codec.Aggregation enum value to the corresponding
// Kind, returning false for unrecognized values (spec.md's
// UnknownAggregation error path at open time).
func FromCodec(a codec.Aggregation) (Kind, bool) {
	switch a {
	case codec.Average:
		return Avg, true
	case codec.Sum:
		return Sum, true
	case codec.Last:
		return Last, true
	case codec.Max:
		return Max, true
	case codec.Min:
		return Min, true
	default:
		return 0, false
	}
}

// Apply reduces points[:count] to a single value under xff gating.
//
// skip is true only when insufficient valid points prevented a
// meaningful aggregate; the propagation loop in the database core stops
// rolling up into coarser archives when skip is true.
func (k Kind) Apply(points []codec.Point, count int, xff float32) (value float64, skip bool) {
	if k == Last {
		return applyLast(points, count), false
	}

	if count == 0 {
		return math.NaN(), false
	}

	valid := 0
	total := 0.0
	maxV := math.Inf(-1)
	minV := math.Inf(1)

	for i := 0; i < count; i++ {
		v := points[i].Value
		if math.IsNaN(v) {
			continue
		}

		valid++
		total += v

		if v > maxV {
			maxV = v
		}

		if v < minV {
			minV = v
		}
	}

	known := float32(valid) / float32(count)
	if known < xff {
		return math.NaN(), true
	}

	switch k {
	case Avg:
		return total / float64(valid), false
	case Sum:
		return total, false
	case Max:
		return maxV, false
	case Min:
		return minV, false
	default:
		return math.NaN(), false
	}
}

func applyLast(points []codec.Point, count int) float64 {
	if count == 0 {
		return math.NaN()
	}

	return points[count-1].Value
}
