package agg

import (
	"math"
	"testing"

	"github.com/calvinalkan/wsp/pkg/wsp/codec"
)

func pts(vs ...float64) []codec.Point {
	out := make([]codec.Point, len(vs))
	for i, v := range vs {
		out[i] = codec.Point{Timestamp: uint32(i + 1), Value: v}
	}

	return out
}

func TestAvg(t *testing.T) {
	t.Parallel()

	v, skip := Avg.Apply(pts(1, 2, 3), 3, 0.5)
	if skip || v != 2 {
		t.Fatalf("Avg = %v, skip=%v, want 2, false", v, skip)
	}
}

func TestAvgEmptyNoSkip(t *testing.T) {
	t.Parallel()

	v, skip := Avg.Apply(nil, 0, 0.5)
	if skip {
		t.Fatalf("Avg on empty should not set skip")
	}

	if !math.IsNaN(v) {
		t.Fatalf("Avg on empty should be NaN, got %v", v)
	}
}

func TestAvgXffGating(t *testing.T) {
	t.Parallel()

	// 1 of 2 finite: known = 0.5, xff = 0.9 -> gated.
	v, skip := Avg.Apply(pts(5, math.NaN()), 2, 0.9)
	if !skip || !math.IsNaN(v) {
		t.Fatalf("Avg under xff = %v, skip=%v, want NaN, true", v, skip)
	}

	// known == xff exactly is NOT gated (spec: known < xff gates).
	v, skip = Avg.Apply(pts(5, math.NaN()), 2, 0.5)
	if skip || v != 5 {
		t.Fatalf("Avg at exact xff = %v, skip=%v, want 5, false", v, skip)
	}
}

func TestSum(t *testing.T) {
	t.Parallel()

	v, skip := Sum.Apply(pts(1, 2, 3), 3, 0)
	if skip || v != 6 {
		t.Fatalf("Sum = %v, skip=%v, want 6, false", v, skip)
	}
}

func TestLastNeverSkips(t *testing.T) {
	t.Parallel()

	v, skip := Last.Apply(pts(math.NaN(), math.NaN()), 2, 1.0)
	if skip {
		t.Fatalf("Last must never set skip")
	}

	if !math.IsNaN(v) {
		t.Fatalf("Last = %v, want NaN", v)
	}

	v, skip = Last.Apply(pts(1, 2, 3), 3, 1.0)
	if skip || v != 3 {
		t.Fatalf("Last = %v, skip=%v, want 3, false", v, skip)
	}
}

func TestLastEmpty(t *testing.T) {
	t.Parallel()

	v, skip := Last.Apply(nil, 0, 0)
	if skip || !math.IsNaN(v) {
		t.Fatalf("Last on empty = %v, skip=%v, want NaN, false", v, skip)
	}
}

func TestMaxMin(t *testing.T) {
	t.Parallel()

	v, skip := Max.Apply(pts(3, 1, 2), 3, 0)
	if skip || v != 3 {
		t.Fatalf("Max = %v, skip=%v, want 3, false", v, skip)
	}

	v, skip = Min.Apply(pts(3, 1, 2), 3, 0)
	if skip || v != 1 {
		t.Fatalf("Min = %v, skip=%v, want 1, false", v, skip)
	}
}

func TestFromCodec(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   codec.Aggregation
		want Kind
		ok   bool
	}{
		{codec.Average, Avg, true},
		{codec.Sum, Sum, true},
		{codec.Last, Last, true},
		{codec.Max, Max, true},
		{codec.Min, Min, true},
		{codec.Aggregation(0), 0, false},
		{codec.Aggregation(6), 0, false},
	}

	for _, c := range cases {
		got, ok := FromCodec(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("FromCodec(%d) = %v, %v, want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
