/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package types

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMaskFlatten(t *testing.T) {
	m := Mask{
		{{0.1, 0.2}, {0.3, 0.2}, {0.3, 0.4}},
		{{0.5, 0.5}, {0.6, 0.5}, {0.55, 0.6}},
	}
	flat := m.Flatten()
	want := []float32{0.1, 0.2, 0.3, 0.2, 0.3, 0.4, float32(math.NaN()), 0.5, 0.5, 0.6, 0.5, 0.55, 0.6}
	if len(flat) != len(want) {
		t.Fatalf("got %d values, want %d", len(flat), len(want))
	}
	for i := range want {
		wNaN := math.IsNaN(float64(want[i]))
		gNaN := math.IsNaN(float64(flat[i]))
		if wNaN != gNaN || (!wNaN && flat[i] != want[i]) {
			t.Fatalf("value %d: got %v, want %v", i, flat[i], want[i])
		}
	}
}

func TestMaskFlattenRoundTrip(t *testing.T) {
	m := Mask{
		{{0.1, 0.2}, {0.3, 0.2}, {0.3, 0.4}},
		{{0.5, 0.5}, {0.6, 0.5}, {0.55, 0.6}},
		{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	}
	got := UnflattenMask(m.Flatten())
	// flatten narrows to f32, so compare after the same narrowing
	want := make(Mask, len(m))
	for i, p := range m {
		for _, pt := range p {
			want[i] = append(want[i], Point{
				X: float64(float32(pt.X)),
				Y: float64(float32(pt.Y)),
			})
		}
	}
	if diff := cmp.Diff(want, got); diff != `` {
		t.Fatal(diff)
	}
}

func TestUnflattenMaskNaNBoundaries(t *testing.T) {
	nan := float32(math.NaN())

	// (finite, NaN) ends the polygon like a lone separator
	got := UnflattenMask([]float32{0, 0, 1, 0, 1, 1, 0.5, nan, 2, 2, 3, 2, 3, 3})
	if len(got) != 2 {
		t.Fatalf("got %d polygons, want 2", len(got))
	}
	if len(got[0]) != 3 || len(got[1]) != 3 {
		t.Fatalf("polygon sizes %d and %d, want 3 and 3", len(got[0]), len(got[1]))
	}

	// (NaN, finite) likewise terminates and resumes at the next value
	got = UnflattenMask([]float32{0, 0, 1, 0, 1, 1, nan, 2, 2, 3, 2, 3, 3})
	if len(got) != 2 {
		t.Fatalf("got %d polygons, want 2", len(got))
	}

	if got := UnflattenMask(nil); got != nil {
		t.Fatalf("nil input gave %v", got)
	}

	// trailing separator adds nothing
	got = UnflattenMask([]float32{0, 0, 1, 0, 1, 1, nan})
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("got %v", got)
	}
}
