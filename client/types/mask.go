/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package types

import "math"

// Flatten encodes the mask as the columnar store expects it: interleaved
// x,y coordinates with a single NaN separating adjacent polygons.  A valid
// mask never carries NaN coordinates, so the separator is unambiguous.
func (m Mask) Flatten() []float32 {
	if len(m) == 0 {
		return nil
	}
	n := len(m) - 1
	for _, p := range m {
		n += len(p) * 2
	}
	out := make([]float32, 0, n)
	for i, p := range m {
		if i > 0 {
			out = append(out, float32(math.NaN()))
		}
		for _, pt := range p {
			out = append(out, float32(pt.X), float32(pt.Y))
		}
	}
	return out
}

// UnflattenMask decodes the flat columnar representation back into
// polygons.  A NaN in either coordinate slot terminates the current
// polygon; the lone separator NaN is consumed and scanning resumes at the
// next value.
func UnflattenMask(flat []float32) Mask {
	var m Mask
	var cur Polygon
	flush := func() {
		if len(cur) > 0 {
			m = append(m, cur)
			cur = nil
		}
	}
	for i := 0; i < len(flat); {
		x := flat[i]
		if math.IsNaN(float64(x)) {
			flush()
			i++
			continue
		}
		if i+1 >= len(flat) {
			break
		}
		y := flat[i+1]
		if math.IsNaN(float64(y)) {
			// (finite, NaN) ends the polygon just like a lone separator
			flush()
			i += 2
			continue
		}
		cur = append(cur, Point{X: float64(x), Y: float64(y)})
		i += 2
	}
	flush()
	return m
}
