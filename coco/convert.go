/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package coco

import (
	"github.com/EdgeFirstAI/client-sub000/client/types"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BBoxToBox2D normalizes a pixel bbox to the 0..1 top-left internal form.
// Components are clamped at the [0,1] boundary only; a box touching the
// image edge keeps its full extent.
func BBoxToBox2D(bbox [4]float64, width, height int) types.Box2D {
	w, h := float64(width), float64(height)
	return types.Box2D{
		X: clamp01(bbox[0] / w),
		Y: clamp01(bbox[1] / h),
		W: clamp01(bbox[2] / w),
		H: clamp01(bbox[3] / h),
	}
}

// Box2DToBBox converts the normalized top-left form back to pixels.
func Box2DToBBox(b types.Box2D, width, height int) [4]float64 {
	w, h := float64(width), float64(height)
	return [4]float64{b.X * w, b.Y * h, b.W * w, b.H * h}
}

// PolygonToMask normalizes COCO pixel polygons, each a flat x,y list,
// into the internal mask form.  Degenerate rings with fewer than three
// vertices are dropped.
func PolygonToMask(polys [][]float64, width, height int) types.Mask {
	w, h := float64(width), float64(height)
	var m types.Mask
	for _, flat := range polys {
		var ring types.Polygon
		for i := 0; i+1 < len(flat); i += 2 {
			ring = append(ring, types.Point{X: flat[i] / w, Y: flat[i+1] / h})
		}
		if len(ring) >= 3 {
			m = append(m, ring)
		}
	}
	return m
}

// MaskToPolygons converts a normalized mask to COCO pixel polygons.
func MaskToPolygons(m types.Mask, width, height int) [][]float64 {
	w, h := float64(width), float64(height)
	out := make([][]float64, 0, len(m))
	for _, ring := range m {
		flat := make([]float64, 0, len(ring)*2)
		for _, pt := range ring {
			flat = append(flat, pt.X*w, pt.Y*h)
		}
		out = append(out, flat)
	}
	return out
}

// ToMask converts any segmentation form to the internal normalized mask.
// RLE forms decode to a bitmap whose component contours become polygons.
func (s *Segmentation) ToMask(width, height int) (types.Mask, error) {
	switch {
	case s.RLE != nil:
		bm, err := s.RLE.Decode()
		if err != nil {
			return nil, err
		}
		return PolygonToMask(bm.Contours(), width, height), nil
	case s.Compressed != nil:
		bm, err := s.Compressed.Decode()
		if err != nil {
			return nil, err
		}
		return PolygonToMask(bm.Contours(), width, height), nil
	default:
		return PolygonToMask(s.Polygons, width, height), nil
	}
}
