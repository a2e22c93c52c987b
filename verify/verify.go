/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package verify

import (
	"math"
	"path/filepath"
	"sort"

	"github.com/EdgeFirstAI/client-sub000/coco"
)

// matchThreshold is the minimum IoU for an assignment pair to count as a
// match; anything weaker is unmatched on both sides.
const matchThreshold = 0.3

// BBoxReport accumulates bbox fidelity over all matched pairs.
type BBoxReport struct {
	Matched   int
	Unmatched int
	// Hist buckets the per-box maximum coordinate error in pixels:
	// <1, <2, <5, <10, and >=10.
	Hist     [5]int
	MaxError float64
	IoUSum   float64
}

func (r *BBoxReport) MatchRate() float64 {
	total := r.Matched + r.Unmatched
	if total == 0 {
		return 1
	}
	return float64(r.Matched) / float64(total)
}

func (r *BBoxReport) AvgIoU() float64 {
	if r.Matched == 0 {
		return 1
	}
	return r.IoUSum / float64(r.Matched)
}

func (r *BBoxReport) Within1Rate() float64 {
	if r.Matched == 0 {
		return 1
	}
	return float64(r.Hist[0]) / float64(r.Matched)
}

// MaskReport accumulates segmentation fidelity over matched pairs where
// both sides carry one.
type MaskReport struct {
	Compared       int
	VertexExact    int
	VertexWithin10 int
	PartsEqual     int
	AreaWithin1    int
	AreaWithin5    int
	BBoxIoUHigh    int
	BBoxIoULow     int
	BBoxIoUSum     float64
	ZeroArea       int
}

func (r *MaskReport) PreservationRate() float64 {
	if r.Compared == 0 {
		return 1
	}
	return float64(r.VertexWithin10) / float64(r.Compared)
}

func (r *MaskReport) AvgBBoxIoU() float64 {
	if r.Compared == 0 {
		return 1
	}
	return r.BBoxIoUSum / float64(r.Compared)
}

func (r *MaskReport) HighIoURate() float64 {
	if r.Compared == 0 {
		return 1
	}
	return float64(r.BBoxIoUHigh) / float64(r.Compared)
}

// CategoryReport is the set difference of category names between the two
// documents.
type CategoryReport struct {
	MissingInResult   []string
	MissingInOriginal []string
}

// Report is the full round-trip audit.
type Report struct {
	BBox       BBoxReport
	Mask       MaskReport
	Categories CategoryReport
}

// Pass applies the acceptance thresholds used by round-trip checks.
func (r *Report) Pass() bool {
	return r.BBox.Within1Rate() > 0.99 &&
		r.BBox.MatchRate() > 0.95 &&
		r.BBox.AvgIoU() > 0.95 &&
		r.Mask.PreservationRate() > 0.95 &&
		r.Mask.AvgBBoxIoU() > 0.90 &&
		r.Mask.HighIoURate() > 0.85 &&
		len(r.Categories.MissingInResult) == 0 &&
		len(r.Categories.MissingInOriginal) == 0
}

// Compare audits the reconstructed dataset against the original.  Both
// are keyed on the image file name stem; for each shared key the
// annotations are paired by minimum-cost assignment on bbox IoU.
func Compare(original, result *coco.Dataset) *Report {
	rep := &Report{}
	rep.Categories = compareCategories(original, result)

	oAnns := annotationsByStem(original)
	rAnns := annotationsByStem(result)

	keys := make([]string, 0, len(oAnns))
	for k := range oAnns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		o := oAnns[k]
		r := rAnns[k]
		matchKey(rep, o, r)
	}
	// result-only keys have nothing to match against
	for k, r := range rAnns {
		if _, ok := oAnns[k]; !ok {
			rep.BBox.Unmatched += len(r)
		}
	}
	return rep
}

func compareCategories(original, result *coco.Dataset) CategoryReport {
	oNames := make(map[string]struct{}, len(original.Categories))
	for _, c := range original.Categories {
		oNames[c.Name] = struct{}{}
	}
	rNames := make(map[string]struct{}, len(result.Categories))
	for _, c := range result.Categories {
		rNames[c.Name] = struct{}{}
	}
	var rep CategoryReport
	for n := range oNames {
		if _, ok := rNames[n]; !ok {
			rep.MissingInResult = append(rep.MissingInResult, n)
		}
	}
	for n := range rNames {
		if _, ok := oNames[n]; !ok {
			rep.MissingInOriginal = append(rep.MissingInOriginal, n)
		}
	}
	sort.Strings(rep.MissingInResult)
	sort.Strings(rep.MissingInOriginal)
	return rep
}

func annotationsByStem(d *coco.Dataset) map[string][]*coco.Annotation {
	names := make(map[uint64]string, len(d.Images))
	for i := range d.Images {
		im := &d.Images[i]
		base := filepath.Base(im.FileName)
		if ext := filepath.Ext(base); ext != `` {
			base = base[:len(base)-len(ext)]
		}
		names[im.ID] = base
	}
	out := make(map[string][]*coco.Annotation)
	for i := range d.Annotations {
		a := &d.Annotations[i]
		if name, ok := names[a.ImageID]; ok {
			out[name] = append(out[name], a)
		}
	}
	return out
}

func matchKey(rep *Report, o, r []*coco.Annotation) {
	if len(o) == 0 && len(r) == 0 {
		return
	}
	ious := make([][]float64, len(o))
	for i := range o {
		ious[i] = make([]float64, len(r))
		for j := range r {
			ious[i][j] = bboxIoU(o[i].BBox, r[j].BBox)
		}
	}
	cost := buildCostMatrix(ious)
	if cost == nil {
		return
	}
	assign := solveAssignment(cost)
	matchedO := make([]bool, len(o))
	matchedR := make([]bool, len(r))
	for i := range o {
		j := assign[i]
		if j >= len(r) {
			continue
		}
		iou := ious[i][j]
		if iou < matchThreshold {
			continue
		}
		matchedO[i] = true
		matchedR[j] = true
		accumulateBBox(&rep.BBox, o[i].BBox, r[j].BBox, iou)
		accumulateMask(&rep.Mask, o[i], r[j])
	}
	for i := range o {
		if !matchedO[i] {
			rep.BBox.Unmatched++
		}
	}
	for j := range r {
		if !matchedR[j] {
			rep.BBox.Unmatched++
		}
	}
}

func accumulateBBox(rep *BBoxReport, o, r [4]float64, iou float64) {
	rep.Matched++
	rep.IoUSum += iou
	var maxErr float64
	for i := 0; i < 4; i++ {
		if e := math.Abs(o[i] - r[i]); e > maxErr {
			maxErr = e
		}
	}
	if maxErr > rep.MaxError {
		rep.MaxError = maxErr
	}
	switch {
	case maxErr < 1:
		rep.Hist[0]++
	case maxErr < 2:
		rep.Hist[1]++
	case maxErr < 5:
		rep.Hist[2]++
	case maxErr < 10:
		rep.Hist[3]++
	default:
		rep.Hist[4]++
	}
}

// segmentStats reduces any segmentation form to what the mask audit
// needs: vertex and part counts, area, and a pixel bounding box.
type segmentStats struct {
	vertices int
	parts    int
	area     float64
	bbox     [4]float64
	hasBBox  bool
}

func segStats(s *coco.Segmentation) (st segmentStats, ok bool) {
	if s == nil {
		return st, false
	}
	switch {
	case s.RLE != nil, s.Compressed != nil:
		var bm *coco.Bitmap
		var err error
		if s.RLE != nil {
			bm, err = s.RLE.Decode()
		} else {
			bm, err = s.Compressed.Decode()
		}
		if err != nil {
			return st, false
		}
		st.area = float64(bm.Area())
		st.bbox, st.hasBBox = bm.BBox()
		polys := bm.Contours()
		st.parts = len(polys)
		for _, p := range polys {
			st.vertices += len(p) / 2
		}
		return st, true
	default:
		if len(s.Polygons) == 0 {
			return st, false
		}
		st.parts = len(s.Polygons)
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range s.Polygons {
			st.vertices += len(p) / 2
			st.area += shoelace(p)
			for i := 0; i+1 < len(p); i += 2 {
				minX = math.Min(minX, p[i])
				maxX = math.Max(maxX, p[i])
				minY = math.Min(minY, p[i+1])
				maxY = math.Max(maxY, p[i+1])
			}
		}
		if maxX >= minX && maxY >= minY {
			st.bbox = [4]float64{minX, minY, maxX - minX, maxY - minY}
			st.hasBBox = true
		}
		return st, true
	}
}

// shoelace is the absolute polygon area of a flat x,y vertex list.
func shoelace(p []float64) float64 {
	n := len(p) / 2
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i*2]*p[j*2+1] - p[j*2]*p[i*2+1]
	}
	return math.Abs(sum) / 2
}

func accumulateMask(rep *MaskReport, o, r *coco.Annotation) {
	so, okO := segStats(o.Segmentation)
	sr, okR := segStats(r.Segmentation)
	if !okO || !okR {
		return
	}
	rep.Compared++
	if so.area == 0 || sr.area == 0 {
		rep.ZeroArea++
		return
	}
	if so.vertices == sr.vertices {
		rep.VertexExact++
	}
	if within(float64(so.vertices), float64(sr.vertices), 0.10) {
		rep.VertexWithin10++
	}
	if so.parts == sr.parts {
		rep.PartsEqual++
	}
	if within(so.area, sr.area, 0.01) {
		rep.AreaWithin1++
	}
	if within(so.area, sr.area, 0.05) {
		rep.AreaWithin5++
	}
	if so.hasBBox && sr.hasBBox {
		iou := bboxIoU(so.bbox, sr.bbox)
		rep.BBoxIoUSum += iou
		if iou >= 0.9 {
			rep.BBoxIoUHigh++
		}
		if iou < 0.5 {
			rep.BBoxIoULow++
		}
	}
}

// within reports whether b is inside the relative tolerance band of a.
func within(a, b, tol float64) bool {
	if a == 0 {
		return b == 0
	}
	return math.Abs(a-b)/math.Abs(a) <= tol
}

// bboxIoU is intersection over union of two pixel `[x,y,w,h]` boxes.
func bboxIoU(a, b [4]float64) float64 {
	ax1, ay1, ax2, ay2 := a[0], a[1], a[0]+a[2], a[1]+a[3]
	bx1, by1, bx2, by2 := b[0], b[1], b[0]+b[2], b[1]+b[3]
	ix := math.Min(ax2, bx2) - math.Max(ax1, bx1)
	iy := math.Min(ay2, by2) - math.Max(ay1, by1)
	if ix <= 0 || iy <= 0 {
		return 0
	}
	inter := ix * iy
	union := a[2]*a[3] + b[2]*b[3] - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
