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
	"testing"

	"github.com/EdgeFirstAI/client-sub000/coco"
)

func auditDataset() *coco.Dataset {
	return &coco.Dataset{
		Images: []coco.Image{
			{ID: 1, FileName: `train_0001.jpg`, Width: 640, Height: 480},
			{ID: 2, FileName: `val_0001.jpg`, Width: 640, Height: 480},
		},
		Categories: []coco.Category{
			{ID: 1, Name: `person`},
			{ID: 2, Name: `car`},
		},
		Annotations: []coco.Annotation{
			{
				ID: 1, ImageID: 1, CategoryID: 1,
				BBox:         [4]float64{10, 10, 20, 40},
				Segmentation: &coco.Segmentation{Polygons: [][]float64{{10, 10, 30, 10, 30, 50, 10, 50}}},
			},
			{ID: 2, ImageID: 1, CategoryID: 2, BBox: [4]float64{100, 50, 200, 150}},
			{ID: 3, ImageID: 2, CategoryID: 2, BBox: [4]float64{5, 5, 50, 50}},
		},
	}
}

func TestCompareIdenticalPasses(t *testing.T) {
	rep := Compare(auditDataset(), auditDataset())
	if !rep.Pass() {
		t.Fatalf("identical datasets fail the audit: %+v", rep)
	}
	if rep.BBox.Matched != 3 || rep.BBox.Unmatched != 0 {
		t.Fatalf("bbox %+v", rep.BBox)
	}
	if rep.BBox.MaxError != 0 {
		t.Fatalf("max error %v", rep.BBox.MaxError)
	}
	if rep.BBox.AvgIoU() != 1 {
		t.Fatalf("avg IoU %v", rep.BBox.AvgIoU())
	}
	if rep.Mask.Compared != 1 || rep.Mask.VertexExact != 1 || rep.Mask.PartsEqual != 1 {
		t.Fatalf("mask %+v", rep.Mask)
	}
}

func TestCompareSubPixelShift(t *testing.T) {
	result := auditDataset()
	for i := range result.Annotations {
		result.Annotations[i].BBox[0] += 0.25
	}
	rep := Compare(auditDataset(), result)
	if !rep.Pass() {
		t.Fatalf("sub-pixel shift fails the audit: %+v", rep)
	}
	if rep.BBox.Hist[0] != 3 {
		t.Fatalf("hist %v", rep.BBox.Hist)
	}
	if rep.BBox.MaxError != 0.25 {
		t.Fatalf("max error %v", rep.BBox.MaxError)
	}
}

func TestCompareMissingAnnotation(t *testing.T) {
	result := auditDataset()
	result.Annotations = result.Annotations[:2]
	rep := Compare(auditDataset(), result)
	if rep.BBox.Matched != 2 || rep.BBox.Unmatched != 1 {
		t.Fatalf("bbox %+v", rep.BBox)
	}
	if rep.Pass() {
		t.Fatal("missing annotation passed the audit")
	}
}

func TestCompareResultOnlyImage(t *testing.T) {
	result := auditDataset()
	result.Images = append(result.Images, coco.Image{ID: 9, FileName: `extra.jpg`})
	result.Annotations = append(result.Annotations, coco.Annotation{
		ID: 9, ImageID: 9, CategoryID: 1, BBox: [4]float64{0, 0, 10, 10},
	})
	rep := Compare(auditDataset(), result)
	if rep.BBox.Unmatched != 1 {
		t.Fatalf("bbox %+v", rep.BBox)
	}
}

func TestCompareCategoryDrift(t *testing.T) {
	result := auditDataset()
	result.Categories[1].Name = `truck`
	rep := Compare(auditDataset(), result)
	if len(rep.Categories.MissingInResult) != 1 || rep.Categories.MissingInResult[0] != `car` {
		t.Fatalf("categories %+v", rep.Categories)
	}
	if len(rep.Categories.MissingInOriginal) != 1 || rep.Categories.MissingInOriginal[0] != `truck` {
		t.Fatalf("categories %+v", rep.Categories)
	}
	if rep.Pass() {
		t.Fatal("category drift passed the audit")
	}
}

func TestCompareCrossedBoxesAssignment(t *testing.T) {
	// two boxes per side listed in opposite order; the assignment must
	// pair each with its true counterpart, not by list position
	orig := &coco.Dataset{
		Images:     []coco.Image{{ID: 1, FileName: `a.jpg`}},
		Categories: []coco.Category{{ID: 1, Name: `x`}},
		Annotations: []coco.Annotation{
			{ID: 1, ImageID: 1, CategoryID: 1, BBox: [4]float64{0, 0, 10, 10}},
			{ID: 2, ImageID: 1, CategoryID: 1, BBox: [4]float64{100, 100, 10, 10}},
		},
	}
	result := &coco.Dataset{
		Images:     []coco.Image{{ID: 5, FileName: `a.jpg`}},
		Categories: []coco.Category{{ID: 1, Name: `x`}},
		Annotations: []coco.Annotation{
			{ID: 1, ImageID: 5, CategoryID: 1, BBox: [4]float64{100, 100, 10, 10}},
			{ID: 2, ImageID: 5, CategoryID: 1, BBox: [4]float64{0, 0, 10, 10}},
		},
	}
	rep := Compare(orig, result)
	if rep.BBox.Matched != 2 || rep.BBox.Unmatched != 0 {
		t.Fatalf("bbox %+v", rep.BBox)
	}
	if rep.BBox.AvgIoU() != 1 {
		t.Fatalf("avg IoU %v", rep.BBox.AvgIoU())
	}
}

func TestBBoxIoU(t *testing.T) {
	a := [4]float64{0, 0, 10, 10}
	if iou := bboxIoU(a, a); iou != 1 {
		t.Fatalf("self IoU %v", iou)
	}
	if iou := bboxIoU(a, [4]float64{20, 20, 10, 10}); iou != 0 {
		t.Fatalf("disjoint IoU %v", iou)
	}
	// half overlap: intersection 50, union 150
	got := bboxIoU(a, [4]float64{5, 0, 10, 10})
	if math.Abs(got-1.0/3.0) > 1e-12 {
		t.Fatalf("half overlap IoU %v", got)
	}
}

func TestShoelace(t *testing.T) {
	if a := shoelace([]float64{0, 0, 10, 0, 10, 10, 0, 10}); a != 100 {
		t.Fatalf("square area %v", a)
	}
	if a := shoelace([]float64{0, 0, 10, 0, 0, 10}); a != 50 {
		t.Fatalf("triangle area %v", a)
	}
	if a := shoelace([]float64{0, 0, 10, 0}); a != 0 {
		t.Fatalf("degenerate area %v", a)
	}
}

func TestWithin(t *testing.T) {
	if !within(100, 105, 0.05) {
		t.Fatal("5% band rejects 105/100")
	}
	if within(100, 106, 0.05) {
		t.Fatal("5% band accepts 106/100")
	}
	if !within(0, 0, 0.05) {
		t.Fatal("zero/zero rejected")
	}
	if within(0, 1, 0.05) {
		t.Fatal("zero/nonzero accepted")
	}
}
