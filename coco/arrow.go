/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package coco

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/EdgeFirstAI/client-sub000/client/types"
	"github.com/EdgeFirstAI/client-sub000/columnar"

	"golang.org/x/sync/errgroup"
)

// workersEnv overrides the conversion worker pool size; it is the only
// environment input honored by the codec.
const workersEnv = `STUDIO_WORKERS`

// progressInterval is how often ArrowToCoco reports, in rows.
const progressInterval = 1000

// defaultWorkers is half the CPUs clamped to [2,8], unless overridden via
// the environment.
func defaultWorkers() int {
	if v := os.Getenv(workersEnv); v != `` {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	n := runtime.NumCPU() / 2
	if n < 2 {
		n = 2
	}
	if n > 8 {
		n = 8
	}
	return n
}

// stem strips the directory and extension from an image file name; it is
// the join key between documents and table rows.
func stem(fileName string) string {
	base := filepath.Base(fileName)
	if ext := filepath.Ext(base); ext != `` {
		base = base[:len(base)-len(ext)]
	}
	return base
}

// groupFromName guesses a dataset split from the file name when the
// caller does not pin one.
func groupFromName(fileName string) string {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, `val`):
		return `val`
	case strings.Contains(lower, `test`):
		return `test`
	default:
		return `train`
	}
}

// ToArrowOptions tunes CocoToArrow.
type ToArrowOptions struct {
	// Group pins the dataset split; empty falls back to a file name
	// heuristic per image.
	Group string
	// Workers overrides the pool size; zero uses the default clamp.
	Workers int
}

// progressSink mirrors completed work onto an optional channel and closes
// it when the operation finishes.
type progressSink struct {
	ch    chan<- types.Progress
	total uint64
	cur   atomic.Uint64
}

func newProgressSink(ch chan<- types.Progress, total uint64) *progressSink {
	s := &progressSink{ch: ch, total: total}
	if ch != nil && total > 0 {
		ch <- types.Progress{Current: 0, Total: total}
	}
	return s
}

func (s *progressSink) add(n uint64) {
	cur := s.cur.Add(n)
	if s.ch != nil {
		s.ch <- types.Progress{Current: cur, Total: s.total}
	}
}

func (s *progressSink) close() {
	if s.ch != nil {
		close(s.ch)
		s.ch = nil
	}
}

// CocoToArrow converts a COCO document (JSON, or ZIP by extension) into
// the columnar annotation table.  Images transform in parallel under a
// bounded pool; row order follows document image order regardless of
// completion order.  One progress record is sent per image.
func CocoToArrow(cocoPath, arrowOut string, opts ToArrowOptions, sink chan<- types.Progress) error {
	var ds *Dataset
	var err error
	if strings.EqualFold(filepath.Ext(cocoPath), `.zip`) {
		ds, err = ReadAnnotationsZip(cocoPath)
	} else {
		ds, err = ReadJSON(cocoPath)
	}
	if err != nil {
		return err
	}
	idx := ds.BuildIndex()

	ps := newProgressSink(sink, uint64(len(ds.Images)))
	defer ps.close()

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers()
	}
	perImage := make([][]columnar.Row, len(ds.Images))
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range ds.Images {
		g.Go(func() error {
			im := &ds.Images[i]
			rows, err := imageRows(im, idx, opts.Group)
			if err != nil {
				return err
			}
			perImage[i] = rows
			ps.add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var rows []columnar.Row
	for _, r := range perImage {
		rows = append(rows, r...)
	}
	return columnar.WriteRows(arrowOut, rows)
}

// imageRows converts one image's annotations to table rows; an image with
// no annotations yields a single identity-only row.
func imageRows(im *Image, idx *Index, group string) ([]columnar.Row, error) {
	if group == `` {
		group = groupFromName(im.FileName)
	}
	sample := types.Sample{
		Name:  stem(im.FileName),
		Group: group,
	}
	if im.Width > 0 && im.Height > 0 {
		w, h := uint32(im.Width), uint32(im.Height)
		sample.Width, sample.Height = &w, &h
	} else if len(idx.AnnotationsByImage[im.ID]) > 0 {
		// geometry cannot be normalized without pixel dimensions
		return nil, cocoErrorf("image %d (%s) has annotations but no dimensions", im.ID, im.FileName)
	}
	for _, ca := range idx.AnnotationsByImage[im.ID] {
		name, ok := idx.LabelName[ca.CategoryID]
		if !ok {
			return nil, cocoErrorf("annotation %d references unknown category %d", ca.ID, ca.CategoryID)
		}
		labelIdx := idx.LabelIndex[ca.CategoryID]
		box := BBoxToBox2D(ca.BBox, im.Width, im.Height)
		ann := types.Annotation{
			Label:      name,
			LabelIndex: &labelIdx,
			Box2D:      &box,
		}
		if ca.Segmentation != nil {
			m, err := ca.Segmentation.ToMask(im.Width, im.Height)
			if err != nil {
				return nil, err
			}
			ann.Mask = m
		}
		sample.Annotations = append(sample.Annotations, ann)
	}
	return columnar.SamplesToRows([]types.Sample{sample}), nil
}

// FromArrowOptions tunes ArrowToCoco.
type FromArrowOptions struct {
	// IncludeMasks reconstructs polygon segmentations from the mask column.
	IncludeMasks bool
	// ImageWidth and ImageHeight supply pixel dimensions for rows whose
	// size column is null.
	ImageWidth  int
	ImageHeight int
	// Pretty indents the output document.
	Pretty bool
}

// ArrowToCoco converts a columnar annotation table back into a COCO JSON
// document.  The table columns are extracted up-front; the first pass
// assigns image and category ids, the second emits annotations.  Progress
// is reported every thousand rows.
func ArrowToCoco(arrowPath, cocoOut string, opts FromArrowOptions, sink chan<- types.Progress) error {
	rows, err := columnar.ReadRows(arrowPath)
	if err != nil {
		return err
	}
	ps := newProgressSink(sink, uint64(len(rows)))
	defer ps.close()

	bld := NewBuilder()
	imageIDs := make(map[string]uint64, len(rows))
	imageDims := make(map[string][2]int, len(rows))
	for i := range rows {
		r := &rows[i]
		if _, ok := imageIDs[r.Name]; !ok {
			w, h := opts.ImageWidth, opts.ImageHeight
			if r.Size != nil {
				w, h = int(r.Size[0]), int(r.Size[1])
			}
			imageIDs[r.Name] = bld.AddImage(r.Name, w, h)
			imageDims[r.Name] = [2]int{w, h}
		}
		if r.Label != `` {
			bld.AddCategory(r.Label, ``)
		}
	}

	for i := range rows {
		r := &rows[i]
		// identity-only rows for empty samples carry no geometry
		if r.Box2D != nil || len(r.Mask) > 0 {
			dims := imageDims[r.Name]
			w, h := float64(dims[0]), float64(dims[1])
			var bbox [4]float64
			if r.Box2D != nil {
				cx, cy := float64(r.Box2D[0]), float64(r.Box2D[1])
				bw, bh := float64(r.Box2D[2]), float64(r.Box2D[3])
				bbox = [4]float64{(cx - bw/2) * w, (cy - bh/2) * h, bw * w, bh * h}
			}
			var seg *Segmentation
			if opts.IncludeMasks && len(r.Mask) > 0 {
				mask := types.UnflattenMask(r.Mask)
				seg = &Segmentation{Polygons: MaskToPolygons(mask, dims[0], dims[1])}
			}
			catID := bld.AddCategory(r.Label, ``)
			bld.AddAnnotation(imageIDs[r.Name], catID, bbox, seg, 0)
		}
		if (i+1)%progressInterval == 0 {
			ps.add(progressInterval)
		}
	}
	if rem := uint64(len(rows) % progressInterval); rem > 0 {
		ps.add(rem)
	}
	return WriteJSON(bld.Dataset(), cocoOut, opts.Pretty)
}
