/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package coco

import (
	"bufio"
	"io"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zip"
)

// annotationEntryPattern selects archive members worth parsing; matching
// is on the entry base name, entries are not walked recursively.
const annotationEntryPattern = `*.json`

// ReadJSON parses one COCO document from disk.
func ReadJSON(pth string) (*Dataset, error) {
	fin, err := os.Open(pth)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return decodeReader(bufio.NewReader(fin))
}

// ReadAnnotationsZip merges every `*.json` archive entry whose name
// contains `instances` into a single dataset.  An archive without any
// such entry is a MissingAnnotationsError.
func ReadAnnotationsZip(pth string) (*Dataset, error) {
	zr, err := zip.OpenReader(pth)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var out *Dataset
	for _, f := range zr.File {
		base := path.Base(f.Name)
		if ok, _ := doublestar.Match(annotationEntryPattern, base); !ok {
			continue
		}
		if !strings.Contains(base, `instances`) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		ds, derr := decodeReader(bufio.NewReader(rc))
		rc.Close()
		if derr != nil {
			return nil, derr
		}
		if out == nil {
			out = ds
		} else {
			out.Merge(ds)
		}
	}
	if out == nil {
		return nil, &MissingAnnotationsError{Searched: []string{pth}}
	}
	return out, nil
}

// Merge folds src into d: images, categories and licenses deduplicate by
// id with the first writer winning, annotations always append, and info
// is taken from the first non-empty document.
func (d *Dataset) Merge(src *Dataset) {
	imgs := make(map[uint64]struct{}, len(d.Images))
	for _, im := range d.Images {
		imgs[im.ID] = struct{}{}
	}
	for _, im := range src.Images {
		if _, ok := imgs[im.ID]; ok {
			continue
		}
		imgs[im.ID] = struct{}{}
		d.Images = append(d.Images, im)
	}

	cats := make(map[uint32]struct{}, len(d.Categories))
	for _, c := range d.Categories {
		cats[c.ID] = struct{}{}
	}
	for _, c := range src.Categories {
		if _, ok := cats[c.ID]; ok {
			continue
		}
		cats[c.ID] = struct{}{}
		d.Categories = append(d.Categories, c)
	}

	lics := make(map[int]struct{}, len(d.Licenses))
	for _, l := range d.Licenses {
		lics[l.ID] = struct{}{}
	}
	for _, l := range src.Licenses {
		if _, ok := lics[l.ID]; ok {
			continue
		}
		lics[l.ID] = struct{}{}
		d.Licenses = append(d.Licenses, l)
	}

	d.Annotations = append(d.Annotations, src.Annotations...)
	if d.Info.empty() && !src.Info.empty() {
		info := *src.Info
		d.Info = &info
	}
}

// Validate checks referential integrity: every annotation must point at a
// known image and category and carry a positive bbox width and height.
func (d *Dataset) Validate() error {
	imgs := make(map[uint64]struct{}, len(d.Images))
	for _, im := range d.Images {
		imgs[im.ID] = struct{}{}
	}
	cats := make(map[uint32]struct{}, len(d.Categories))
	for _, c := range d.Categories {
		cats[c.ID] = struct{}{}
	}
	for i := range d.Annotations {
		a := &d.Annotations[i]
		if _, ok := imgs[a.ImageID]; !ok {
			return cocoErrorf("annotation %d references unknown image %d", a.ID, a.ImageID)
		}
		if _, ok := cats[a.CategoryID]; !ok {
			return cocoErrorf("annotation %d references unknown category %d", a.ID, a.CategoryID)
		}
		if a.BBox[2] <= 0 || a.BBox[3] <= 0 {
			return cocoErrorf("annotation %d has non-positive bbox %vx%v", a.ID, a.BBox[2], a.BBox[3])
		}
	}
	return nil
}

// Truncate keeps at most n images and drops annotations left dangling.
func (d *Dataset) Truncate(n int) {
	if n < 0 || n >= len(d.Images) {
		return
	}
	d.Images = d.Images[:n]
	keep := make(map[uint64]struct{}, n)
	for _, im := range d.Images {
		keep[im.ID] = struct{}{}
	}
	anns := d.Annotations[:0]
	for _, a := range d.Annotations {
		if _, ok := keep[a.ImageID]; ok {
			anns = append(anns, a)
		}
	}
	d.Annotations = anns
}

// FilterCategories keeps only the named categories and the annotations
// that use them.  An unknown name is a MissingLabelError.
func (d *Dataset) FilterCategories(names []string) error {
	byName := make(map[string]uint32, len(d.Categories))
	for _, c := range d.Categories {
		byName[c.Name] = c.ID
	}
	keep := make(map[uint32]struct{}, len(names))
	for _, n := range names {
		id, ok := byName[n]
		if !ok {
			return &MissingLabelError{Name: n}
		}
		keep[id] = struct{}{}
	}
	cats := d.Categories[:0]
	for _, c := range d.Categories {
		if _, ok := keep[c.ID]; ok {
			cats = append(cats, c)
		}
	}
	d.Categories = cats
	anns := d.Annotations[:0]
	for _, a := range d.Annotations {
		if _, ok := keep[a.CategoryID]; ok {
			anns = append(anns, a)
		}
	}
	d.Annotations = anns
	return nil
}

func decodeReader(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, err
	}
	return &ds, nil
}
