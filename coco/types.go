/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package coco reads and writes the COCO object detection interchange
// format, both as bare JSON and as annotation ZIP archives, and converts
// its pixel-space geometry to and from the normalized internal model.
package coco

import (
	"github.com/goccy/go-json"
)

// Info is the dataset preamble block.
type Info struct {
	Year        int    `json:"year,omitempty"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
	Contributor string `json:"contributor,omitempty"`
	URL         string `json:"url,omitempty"`
	DateCreated string `json:"date_created,omitempty"`
}

func (i *Info) empty() bool {
	return i == nil || *i == Info{}
}

// License is one entry of the licenses block.
type License struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Image describes one image file referenced by annotations.
type Image struct {
	ID           uint64 `json:"id"`
	FileName     string `json:"file_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	License      int    `json:"license,omitempty"`
	DateCaptured string `json:"date_captured,omitempty"`
}

// Category is one object class.
type Category struct {
	ID            uint32 `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory,omitempty"`
}

// Annotation is one labeled region of an image.  The bbox is pixel
// absolute top-left `[x, y, w, h]`.
type Annotation struct {
	ID           uint64        `json:"id"`
	ImageID      uint64        `json:"image_id"`
	CategoryID   uint32        `json:"category_id"`
	BBox         [4]float64    `json:"bbox"`
	Area         float64       `json:"area"`
	IsCrowd      int           `json:"iscrowd"`
	Segmentation *Segmentation `json:"segmentation,omitempty"`
}

// RLE is an uncompressed run length mask: column-major runs alternating
// background and foreground, starting with background.
type RLE struct {
	Size   [2]int   `json:"size"`
	Counts []uint32 `json:"counts"`
}

// CompressedRLE carries the char-packed counts string form.
type CompressedRLE struct {
	Size   [2]int `json:"size"`
	Counts string `json:"counts"`
}

// Segmentation is the three-way wire union: polygon vertex lists, plain
// RLE, or compressed RLE.  Exactly one field is populated.
type Segmentation struct {
	Polygons   [][]float64
	RLE        *RLE
	Compressed *CompressedRLE
}

// UnmarshalJSON dispatches on the wire shape: an array is polygons, an
// object is RLE whose counts field decides plain versus compressed.
func (s *Segmentation) UnmarshalJSON(data []byte) error {
	*s = Segmentation{}
	t := trimLeft(data)
	if len(t) == 0 || string(t) == `null` {
		return nil
	}
	if t[0] == '[' {
		return json.Unmarshal(data, &s.Polygons)
	}
	var probe struct {
		Size   [2]int          `json:"size"`
		Counts json.RawMessage `json:"counts"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if c := trimLeft(probe.Counts); len(c) > 0 && c[0] == '"' {
		var counts string
		if err := json.Unmarshal(probe.Counts, &counts); err != nil {
			return err
		}
		s.Compressed = &CompressedRLE{Size: probe.Size, Counts: counts}
		return nil
	}
	var counts []uint32
	if err := json.Unmarshal(probe.Counts, &counts); err != nil {
		return err
	}
	s.RLE = &RLE{Size: probe.Size, Counts: counts}
	return nil
}

func (s Segmentation) MarshalJSON() ([]byte, error) {
	switch {
	case s.RLE != nil:
		return json.Marshal(s.RLE)
	case s.Compressed != nil:
		return json.Marshal(s.Compressed)
	default:
		return json.Marshal(s.Polygons)
	}
}

func trimLeft(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t' || b[0] == '\n' || b[0] == '\r') {
		b = b[1:]
	}
	return b
}

// Dataset is a complete COCO document.
type Dataset struct {
	Info        *Info        `json:"info,omitempty"`
	Licenses    []License    `json:"licenses,omitempty"`
	Images      []Image      `json:"images"`
	Categories  []Category   `json:"categories"`
	Annotations []Annotation `json:"annotations"`
}

// Index holds the lookup tables most consumers need: annotations grouped
// by image, plus category id to name and to dense label index.
type Index struct {
	AnnotationsByImage map[uint64][]*Annotation
	ImageByID          map[uint64]*Image
	LabelName          map[uint32]string
	LabelIndex         map[uint32]uint64
}

// BuildIndex constructs the lookup tables over the dataset in place; the
// returned pointers alias the dataset slices.  Label indices follow
// category order in the document.
func (d *Dataset) BuildIndex() *Index {
	idx := &Index{
		AnnotationsByImage: make(map[uint64][]*Annotation, len(d.Images)),
		ImageByID:          make(map[uint64]*Image, len(d.Images)),
		LabelName:          make(map[uint32]string, len(d.Categories)),
		LabelIndex:         make(map[uint32]uint64, len(d.Categories)),
	}
	for i := range d.Images {
		idx.ImageByID[d.Images[i].ID] = &d.Images[i]
	}
	for i := range d.Categories {
		c := &d.Categories[i]
		idx.LabelName[c.ID] = c.Name
		idx.LabelIndex[c.ID] = uint64(i)
	}
	for i := range d.Annotations {
		a := &d.Annotations[i]
		idx.AnnotationsByImage[a.ImageID] = append(idx.AnnotationsByImage[a.ImageID], a)
	}
	return idx
}
