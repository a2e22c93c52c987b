/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidAnnotationType = errors.New("invalid annotation type")
)

// AnnotationType selects which geometry kinds an annotation query returns.
type AnnotationType string

const (
	AnnotationBox2D AnnotationType = `box2d`
	AnnotationBox3D AnnotationType = `box3d`
	AnnotationMask  AnnotationType = `mask`
)

// ParseAnnotationType validates an annotation type tag.
func ParseAnnotationType(s string) (at AnnotationType, err error) {
	switch AnnotationType(s) {
	case AnnotationBox2D, AnnotationBox3D, AnnotationMask:
		at = AnnotationType(s)
	default:
		err = fmt.Errorf("%w: %q", ErrInvalidAnnotationType, s)
	}
	return
}

// Box2D is an axis aligned box with a top-left origin.  Internal storage is
// normalized 0..1 against the image dimensions.
type Box2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Box3D is a center origin cuboid: center x,y,z plus width, height, length.
type Box3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
	H float64 `json:"h"`
	L float64 `json:"l"`
}

// Point is a single mask vertex.
type Point struct {
	X float64
	Y float64
}

// Polygon is one ring of a mask.
type Polygon []Point

// Mask is a set of polygons covering the annotated region.
type Mask []Polygon

// Annotation is one labeled geometry associated with a sample.  The sample
// identity fields are denormalized onto the annotation by the pager so each
// record stands alone.
type Annotation struct {
	SampleID     *SampleID
	Name         string
	Group        string
	SequenceName string
	FrameNumber  *int64
	ObjectID     string
	Label        string
	LabelIndex   *uint64
	Box2D        *Box2D
	Box3D        *Box3D
	Mask         Mask
}

type annotationWire struct {
	SampleID     *SampleID       `json:"sample_id,omitempty"`
	Name         string          `json:"name,omitempty"`
	Group        string          `json:"group,omitempty"`
	SequenceName string          `json:"sequence_name,omitempty"`
	FrameNumber  *int64          `json:"frame_number,omitempty"`
	ObjectRef    string          `json:"object_reference,omitempty"`
	ObjectID     string          `json:"object_id,omitempty"`
	Label        string          `json:"label,omitempty"`
	LabelIndex   *uint64         `json:"label_index,omitempty"`
	Box2D        json.RawMessage `json:"box2d,omitempty"`
	Box3D        *Box3D          `json:"box3d,omitempty"`
	Mask         json.RawMessage `json:"mask,omitempty"`

	// flat box2d form: peers of the other fields
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	W *float64 `json:"w,omitempty"`
	H *float64 `json:"h,omitempty"`
}

// UnmarshalJSON accepts the legacy wire shapes: object_id or
// object_reference, box2d nested or flat alongside peer fields, and three
// generations of mask encodings.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var w annotationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*a = Annotation{
		SampleID:     w.SampleID,
		Name:         w.Name,
		Group:        w.Group,
		SequenceName: w.SequenceName,
		FrameNumber:  w.FrameNumber,
		ObjectID:     w.ObjectRef,
		Label:        w.Label,
		LabelIndex:   w.LabelIndex,
		Box3D:        w.Box3D,
	}
	if a.ObjectID == `` {
		a.ObjectID = w.ObjectID
	}
	if len(w.Box2D) > 0 {
		var b Box2D
		if err := json.Unmarshal(w.Box2D, &b); err != nil {
			return err
		}
		a.Box2D = &b
	} else if w.X != nil && w.Y != nil && w.W != nil && w.H != nil {
		a.Box2D = &Box2D{X: *w.X, Y: *w.Y, W: *w.W, H: *w.H}
	}
	if len(w.Mask) > 0 {
		m, err := ParseMask(w.Mask)
		if err != nil {
			return err
		}
		a.Mask = m
	}
	return nil
}

// MarshalJSON always emits the modern shape: object_reference, nested
// box2d, and a three deep mask.  Empty optional fields are omitted.
func (a Annotation) MarshalJSON() ([]byte, error) {
	w := annotationWire{
		SampleID:     a.SampleID,
		Name:         a.Name,
		Group:        a.Group,
		SequenceName: a.SequenceName,
		FrameNumber:  a.FrameNumber,
		ObjectRef:    a.ObjectID,
		Label:        a.Label,
		LabelIndex:   a.LabelIndex,
		Box3D:        a.Box3D,
	}
	if a.Box2D != nil {
		b, err := json.Marshal(a.Box2D)
		if err != nil {
			return nil, err
		}
		w.Box2D = b
	}
	if len(a.Mask) > 0 {
		rings := make([][][2]float64, 0, len(a.Mask))
		for _, p := range a.Mask {
			ring := make([][2]float64, 0, len(p))
			for _, pt := range p {
				ring = append(ring, [2]float64{pt.X, pt.Y})
			}
			rings = append(rings, ring)
		}
		b, err := json.Marshal(rings)
		if err != nil {
			return nil, err
		}
		w.Mask = b
	}
	return json.Marshal(w)
}

// ParseMask decodes any of the historical mask encodings:
//
//	[[[x,y],[x,y],...], ...]    three deep vertex lists
//	[[x,y,x,y,...], ...]        two deep flat pairs (COCO style)
//	{"polygon": <either>}       object wrapper
//
// Null or non-finite coordinates are dropped, as are rings left with fewer
// than three valid points.
func ParseMask(raw json.RawMessage) (Mask, error) {
	b := bytesTrimLeft(raw)
	if len(b) == 0 || string(b) == `null` {
		return nil, nil
	}
	if b[0] == '{' {
		var wrap struct {
			Polygon json.RawMessage `json:"polygon"`
		}
		if err := json.Unmarshal(raw, &wrap); err != nil {
			return nil, err
		}
		if len(wrap.Polygon) == 0 {
			return nil, nil
		}
		return ParseMask(wrap.Polygon)
	}
	if b[0] != '[' {
		return nil, errors.New("mask is neither array nor object")
	}
	var rings []json.RawMessage
	if err := json.Unmarshal(raw, &rings); err != nil {
		return nil, err
	}
	var m Mask
	for _, ring := range rings {
		poly, err := parseRing(ring)
		if err != nil {
			return nil, err
		}
		if len(poly) >= 3 {
			m = append(m, poly)
		}
	}
	return m, nil
}

func parseRing(raw json.RawMessage) (Polygon, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, nil
	}
	var poly Polygon
	if b := bytesTrimLeft(elems[0]); len(b) > 0 && b[0] == '[' {
		// three deep: list of [x,y] pairs
		for _, e := range elems {
			var pair []*float64
			if err := json.Unmarshal(e, &pair); err != nil {
				return nil, err
			}
			if len(pair) < 2 || !finitePt(pair[0]) || !finitePt(pair[1]) {
				continue
			}
			poly = append(poly, Point{X: *pair[0], Y: *pair[1]})
		}
		return poly, nil
	}
	// two deep: flat x,y,x,y,... list
	var flat []*float64
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(flat); i += 2 {
		if !finitePt(flat[i]) || !finitePt(flat[i+1]) {
			continue
		}
		poly = append(poly, Point{X: *flat[i], Y: *flat[i+1]})
	}
	return poly, nil
}

func finitePt(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
