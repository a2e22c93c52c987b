/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package columnar converts between in-memory samples and the columnar
// annotation table stored as an Arrow IPC file.  The table holds one row
// per annotation; a sample with no annotations contributes a single row
// whose annotation-scoped columns are null so the sample stays visible.
package columnar

import (
	"errors"

	"github.com/EdgeFirstAI/client-sub000/client/types"
)

// ErrFeatureNotEnabled is returned by every table entry point when the
// package is built with the noarrow tag.
var ErrFeatureNotEnabled = errors.New("columnar table support not enabled in this build")

// Row is one annotation row of the columnar table, in plain Go types so
// callers never touch Arrow directly.  Pointer fields are nullable
// columns; Label and Group are dictionary encoded and default to the
// empty string.
type Row struct {
	Name        string
	Frame       *uint64
	ObjectID    *string
	Label       string
	LabelIndex  *uint64
	Group       string
	Mask        []float32
	Box2D       *[4]float32
	Box3D       *[6]float32
	Size        *[2]uint32
	Location    *[2]float32
	Pose        *[3]float32
	Degradation *string
}

// SamplesToRows flattens samples into annotation rows in input order.
func SamplesToRows(samples []types.Sample) []Row {
	var rows []Row
	for i := range samples {
		s := &samples[i]
		base := Row{
			Name:  s.Name,
			Group: s.Group,
		}
		if s.FrameNumber != nil && *s.FrameNumber >= 0 {
			v := uint64(*s.FrameNumber)
			base.Frame = &v
		}
		if s.Width != nil && s.Height != nil {
			base.Size = &[2]uint32{*s.Width, *s.Height}
		}
		if s.Location != nil && s.Location.GPS != nil {
			base.Location = &[2]float32{float32(s.Location.GPS.Lat), float32(s.Location.GPS.Lon)}
		}
		if s.Location != nil && s.Location.IMU != nil {
			imu := s.Location.IMU
			base.Pose = &[3]float32{float32(imu.Roll), float32(imu.Pitch), float32(imu.Yaw)}
		}
		if s.Degradation != `` {
			d := s.Degradation
			base.Degradation = &d
		}
		if len(s.Annotations) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, a := range s.Annotations {
			r := base
			if a.ObjectID != `` {
				oid := a.ObjectID
				r.ObjectID = &oid
			}
			r.Label = a.Label
			r.LabelIndex = a.LabelIndex
			if len(a.Mask) > 0 {
				r.Mask = a.Mask.Flatten()
			}
			if a.Box2D != nil {
				// the table stores centre-based [cx,cy,w,h]
				r.Box2D = &[4]float32{
					float32(a.Box2D.X + a.Box2D.W/2),
					float32(a.Box2D.Y + a.Box2D.H/2),
					float32(a.Box2D.W), float32(a.Box2D.H),
				}
			}
			if a.Box3D != nil {
				r.Box3D = &[6]float32{
					float32(a.Box3D.X), float32(a.Box3D.Y), float32(a.Box3D.Z),
					float32(a.Box3D.W), float32(a.Box3D.H), float32(a.Box3D.L),
				}
			}
			rows = append(rows, r)
		}
	}
	return rows
}

// RowsToSamples reassembles samples from annotation rows.  Consecutive
// rows sharing a name fold into one sample; a row with no annotation
// payload yields an annotation-less sample.
func RowsToSamples(rows []Row) []types.Sample {
	var out []types.Sample
	var cur *types.Sample
	for i := range rows {
		r := &rows[i]
		if cur == nil || cur.Name != r.Name {
			out = append(out, rowSample(r))
			cur = &out[len(out)-1]
		}
		if a, ok := rowAnnotation(r); ok {
			a.Name = cur.Name
			a.Group = cur.Group
			cur.Annotations = append(cur.Annotations, a)
		}
	}
	return out
}

func rowSample(r *Row) types.Sample {
	s := types.Sample{
		Name:  r.Name,
		Group: r.Group,
	}
	if r.Frame != nil {
		v := int64(*r.Frame)
		s.FrameNumber = &v
	}
	if r.Size != nil {
		w, h := r.Size[0], r.Size[1]
		s.Width, s.Height = &w, &h
	}
	if r.Location != nil || r.Pose != nil {
		loc := &types.Location{}
		if r.Location != nil {
			loc.GPS = &types.GPS{Lat: float64(r.Location[0]), Lon: float64(r.Location[1])}
		}
		if r.Pose != nil {
			loc.IMU = &types.IMU{
				Roll:  float64(r.Pose[0]),
				Pitch: float64(r.Pose[1]),
				Yaw:   float64(r.Pose[2]),
			}
		}
		s.Location = loc
	}
	if r.Degradation != nil {
		s.Degradation = *r.Degradation
	}
	return s
}

// rowAnnotation reports false when the row carries no annotation payload,
// which is how an empty sample is represented in the table.
func rowAnnotation(r *Row) (a types.Annotation, ok bool) {
	if r.ObjectID == nil && r.Label == `` && r.LabelIndex == nil &&
		len(r.Mask) == 0 && r.Box2D == nil && r.Box3D == nil {
		return a, false
	}
	if r.ObjectID != nil {
		a.ObjectID = *r.ObjectID
	}
	a.Label = r.Label
	a.LabelIndex = r.LabelIndex
	if len(r.Mask) > 0 {
		a.Mask = types.UnflattenMask(r.Mask)
	}
	if r.Box2D != nil {
		w, h := float64(r.Box2D[2]), float64(r.Box2D[3])
		a.Box2D = &types.Box2D{
			X: float64(r.Box2D[0]) - w/2,
			Y: float64(r.Box2D[1]) - h/2,
			W: w, H: h,
		}
	}
	if r.Box3D != nil {
		a.Box3D = &types.Box3D{
			X: float64(r.Box3D[0]), Y: float64(r.Box3D[1]), Z: float64(r.Box3D[2]),
			W: float64(r.Box3D[3]), H: float64(r.Box3D[4]), L: float64(r.Box3D[5]),
		}
	}
	return a, true
}
