/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

//go:build !noarrow

package columnar

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/EdgeFirstAI/client-sub000/client/types"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/ipc"
	"github.com/apache/arrow/go/v16/arrow/memory"
)

// maxDictValues is the capacity of the u8 dictionary index used by the
// label and group columns.
const maxDictValues = 256

// ErrSchemaMismatch is returned when an IPC file does not carry the
// annotation table schema.
var ErrSchemaMismatch = errors.New("columnar schema mismatch")

// DictOverflowError reports a dictionary column with more distinct values
// than the u8 index can address.
type DictOverflowError struct {
	Column string
}

func (e *DictOverflowError) Error() string {
	return fmt.Sprintf("invalid parameters: column %s exceeds %d distinct values", e.Column, maxDictValues)
}

func dictType() *arrow.DictionaryType {
	return &arrow.DictionaryType{
		IndexType: arrow.PrimitiveTypes.Uint8,
		ValueType: arrow.BinaryTypes.String,
	}
}

// annotationSchema is the full 13 column table; the legacy variant stops
// after box3d.  The two schemas are kept distinct at the column level.
func annotationSchema(legacy bool) *arrow.Schema {
	fields := []arrow.Field{
		{Name: `name`, Type: arrow.BinaryTypes.String},
		{Name: `frame`, Type: arrow.PrimitiveTypes.Uint64, Nullable: true},
		{Name: `object_id`, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: `label`, Type: dictType()},
		{Name: `label_index`, Type: arrow.PrimitiveTypes.Uint64, Nullable: true},
		{Name: `group`, Type: dictType()},
		{Name: `mask`, Type: arrow.ListOf(arrow.PrimitiveTypes.Float32), Nullable: true},
		{Name: `box2d`, Type: arrow.FixedSizeListOf(4, arrow.PrimitiveTypes.Float32), Nullable: true},
		{Name: `box3d`, Type: arrow.FixedSizeListOf(6, arrow.PrimitiveTypes.Float32), Nullable: true},
	}
	if !legacy {
		fields = append(fields,
			arrow.Field{Name: `size`, Type: arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Uint32), Nullable: true},
			arrow.Field{Name: `location`, Type: arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Float32), Nullable: true},
			arrow.Field{Name: `pose`, Type: arrow.FixedSizeListOf(3, arrow.PrimitiveTypes.Float32), Nullable: true},
			arrow.Field{Name: `degradation`, Type: arrow.BinaryTypes.String, Nullable: true},
		)
	}
	return arrow.NewSchema(fields, nil)
}

// WriteRows writes the 13 column annotation table as an Arrow IPC file.
func WriteRows(path string, rows []Row) error {
	return writeRows(path, rows, false)
}

// WriteLegacyRows writes the 9 column table without the sample metadata
// columns, for consumers of the older layout.
func WriteLegacyRows(path string, rows []Row) error {
	return writeRows(path, rows, true)
}

// WriteSamples flattens samples and writes the full table.
func WriteSamples(path string, samples []types.Sample) error {
	return WriteRows(path, SamplesToRows(samples))
}

// dictTracker rejects an append that would push a u8 dictionary past its
// index capacity before the value reaches the builder.
type dictTracker struct {
	column string
	seen   map[string]struct{}
}

func newDictTracker(column string) *dictTracker {
	return &dictTracker{column: column, seen: make(map[string]struct{})}
}

func (t *dictTracker) add(v string) error {
	if _, ok := t.seen[v]; ok {
		return nil
	}
	if len(t.seen) >= maxDictValues {
		return &DictOverflowError{Column: t.column}
	}
	t.seen[v] = struct{}{}
	return nil
}

func writeRows(path string, rows []Row, legacy bool) error {
	schema := annotationSchema(legacy)
	mem := memory.DefaultAllocator
	bld := array.NewRecordBuilder(mem, schema)
	defer bld.Release()

	name := bld.Field(0).(*array.StringBuilder)
	frame := bld.Field(1).(*array.Uint64Builder)
	objectID := bld.Field(2).(*array.StringBuilder)
	label := bld.Field(3).(*array.BinaryDictionaryBuilder)
	labelIndex := bld.Field(4).(*array.Uint64Builder)
	group := bld.Field(5).(*array.BinaryDictionaryBuilder)
	mask := bld.Field(6).(*array.ListBuilder)
	maskVals := mask.ValueBuilder().(*array.Float32Builder)
	box2d := bld.Field(7).(*array.FixedSizeListBuilder)
	box2dVals := box2d.ValueBuilder().(*array.Float32Builder)
	box3d := bld.Field(8).(*array.FixedSizeListBuilder)
	box3dVals := box3d.ValueBuilder().(*array.Float32Builder)

	labels := newDictTracker(`label`)
	groups := newDictTracker(`group`)

	var size, location, pose *array.FixedSizeListBuilder
	var sizeVals *array.Uint32Builder
	var locationVals, poseVals *array.Float32Builder
	var degradation *array.StringBuilder
	if !legacy {
		size = bld.Field(9).(*array.FixedSizeListBuilder)
		sizeVals = size.ValueBuilder().(*array.Uint32Builder)
		location = bld.Field(10).(*array.FixedSizeListBuilder)
		locationVals = location.ValueBuilder().(*array.Float32Builder)
		pose = bld.Field(11).(*array.FixedSizeListBuilder)
		poseVals = pose.ValueBuilder().(*array.Float32Builder)
		degradation = bld.Field(12).(*array.StringBuilder)
	}

	for i := range rows {
		r := &rows[i]
		name.Append(r.Name)
		appendOptUint64(frame, r.Frame)
		appendOptString(objectID, r.ObjectID)
		if err := labels.add(r.Label); err != nil {
			return err
		}
		if err := label.AppendString(r.Label); err != nil {
			return err
		}
		appendOptUint64(labelIndex, r.LabelIndex)
		if err := groups.add(r.Group); err != nil {
			return err
		}
		if err := group.AppendString(r.Group); err != nil {
			return err
		}
		if r.Mask == nil {
			mask.AppendNull()
		} else {
			mask.Append(true)
			maskVals.AppendValues(r.Mask, nil)
		}
		if r.Box2D == nil {
			box2d.AppendNull()
		} else {
			box2d.Append(true)
			box2dVals.AppendValues(r.Box2D[:], nil)
		}
		if r.Box3D == nil {
			box3d.AppendNull()
		} else {
			box3d.Append(true)
			box3dVals.AppendValues(r.Box3D[:], nil)
		}
		if legacy {
			continue
		}
		if r.Size == nil {
			size.AppendNull()
		} else {
			size.Append(true)
			sizeVals.AppendValues(r.Size[:], nil)
		}
		if r.Location == nil {
			location.AppendNull()
		} else {
			location.Append(true)
			locationVals.AppendValues(r.Location[:], nil)
		}
		if r.Pose == nil {
			pose.AppendNull()
		} else {
			pose.Append(true)
			poseVals.AppendValues(r.Pose[:], nil)
		}
		appendOptString(degradation, r.Degradation)
	}

	rec := bld.NewRecord()
	defer rec.Release()

	fout, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := ipc.NewFileWriter(fout, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		fout.Close()
		return err
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		fout.Close()
		return err
	}
	if err := w.Close(); err != nil {
		fout.Close()
		return err
	}
	return fout.Close()
}

func appendOptUint64(b *array.Uint64Builder, v *uint64) {
	if v == nil {
		b.AppendNull()
	} else {
		b.Append(*v)
	}
}

func appendOptString(b *array.StringBuilder, v *string) {
	if v == nil {
		b.AppendNull()
	} else {
		b.Append(*v)
	}
}

// ReadRows reads an annotation table, accepting both the full and the
// legacy schema.
func ReadRows(path string) ([]Row, error) {
	fin, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fin.Close()

	rdr, err := ipc.NewFileReader(fin, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	legacy, err := checkSchema(rdr.Schema())
	if err != nil {
		return nil, err
	}
	var rows []Row
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = appendRecordRows(rows, rec, legacy)
	}
	return rows, nil
}

// ReadSamples reads a table and reassembles samples from its rows.
func ReadSamples(path string) ([]types.Sample, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}
	return RowsToSamples(rows), nil
}

func checkSchema(s *arrow.Schema) (legacy bool, err error) {
	switch len(s.Fields()) {
	case 9:
		legacy = true
	case 13:
	default:
		return false, fmt.Errorf("%w: %d columns", ErrSchemaMismatch, len(s.Fields()))
	}
	want := annotationSchema(legacy)
	for i, f := range s.Fields() {
		wf := want.Field(i)
		if f.Name != wf.Name || !arrow.TypeEqual(f.Type, wf.Type) {
			return false, fmt.Errorf("%w: column %d is %s:%s, want %s:%s",
				ErrSchemaMismatch, i, f.Name, f.Type, wf.Name, wf.Type)
		}
	}
	return legacy, nil
}

func appendRecordRows(rows []Row, rec arrow.Record, legacy bool) []Row {
	n := int(rec.NumRows())
	name := rec.Column(0).(*array.String)
	frame := rec.Column(1).(*array.Uint64)
	objectID := rec.Column(2).(*array.String)
	label := rec.Column(3).(*array.Dictionary)
	labelDict := label.Dictionary().(*array.String)
	labelIndex := rec.Column(4).(*array.Uint64)
	group := rec.Column(5).(*array.Dictionary)
	groupDict := group.Dictionary().(*array.String)
	mask := rec.Column(6).(*array.List)
	maskVals := mask.ListValues().(*array.Float32)
	box2d := rec.Column(7).(*array.FixedSizeList)
	box2dVals := box2d.ListValues().(*array.Float32)
	box3d := rec.Column(8).(*array.FixedSizeList)
	box3dVals := box3d.ListValues().(*array.Float32)

	var size *array.FixedSizeList
	var sizeVals *array.Uint32
	var location, pose *array.FixedSizeList
	var locationVals, poseVals *array.Float32
	var degradation *array.String
	if !legacy {
		size = rec.Column(9).(*array.FixedSizeList)
		sizeVals = size.ListValues().(*array.Uint32)
		location = rec.Column(10).(*array.FixedSizeList)
		locationVals = location.ListValues().(*array.Float32)
		pose = rec.Column(11).(*array.FixedSizeList)
		poseVals = pose.ListValues().(*array.Float32)
		degradation = rec.Column(12).(*array.String)
	}

	for i := 0; i < n; i++ {
		r := Row{Name: name.Value(i)}
		if !frame.IsNull(i) {
			v := frame.Value(i)
			r.Frame = &v
		}
		if !objectID.IsNull(i) {
			v := objectID.Value(i)
			r.ObjectID = &v
		}
		r.Label = labelDict.Value(label.GetValueIndex(i))
		if !labelIndex.IsNull(i) {
			v := labelIndex.Value(i)
			r.LabelIndex = &v
		}
		r.Group = groupDict.Value(group.GetValueIndex(i))
		if !mask.IsNull(i) {
			start, end := mask.ValueOffsets(i)
			flat := make([]float32, 0, end-start)
			for j := start; j < end; j++ {
				flat = append(flat, maskVals.Value(int(j)))
			}
			r.Mask = flat
		}
		if !box2d.IsNull(i) {
			var b [4]float32
			for j := range b {
				b[j] = box2dVals.Value(i*4 + j)
			}
			r.Box2D = &b
		}
		if !box3d.IsNull(i) {
			var b [6]float32
			for j := range b {
				b[j] = box3dVals.Value(i*6 + j)
			}
			r.Box3D = &b
		}
		if !legacy {
			if !size.IsNull(i) {
				var b [2]uint32
				for j := range b {
					b[j] = sizeVals.Value(i*2 + j)
				}
				r.Size = &b
			}
			if !location.IsNull(i) {
				var b [2]float32
				for j := range b {
					b[j] = locationVals.Value(i*2 + j)
				}
				r.Location = &b
			}
			if !pose.IsNull(i) {
				var b [3]float32
				for j := range b {
					b[j] = poseVals.Value(i*3 + j)
				}
				r.Pose = &b
			}
			if !degradation.IsNull(i) {
				v := degradation.Value(i)
				r.Degradation = &v
			}
		}
		rows = append(rows, r)
	}
	return rows
}
