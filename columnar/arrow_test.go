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
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v16/arrow"
	"github.com/apache/arrow/go/v16/arrow/array"
	"github.com/apache/arrow/go/v16/arrow/ipc"
	"github.com/apache/arrow/go/v16/arrow/memory"
	"github.com/google/go-cmp/cmp"
)

func tableRows() []Row {
	deg := `rain`
	oid := `car-1`
	return []Row{
		{
			Name:  `frame_0001`,
			Frame: u64(3), ObjectID: &oid,
			Label: `car`, LabelIndex: u64(1), Group: `train`,
			Mask:     []float32{0, 0, 0.5, 0, 0.5, 0.5},
			Box2D:    &[4]float32{0.5, 0.5, 0.25, 0.5},
			Box3D:    &[6]float32{1, 2, 3, 4, 5, 6},
			Size:     &[2]uint32{640, 480},
			Location: &[2]float32{45.5, -73.5},
			Pose:     &[3]float32{1, 2, 3},
		},
		{
			Name:  `frame_0001`,
			Label: `person`, LabelIndex: u64(0), Group: `train`,
		},
		// annotation-less sample: every annotation column is null
		{Name: `frame_0002`, Group: `val`, Degradation: &deg},
	}
}

func TestWriteReadRows(t *testing.T) {
	pth := filepath.Join(t.TempDir(), `annotations.arrow`)
	rows := tableRows()
	if err := WriteRows(pth, rows); err != nil {
		t.Fatal(err)
	}
	got, err := ReadRows(pth)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rows, got); diff != `` {
		t.Fatal(diff)
	}
}

func TestWriteReadLegacyRows(t *testing.T) {
	pth := filepath.Join(t.TempDir(), `legacy.arrow`)
	rows := tableRows()
	if err := WriteLegacyRows(pth, rows); err != nil {
		t.Fatal(err)
	}
	got, err := ReadRows(pth)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows", len(got))
	}
	// the legacy layout drops the sample metadata columns
	for i, r := range got {
		if r.Size != nil || r.Location != nil || r.Pose != nil || r.Degradation != nil {
			t.Fatalf("row %d kept metadata: %+v", i, r)
		}
		if r.Name != rows[i].Name || r.Label != rows[i].Label || r.Group != rows[i].Group {
			t.Fatalf("row %d identity lost: %+v", i, r)
		}
	}
	if got[0].Box2D == nil || *got[0].Box2D != *rows[0].Box2D {
		t.Fatal("box2d lost in legacy layout")
	}
}

func TestDictOverflow(t *testing.T) {
	rows := make([]Row, maxDictValues+1)
	for i := range rows {
		rows[i] = Row{Name: `a`, Label: fmt.Sprintf(`label-%d`, i), Group: `train`}
	}
	err := WriteRows(filepath.Join(t.TempDir(), `overflow.arrow`), rows)
	var dictErr *DictOverflowError
	if !errors.As(err, &dictErr) {
		t.Fatalf("got %v", err)
	}
	if dictErr.Column != `label` {
		t.Fatalf("column %q", dictErr.Column)
	}

	// 256 distinct values exactly fill the u8 index
	if err := WriteRows(filepath.Join(t.TempDir(), `full.arrow`), rows[:maxDictValues]); err != nil {
		t.Fatal(err)
	}
}

func TestReadRowsSchemaMismatch(t *testing.T) {
	pth := filepath.Join(t.TempDir(), `other.arrow`)
	schema := arrow.NewSchema([]arrow.Field{{Name: `value`, Type: arrow.PrimitiveTypes.Int64}}, nil)
	bld := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer bld.Release()
	bld.Field(0).(*array.Int64Builder).Append(1)
	rec := bld.NewRecord()
	defer rec.Release()

	fout, err := os.Create(pth)
	if err != nil {
		t.Fatal(err)
	}
	w, err := ipc.NewFileWriter(fout, ipc.WithSchema(schema), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(rec); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	fout.Close()

	if _, err := ReadRows(pth); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestWriteReadSamples(t *testing.T) {
	pth := filepath.Join(t.TempDir(), `samples.arrow`)
	samples := RowsToSamples(tableRows())
	if err := WriteSamples(pth, samples); err != nil {
		t.Fatal(err)
	}
	got, err := ReadSamples(pth)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(samples, got); diff != `` {
		t.Fatal(diff)
	}
}
