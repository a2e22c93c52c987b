/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/EdgeFirstAI/client-sub000/client/types"
)

func TestPartMath(t *testing.T) {
	const mib = 1024 * 1024
	// 250MiB splits into two full parts and a 50MiB tail
	if n := partCount(250*mib, partSize); n != 3 {
		t.Fatalf("250MiB gave %d parts", n)
	}
	if l := partLength(250*mib, partSize, 0); l != partSize {
		t.Fatalf("part 1 length %d", l)
	}
	if l := partLength(250*mib, partSize, 2); l != 52428800 {
		t.Fatalf("tail length %d", l)
	}
	// an exact multiple keeps a full-size tail, not a zero byte part
	if n := partCount(200*mib, partSize); n != 2 {
		t.Fatalf("200MiB gave %d parts", n)
	}
	if l := partLength(200*mib, partSize, 1); l != partSize {
		t.Fatalf("exact-multiple tail length %d", l)
	}
	if n := partCount(1, partSize); n != 1 {
		t.Fatalf("1 byte gave %d parts", n)
	}
	if l := partLength(1, partSize, 0); l != 1 {
		t.Fatalf("1 byte part length %d", l)
	}
}

func TestUploadSnapshot(t *testing.T) {
	const testPartSize = 1024
	data := strings.Repeat(`x`, 2*testPartSize+512)
	pth := filepath.Join(t.TempDir(), `data.arrow`)
	if err := os.WriteFile(pth, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	var mtx sync.Mutex
	partLens := map[int]int64{}
	objSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, `want PUT`, http.StatusMethodNotAllowed)
			return
		}
		n, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, `/part/`))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mtx.Lock()
		partLens[n] = r.ContentLength
		mtx.Unlock()
		w.Header().Set(`ETag`, fmt.Sprintf("%q", fmt.Sprintf(`etag-%d`, n)))
	}))
	defer objSrv.Close()

	var completed *types.CompleteMultipartParams
	var status string
	srv := httptest.NewServer(rpcHandler(func(method string, params json.RawMessage) (any, *types.RPCError) {
		switch method {
		case `snapshots.create_upload_url_multipart`:
			var p types.MultipartUploadParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, &types.RPCError{Code: 1, Message: err.Error()}
			}
			if len(p.Keys) != 1 || p.Keys[0].Key != `data.arrow` || p.Keys[0].Size != int64(len(data)) {
				return nil, &types.RPCError{Code: 2, Message: fmt.Sprintf(`bad keys %+v`, p.Keys)}
			}
			return []types.MultipartUploadTarget{{
				Key:      `data.arrow`,
				UploadID: `up-1`,
				URLs: []string{
					objSrv.URL + `/part/1`,
					objSrv.URL + `/part/2`,
					objSrv.URL + `/part/3`,
				},
			}}, nil
		case `snapshots.complete_multipart_upload`:
			var p types.CompleteMultipartParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, &types.RPCError{Code: 3, Message: err.Error()}
			}
			mtx.Lock()
			completed = &p
			mtx.Unlock()
			return true, nil
		case `snapshots.update`:
			var p types.SnapshotUpdateParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, &types.RPCError{Code: 4, Message: err.Error()}
			}
			mtx.Lock()
			status = p.Status
			mtx.Unlock()
			return true, nil
		}
		return nil, &types.RPCError{Code: 5, Message: `unexpected ` + method}
	}))
	defer srv.Close()
	c := testClient(srv)
	defer c.Close()

	progress := make(chan Progress, 16)
	u := &snapshotUploader{c: c, partSize: testPartSize}
	err := u.run(context.Background(), types.SnapshotID(1),
		[]SnapshotFile{{Key: `data.arrow`, Path: pth}}, progress)
	if err != nil {
		t.Fatal(err)
	}

	if completed == nil {
		t.Fatal("multipart upload never completed")
	}
	if completed.UploadID != `up-1` || completed.Key != `data.arrow` {
		t.Fatalf("completed %+v", completed)
	}
	if len(completed.Parts) != 3 {
		t.Fatalf("%d parts", len(completed.Parts))
	}
	for i, p := range completed.Parts {
		if p.PartNumber != i+1 {
			t.Fatalf("part %d numbered %d", i, p.PartNumber)
		}
		if want := fmt.Sprintf(`etag-%d`, i+1); p.ETag != want {
			t.Fatalf("part %d etag %q, want %q", i+1, p.ETag, want)
		}
	}
	if partLens[1] != testPartSize || partLens[2] != testPartSize || partLens[3] != 512 {
		t.Fatalf("part lengths %v", partLens)
	}
	if status != `available` {
		t.Fatalf("final status %q", status)
	}

	// progress counts whole parts, announced up front and closed at the end
	var events []Progress
	for p := range progress {
		events = append(events, p)
	}
	if len(events) != 4 {
		t.Fatalf("%d progress events", len(events))
	}
	if events[0] != (Progress{Current: 0, Total: 3 * testPartSize}) {
		t.Fatalf("first event %+v", events[0])
	}
	// parts upload concurrently, so events may land out of order
	var maxCur uint64
	for _, p := range events {
		if p.Total != 3*testPartSize {
			t.Fatalf("event total %d", p.Total)
		}
		if p.Current > maxCur {
			maxCur = p.Current
		}
	}
	if maxCur != 3*testPartSize {
		t.Fatalf("peak progress %d", maxCur)
	}
}

func TestUploadSnapshotMissingEtagFatal(t *testing.T) {
	pth := filepath.Join(t.TempDir(), `data.arrow`)
	if err := os.WriteFile(pth, []byte(`payload`), 0644); err != nil {
		t.Fatal(err)
	}
	objSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK) // no ETag header
	}))
	defer objSrv.Close()
	srv := httptest.NewServer(rpcHandler(func(method string, _ json.RawMessage) (any, *types.RPCError) {
		return []types.MultipartUploadTarget{{
			Key: `data.arrow`, UploadID: `up-1`, URLs: []string{objSrv.URL + `/part/1`},
		}}, nil
	}))
	defer srv.Close()
	c := testClient(srv)
	defer c.Close()

	u := &snapshotUploader{c: c, partSize: partSize}
	err := u.run(context.Background(), types.SnapshotID(1),
		[]SnapshotFile{{Key: `data.arrow`, Path: pth}}, nil)
	if !errors.Is(err, ErrInvalidEtag) {
		t.Fatalf("got %v", err)
	}
}

func TestUploadSnapshotRejectsEmptyInput(t *testing.T) {
	c := New()
	defer c.Close()

	var inv *InvalidParametersError
	if err := c.UploadSnapshot(context.Background(), 1, nil, nil); !errors.As(err, &inv) {
		t.Fatalf("no files: got %v", err)
	}

	pth := filepath.Join(t.TempDir(), `empty`)
	if err := os.WriteFile(pth, nil, 0644); err != nil {
		t.Fatal(err)
	}
	err := c.UploadSnapshot(context.Background(), 1, []SnapshotFile{{Key: `k`, Path: pth}}, nil)
	if !errors.As(err, &inv) {
		t.Fatalf("empty file: got %v", err)
	}
}
