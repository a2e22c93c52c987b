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
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/EdgeFirstAI/client-sub000/client/types"
)

// annotationServer serves a fixed annotation set with two pages of samples.
func annotationServer(t *testing.T, count uint64, pages []any) (*httptest.Server, *[]string) {
	t.Helper()
	var mtx sync.Mutex
	var methods []string
	var pageIdx int
	srv := httptest.NewServer(rpcHandler(func(method string, params json.RawMessage) (any, *types.RPCError) {
		mtx.Lock()
		methods = append(methods, method)
		mtx.Unlock()
		switch method {
		case `annset.get`:
			return types.AnnotationSet{ID: 5, DatasetID: 7, Name: `ground-truth`}, nil
		case `label.list`:
			return []types.Label{
				{ID: 1, DatasetID: 7, Index: 0, Name: `person`},
				{ID: 2, DatasetID: 7, Index: 1, Name: `car`},
			}, nil
		case `samples.count`:
			return types.SampleCountResult{Count: count}, nil
		case `samples.list`:
			var p types.SampleListParams
			if err := json.Unmarshal(params, &p); err != nil {
				return nil, &types.RPCError{Code: 1, Message: err.Error()}
			}
			mtx.Lock()
			defer mtx.Unlock()
			if pageIdx >= len(pages) {
				return nil, &types.RPCError{Code: 2, Message: `page overrun`}
			}
			page := pages[pageIdx]
			pageIdx++
			return page, nil
		}
		return nil, &types.RPCError{Code: 3, Message: `unexpected ` + method}
	}))
	return srv, &methods
}

func TestListAnnotationsDenormalizes(t *testing.T) {
	pages := []any{
		map[string]any{
			`samples`: []map[string]any{
				{
					`id`:         1,
					`image_name`: `frame_0001`,
					`group`:      `train`,
					`annotations`: []map[string]any{
						{`label`: `car`, `box2d`: map[string]any{`x`: 0.1, `y`: 0.2, `w`: 0.3, `h`: 0.4}},
						{`label`: `person`, `label_index`: 9, `x`: 0.5, `y`: 0.5, `w`: 0.1, `h`: 0.1},
					},
				},
			},
			`continue_token`: `page-2`,
		},
		map[string]any{
			`samples`: []map[string]any{
				// no annotations: contributes one identity-only record
				{`id`: 2, `image_name`: `frame_0002`, `group`: `val`},
			},
		},
	}
	srv, _ := annotationServer(t, 2, pages)
	defer srv.Close()
	c := testClient(srv)
	defer c.Close()

	progress := make(chan Progress, 16)
	anns, err := c.ListAnnotations(context.Background(), 5, AnnotationListOptions{Progress: progress})
	if err != nil {
		t.Fatal(err)
	}
	if len(anns) != 3 {
		t.Fatalf("got %d annotations", len(anns))
	}

	// label_index joined in from the dataset label table
	if anns[0].Label != `car` || anns[0].LabelIndex == nil || *anns[0].LabelIndex != 1 {
		t.Fatalf("first annotation %+v", anns[0])
	}
	if anns[0].Name != `frame_0001` || anns[0].Group != `train` {
		t.Fatalf("identity not attached: %+v", anns[0])
	}
	// a server-provided label_index survives the join
	if anns[1].LabelIndex == nil || *anns[1].LabelIndex != 9 {
		t.Fatalf("second annotation %+v", anns[1])
	}
	// the empty sample stays visible as a bare identity record
	if anns[2].Name != `frame_0002` || anns[2].Label != `` || anns[2].Box2D != nil {
		t.Fatalf("third annotation %+v", anns[2])
	}

	var last Progress
	for p := range progress {
		last = p
	}
	if last.Current != 2 || last.Total != 2 {
		t.Fatalf("final progress %+v", last)
	}
}

func TestListAnnotationsEmptySet(t *testing.T) {
	srv, methods := annotationServer(t, 0, nil)
	defer srv.Close()
	c := testClient(srv)
	defer c.Close()

	anns, err := c.ListAnnotations(context.Background(), 5, AnnotationListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(anns) != 0 {
		t.Fatalf("got %d annotations", len(anns))
	}
	for _, m := range *methods {
		if m == `samples.list` {
			t.Fatal("samples.list invoked on an empty set")
		}
	}
}

func TestEachSamplePageContinuation(t *testing.T) {
	pages := []any{
		map[string]any{
			`samples`:        []map[string]any{{`image_name`: `a`}},
			`continue_token`: `tok-1`,
		},
		map[string]any{
			`samples`:        []map[string]any{{`image_name`: `b`}},
			`continue_token`: `tok-2`,
		},
		map[string]any{
			`samples`: []map[string]any{{`image_name`: `c`}},
		},
	}
	srv, _ := annotationServer(t, 3, pages)
	defer srv.Close()
	c := testClient(srv)
	defer c.Close()

	var names []string
	err := c.eachSamplePage(context.Background(), types.SampleFilter{}, func(page []types.Sample) error {
		for _, s := range page {
			names = append(names, s.Name)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 || names[0] != `a` || names[1] != `b` || names[2] != `c` {
		t.Fatalf("got %v", names)
	}
}
