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
	"strings"
	"testing"

	"github.com/EdgeFirstAI/client-sub000/client/types"
)

// The validation surface is narrower than the trainer one: sessions have
// no artifact listing or file download, only metrics and uploads.
func TestValidationSessionMethods(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(rpcHandler(func(method string, params json.RawMessage) (any, *types.RPCError) {
		methods = append(methods, method)
		switch method {
		case `validate.session.list`:
			return []map[string]any{}, nil
		case `validate.session.get`, `validate.session.metrics`:
			var p struct {
				ID types.ValidationSessionID `json:"session_id"`
			}
			if err := json.Unmarshal(params, &p); err != nil || p.ID != 5 {
				return nil, &types.RPCError{Code: 2, Message: `bad params`}
			}
			return map[string]any{}, nil
		default:
			return nil, &types.RPCError{Code: 1, Message: `unexpected ` + method}
		}
	}))
	defer srv.Close()
	c := testClient(srv)
	defer c.Close()

	ctx := context.Background()
	if _, err := c.ListValidationSessions(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetValidationSession(ctx, 5); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ValidationSessionMetrics(ctx, 5); err != nil {
		t.Fatal(err)
	}
	want := []string{`validate.session.list`, `validate.session.get`, `validate.session.metrics`}
	for i, m := range want {
		if methods[i] != m {
			t.Fatalf("call %d used %q, want %q", i, methods[i], m)
		}
	}
}

func TestUploadValidationFiles(t *testing.T) {
	var gotParams string
	var gotFiles []string
	srv := httptest.NewServer(multipartHandler(`validate.upload.files`, &gotParams, &gotFiles))
	defer srv.Close()
	c := testClient(srv)
	defer c.Close()

	err := c.UploadValidationFiles(context.Background(), 5, []FilePart{
		{Name: `report.json`, Reader: strings.NewReader(`{}`)},
	})
	if err != nil {
		t.Fatal(err)
	}
	var p struct {
		ID types.ValidationSessionID `json:"session_id"`
	}
	if err := json.Unmarshal([]byte(gotParams), &p); err != nil || p.ID != 5 {
		t.Fatalf("params %q: %v", gotParams, err)
	}
	if len(gotFiles) != 1 || gotFiles[0] != `report.json` {
		t.Fatalf("file parts %v", gotFiles)
	}
}
