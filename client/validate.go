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

	"github.com/EdgeFirstAI/client-sub000/client/types"
)

// ListValidationSessions returns the validation sessions visible to the
// current user.
func (c *Client) ListValidationSessions(ctx context.Context) (ss []types.ValidationSession, err error) {
	err = c.rpc(ctx, `validate.session.list`, nil, &ss)
	return
}

// GetValidationSession returns one validation session by id.
func (c *Client) GetValidationSession(ctx context.Context, id types.ValidationSessionID) (s types.ValidationSession, err error) {
	err = c.rpc(ctx, `validate.session.get`, struct {
		ID types.ValidationSessionID `json:"session_id"`
	}{id}, &s)
	return
}

// ValidationSessionMetrics returns the metrics document of a validation
// session.
func (c *Client) ValidationSessionMetrics(ctx context.Context, id types.ValidationSessionID) (m types.MetricsResult, err error) {
	err = c.rpc(ctx, `validate.session.metrics`, struct {
		ID types.ValidationSessionID `json:"session_id"`
	}{id}, &m)
	return
}

// UploadValidationFiles attaches files to a validation session via the
// multipart endpoint.
func (c *Client) UploadValidationFiles(ctx context.Context, id types.ValidationSessionID, files []FilePart) error {
	return c.postMultipart(ctx, `validate.upload.files`, struct {
		ID types.ValidationSessionID `json:"session_id"`
	}{id}, files, nil)
}
