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

// ListSnapshots returns the snapshots visible to the current user.
func (c *Client) ListSnapshots(ctx context.Context) (snaps []types.Snapshot, err error) {
	err = c.rpc(ctx, `snapshots.list`, nil, &snaps)
	return
}

// GetSnapshot returns one snapshot by id.
func (c *Client) GetSnapshot(ctx context.Context, id types.SnapshotID) (snap types.Snapshot, err error) {
	err = c.rpc(ctx, `snapshots.get`, struct {
		ID types.SnapshotID `json:"snapshot_id"`
	}{id}, &snap)
	return
}

// SnapshotDownloadURL returns a presigned URL for one key within a
// snapshot; an empty key addresses the whole archive.
func (c *Client) SnapshotDownloadURL(ctx context.Context, id types.SnapshotID, key string) (string, error) {
	var res types.DownloadURLResult
	err := c.rpc(ctx, `snapshots.create_download_url`,
		types.SnapshotDownloadParams{SnapshotID: id, Key: key}, &res)
	if err != nil {
		return ``, err
	}
	return res.URL, nil
}

// RestoreSnapshot restores a snapshot server side, optionally into an
// existing dataset.
func (c *Client) RestoreSnapshot(ctx context.Context, id types.SnapshotID, datasetID *types.DatasetID) error {
	return c.rpc(ctx, `snapshots.restore`,
		types.SnapshotRestoreParams{SnapshotID: id, DatasetID: datasetID}, nil)
}
