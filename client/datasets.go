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
	"io"

	"github.com/EdgeFirstAI/client-sub000/client/types"
)

// ListDatasets returns the datasets visible to the current user, optionally
// scoped to one project.
func (c *Client) ListDatasets(ctx context.Context, projectID *types.ProjectID) (dss []types.Dataset, err error) {
	err = c.rpc(ctx, `dataset.list`, types.DatasetListParams{ProjectID: projectID}, &dss)
	return
}

// GetDataset returns one dataset by id.
func (c *Client) GetDataset(ctx context.Context, id types.DatasetID) (ds types.Dataset, err error) {
	err = c.rpc(ctx, `dataset.get`, struct {
		ID types.DatasetID `json:"dataset_id"`
	}{id}, &ds)
	return
}

// ListLabels returns the label table of a dataset.
func (c *Client) ListLabels(ctx context.Context, id types.DatasetID) (lbls []types.Label, err error) {
	err = c.rpc(ctx, `label.list`, struct {
		ID types.DatasetID `json:"dataset_id"`
	}{id}, &lbls)
	return
}

// AddLabel creates a new label in a dataset and returns it with its
// assigned id and index.
func (c *Client) AddLabel(ctx context.Context, id types.DatasetID, name string) (lbl types.Label, err error) {
	err = c.rpc(ctx, `label.add2`, types.LabelAddParams{DatasetID: id, Name: name}, &lbl)
	return
}

// UpdateLabel renames or reindexes an existing label.
func (c *Client) UpdateLabel(ctx context.Context, params types.LabelUpdateParams) error {
	return c.rpc(ctx, `label.update`, params, nil)
}

// DeleteLabel removes a label by id.
func (c *Client) DeleteLabel(ctx context.Context, id types.LabelID) error {
	return c.rpc(ctx, `label.del`, types.LabelDeleteParams{LabelID: id}, nil)
}

// ListAnnotationSets returns the annotation sets visible to the current
// user, optionally scoped to one dataset.
func (c *Client) ListAnnotationSets(ctx context.Context, datasetID *types.DatasetID) (sets []types.AnnotationSet, err error) {
	err = c.rpc(ctx, `annset.list`, types.AnnotationSetListParams{DatasetID: datasetID}, &sets)
	return
}

// GetAnnotationSet returns one annotation set by id.
func (c *Client) GetAnnotationSet(ctx context.Context, id types.AnnotationSetID) (set types.AnnotationSet, err error) {
	err = c.rpc(ctx, `annset.get`, struct {
		ID types.AnnotationSetID `json:"annotation_set_id"`
	}{id}, &set)
	return
}

// PopulateSamples uploads sample records into a dataset via the multipart
// samples.populate2 endpoint; body streams the encoded records.
func (c *Client) PopulateSamples(ctx context.Context, params types.SamplePopulateParams, name string, body io.Reader) error {
	return c.postMultipart(ctx, `samples.populate2`, params,
		[]FilePart{{Name: name, Reader: body}}, nil)
}
