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
	"net/url"

	"github.com/EdgeFirstAI/client-sub000/client/types"
)

// ListTrainers returns the installed trainer images.
func (c *Client) ListTrainers(ctx context.Context) (trs []types.Trainer, err error) {
	err = c.rpc(ctx, `trainer.list2`, nil, &trs)
	return
}

// GetTrainer returns one trainer by name.
func (c *Client) GetTrainer(ctx context.Context, name string) (tr types.Trainer, err error) {
	err = c.rpc(ctx, `trainer.get`, struct {
		Name string `json:"name"`
	}{name}, &tr)
	return
}

// ListTrainingSessions returns training sessions, optionally scoped to one
// experiment.
func (c *Client) ListTrainingSessions(ctx context.Context, expID *types.ExperimentID) (ss []types.TrainingSession, err error) {
	err = c.rpc(ctx, `trainer.session.list`, types.TrainingSessionListParams{ExperimentID: expID}, &ss)
	return
}

// GetTrainingSession returns one training session by id.
func (c *Client) GetTrainingSession(ctx context.Context, id types.TrainingSessionID) (s types.TrainingSession, err error) {
	err = c.rpc(ctx, `trainer.session.get`, struct {
		ID types.TrainingSessionID `json:"session_id"`
	}{id}, &s)
	return
}

// TrainingSessionMetrics returns the metrics document of a session; the
// schema varies by model type so the values are left raw.
func (c *Client) TrainingSessionMetrics(ctx context.Context, id types.TrainingSessionID) (m types.MetricsResult, err error) {
	err = c.rpc(ctx, `trainer.session.metrics`, struct {
		ID types.TrainingSessionID `json:"session_id"`
	}{id}, &m)
	return
}

// TrainingArtifacts lists the files a session has produced.
func (c *Client) TrainingArtifacts(ctx context.Context, id types.TrainingSessionID) (arts []types.Artifact, err error) {
	err = c.rpc(ctx, `trainer.get_artifacts`, struct {
		ID types.TrainingSessionID `json:"session_id"`
	}{id}, &arts)
	return
}

// DownloadTrainingFile streams one artifact of a session to dest.
func (c *Client) DownloadTrainingFile(ctx context.Context, id types.TrainingSessionID, name, dest string, progress chan<- Progress) error {
	q := apiPath + `?method=trainer.download.file&session_id=` +
		url.QueryEscape(id.String()) + `&name=` + url.QueryEscape(name)
	return c.downloadToFile(ctx, q, dest, progress)
}

// UploadTrainingFiles attaches files to a session via the multipart
// endpoint.
func (c *Client) UploadTrainingFiles(ctx context.Context, id types.TrainingSessionID, files []FilePart) error {
	return c.postMultipart(ctx, `trainer.upload.files`, struct {
		ID types.TrainingSessionID `json:"session_id"`
	}{id}, files, nil)
}
