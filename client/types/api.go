/*************************************************************************
 * Copyright 2025 EdgeFirst AI, Inc. All rights reserved.
 * Contact: <legal@edgefirst.ai>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package types

import (
	"encoding/json"
	"fmt"
)

// RPCRequest is the JSON-RPC 2.0 envelope POSTed to /api.  The id is always
// zero; the server does not echo it back meaningfully.
type RPCRequest struct {
	ID      uint   `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// RPCResponse is the server envelope.  Exactly one of Result or Error is
// populated on a well formed response.  The returned id is historically the
// literal string "999" regardless of the request; it is not validated.
type RPCResponse struct {
	ID      string          `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a server reported failure.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Progress is one record on a progress sink: work completed so far against
// the known total.  Each long operation owns its own channel and closes it
// on completion.
type Progress struct {
	Current uint64
	Total   uint64
}

// LoginParams carries credentials for auth.login.
type LoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshParams identifies the user for auth.refresh.
type RefreshParams struct {
	Username string `json:"username"`
}

// Organization is the account that owns projects.
type Organization struct {
	ID   OrganizationID `json:"id"`
	Name string         `json:"name"`
}

// Project groups datasets and experiments.
type Project struct {
	ID          ProjectID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// Dataset is a named collection of samples.
type Dataset struct {
	ID          DatasetID `json:"id"`
	ProjectID   ProjectID `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Groups      []string  `json:"groups,omitempty"`
}

// AnnotationSet is a named collection of annotations over a dataset.
type AnnotationSet struct {
	ID          AnnotationSetID `json:"id"`
	DatasetID   DatasetID       `json:"dataset_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
}

// Experiment groups training sessions.
type Experiment struct {
	ID        ExperimentID `json:"id"`
	ProjectID ProjectID    `json:"project_id"`
	Name      string       `json:"name"`
}

// TrainingSession is one run of a trainer.
type TrainingSession struct {
	ID           TrainingSessionID `json:"id"`
	ExperimentID ExperimentID      `json:"experiment_id"`
	Name         string            `json:"name"`
	Model        string            `json:"model,omitempty"`
	Status       string            `json:"status,omitempty"`
}

// ValidationSession is one evaluation run.
type ValidationSession struct {
	ID     ValidationSessionID `json:"id"`
	Name   string              `json:"name"`
	Status string              `json:"status,omitempty"`
}

// Snapshot is an uploaded archive of a dataset or model state.
type Snapshot struct {
	ID     SnapshotID `json:"id"`
	Name   string     `json:"name"`
	Status string     `json:"status,omitempty"`
	Size   int64      `json:"size,omitempty"`
}

// Task is a unit of server-side work visible to agents.
type Task struct {
	ID     TaskID `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
	Stage  string `json:"stage,omitempty"`
}

// SampleFilter selects samples within a dataset or annotation set; the zero
// value selects everything.
type SampleFilter struct {
	DatasetID       *DatasetID       `json:"dataset_id,omitempty"`
	AnnotationSetID *AnnotationSetID `json:"annotation_set_id,omitempty"`
	Groups          []string         `json:"groups,omitempty"`
	AnnotationTypes []AnnotationType `json:"annotation_types,omitempty"`
}

// SampleListParams pages through samples.list.
type SampleListParams struct {
	SampleFilter
	ContinueToken string `json:"continue_token,omitempty"`
}

// SampleCountResult is the samples.count result.
type SampleCountResult struct {
	Count uint64 `json:"count"`
}

// SampleListResult is one samples.list page.  An empty or missing
// continue token marks the final page.
type SampleListResult struct {
	Samples       []Sample `json:"samples"`
	ContinueToken string   `json:"continue_token,omitempty"`
}

// UploadKey names one object and its size for a multipart upload.
type UploadKey struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// MultipartUploadParams is the snapshots.create_upload_url_multipart
// request body.
type MultipartUploadParams struct {
	SnapshotID SnapshotID  `json:"snapshot_id"`
	Keys       []UploadKey `json:"keys"`
}

// MultipartUploadTarget is the per-key answer: an upload id plus one
// presigned URL per part.
type MultipartUploadTarget struct {
	Key      string   `json:"key"`
	UploadID string   `json:"upload_id"`
	URLs     []string `json:"urls"`
}

// CompletedPart pairs an object store ETag with its 1-based part number.
type CompletedPart struct {
	ETag       string `json:"etag"`
	PartNumber int    `json:"part_number"`
}

// CompleteMultipartParams commits a finished multipart upload.
type CompleteMultipartParams struct {
	SnapshotID SnapshotID      `json:"snapshot_id"`
	Key        string          `json:"key"`
	UploadID   string          `json:"upload_id"`
	Parts      []CompletedPart `json:"parts"`
}

// SnapshotUpdateParams changes snapshot metadata, typically the status.
type SnapshotUpdateParams struct {
	SnapshotID SnapshotID `json:"snapshot_id"`
	Status     string     `json:"status,omitempty"`
}

// MetricsResult is an opaque metrics document from a trainer or validator
// session; the schema varies by model type so it is left raw.
type MetricsResult map[string]json.RawMessage

// StatusUpdateParams reports agent progress on a task stage.
type StatusUpdateParams struct {
	TaskID  TaskID `json:"task_id"`
	Stage   string `json:"stage,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// ProjectListParams optionally scopes project.list to one organization.
type ProjectListParams struct {
	OrganizationID *OrganizationID `json:"organization_id,omitempty"`
}

// DatasetListParams optionally scopes dataset.list to one project.
type DatasetListParams struct {
	ProjectID *ProjectID `json:"project_id,omitempty"`
}

// AnnotationSetListParams optionally scopes annset.list to one dataset.
type AnnotationSetListParams struct {
	DatasetID *DatasetID `json:"dataset_id,omitempty"`
}

// LabelAddParams names a new label within a dataset.
type LabelAddParams struct {
	DatasetID DatasetID `json:"dataset_id"`
	Name      string    `json:"name"`
}

// LabelUpdateParams renames or reindexes an existing label.
type LabelUpdateParams struct {
	LabelID LabelID `json:"label_id"`
	Name    string  `json:"name,omitempty"`
	Index   *uint64 `json:"index,omitempty"`
}

// LabelDeleteParams removes a label by id.
type LabelDeleteParams struct {
	LabelID LabelID `json:"label_id"`
}

// SamplePopulateParams targets samples.populate2; the sample records
// themselves travel as multipart file parts alongside these parameters.
type SamplePopulateParams struct {
	DatasetID       DatasetID        `json:"dataset_id"`
	AnnotationSetID *AnnotationSetID `json:"annotation_set_id,omitempty"`
	Group           string           `json:"group,omitempty"`
}

// SnapshotDownloadParams requests a presigned download URL for a key.
type SnapshotDownloadParams struct {
	SnapshotID SnapshotID `json:"snapshot_id"`
	Key        string     `json:"key,omitempty"`
}

// DownloadURLResult carries one presigned URL.
type DownloadURLResult struct {
	URL string `json:"url"`
}

// SnapshotRestoreParams restores a snapshot, optionally into an existing
// dataset.
type SnapshotRestoreParams struct {
	SnapshotID SnapshotID `json:"snapshot_id"`
	DatasetID  *DatasetID `json:"dataset_id,omitempty"`
}

// Trainer describes one installed trainer image.
type Trainer struct {
	Name        string `json:"name"`
	Model       string `json:"model,omitempty"`
	Description string `json:"description,omitempty"`
}

// TrainingSessionListParams optionally scopes session listing to one
// experiment.
type TrainingSessionListParams struct {
	ExperimentID *ExperimentID `json:"experiment_id,omitempty"`
}

// Artifact is one downloadable file produced by a session.
type Artifact struct {
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
}

// TaskListParams optionally filters task.list by status.
type TaskListParams struct {
	Status string `json:"status,omitempty"`
}

// DockerStatusParams reports container-level state for a task.
type DockerStatusParams struct {
	TaskID  TaskID `json:"task_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// StatusStagesParams asks for the stage names of a task.
type StatusStagesParams struct {
	TaskID TaskID `json:"task_id"`
}
