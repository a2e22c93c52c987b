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

// ListTasks returns tasks, optionally filtered by status.
func (c *Client) ListTasks(ctx context.Context, status string) (tasks []types.Task, err error) {
	err = c.rpc(ctx, `task.list`, types.TaskListParams{Status: status}, &tasks)
	return
}

// GetTask returns one task by id.
func (c *Client) GetTask(ctx context.Context, id types.TaskID) (task types.Task, err error) {
	err = c.rpc(ctx, `task.get`, struct {
		ID types.TaskID `json:"task_id"`
	}{id}, &task)
	return
}

// UpdateDockerStatus reports container-level state for a task.
func (c *Client) UpdateDockerStatus(ctx context.Context, params types.DockerStatusParams) error {
	return c.rpc(ctx, `docker.update.status`, params, nil)
}

// TaskStages returns the named stages of a task.
func (c *Client) TaskStages(ctx context.Context, id types.TaskID) (stages []string, err error) {
	err = c.rpc(ctx, `status.stages`, types.StatusStagesParams{TaskID: id}, &stages)
	return
}

// UpdateStatus reports agent progress on a task stage.
func (c *Client) UpdateStatus(ctx context.Context, params types.StatusUpdateParams) error {
	return c.rpc(ctx, `status.update`, params, nil)
}
