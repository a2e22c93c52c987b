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

// GetOrganization returns the organization owning the current session.
func (c *Client) GetOrganization(ctx context.Context) (org types.Organization, err error) {
	err = c.rpc(ctx, `org.get`, nil, &org)
	return
}

// ListProjects returns the projects visible to the current user, optionally
// scoped to one organization.
func (c *Client) ListProjects(ctx context.Context, orgID *types.OrganizationID) (prjs []types.Project, err error) {
	err = c.rpc(ctx, `project.list`, types.ProjectListParams{OrganizationID: orgID}, &prjs)
	return
}

// GetProject returns one project by id.
func (c *Client) GetProject(ctx context.Context, id types.ProjectID) (prj types.Project, err error) {
	err = c.rpc(ctx, `project.get`, struct {
		ID types.ProjectID `json:"project_id"`
	}{id}, &prj)
	return
}
