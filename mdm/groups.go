package mdm

import (
	"context"
	"net/http"

	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

// ListGroups retrieves every directory group
// GET /groups
func (c *GraphClient) ListGroups(ctx context.Context, properties []string) ([]*types.Group, error) {
	groups, err := listAll[*types.Group](ctx, c, "groups", selectQuery(properties, c.pageSize), "groups")
	if err != nil {
		return nil, errors.Wrap(err, "ListGroups")
	}
	log.Infof("Fetched %d groups", len(groups))
	return groups, nil
}

// ListGroupMembers pages through every direct member of a group
// GET /groups/{id}/members
func (c *GraphClient) ListGroupMembers(ctx context.Context, groupID string) ([]types.DirectoryObject, error) {
	members, err := listAll[types.DirectoryObject](ctx, c, "members", selectQuery([]string{"id"}, c.pageSize), "groups", groupID, "members")
	if err != nil {
		return nil, errors.Wrapf(err, "ListGroupMembers %v", groupID)
	}
	return members, nil
}

// DeleteGroup DELETE /groups/{id}
func (c *GraphClient) DeleteGroup(ctx context.Context, groupID string) error {
	endpoint, err := c.buildURL(nil, "groups", groupID)
	if err != nil {
		return errors.Wrap(err, "DeleteGroup")
	}
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return errors.Wrap(err, "DeleteGroup")
	}
	return nil
}

// RenameGroup PATCH /groups/{id} with a new displayName
func (c *GraphClient) RenameGroup(ctx context.Context, groupID, newName string) error {
	endpoint, err := c.buildURL(nil, "groups", groupID)
	if err != nil {
		return errors.Wrap(err, "RenameGroup")
	}
	if err := c.do(ctx, http.MethodPatch, endpoint, renameRequest{DisplayName: newName}, nil); err != nil {
		return errors.Wrap(err, "RenameGroup")
	}
	return nil
}
