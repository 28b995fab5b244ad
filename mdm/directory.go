package mdm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

var directoryDeviceSelect = []string{"id", "deviceId", "displayName", "onPremisesSyncEnabled"}

// FindDirectoryDevice looks up the Entra device object carrying deviceID
// GET /devices?$filter=deviceId eq '{deviceID}'
func (c *GraphClient) FindDirectoryDevice(ctx context.Context, deviceID string) (*types.DirectoryDevice, error) {
	if deviceID == "" {
		return nil, ErrNotFound
	}

	q := selectQuery(directoryDeviceSelect, 0)
	q.Set("$filter", fmt.Sprintf("deviceId eq '%s'", strings.ReplaceAll(deviceID, "'", "''")))

	endpoint, err := c.buildURL(q, "devices")
	if err != nil {
		return nil, errors.Wrap(err, "FindDirectoryDevice")
	}

	var page listPage[types.DirectoryDevice]
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, errors.Wrapf(err, "FindDirectoryDevice %v", deviceID)
	}
	if len(page.Value) == 0 {
		return nil, ErrNotFound
	}
	device := page.Value[0]
	return &device, nil
}

// DeleteDirectoryDevice DELETE /devices/{objectId}
func (c *GraphClient) DeleteDirectoryDevice(ctx context.Context, objectID string) error {
	endpoint, err := c.buildURL(nil, "devices", objectID)
	if err != nil {
		return errors.Wrap(err, "DeleteDirectoryDevice")
	}
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return errors.Wrap(err, "DeleteDirectoryDevice")
	}
	return nil
}
