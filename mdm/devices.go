package mdm

import (
	"context"
	"net/http"

	"github.com/mdmdirector/devicesweep/log"
	"github.com/mdmdirector/devicesweep/types"
	"github.com/pkg/errors"
)

// ListManagedDevices retrieves every Intune managed device
// GET /deviceManagement/managedDevices
func (c *GraphClient) ListManagedDevices(ctx context.Context, properties []string) ([]*types.ManagedDevice, error) {
	devices, err := listAll[*types.ManagedDevice](ctx, c, "devices", selectQuery(properties, c.pageSize), "deviceManagement", "managedDevices")
	if err != nil {
		return nil, errors.Wrap(err, "ListManagedDevices")
	}
	for _, d := range devices {
		d.Normalize()
	}
	log.Infof("Fetched %d managed devices", len(devices))
	return devices, nil
}

// DeleteManagedDevice removes the device record from Intune
// DELETE /deviceManagement/managedDevices/{id}
func (c *GraphClient) DeleteManagedDevice(ctx context.Context, id string) error {
	endpoint, err := c.buildURL(nil, "deviceManagement", "managedDevices", id)
	if err != nil {
		return errors.Wrap(err, "DeleteManagedDevice")
	}
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return errors.Wrap(err, "DeleteManagedDevice")
	}
	return nil
}

// RetireManagedDevice removes company data and management from the device
// POST /deviceManagement/managedDevices/{id}/retire
func (c *GraphClient) RetireManagedDevice(ctx context.Context, id string) error {
	endpoint, err := c.buildURL(nil, "deviceManagement", "managedDevices", id, "retire")
	if err != nil {
		return errors.Wrap(err, "RetireManagedDevice")
	}
	if err := c.do(ctx, http.MethodPost, endpoint, nil, nil); err != nil {
		return errors.Wrap(err, "RetireManagedDevice")
	}
	return nil
}

// WipeManagedDevice factory resets the device
// POST /deviceManagement/managedDevices/{id}/wipe
func (c *GraphClient) WipeManagedDevice(ctx context.Context, id string, opts types.WipeOptions) error {
	endpoint, err := c.buildURL(nil, "deviceManagement", "managedDevices", id, "wipe")
	if err != nil {
		return errors.Wrap(err, "WipeManagedDevice")
	}
	if err := c.do(ctx, http.MethodPost, endpoint, opts, nil); err != nil {
		return errors.Wrap(err, "WipeManagedDevice")
	}
	return nil
}
