package mocks

import (
	"context"

	"github.com/mdmdirector/devicesweep/mdm"
	"github.com/mdmdirector/devicesweep/types"
)

// MockClient - mock implementation of mdm.Client for testing
type MockClient struct {
	ListManagedDevicesFunc    func(ctx context.Context, properties []string) ([]*types.ManagedDevice, error)
	DeleteManagedDeviceFunc   func(ctx context.Context, id string) error
	RetireManagedDeviceFunc   func(ctx context.Context, id string) error
	WipeManagedDeviceFunc     func(ctx context.Context, id string, opts types.WipeOptions) error
	ListGroupsFunc            func(ctx context.Context, properties []string) ([]*types.Group, error)
	ListGroupMembersFunc      func(ctx context.Context, groupID string) ([]types.DirectoryObject, error)
	DeleteGroupFunc           func(ctx context.Context, groupID string) error
	RenameGroupFunc           func(ctx context.Context, groupID, newName string) error
	FindDirectoryDeviceFunc   func(ctx context.Context, deviceID string) (*types.DirectoryDevice, error)
	DeleteDirectoryDeviceFunc func(ctx context.Context, objectID string) error

	// Call tracking
	ListManagedDevicesCalls    int
	DeleteManagedDeviceCalls   []string
	RetireManagedDeviceCalls   []string
	WipeManagedDeviceCalls     []WipeCall
	ListGroupsCalls            int
	ListGroupMembersCalls      []string
	DeleteGroupCalls           []string
	RenameGroupCalls           []RenameCall
	FindDirectoryDeviceCalls   []string
	DeleteDirectoryDeviceCalls []string
}

// WipeCall records the arguments passed to WipeManagedDevice
type WipeCall struct {
	ID      string
	Options types.WipeOptions
}

// RenameCall records the arguments passed to RenameGroup
type RenameCall struct {
	GroupID string
	NewName string
}

// Ensure MockClient implements mdm.Client
var _ mdm.Client = (*MockClient)(nil)

func (m *MockClient) ListManagedDevices(ctx context.Context, properties []string) ([]*types.ManagedDevice, error) {
	m.ListManagedDevicesCalls++
	if m.ListManagedDevicesFunc != nil {
		return m.ListManagedDevicesFunc(ctx, properties)
	}
	return nil, nil
}

func (m *MockClient) DeleteManagedDevice(ctx context.Context, id string) error {
	m.DeleteManagedDeviceCalls = append(m.DeleteManagedDeviceCalls, id)
	if m.DeleteManagedDeviceFunc != nil {
		return m.DeleteManagedDeviceFunc(ctx, id)
	}
	return nil
}

func (m *MockClient) RetireManagedDevice(ctx context.Context, id string) error {
	m.RetireManagedDeviceCalls = append(m.RetireManagedDeviceCalls, id)
	if m.RetireManagedDeviceFunc != nil {
		return m.RetireManagedDeviceFunc(ctx, id)
	}
	return nil
}

func (m *MockClient) WipeManagedDevice(ctx context.Context, id string, opts types.WipeOptions) error {
	m.WipeManagedDeviceCalls = append(m.WipeManagedDeviceCalls, WipeCall{ID: id, Options: opts})
	if m.WipeManagedDeviceFunc != nil {
		return m.WipeManagedDeviceFunc(ctx, id, opts)
	}
	return nil
}

func (m *MockClient) ListGroups(ctx context.Context, properties []string) ([]*types.Group, error) {
	m.ListGroupsCalls++
	if m.ListGroupsFunc != nil {
		return m.ListGroupsFunc(ctx, properties)
	}
	return nil, nil
}

func (m *MockClient) ListGroupMembers(ctx context.Context, groupID string) ([]types.DirectoryObject, error) {
	m.ListGroupMembersCalls = append(m.ListGroupMembersCalls, groupID)
	if m.ListGroupMembersFunc != nil {
		return m.ListGroupMembersFunc(ctx, groupID)
	}
	return nil, nil
}

func (m *MockClient) DeleteGroup(ctx context.Context, groupID string) error {
	m.DeleteGroupCalls = append(m.DeleteGroupCalls, groupID)
	if m.DeleteGroupFunc != nil {
		return m.DeleteGroupFunc(ctx, groupID)
	}
	return nil
}

func (m *MockClient) RenameGroup(ctx context.Context, groupID, newName string) error {
	m.RenameGroupCalls = append(m.RenameGroupCalls, RenameCall{GroupID: groupID, NewName: newName})
	if m.RenameGroupFunc != nil {
		return m.RenameGroupFunc(ctx, groupID, newName)
	}
	return nil
}

// FindDirectoryDevice returns mdm.ErrNotFound unless a func is set
func (m *MockClient) FindDirectoryDevice(ctx context.Context, deviceID string) (*types.DirectoryDevice, error) {
	m.FindDirectoryDeviceCalls = append(m.FindDirectoryDeviceCalls, deviceID)
	if m.FindDirectoryDeviceFunc != nil {
		return m.FindDirectoryDeviceFunc(ctx, deviceID)
	}
	return nil, mdm.ErrNotFound
}

func (m *MockClient) DeleteDirectoryDevice(ctx context.Context, objectID string) error {
	m.DeleteDirectoryDeviceCalls = append(m.DeleteDirectoryDeviceCalls, objectID)
	if m.DeleteDirectoryDeviceFunc != nil {
		return m.DeleteDirectoryDeviceFunc(ctx, objectID)
	}
	return nil
}

// MutatingCalls counts every call that would change remote state
func (m *MockClient) MutatingCalls() int {
	return len(m.DeleteManagedDeviceCalls) +
		len(m.RetireManagedDeviceCalls) +
		len(m.WipeManagedDeviceCalls) +
		len(m.DeleteGroupCalls) +
		len(m.RenameGroupCalls) +
		len(m.DeleteDirectoryDeviceCalls)
}

// Reset clears all call tracking
func (m *MockClient) Reset() {
	m.ListManagedDevicesCalls = 0
	m.DeleteManagedDeviceCalls = nil
	m.RetireManagedDeviceCalls = nil
	m.WipeManagedDeviceCalls = nil
	m.ListGroupsCalls = 0
	m.ListGroupMembersCalls = nil
	m.DeleteGroupCalls = nil
	m.RenameGroupCalls = nil
	m.FindDirectoryDeviceCalls = nil
	m.DeleteDirectoryDeviceCalls = nil
}
