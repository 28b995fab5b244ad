package types

// Entity is the unit an action is taken against: a managed device or a group.
// All attribute values are a snapshot from fetch time.
type Entity interface {
	EntityID() string
	EntityName() string

	// Columns and Values feed the selection surfaces
	Columns() []string
	Values() []string

	// AuditHeader and AuditRecord feed the audit log
	AuditHeader() []string
	AuditRecord() []string
}

var (
	_ Entity = (*ManagedDevice)(nil)
	_ Entity = (*Group)(nil)
)

// DirectoryDevice is the Entra device object that mirrors a managed device
type DirectoryDevice struct {
	ID                    string `json:"id"`
	DeviceID              string `json:"deviceId"`
	DisplayName           string `json:"displayName"`
	OnPremisesSyncEnabled *bool  `json:"onPremisesSyncEnabled"`
}

// Synced is true for hybrid joined devices. These must never be deleted here.
func (d *DirectoryDevice) Synced() bool {
	return d.OnPremisesSyncEnabled != nil && *d.OnPremisesSyncEnabled
}

// DirectoryObject is a bare directory member reference
type DirectoryObject struct {
	ID        string `json:"id"`
	ODataType string `json:"@odata.type"`
}

// DevicesToEntities widens a device slice
func DevicesToEntities(devices []*ManagedDevice) []Entity {
	out := make([]Entity, 0, len(devices))
	for _, d := range devices {
		out = append(out, d)
	}
	return out
}

// GroupsToEntities widens a group slice
func GroupsToEntities(groups []*Group) []Entity {
	out := make([]Entity, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	return out
}
