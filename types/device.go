package types

import (
	"strings"
	"time"
)

// ComplianceState is the policy evaluation status Intune reports for a device
type ComplianceState string

const (
	ComplianceCompliant     ComplianceState = "compliant"
	ComplianceNoncompliant  ComplianceState = "noncompliant"
	ComplianceConflict      ComplianceState = "conflict"
	ComplianceError         ComplianceState = "error"
	ComplianceInGracePeriod ComplianceState = "inGracePeriod"
	ComplianceConfigManager ComplianceState = "configManager"
	ComplianceUnknown       ComplianceState = "unknown"
)

// ComplianceStates lists every state the service is known to report.
var ComplianceStates = []ComplianceState{
	ComplianceCompliant,
	ComplianceNoncompliant,
	ComplianceConflict,
	ComplianceError,
	ComplianceInGracePeriod,
	ComplianceConfigManager,
	ComplianceUnknown,
}

// ParseComplianceState matches case-insensitively against the known states
func ParseComplianceState(s string) (ComplianceState, bool) {
	for _, state := range ComplianceStates {
		if strings.EqualFold(string(state), strings.TrimSpace(s)) {
			return state, true
		}
	}
	return "", false
}

// OwnerType is managedDeviceOwnerType
type OwnerType string

const (
	OwnerAny      OwnerType = ""
	OwnerCompany  OwnerType = "company"
	OwnerPersonal OwnerType = "personal"
	OwnerUnknown  OwnerType = "unknown"
)

// ManagedDevice is a snapshot of an Intune managed device as of fetch time
type ManagedDevice struct {
	ID                     string          `json:"id"`
	DeviceName             string          `json:"deviceName"`
	UserID                 string          `json:"userId"`
	UserPrincipalName      string          `json:"userPrincipalName"`
	OperatingSystem        string          `json:"operatingSystem"`
	OSVersion              string          `json:"osVersion"`
	ComplianceState        ComplianceState `json:"complianceState"`
	LastSyncDateTime       *time.Time      `json:"lastSyncDateTime"`
	ManagementAgent        string          `json:"managementAgent"`
	AzureADDeviceID        string          `json:"azureADDeviceId"`
	DeviceEnrollmentType   string          `json:"deviceEnrollmentType"`
	ManagedDeviceOwnerType OwnerType       `json:"managedDeviceOwnerType"`
	SerialNumber           string          `json:"serialNumber"`
	Model                  string          `json:"model"`
}

// ManagedDeviceSelect is the $select list used when fetching devices
var ManagedDeviceSelect = []string{
	"id",
	"deviceName",
	"userId",
	"userPrincipalName",
	"operatingSystem",
	"osVersion",
	"complianceState",
	"lastSyncDateTime",
	"managementAgent",
	"azureADDeviceId",
	"deviceEnrollmentType",
	"managedDeviceOwnerType",
	"serialNumber",
	"model",
}

const zeroGUID = "00000000-0000-0000-0000-000000000000"

// Normalize clears the placeholder values Graph uses for "absent": the zero
// time for devices that never synced and the all-zero GUID for devices with
// no directory object.
func (d *ManagedDevice) Normalize() {
	if d.LastSyncDateTime != nil && d.LastSyncDateTime.Year() <= 1 {
		d.LastSyncDateTime = nil
	}
	if d.AzureADDeviceID == zeroGUID {
		d.AzureADDeviceID = ""
	}
}

// NeverSynced is true when the device has no check-in timestamp
func (d *ManagedDevice) NeverSynced() bool {
	return d.LastSyncDateTime == nil
}

// HasDirectoryID is true when the device carries an Entra device id
func (d *ManagedDevice) HasDirectoryID() bool {
	return d.AzureADDeviceID != "" && d.AzureADDeviceID != zeroGUID
}

// LastSyncString renders the check-in time for tables and audit rows
func (d *ManagedDevice) LastSyncString() string {
	if d.LastSyncDateTime == nil {
		return "Never"
	}
	return d.LastSyncDateTime.UTC().Format(time.RFC3339)
}

func (d *ManagedDevice) EntityID() string   { return d.ID }
func (d *ManagedDevice) EntityName() string { return d.DeviceName }

func (d *ManagedDevice) Columns() []string {
	return []string{"Device", "User", "OS", "Version", "Compliance", "Last Sync", "Owner"}
}

func (d *ManagedDevice) Values() []string {
	return []string{
		d.DeviceName,
		d.UserPrincipalName,
		d.OperatingSystem,
		d.OSVersion,
		string(d.ComplianceState),
		d.LastSyncString(),
		string(d.ManagedDeviceOwnerType),
	}
}

func (d *ManagedDevice) AuditHeader() []string {
	return []string{
		"DeviceId",
		"DeviceName",
		"UserId",
		"UserPrincipalName",
		"OperatingSystem",
		"OSVersion",
		"ComplianceState",
		"LastSyncDateTime",
		"ManagementAgent",
		"AzureADDeviceId",
		"DeviceEnrollmentType",
		"OwnerType",
		"SerialNumber",
		"Model",
	}
}

func (d *ManagedDevice) AuditRecord() []string {
	return []string{
		d.ID,
		d.DeviceName,
		d.UserID,
		d.UserPrincipalName,
		d.OperatingSystem,
		d.OSVersion,
		string(d.ComplianceState),
		d.LastSyncString(),
		d.ManagementAgent,
		d.AzureADDeviceID,
		d.DeviceEnrollmentType,
		string(d.ManagedDeviceOwnerType),
		d.SerialNumber,
		d.Model,
	}
}
