package asset

// DeviceState is the lifecycle state of a device.
type DeviceState string

// Device states.
const (
	DeviceActive      DeviceState = "active"
	DeviceStandby     DeviceState = "standby"
	DeviceMaintenance DeviceState = "maintenance"
	DeviceRetired     DeviceState = "retired"
)

// AllDeviceStates returns every device state in display order.
func AllDeviceStates() []DeviceState {
	return []DeviceState{DeviceActive, DeviceStandby, DeviceMaintenance, DeviceRetired}
}

// LicenseState is the lifecycle state of a license.
type LicenseState string

// License states.
const (
	LicenseActive  LicenseState = "active"
	LicenseExpired LicenseState = "expired"
	LicenseRetired LicenseState = "retired"
)

// AllLicenseStates returns every license state in display order.
func AllLicenseStates() []LicenseState {
	return []LicenseState{LicenseActive, LicenseExpired, LicenseRetired}
}

// Device is a piece of hardware tracked by asset number.
// Descriptive fields are free-form; only AssetNo is unique.
type Device struct {
	ID          int64       `json:"device_id"`
	AssetNo     string      `json:"asset_no"`
	DisplayName *string     `json:"display_name,omitempty"`
	DeviceType  string      `json:"device_type"`
	Model       string      `json:"model"`
	Version     string      `json:"version"`
	State       DeviceState `json:"state"`
	Note        string      `json:"note"`
}

// Label returns the display name, or the asset number when there is none.
func (d Device) Label() string {
	if d.DisplayName != nil && *d.DisplayName != "" {
		return *d.DisplayName
	}
	return d.AssetNo
}

// License is a software license. LicenseNo is derived from the id
// (LIC-001) when not supplied.
type License struct {
	ID         int64        `json:"license_id"`
	LicenseNo  string       `json:"license_no"`
	Name       string       `json:"name"`
	LicenseKey string       `json:"license_key"`
	State      LicenseState `json:"state"`
	Note       string       `json:"note"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
