package configuration

import "time"

// Configuration is a named bundle of devices and licenses.
// ConfigNo (CNFG-001) is fixed at creation; Name can be changed.
type Configuration struct {
	ID        int64     `json:"config_id"`
	ConfigNo  string    `json:"config_no"`
	Name      string    `json:"name"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssetKind names the two ownable entity kinds.
type AssetKind string

// Asset kinds.
const (
	KindDevice  AssetKind = "device"
	KindLicense AssetKind = "license"
)
