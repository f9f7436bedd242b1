package asset

import "errors"

// Domain errors for the asset package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, asset.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device id or asset number does not exist.
	ErrDeviceNotFound = errors.New("asset: device not found")

	// ErrLicenseNotFound is returned when a license id or license number does not exist.
	ErrLicenseNotFound = errors.New("asset: license not found")

	// ErrDuplicateKey is returned when a business key (asset_no) is already taken.
	ErrDuplicateKey = errors.New("asset: duplicate key")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("asset: invalid device")

	// ErrInvalidLicense is returned when license validation fails.
	ErrInvalidLicense = errors.New("asset: invalid license")

	// ErrInvalidState is returned when a state value is not recognised.
	ErrInvalidState = errors.New("asset: invalid state")
)
