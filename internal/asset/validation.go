package asset

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation constants.
const (
	maxKeyLength   = 50
	maxFieldLength = 200
	maxNoteLength  = 2000
)

var (
	validDeviceStates  map[DeviceState]struct{}
	validLicenseStates map[LicenseState]struct{}
)

func init() {
	validDeviceStates = make(map[DeviceState]struct{}, len(AllDeviceStates()))
	for _, s := range AllDeviceStates() {
		validDeviceStates[s] = struct{}{}
	}

	validLicenseStates = make(map[LicenseState]struct{}, len(AllLicenseStates()))
	for _, s := range AllLicenseStates() {
		validLicenseStates[s] = struct{}{}
	}
}

// ValidateDevice normalises d in place (trimmed keys, default state) and
// checks it. Returns an error describing the first failure found.
func ValidateDevice(d *Device) error {
	if d == nil {
		return ErrInvalidDevice
	}

	d.AssetNo = strings.TrimSpace(d.AssetNo)
	if d.AssetNo == "" {
		return fmt.Errorf("%w: asset number is required", ErrInvalidDevice)
	}
	if utf8.RuneCountInString(d.AssetNo) > maxKeyLength {
		return fmt.Errorf("%w: asset number exceeds %d characters", ErrInvalidDevice, maxKeyLength)
	}
	if d.DisplayName != nil {
		d.DisplayName = StringPtr(strings.TrimSpace(*d.DisplayName))
	}

	for _, f := range []struct{ name, value string }{
		{"device type", d.DeviceType},
		{"model", d.Model},
		{"version", d.Version},
	} {
		if utf8.RuneCountInString(f.value) > maxFieldLength {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidDevice, f.name, maxFieldLength)
		}
	}
	if utf8.RuneCountInString(d.Note) > maxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrInvalidDevice, maxNoteLength)
	}

	if d.State == "" {
		d.State = DeviceActive
	}
	if _, ok := validDeviceStates[d.State]; !ok {
		return fmt.Errorf("%w: device state %q", ErrInvalidState, d.State)
	}
	return nil
}

// ValidateLicense normalises l in place and checks it.
func ValidateLicense(l *License) error {
	if l == nil {
		return ErrInvalidLicense
	}

	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLicense)
	}
	if utf8.RuneCountInString(l.Name) > maxFieldLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidLicense, maxFieldLength)
	}
	l.LicenseNo = strings.TrimSpace(l.LicenseNo)
	if utf8.RuneCountInString(l.LicenseNo) > maxKeyLength {
		return fmt.Errorf("%w: license number exceeds %d characters", ErrInvalidLicense, maxKeyLength)
	}
	if utf8.RuneCountInString(l.Note) > maxNoteLength {
		return fmt.Errorf("%w: note exceeds %d characters", ErrInvalidLicense, maxNoteLength)
	}

	if l.State == "" {
		l.State = LicenseActive
	}
	if _, ok := validLicenseStates[l.State]; !ok {
		return fmt.Errorf("%w: license state %q", ErrInvalidState, l.State)
	}
	return nil
}
