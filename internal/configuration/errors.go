package configuration

import (
	"errors"
	"fmt"
)

// Domain errors for the configuration package.
var (
	// ErrConfigNotFound is returned when a configuration id or number does not exist.
	ErrConfigNotFound = errors.New("configuration: not found")

	// ErrInvalidName is returned when a configuration name is empty or too long.
	ErrInvalidName = errors.New("configuration: invalid name")

	// ErrOwnershipConflict is returned when an asset already belongs to
	// another configuration. The concrete error is an *OwnershipError.
	ErrOwnershipConflict = errors.New("configuration: asset already assigned")

	// ErrInvalidReference is returned when a membership names a configuration
	// or asset that does not exist.
	ErrInvalidReference = errors.New("configuration: invalid reference")
)

// OwnershipError describes a rejected assignment.
//
//	var oe *configuration.OwnershipError
//	if errors.As(err, &oe) {
//	    fmt.Println("owned by", oe.OwnerID)
//	}
type OwnershipError struct {
	Kind     AssetKind
	AssetID  int64
	OwnerID  int64
	TargetID int64
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("configuration: %s %d already belongs to configuration %d", e.Kind, e.AssetID, e.OwnerID)
}

// Unwrap lets errors.Is match ErrOwnershipConflict.
func (e *OwnershipError) Unwrap() error {
	return ErrOwnershipConflict
}
