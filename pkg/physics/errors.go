// pkg/physics/errors.go
package physics

import "errors"

var (
	// ErrNilCollider is returned when a nil collider is passed to the world
	ErrNilCollider = errors.New("collider is nil")
	// ErrAlreadyRegistered is returned when a collider already belongs to another world
	ErrAlreadyRegistered = errors.New("collider is registered with another world")
	// ErrNotRegistered is returned when a world operation targets a collider it does not own
	ErrNotRegistered = errors.New("collider is not registered with this world")
	// ErrInvalidShape is returned when a collider shape is missing or degenerate
	ErrInvalidShape = errors.New("collider shape is missing or invalid")
	// ErrGroupOutOfRange is returned for collision group indices outside [0, MaxGroups)
	ErrGroupOutOfRange = errors.New("collision group index out of range")
)
