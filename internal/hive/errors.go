package hive

import "errors"

// Sentinel errors for operator-input failures. Callers match these with
// errors.Is and print guidance; none of them mutate session state.
var (
	// ErrNoAddress indicates a Host message with no '@name' token.
	ErrNoAddress = errors.New("message contains no '@name' address")

	// ErrUnknownDrone indicates an address that matches no registered drone.
	ErrUnknownDrone = errors.New("drone not found in the swarm")

	// ErrDuplicateDrone indicates a registration under an existing name.
	ErrDuplicateDrone = errors.New("drone already exists in the swarm")

	// ErrReservedName indicates a registration whose name contains a
	// reserved speaker label.
	ErrReservedName = errors.New("drone name 'Host' or 'Brain' is reserved")

	// ErrEmptyName indicates a registration with an empty name.
	ErrEmptyName = errors.New("drone name is required")

	// ErrNoContext indicates TheBrain returned zero hits for a query.
	ErrNoContext = errors.New("no context returned from TheBrain")

	// ErrNoBackend indicates the session has no inference backend configured.
	ErrNoBackend = errors.New("no inference backend configured")
)
