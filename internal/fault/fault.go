// Package fault defines the error taxonomy shared by the orchestration
// layer. Collaborator packages classify their failures against these
// sentinels; the HTTP edge maps them to status codes with errors.Is.
package fault

import "errors"

var (
	// ErrBadRequest marks caller-side faults: an unparseable snippet,
	// a request that names neither inline code nor an asset, etc.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound marks a missing asset.
	ErrNotFound = errors.New("not found")

	// ErrUpstream marks failures inside a collaborator (engine, asset
	// store, state service, broker). The original cause is folded into
	// the message and never surfaced to callers.
	ErrUpstream = errors.New("upstream failure")

	// ErrUnsupportedVersion is returned for any protocol version outside
	// the registered set. Resolution fails closed, never defaults.
	ErrUnsupportedVersion = errors.New("unsupported version")

	// ErrInvalidConfiguration marks an opaque config payload that does
	// not decode into the schema registered for its version.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// IsClient reports whether err is attributable to the caller.
func IsClient(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrUnsupportedVersion) ||
		errors.Is(err, ErrInvalidConfiguration)
}
