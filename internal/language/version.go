// Package language identifies which protocol version of the austral
// engine a request targets. The set of versions is closed: every version
// must have a config schema and a runner registration, so parsing fails
// closed on anything unknown.
package language

import (
	"fmt"
	"strings"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
)

// Version selects a configuration schema and engine behavior.
// Compared by value, never mutated.
type Version string

const (
	V1 Version = "V1"
	V2 Version = "V2"
)

// Known returns the registered version set.
func Known() []Version {
	return []Version{V1, V2}
}

// Parse maps a wire-level version string to a Version, failing closed
// on anything outside the registered set.
func Parse(s string) (Version, error) {
	switch Version(strings.TrimSpace(s)) {
	case V1:
		return V1, nil
	case V2:
		return V2, nil
	default:
		return "", fmt.Errorf("%w: %q", fault.ErrUnsupportedVersion, s)
	}
}

func (v Version) String() string {
	return string(v)
}
