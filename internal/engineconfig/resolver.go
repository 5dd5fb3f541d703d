// Package engineconfig resolves an opaque JSON configuration payload
// into the concrete schema registered for its protocol version.
// Resolution is a pure transform with no I/O: an unknown version or a
// payload that does not match its schema fails the request before the
// engine is ever touched.
package engineconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
	"github.com/austral-labs/snippet-engine-go/internal/language"
)

// Kind selects which schema family a payload belongs to.
type Kind string

const (
	KindFormat Kind = "format"
	KindLint   Kind = "lint"
)

type schemaKey struct {
	version language.Version
	kind    Kind
}

type decodeFunc func(raw json.RawMessage) (any, error)

// Resolver holds the (version, kind) schema table.
type Resolver struct {
	schemas map[schemaKey]decodeFunc
}

// NewResolver builds the resolver over the closed schema set.
func NewResolver() *Resolver {
	return &Resolver{schemas: map[schemaKey]decodeFunc{
		{language.V1, KindFormat}: decodeInto[FormatterOptionsV1],
		{language.V2, KindFormat}: decodeInto[FormatterOptionsV2],
		{language.V1, KindLint}:   decodeInto[AnalyzerOptionsV1],
		{language.V2, KindLint}:   decodeInto[AnalyzerOptionsV2],
	}}
}

// Resolve deserializes raw into the schema registered for (version,
// kind). A nil or null payload yields the schema's zero value.
func (r *Resolver) Resolve(version language.Version, raw json.RawMessage, kind Kind) (any, error) {
	decode, ok := r.schemas[schemaKey{version, kind}]
	if !ok {
		return nil, fmt.Errorf("%w: no %s schema for %q", fault.ErrUnsupportedVersion, kind, version)
	}
	cfg, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s options for %s: %v", fault.ErrInvalidConfiguration, kind, version, err)
	}
	return cfg, nil
}

func decodeInto[T any](raw json.RawMessage) (any, error) {
	var cfg T
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return cfg, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
