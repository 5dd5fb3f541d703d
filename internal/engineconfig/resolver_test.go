package engineconfig

import (
	"errors"
	"testing"

	"github.com/austral-labs/snippet-engine-go/internal/fault"
	"github.com/austral-labs/snippet-engine-go/internal/language"
)

func TestResolveUnknownVersionFailsClosed(t *testing.T) {
	resolver := NewResolver()
	_, err := resolver.Resolve(language.Version("V3"), []byte(`{}`), KindLint)
	if !errors.Is(err, fault.ErrUnsupportedVersion) {
		t.Fatalf("expected unsupported version, got %v", err)
	}
}

func TestResolveDecodesRegisteredSchemas(t *testing.T) {
	resolver := NewResolver()

	cfg, err := resolver.Resolve(language.V1, []byte(`{"spaceBeforeColon":true}`), KindFormat)
	if err != nil {
		t.Fatalf("resolve v1 format: %v", err)
	}
	v1, ok := cfg.(FormatterOptionsV1)
	if !ok {
		t.Fatalf("expected FormatterOptionsV1, got %T", cfg)
	}
	if !v1.SpaceBeforeColon {
		t.Fatalf("spaceBeforeColon not decoded")
	}

	cfg, err = resolver.Resolve(language.V2, []byte(`{"enforceReadInputArgument":true}`), KindLint)
	if err != nil {
		t.Fatalf("resolve v2 lint: %v", err)
	}
	if _, ok := cfg.(AnalyzerOptionsV2); !ok {
		t.Fatalf("expected AnalyzerOptionsV2, got %T", cfg)
	}
}

func TestResolveRejectsMalformedConfig(t *testing.T) {
	resolver := NewResolver()
	for _, raw := range []string{`{`, `"text"`, `{"spaceBeforeColon":"yes"}`} {
		_, err := resolver.Resolve(language.V1, []byte(raw), KindFormat)
		if !errors.Is(err, fault.ErrInvalidConfiguration) {
			t.Fatalf("Resolve(%s): expected invalid configuration, got %v", raw, err)
		}
	}
}

func TestResolveRejectsUnknownFields(t *testing.T) {
	resolver := NewResolver()
	_, err := resolver.Resolve(language.V1, []byte(`{"indentSpaces":4}`), KindFormat)
	if !errors.Is(err, fault.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration for v2-only field on v1, got %v", err)
	}
}

func TestResolveEmptyConfigYieldsZeroValue(t *testing.T) {
	resolver := NewResolver()
	for _, raw := range [][]byte{nil, []byte("null"), []byte("{}")} {
		cfg, err := resolver.Resolve(language.V1, raw, KindLint)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", raw, err)
		}
		if cfg != (AnalyzerOptionsV1{}) {
			t.Fatalf("Resolve(%s) = %+v, want zero value", raw, cfg)
		}
	}
}
