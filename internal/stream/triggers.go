package stream

import (
	"encoding/json"
	"errors"
	"strings"
)

// LintTrigger asks for a snippet to be linted and its compliance state
// reported. SnippetID keys the state push.
type LintTrigger struct {
	SnippetID string          `json:"snippetId"`
	Config    json.RawMessage `json:"config"`
	Language  string          `json:"language"`
	Version   string          `json:"version"`
	AssetPath string          `json:"assetPath"`
}

func (t LintTrigger) validate() error {
	if strings.TrimSpace(t.SnippetID) == "" {
		return errors.New("snippetId is required")
	}
	if strings.TrimSpace(t.Version) == "" {
		return errors.New("version is required")
	}
	if strings.TrimSpace(t.AssetPath) == "" {
		return errors.New("assetPath is required")
	}
	return nil
}

// FormatTrigger asks for a snippet to be formatted in place. No state
// is reported; the formatted text is written back to the asset store.
type FormatTrigger struct {
	Language  string          `json:"language"`
	Version   string          `json:"version"`
	Config    json.RawMessage `json:"config"`
	AssetPath string          `json:"assetPath"`
}

func (t FormatTrigger) validate() error {
	if strings.TrimSpace(t.Version) == "" {
		return errors.New("version is required")
	}
	if strings.TrimSpace(t.AssetPath) == "" {
		return errors.New("assetPath is required")
	}
	return nil
}
