package stream

import (
	"encoding/json"
	"fmt"
)

// Older producers wrapped the trigger one extra layer deep: as a JSON
// string containing the trigger, or as a single-field map holding
// either form. Decoding tries the shapes in order, first success wins.
// This is a compatibility shim for schema evolution, not a contract;
// new producers write the typed object directly.

const maxEnvelopeDepth = 2

// DecodeLintTrigger decodes a stream message body into a LintTrigger.
func DecodeLintTrigger(body []byte) (LintTrigger, error) {
	var t LintTrigger
	if err := decodeEnvelope(body, &t, func() error { return t.validate() }, maxEnvelopeDepth); err != nil {
		return LintTrigger{}, fmt.Errorf("decode lint trigger: %w", err)
	}
	return t, nil
}

// DecodeFormatTrigger decodes a stream message body into a FormatTrigger.
func DecodeFormatTrigger(body []byte) (FormatTrigger, error) {
	var t FormatTrigger
	if err := decodeEnvelope(body, &t, func() error { return t.validate() }, maxEnvelopeDepth); err != nil {
		return FormatTrigger{}, fmt.Errorf("decode format trigger: %w", err)
	}
	return t, nil
}

func decodeEnvelope(body []byte, out any, valid func() error, depth int) error {
	if err := json.Unmarshal(body, out); err == nil {
		if verr := valid(); verr == nil {
			return nil
		}
	}
	if depth <= 0 {
		return fmt.Errorf("unrecognized event envelope: %s", string(body))
	}

	var wrapped string
	if err := json.Unmarshal(body, &wrapped); err == nil {
		return decodeEnvelope([]byte(wrapped), out, valid, depth-1)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil && len(fields) == 1 {
		for _, inner := range fields {
			return decodeEnvelope(inner, out, valid, depth-1)
		}
	}

	return fmt.Errorf("unrecognized event envelope: %s", string(body))
}
