package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mattinsler/protos/internal/ir"
)

// timeLayout is used for created_at. Fixed width keeps TEXT ordering equal
// to time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// marshalSpec converts a spec to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so the stored text is byte-identical for
// equal specs.
func marshalSpec(spec ir.ProtoSpec) (string, error) {
	data, err := ir.MarshalCanonical(spec)
	if err != nil {
		return "", fmt.Errorf("marshal spec: %w", err)
	}
	return string(data), nil
}

// unmarshalSpec parses stored spec TEXT.
func unmarshalSpec(data string) (ir.ProtoSpec, error) {
	var spec ir.ProtoSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return ir.ProtoSpec{}, fmt.Errorf("unmarshal spec: %w", err)
	}
	return spec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t, nil
}
