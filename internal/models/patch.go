package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Patch is a partial update: only the listed JSON fields change.
type Patch map[string]any

// Merge overlays patch onto rec and returns the result. Fields absent from
// the patch keep their current values and the record id is never replaced.
// A patch naming a field T does not have, or carrying a value of the wrong
// type, is an error. Types with their own UnmarshalJSON, such as Sale,
// decide themselves which fields they accept.
func Merge[T any](rec T, patch Patch) (T, error) {
	var merged T

	base, err := json.Marshal(rec)
	if err != nil {
		return merged, fmt.Errorf("encode record: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(base, &fields); err != nil {
		return merged, fmt.Errorf("decode record: %w", err)
	}

	id, hasID := fields["id"]
	for k, v := range patch {
		fields[k] = v
	}
	if hasID {
		fields["id"] = id
	} else {
		delete(fields, "id")
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return merged, fmt.Errorf("encode patch: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&merged); err != nil {
		return merged, fmt.Errorf("apply patch: %w", err)
	}
	return merged, nil
}
