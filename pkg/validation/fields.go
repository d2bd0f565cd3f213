package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidUpdateFields rejects a partial update touching a field outside
// the resource's allow-list.
var ErrInvalidUpdateFields = errors.New("invalid update fields")

// UpdatePayload is a partial-update body decoded with its keys intact, so
// the allow-list check sees exactly what the caller sent before any typed
// binding drops unknown fields.
type UpdatePayload map[string]json.RawMessage

// DecodeUpdate reads a flat JSON object from raw bytes. An empty object is
// valid; a non-object is not.
func DecodeUpdate(body []byte) (UpdatePayload, error) {
	var p UpdatePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// CheckAllowedFields returns ErrInvalidUpdateFields unless every field in
// the payload is a member of the allow-list. A single disallowed field
// rejects the whole update; nothing is dropped silently.
func (p UpdatePayload) CheckAllowedFields(allowed ...string) error {
	var bad []string
	for field := range p {
		ok := false
		for _, a := range allowed {
			if field == a {
				ok = true
				break
			}
		}
		if !ok {
			bad = append(bad, field)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("%w: %s", ErrInvalidUpdateFields, strings.Join(bad, ", "))
	}
	return nil
}

// Has reports whether the payload carries the field.
func (p UpdatePayload) Has(field string) bool {
	_, ok := p[field]
	return ok
}

// Unmarshal decodes one field's value into dest.
func (p UpdatePayload) Unmarshal(field string, dest any) error {
	raw, ok := p[field]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
