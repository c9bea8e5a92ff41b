// Package sanitize guards the document store against query-operator
// injection. In the store's query language `$` introduces operators and
// `.` is a path separator, so attacker-controlled keys containing either
// character must never reach a filter or a stored document.
package sanitize

import (
	"encoding/json"
	"strings"

	"github.com/taskdeck/backend/domain"
)

// Check walks a decoded JSON value (maps, slices, scalars) and returns an
// INVALID_INPUT domain error if any mapping key, at any depth, contains
// `$` or `.`. The value itself is never modified.
func Check(value any) error {
	switch v := value.(type) {
	case map[string]any:
		for key, nested := range v {
			if strings.ContainsAny(key, "$.") {
				return domain.NewError(domain.ErrCodeInvalidInput, "invalid key in input")
			}
			if err := Check(nested); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range v {
			if err := Check(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckRaw decodes a raw JSON payload and runs Check on the result.
// Malformed JSON counts as invalid input.
func CheckRaw(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return domain.WrapError(domain.ErrCodeInvalidInput, "invalid payload", err)
	}
	return Check(value)
}
