package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
)

// feedbackKeys is the on-disk field order.
var feedbackKeys = []string{"id", "full_name", "email", "message", "rating", "created_at"}

var errNotObject = errors.New("feedback record must be a JSON object")

// UnmarshalJSON decodes a record leniently. A known field that is null or does not
// fit its Go type is moved to Extra instead of failing the whole record.
func (f *Feedback) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return errNotObject
	}
	if fields == nil {
		return errNotObject
	}

	*f = Feedback{}
	for key, raw := range fields {
		if !f.decodeField(key, raw) {
			if f.Extra == nil {
				f.Extra = make(map[string]json.RawMessage)
			}
			f.Extra[key] = raw
		}
	}
	return nil
}

func (f *Feedback) decodeField(key string, raw json.RawMessage) bool {
	if string(bytes.TrimSpace(raw)) == "null" {
		return false
	}
	var target any
	switch key {
	case "id":
		target = &f.ID
	case "full_name":
		target = &f.FullName
	case "email":
		target = &f.Email
	case "message":
		target = &f.Message
	case "rating":
		target = &f.Rating
	case "created_at":
		target = &f.CreatedAt
	default:
		return false
	}
	return json.Unmarshal(raw, target) == nil
}

// MarshalJSON writes the known fields in a fixed order followed by Extra in key
// order. A known key present in Extra is written from Extra.
func (f Feedback) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	field := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeJSON(&buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if raw, ok := value.(json.RawMessage); ok {
			buf.Write(raw)
			return nil
		}
		return writeJSON(&buf, value)
	}

	known := map[string]any{
		"id":         f.ID,
		"full_name":  f.FullName,
		"email":      f.Email,
		"message":    f.Message,
		"rating":     f.Rating,
		"created_at": f.CreatedAt,
	}
	for _, key := range feedbackKeys {
		if raw, ok := f.Extra[key]; ok {
			if err := field(key, raw); err != nil {
				return nil, err
			}
			continue
		}
		if key == "rating" && f.Rating == 0 {
			continue
		}
		if err := field(key, known[key]); err != nil {
			return nil, err
		}
	}

	extra := make([]string, 0, len(f.Extra))
	for key := range f.Extra {
		if _, ok := known[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		if err := field(key, f.Extra[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeJSON encodes v without HTML escaping. The caller's encoder decides on
// escaping when it compacts the result.
func writeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
