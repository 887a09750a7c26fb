package domain

import (
	"encoding/json"
	"strconv"
)

// Data is the opaque provider-data bag persisted alongside a payment session.
// Adapters keep a typed view internally and serialize to this map only at the
// storage boundary.
type Data map[string]any

// Clone returns a shallow copy so adapters never mutate stored state in place.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for key, value := range d {
		out[key] = value
	}
	return out
}

// String returns the value under key rendered as a string, or "" when absent.
func (d Data) String(key string) string {
	value, ok := d[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(typed, 10)
	case int:
		return strconv.Itoa(typed)
	case bool:
		return strconv.FormatBool(typed)
	case json.Number:
		return typed.String()
	}
	return ""
}

// Int64 returns the value under key as an int64, or 0 when absent or not
// numeric.
func (d Data) Int64(key string) int64 {
	value, ok := d[key]
	if !ok || value == nil {
		return 0
	}
	switch typed := value.(type) {
	case int64:
		return typed
	case int:
		return int64(typed)
	case float64:
		return int64(typed)
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed
		}
	case string:
		parsed, err := strconv.ParseInt(typed, 10, 64)
		if err == nil {
			return parsed
		}
	}
	return 0
}

// Bool returns the value under key as a bool.
func (d Data) Bool(key string) bool {
	value, ok := d[key]
	if !ok {
		return false
	}
	typed, ok := value.(bool)
	return ok && typed
}
