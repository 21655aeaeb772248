package store

import (
	"bytes"
	"encoding/json"
)

// undefinedMarker is the stored form of Undefined. A NUL byte can never start
// JSON text, so the marker cannot collide with an encoded value.
// It is part of the on-disk format and must not change.
const undefinedMarker = "\x00undefined"

// undefined is the type of Undefined.
type undefined struct{}

// MarshalJSON encodes a nested Undefined as null. Only a top level Undefined
// survives a round trip.
func (undefined) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (undefined) String() string {
	return "undefined"
}

// Undefined is a value that is present but has no value. Storing it is different
// from removing the key: Get reports found=true and returns Undefined.
var Undefined any = undefined{}

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Encode converts a value into its stored form.
// Values that JSON cannot represent (cycles, channels, funcs, NaN, ±Inf)
// fail with SERIALIZATION_ERROR.
func Encode(value any) ([]byte, error) {
	if IsUndefined(value) {
		return []byte(undefinedMarker), nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, wrapError(CodeSerialization, err, "value cannot be encoded as JSON")
	}
	return raw, nil
}

// Decode converts a stored value back into its logical value.
// Objects decode to map[string]any, arrays to []any and numbers to float64.
// Data that is neither the undefined marker nor valid JSON fails with
// DESERIALIZATION_ERROR.
func Decode(raw []byte) (any, error) {
	if bytes.Equal(raw, []byte(undefinedMarker)) {
		return Undefined, nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, wrapError(CodeDeserialization, err, "stored value is not valid JSON")
	}
	return value, nil
}
