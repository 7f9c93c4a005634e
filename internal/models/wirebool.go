package models

import "fmt"

// WireBool is a boolean that the backend encodes as the string "0" or "1".
// It normalizes to a real bool at the decoding boundary so the string
// sentinel never leaks past the API client.
type WireBool bool

// UnmarshalJSON accepts "0"/"1" strings as well as plain JSON booleans.
func (b *WireBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"0"`, `false`:
		*b = false
	case `"1"`, `true`:
		*b = true
	default:
		return fmt.Errorf("invalid wire bool %s", data)
	}
	return nil
}

// MarshalJSON encodes back to the "0"/"1" form the backend expects.
func (b WireBool) MarshalJSON() ([]byte, error) {
	if b {
		return []byte(`"1"`), nil
	}
	return []byte(`"0"`), nil
}

// Bool returns the plain boolean value.
func (b WireBool) Bool() bool { return bool(b) }
