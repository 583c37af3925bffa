package packed

import (
	"encoding/hex"
	"fmt"
)

// ObjectIDLen is the byte length of an ObjectID.
const ObjectIDLen = 12

// ObjectID is a 12-byte object identifier (timestamp + machine + counter
// layout by convention; this package only cares about the bytes).
type ObjectID [ObjectIDLen]byte

// ObjectIDFromHex parses a 24-character hex string into an ObjectID.
func ObjectIDFromHex(s string) (ObjectID, error) {
	var id ObjectID
	if len(s) != ObjectIDLen*2 {
		return id, fmt.Errorf("objectID hex must be %d characters, got %d", ObjectIDLen*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("decode objectID hex: %w", err)
	}
	copy(id[:], b)
	return id, nil
}

// String returns the lowercase hex form of the ObjectID.
func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}
