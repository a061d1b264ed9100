package utils

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"
)

// ShortIDHookFunc defines the signature for the NewShortID test hook.
// It returns a ShortID and a boolean indicating whether to override the default generation.
type ShortIDHookFunc func() (id ShortID, override bool)

// NewShortIDHook is a package-level variable that tests can set to override NewShortID behavior.
var NewShortIDHook ShortIDHookFunc

// ShortID is a 6-byte random identifier rendered as a 10-character
// Crockford Base32 token. All entity IDs in the store use this type.
type ShortID [6]byte

// NewShortID creates a new 6-byte ShortID using random data.
func NewShortID() ShortID {
	if NewShortIDHook != nil {
		if id, override := NewShortIDHook(); override {
			return id
		}
	}

	var id ShortID
	_, err := rand.Read(id[:])
	if err != nil {
		// fallback to zeros if random fails
		for i := range id {
			id[i] = 0
		}
	}
	return id
}

// ParseShortID parses a string into a ShortID from its Crockford Base32 representation.
func ParseShortID(s string) (ShortID, error) {
	return parseCrockfordShortID(s)
}

// Crockford Base32 encoding alphabet (uppercase)
const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// Mapping from Crockford Base32 chars to their values
var crockfordDecodeMap map[byte]byte

func init() {
	crockfordDecodeMap = make(map[byte]byte, 32)
	for i := range crockfordAlphabet {
		crockfordDecodeMap[crockfordAlphabet[i]] = byte(i)
	}

	// Add lowercase variants
	lower := strings.ToLower(crockfordAlphabet)
	for i := range lower {
		if i >= 10 { // Skip numbers
			crockfordDecodeMap[lower[i]] = byte(i)
		}
	}

	// Add commonly confused characters
	crockfordDecodeMap['o'] = crockfordDecodeMap['O'] // o->O
	crockfordDecodeMap['i'] = crockfordDecodeMap['1'] // i->1
	crockfordDecodeMap['l'] = crockfordDecodeMap['1'] // l->1
}

// String returns the Crockford Base32 (uppercase) representation of the 6-byte ShortID.
func (u ShortID) String() string {
	var bytes = u[:]

	// 6 bytes = 48 bits, requires ceil(48/5) = 10 characters in Base32
	result := make([]byte, 10)
	var bits, offset uint
	resultIndex := 0

	for i := 0; i < 6; i++ {
		bits |= uint(bytes[i]) << offset
		offset += 8

		for offset >= 5 {
			result[resultIndex] = crockfordAlphabet[bits&0x1F]
			resultIndex++
			bits >>= 5
			offset -= 5
		}
	}

	if offset > 0 {
		result[resultIndex] = crockfordAlphabet[bits&0x1F]
		resultIndex++
	}

	return string(result[:resultIndex])
}

// parseCrockfordShortID converts a Crockford Base32 string back to a 6-byte ShortID.
func parseCrockfordShortID(s string) (ShortID, error) {
	if s == "" {
		return ShortID{}, nil
	}

	// Remove hyphens and spaces for leniency
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")

	// Must be exactly 10 characters for 6 bytes (48 bits)
	if len(s) != 10 {
		return ShortID{}, errors.New("invalid Crockford Base32 ShortID: string length must be 10")
	}

	var bits uint64
	var offset uint
	bytes := make([]byte, 6)
	byteIndex := 0

	for i := 0; i < 10; i++ {
		val, ok := crockfordDecodeMap[s[i]]
		if !ok {
			return ShortID{}, errors.New("invalid character in Crockford Base32 ShortID")
		}

		bits |= uint64(val) << offset
		offset += 5

		for offset >= 8 && byteIndex < 6 {
			bytes[byteIndex] = byte(bits & 0xFF)
			byteIndex++
			bits >>= 8
			offset -= 8
		}
	}

	if byteIndex != 6 {
		return ShortID{}, errors.New("invalid Crockford Base32 ShortID: couldn't decode 6 bytes")
	}

	var id ShortID
	copy(id[:], bytes)
	return id, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (u ShortID) MarshalBinary() ([]byte, error) {
	return u[:], nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (u *ShortID) UnmarshalBinary(data []byte) error {
	if len(data) != 6 {
		return errors.New("invalid ShortID length")
	}
	copy((*u)[:], data)
	return nil
}

// MarshalJSON marshals the ShortID as a JSON string in Crockford Base32 format.
func (u ShortID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON unmarshals a ShortID from a JSON string in Crockford Base32 format.
func (u *ShortID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseShortID(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
