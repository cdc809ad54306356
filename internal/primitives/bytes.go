package primitives

// Bytes is a variable-length byte buffer, base64url-encoded on the wire.
type Bytes []byte

func (b Bytes) String() string { return wireEncoding.EncodeToString(b) }

// MarshalText implements encoding.TextMarshaler.
func (b Bytes) MarshalText() ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bytes) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*b = nil
		return nil
	}
	decoded, err := wireEncoding.DecodeString(string(text))
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
