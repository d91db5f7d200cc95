package factor

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HashSize is the length of a content-derived factor source id.
const HashSize = 32

// ID identifies a factor source. Exactly one of Hash or Address is set:
// hash ids are derived from a mnemonic and passphrase, address ids anchor
// sources without key material. ID is comparable and safe as a map key.
type ID struct {
	Kind    Kind
	Hash    [HashSize]byte
	Address string
}

func NewHashID(kind Kind, hash [HashSize]byte) ID {
	return ID{Kind: kind, Hash: hash}
}

func NewAddressID(kind Kind, address string) ID {
	return ID{Kind: kind, Address: address}
}

func (id ID) IsHash() bool {
	return id.Address == ""
}

func (id ID) IsZero() bool {
	return id == ID{}
}

const (
	hashMarker    = "hash"
	addressMarker = "addr"
)

// String renders <kind>:hash:<hex> or <kind>:addr:<address>.
func (id ID) String() string {
	if id.IsHash() {
		return fmt.Sprintf("%s:%s:%s", id.Kind, hashMarker, hex.EncodeToString(id.Hash[:]))
	}
	return fmt.Sprintf("%s:%s:%s", id.Kind, addressMarker, id.Address)
}

// ParseID reverses ID.String.
func ParseID(s string) (ID, error) {
	kindPart, rest, ok := strings.Cut(s, ":")
	if !ok {
		return ID{}, fmt.Errorf("invalid factor source id %q: expected <kind>:<hash|addr>:<body>", s)
	}
	kind, err := ParseKind(kindPart)
	if err != nil {
		return ID{}, err
	}
	marker, body, ok := strings.Cut(rest, ":")
	if !ok || body == "" {
		return ID{}, fmt.Errorf("invalid factor source id %q: expected <kind>:<hash|addr>:<body>", s)
	}

	switch marker {
	case hashMarker:
		raw, err := hex.DecodeString(body)
		if err != nil || len(raw) != HashSize {
			return ID{}, fmt.Errorf("invalid factor source id %q: hash must be %d hex bytes", s, HashSize)
		}
		var h [HashSize]byte
		copy(h[:], raw)
		return NewHashID(kind, h), nil
	case addressMarker:
		return NewAddressID(kind, body), nil
	}
	return ID{}, fmt.Errorf("invalid factor source id %q: unknown id scheme %q", s, marker)
}
