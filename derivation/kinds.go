package derivation

import (
	"fmt"
	"strconv"
)

const (
	// Purpose is the BIP44 purpose used by every supported scheme.
	Purpose uint32 = 44

	// CoinType is the SLIP-0044 coin type registered for Radix.
	CoinType uint32 = 1022

	// GetIDComponent is the third component of the identity path m/44H/1022H/365H.
	GetIDComponent uint32 = 365

	// HardenedOffset is added to a component value when it is hardened.
	HardenedOffset uint32 = 0x80000000
)

// Index is a local (unhardened) derivation index in [0, 2^31).
type Index uint32

// MaxIndex is the largest index a hardened component can carry.
const MaxIndex Index = Index(HardenedOffset - 1)

func NewIndex(v uint32) (Index, error) {
	if v > uint32(MaxIndex) {
		return 0, ErrIndexOutOfRange
	}
	return Index(v), nil
}

// Next returns i+1, failing when that would leave the hardened range.
func (i Index) Next() (Index, error) {
	if i >= MaxIndex {
		return 0, ErrIndexOutOfRange
	}
	return i + 1, nil
}

// NetworkID identifies a Radix network. It is always one byte.
type NetworkID uint8

const (
	Mainnet   NetworkID = 0x01
	Stokenet  NetworkID = 0x02
	Adapanet  NetworkID = 0x0a
	Nebunet   NetworkID = 0x0b
	Kisharnet NetworkID = 0x0c
	Ansharnet NetworkID = 0x0d
	Zabanet   NetworkID = 0x0e
	Enkinet   NetworkID = 0x21
	Hammunet  NetworkID = 0x22
	Nergalnet NetworkID = 0x23
	Mardunet  NetworkID = 0x24
	Simulator NetworkID = 0xf2
)

var networkNames = map[NetworkID]string{
	Mainnet:   "mainnet",
	Stokenet:  "stokenet",
	Adapanet:  "adapanet",
	Nebunet:   "nebunet",
	Kisharnet: "kisharnet",
	Ansharnet: "ansharnet",
	Zabanet:   "zabanet",
	Enkinet:   "enkinet",
	Hammunet:  "hammunet",
	Nergalnet: "nergalnet",
	Mardunet:  "mardunet",
	Simulator: "simulator",
}

func (n NetworkID) String() string {
	if name, ok := networkNames[n]; ok {
		return name
	}
	return fmt.Sprintf("network(%d)", uint8(n))
}

// ParseNetworkID accepts a network name or a decimal id.
func ParseNetworkID(s string) (NetworkID, error) {
	for id, name := range networkNames {
		if name == s {
			return id, nil
		}
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown network %q", s)
	}
	if v > 0xff {
		return 0, ErrNetworkIDOverflow
	}
	return NetworkID(v), nil
}

// EntityKind is the CAP26 entity kind component.
type EntityKind uint32

const (
	EntityKindAccount  EntityKind = 525
	EntityKindIdentity EntityKind = 618
)

func (k EntityKind) Valid() bool {
	return k == EntityKindAccount || k == EntityKindIdentity
}

func (k EntityKind) String() string {
	switch k {
	case EntityKindAccount:
		return "account"
	case EntityKindIdentity:
		return "persona"
	default:
		return fmt.Sprintf("entityKind(%d)", uint32(k))
	}
}

func ParseEntityKind(s string) (EntityKind, error) {
	switch s {
	case "account":
		return EntityKindAccount, nil
	case "persona", "identity":
		return EntityKindIdentity, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEntityKind, s)
}

// KeyKind is the CAP26 key kind component.
type KeyKind uint32

const (
	KeyKindTransactionSigning    KeyKind = 1460
	KeyKindAuthenticationSigning KeyKind = 1678
	KeyKindMessageEncryption     KeyKind = 1391
)

func (k KeyKind) Valid() bool {
	switch k {
	case KeyKindTransactionSigning, KeyKindAuthenticationSigning, KeyKindMessageEncryption:
		return true
	}
	return false
}

func (k KeyKind) String() string {
	switch k {
	case KeyKindTransactionSigning:
		return "transactionSigning"
	case KeyKindAuthenticationSigning:
		return "authenticationSigning"
	case KeyKindMessageEncryption:
		return "messageEncryption"
	default:
		return fmt.Sprintf("keyKind(%d)", uint32(k))
	}
}

func ParseKeyKind(s string) (KeyKind, error) {
	switch s {
	case "transactionSigning", "tx":
		return KeyKindTransactionSigning, nil
	case "authenticationSigning", "auth":
		return KeyKindAuthenticationSigning, nil
	case "messageEncryption", "enc":
		return KeyKindMessageEncryption, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKeyKind, s)
}

// Scheme is the derivation path family a path belongs to. Indices are never
// shared across schemes.
type Scheme string

const (
	SchemeCAP26        Scheme = "cap26"
	SchemeBIP44Olympia Scheme = "bip44Olympia"
	SchemeCustom       Scheme = "custom"
)
